package attendance

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"facesense/internal/apperr"
	"facesense/internal/student"
)

type fakeDirectory struct {
	students map[string]*student.Student
}

func (f *fakeDirectory) FindByRoll(_ context.Context, roll string) (*student.Student, error) {
	return f.students[roll], nil
}

type fakeEventStore struct {
	events []Event
}

func (f *fakeEventStore) Insert(_ context.Context, evt Event) (Event, error) {
	evt.ID = primitive.NewObjectID()
	f.events = append(f.events, evt)
	return evt, nil
}

func (f *fakeEventStore) List(_ context.Context, skip, limit int64) ([]Event, error) {
	out := []Event{}
	for i, evt := range f.events {
		if int64(i) < skip {
			continue
		}
		if int64(len(out)) >= limit {
			break
		}
		out = append(out, evt)
	}
	return out, nil
}

func (f *fakeEventStore) ListBetween(_ context.Context, from, to time.Time) ([]Event, error) {
	out := []Event{}
	for _, evt := range f.events {
		if !evt.Timestamp.Before(from) && evt.Timestamp.Before(to) {
			out = append(out, evt)
		}
	}
	return out, nil
}

func (f *fakeEventStore) ListByStudent(_ context.Context, studentID primitive.ObjectID) ([]Event, error) {
	out := []Event{}
	for _, evt := range f.events {
		if evt.StudentID == studentID {
			out = append(out, evt)
		}
	}
	return out, nil
}

func newTestService(t *testing.T) (*Service, *fakeDirectory, *fakeEventStore) {
	t.Helper()
	dir := &fakeDirectory{students: map[string]*student.Student{
		"R1": {ID: primitive.NewObjectID(), Name: "Ada Lovelace", Roll: "R1", ClassName: "10A"},
	}}
	events := &fakeEventStore{}
	return NewService(dir, events), dir, events
}

func TestMarkUnknownRoll(t *testing.T) {
	svc, _, events := newTestService(t)

	_, err := svc.Mark(context.Background(), "R100", "", nil)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.Empty(t, events.events, "nothing may be persisted for an unknown roll")
}

func TestMarkSnapshotAndDefaults(t *testing.T) {
	svc, dir, events := newTestService(t)
	conf := 0.87

	before := time.Now().UTC()
	evt, err := svc.Mark(context.Background(), "R1", "", &conf)
	require.NoError(t, err)
	after := time.Now().UTC()

	assert.False(t, evt.ID.IsZero())
	assert.Equal(t, dir.students["R1"].ID, evt.StudentID)
	assert.Equal(t, "Ada Lovelace", evt.StudentName)
	assert.Equal(t, "R1", evt.Roll)
	assert.Equal(t, DefaultStatus, evt.Status)
	require.NotNil(t, evt.Confidence)
	assert.Equal(t, 0.87, *evt.Confidence)
	assert.False(t, evt.Timestamp.Before(before))
	assert.False(t, evt.Timestamp.After(after))

	// The event is queryable by its owning student afterwards.
	got, err := svc.ListForStudent(context.Background(), evt.StudentID.Hex())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, evt.ID, got[0].ID)
	require.Len(t, events.events, 1)
}

func TestMarkExplicitStatus(t *testing.T) {
	svc, _, _ := newTestService(t)

	evt, err := svc.Mark(context.Background(), "R1", "Late", nil)
	require.NoError(t, err)
	assert.Equal(t, "Late", evt.Status)
	assert.Nil(t, evt.Confidence)
}

func TestMarkNoDuplicateSuppression(t *testing.T) {
	svc, _, events := newTestService(t)

	first, err := svc.Mark(context.Background(), "R1", "", nil)
	require.NoError(t, err)
	second, err := svc.Mark(context.Background(), "R1", "", nil)
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.Len(t, events.events, 2)
}

func TestListTodayWindow(t *testing.T) {
	svc, dir, events := newTestService(t)
	fixed := time.Date(2026, 9, 1, 15, 30, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	sid := dir.students["R1"].ID
	yesterday := Event{StudentID: sid, Timestamp: fixed.Add(-24 * time.Hour), Status: DefaultStatus}
	midnightToday := Event{StudentID: sid, Timestamp: time.Date(2026, 9, 1, 0, 0, 1, 0, time.UTC), Status: DefaultStatus}
	events.events = append(events.events, yesterday, midnightToday)

	got, err := svc.ListToday(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, midnightToday.Timestamp, got[0].Timestamp)
}

func TestListPagination(t *testing.T) {
	svc, _, _ := newTestService(t)
	for i := 0; i < 5; i++ {
		_, err := svc.Mark(context.Background(), "R1", "", nil)
		require.NoError(t, err)
	}

	page, err := svc.List(context.Background(), 2, 2)
	require.NoError(t, err)
	assert.Len(t, page, 2)

	// Non-positive limit falls back to the default page size.
	all, err := svc.List(context.Background(), 0, 0)
	require.NoError(t, err)
	assert.Len(t, all, 5)
}

func TestListForStudentInvalidID(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.ListForStudent(context.Background(), "not-a-hex-id")
	assert.ErrorIs(t, err, apperr.ErrInvalid)
}

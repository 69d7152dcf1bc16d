package attendance

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"facesense/internal/apperr"
	"facesense/internal/student"
)

var marksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "facesense_attendance_marks_total",
	Help: "Attendance events recorded, by status.",
}, []string{"status"})

// StudentDirectory resolves roll numbers to students. Absent rolls return
// (nil, nil).
type StudentDirectory interface {
	FindByRoll(ctx context.Context, roll string) (*student.Student, error)
}

// EventStore is the persistence surface the recorder needs.
type EventStore interface {
	Insert(ctx context.Context, evt Event) (Event, error)
	List(ctx context.Context, skip, limit int64) ([]Event, error)
	ListBetween(ctx context.Context, from, to time.Time) ([]Event, error)
	ListByStudent(ctx context.Context, studentID primitive.ObjectID) ([]Event, error)
}

// Service records and queries attendance events.
type Service struct {
	students StudentDirectory
	events   EventStore
	now      func() time.Time
}

// NewService creates a recorder over the given stores.
func NewService(students StudentDirectory, events EventStore) *Service {
	return &Service{students: students, events: events, now: time.Now}
}

// Mark resolves roll to a student and appends a timestamped event carrying
// a snapshot of the student's name and roll. Status defaults to Present;
// confidence passes through as supplied. Nothing is persisted when the
// roll is unknown. Repeated marks create distinct events; there is no
// duplicate-suppression window.
func (s *Service) Mark(ctx context.Context, roll, status string, confidence *float64) (Event, error) {
	if roll == "" {
		return Event{}, apperr.Invalidf("roll is required")
	}
	st, err := s.students.FindByRoll(ctx, roll)
	if err != nil {
		return Event{}, err
	}
	if st == nil {
		return Event{}, apperr.NotFoundf("student not found")
	}
	if status == "" {
		status = DefaultStatus
	}
	evt := Event{
		StudentID:   st.ID,
		StudentName: st.Name,
		Roll:        roll,
		Timestamp:   s.now().UTC(),
		Status:      status,
		Confidence:  confidence,
	}
	evt, err = s.events.Insert(ctx, evt)
	if err != nil {
		return Event{}, err
	}
	marksTotal.WithLabelValues(evt.Status).Inc()
	return evt, nil
}

// List returns events in natural storage order with pagination.
func (s *Service) List(ctx context.Context, skip, limit int64) ([]Event, error) {
	if limit <= 0 {
		limit = 100
	}
	if skip < 0 {
		skip = 0
	}
	return s.events.List(ctx, skip, limit)
}

// ListToday returns events stamped within the current UTC day.
func (s *Service) ListToday(ctx context.Context) ([]Event, error) {
	now := s.now().UTC()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return s.events.ListBetween(ctx, start, start.Add(24*time.Hour))
}

// ListForStudent returns all events referencing the given student id.
func (s *Service) ListForStudent(ctx context.Context, studentID string) ([]Event, error) {
	oid, err := primitive.ObjectIDFromHex(studentID)
	if err != nil {
		return nil, apperr.Invalidf("invalid student ID format")
	}
	return s.events.ListByStudent(ctx, oid)
}

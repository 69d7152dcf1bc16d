package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"facesense/internal/apperr"
	"facesense/internal/attendance"
	"facesense/internal/identity"
	"facesense/internal/notify"
	"facesense/internal/oauth"
	"facesense/internal/queue"
	"facesense/internal/student"
)

const (
	testSigningKey = "handler-test-key"
	testIssuer     = "facesense"
)

type memUserStore struct {
	users []*identity.User
}

func (m *memUserStore) FindByUsername(_ context.Context, username string) (*identity.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			clone := *u
			return &clone, nil
		}
	}
	return nil, nil
}

func (m *memUserStore) FindByEmail(_ context.Context, email string) (*identity.User, error) {
	for _, u := range m.users {
		if u.Email != "" && u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, nil
}

func (m *memUserStore) Insert(_ context.Context, u *identity.User) error {
	for _, existing := range m.users {
		if existing.Username == u.Username || (u.Email != "" && existing.Email == u.Email) {
			return apperr.Conflictf("user with this username or email already exists")
		}
	}
	u.ID = primitive.NewObjectID()
	clone := *u
	m.users = append(m.users, &clone)
	return nil
}

type memDirectory struct {
	byRoll map[string]*student.Student
}

func (m *memDirectory) FindByRoll(_ context.Context, roll string) (*student.Student, error) {
	return m.byRoll[roll], nil
}

type memEventStore struct {
	events []attendance.Event
}

func (m *memEventStore) Insert(_ context.Context, evt attendance.Event) (attendance.Event, error) {
	evt.ID = primitive.NewObjectID()
	m.events = append(m.events, evt)
	return evt, nil
}

func (m *memEventStore) List(_ context.Context, _, _ int64) ([]attendance.Event, error) {
	return m.events, nil
}

func (m *memEventStore) ListBetween(_ context.Context, _, _ time.Time) ([]attendance.Event, error) {
	return m.events, nil
}

func (m *memEventStore) ListByStudent(_ context.Context, _ primitive.ObjectID) ([]attendance.Event, error) {
	return m.events, nil
}

type fakeGoogle struct {
	ident oauth.Identity
	err   error
}

func (f *fakeGoogle) Verify(_ context.Context, _ string) (oauth.Identity, error) {
	return f.ident, f.err
}

func newTestRouter(t *testing.T, google TokenVerifier) (*gin.Engine, *memEventStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	users := &memUserStore{}
	identitySvc := identity.NewService(users, identity.TokenConfig{
		Issuer: testIssuer, Key: testSigningKey, TTL: time.Hour,
	})
	dir := &memDirectory{byRoll: map[string]*student.Student{
		"R1": {ID: primitive.NewObjectID(), Name: "Ada Lovelace", Roll: "R1"},
	}}
	events := &memEventStore{}
	attendanceSvc := attendance.NewService(dir, events)
	notifier := notify.NewService(queue.NewInMemory(8))

	h := New(identitySvc, attendanceSvc, nil, nil, nil, notifier, google, nil)
	r := gin.New()
	h.Routes(r, testSigningKey, testIssuer)
	return r, events
}

func doJSON(r *gin.Engine, method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func extractToken(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "bearer", resp.TokenType)
	require.NotEmpty(t, resp.AccessToken)
	return resp.AccessToken
}

func TestRegisterLoginFlow(t *testing.T) {
	r, _ := newTestRouter(t, nil)

	w := doJSON(r, http.MethodPost, "/api/auth/register", "", `{"username":"alice","password":"pw-123"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	extractToken(t, w)

	// Second registration with the same username conflicts.
	w = doJSON(r, http.MethodPost, "/api/auth/register", "", `{"username":"alice","password":"other"}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(r, http.MethodPost, "/api/auth/login", "", `{"username":"alice","password":"pw-123"}`)
	require.Equal(t, http.StatusOK, w.Code)
	extractToken(t, w)

	wrong := doJSON(r, http.MethodPost, "/api/auth/login", "", `{"username":"alice","password":"bad"}`)
	missing := doJSON(r, http.MethodPost, "/api/auth/login", "", `{"username":"nosuchuser","password":"bad"}`)
	assert.Equal(t, http.StatusUnauthorized, wrong.Code)
	assert.Equal(t, http.StatusUnauthorized, missing.Code)
	assert.Equal(t, wrong.Body.String(), missing.Body.String())
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	r, _ := newTestRouter(t, nil)

	w := doJSON(r, http.MethodPost, "/api/attendance/mark", "", `{"roll":"R1"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(r, http.MethodPost, "/api/attendance/mark", "not-a-token", `{"roll":"R1"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMarkAttendance(t *testing.T) {
	r, events := newTestRouter(t, nil)
	w := doJSON(r, http.MethodPost, "/api/auth/register", "", `{"username":"t","password":"pw"}`)
	token := extractToken(t, w)

	w = doJSON(r, http.MethodPost, "/api/attendance/mark", token, `{"roll":"R1","confidence":0.87}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var evt attendance.Event
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &evt))
	assert.Equal(t, "Ada Lovelace", evt.StudentName)
	assert.Equal(t, attendance.DefaultStatus, evt.Status)
	require.NotNil(t, evt.Confidence)
	assert.Equal(t, 0.87, *evt.Confidence)
	assert.Len(t, events.events, 1)

	// Unknown roll: 404 and nothing persisted.
	w = doJSON(r, http.MethodPost, "/api/attendance/mark", token, `{"roll":"R100"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Len(t, events.events, 1)

	// Confidence outside [0,1] is rejected at the boundary.
	w = doJSON(r, http.MethodPost, "/api/attendance/mark", token, `{"roll":"R1","confidence":1.5}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Len(t, events.events, 1)
}

func TestGoogleLogin(t *testing.T) {
	google := &fakeGoogle{ident: oauth.Identity{Email: "a@b.com", FullName: "Ada B"}}
	r, _ := newTestRouter(t, google)

	w := doJSON(r, http.MethodPost, "/api/auth/google/login", "", `{"credential":"raw-id-token"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	extractToken(t, w)

	// Repeat login reuses the account.
	w = doJSON(r, http.MethodPost, "/api/auth/google/login", "", `{"credential":"raw-id-token"}`)
	assert.Equal(t, http.StatusOK, w.Code)

	// Rejected verification is a uniform unauthorized.
	google.err = assert.AnError
	w = doJSON(r, http.MethodPost, "/api/auth/google/login", "", `{"credential":"bad"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGoogleLoginUnconfigured(t *testing.T) {
	r, _ := newTestRouter(t, nil)
	w := doJSON(r, http.MethodPost, "/api/auth/google/login", "", `{"credential":"x"}`)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestSendNotification(t *testing.T) {
	r, _ := newTestRouter(t, nil)
	w := doJSON(r, http.MethodPost, "/api/auth/register", "", `{"username":"t","password":"pw"}`)
	token := extractToken(t, w)

	w = doJSON(r, http.MethodPost, "/api/notifications/send", token, `{"to":"a@b.com","message":"low attendance"}`)
	require.Equal(t, http.StatusAccepted, w.Code)

	var resp struct {
		Detail string `json:"detail"`
		ID     string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Notification queued", resp.Detail)
	assert.NotEmpty(t, resp.ID)
}

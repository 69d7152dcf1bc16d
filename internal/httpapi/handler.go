package httpapi

import (
	"context"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"facesense/internal/apperr"
	"facesense/internal/attendance"
	"facesense/internal/auth"
	"facesense/internal/classes"
	"facesense/internal/identity"
	"facesense/internal/media"
	"facesense/internal/notify"
	"facesense/internal/oauth"
	"facesense/internal/student"
)

// TokenVerifier validates a federated identity token and returns the
// verified identity. Implemented by oauth.GoogleVerifier.
type TokenVerifier interface {
	Verify(ctx context.Context, rawToken string) (oauth.Identity, error)
}

// Uploader stores an image and returns its hosted location. Implemented by
// media.Client.
type Uploader interface {
	Upload(fileData io.Reader, filename, folder string) (*media.UploadResult, error)
}

// Handler holds the services the HTTP surface dispatches to.
type Handler struct {
	identity   *identity.Service
	attendance *attendance.Service
	events     *attendance.Repository
	students   *student.Repository
	classes    *classes.Repository
	notifier   *notify.Service
	google     TokenVerifier // nil when federated login is not configured
	uploader   Uploader      // nil when image storage is not configured
}

// New creates a handler. google and uploader may be nil; the matching
// endpoints then answer 503.
func New(
	identitySvc *identity.Service,
	attendanceSvc *attendance.Service,
	events *attendance.Repository,
	students *student.Repository,
	classRepo *classes.Repository,
	notifier *notify.Service,
	google TokenVerifier,
	uploader Uploader,
) *Handler {
	return &Handler{
		identity:   identitySvc,
		attendance: attendanceSvc,
		events:     events,
		students:   students,
		classes:    classRepo,
		notifier:   notifier,
		google:     google,
		uploader:   uploader,
	}
}

// Routes registers the API surface. Everything outside /api/auth sits
// behind the bearer middleware.
func (h *Handler) Routes(r *gin.Engine, signingKey, issuer string) {
	api := r.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.POST("/register", h.registerUser)
	authGroup.POST("/login", h.login)
	authGroup.POST("/google/login", h.googleLogin)

	protected := api.Group("", auth.Bearer(signingKey, issuer))

	students := protected.Group("/students")
	students.POST("", h.createStudent)
	students.GET("", h.listStudents)
	students.GET("/:id", h.getStudent)
	students.PUT("/:id", h.updateStudent)
	students.DELETE("/:id", h.deleteStudent)
	students.POST("/:id/photo", h.uploadStudentPhoto)

	att := protected.Group("/attendance")
	att.POST("/mark", h.markAttendance)
	att.GET("", h.listAttendance)
	att.GET("/today", h.listTodayAttendance)
	att.GET("/student/:id", h.listStudentAttendance)

	cls := protected.Group("/classes")
	cls.GET("", h.listClasses)
	cls.POST("", h.createClass)
	cls.GET("/:id", h.getClass)
	cls.DELETE("/:id", h.deleteClass)

	protected.GET("/analytics/summary", h.analyticsSummary)
	protected.POST("/notifications/send", h.sendNotification)
}

// respondErr converts an error to the boundary status/message pair.
// Internal and dependency faults are logged; their detail stays server-side.
func respondErr(c *gin.Context, err error) {
	status := apperr.Status(err)
	if status >= http.StatusInternalServerError {
		log.WithError(err).WithField("path", c.FullPath()).Error("request failed")
	}
	c.JSON(status, gin.H{"error": apperr.Message(err)})
}

// pagination reads skip/limit query params with the original defaults.
func pagination(c *gin.Context) (skip, limit int64) {
	skip, limit = 0, 100
	if v := c.Query("skip"); v != "" {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil && parsed >= 0 {
			skip = parsed
		}
	}
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	return skip, limit
}

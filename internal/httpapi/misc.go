package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"facesense/internal/apperr"
)

func (h *Handler) listClasses(c *gin.Context) {
	out, err := h.classes.List(c.Request.Context())
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

type createClassRequest struct {
	Name string `json:"name" binding:"required"`
}

func (h *Handler) createClass(c *gin.Context) {
	var req createClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErr(c, apperr.Invalidf("class name is required"))
		return
	}
	cls, err := h.classes.Insert(c.Request.Context(), req.Name)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Class created", "class": cls})
}

func (h *Handler) getClass(c *gin.Context) {
	cls, err := h.classes.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, cls)
}

func (h *Handler) deleteClass(c *gin.Context) {
	if err := h.classes.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Class deleted successfully"})
}

func (h *Handler) analyticsSummary(c *gin.Context) {
	studentCount, err := h.students.Count(c.Request.Context())
	if err != nil {
		respondErr(c, err)
		return
	}
	eventCount, err := h.events.Count(c.Request.Context())
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"students":           studentCount,
		"attendance_records": eventCount,
	})
}

// sendNotification accepts any JSON payload and queues it for the
// notifier. No delivery guarantee is implied.
func (h *Handler) sendNotification(c *gin.Context) {
	var payload json.RawMessage
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondErr(c, apperr.Invalidf("body must be valid JSON"))
		return
	}
	ack, err := h.notifier.Send(c.Request.Context(), payload)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"detail": "Notification queued", "id": ack})
}

package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"facesense/internal/apperr"
)

type markRequest struct {
	Roll       string   `json:"roll" binding:"required"`
	Status     string   `json:"status"`
	Confidence *float64 `json:"confidence" binding:"omitempty,gte=0,lte=1"`
}

func (h *Handler) markAttendance(c *gin.Context) {
	var req markRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErr(c, apperr.Invalidf("%v", err))
		return
	}
	evt, err := h.attendance.Mark(c.Request.Context(), req.Roll, req.Status, req.Confidence)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, evt)
}

func (h *Handler) listAttendance(c *gin.Context) {
	skip, limit := pagination(c)
	events, err := h.attendance.List(c.Request.Context(), skip, limit)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, events)
}

func (h *Handler) listTodayAttendance(c *gin.Context) {
	events, err := h.attendance.ListToday(c.Request.Context())
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, events)
}

func (h *Handler) listStudentAttendance(c *gin.Context) {
	events, err := h.attendance.ListForStudent(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, events)
}

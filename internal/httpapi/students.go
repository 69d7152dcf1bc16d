package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"facesense/internal/apperr"
	"facesense/internal/student"
)

func (h *Handler) createStudent(c *gin.Context) {
	var in student.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		respondErr(c, apperr.Invalidf("%v", err))
		return
	}
	st, err := h.students.Insert(c.Request.Context(), in)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, st)
}

func (h *Handler) listStudents(c *gin.Context) {
	skip, limit := pagination(c)
	students, err := h.students.List(c.Request.Context(), skip, limit)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, students)
}

func (h *Handler) getStudent(c *gin.Context) {
	st, err := h.students.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (h *Handler) updateStudent(c *gin.Context) {
	var in student.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		respondErr(c, apperr.Invalidf("%v", err))
		return
	}
	st, err := h.students.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (h *Handler) deleteStudent(c *gin.Context) {
	if err := h.students.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"detail": "Student deleted successfully"})
}

// uploadStudentPhoto stores a photo in Cloudinary and records its URL on
// the student. Expects a multipart "photo" file field.
func (h *Handler) uploadStudentPhoto(c *gin.Context) {
	if h.uploader == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "image storage not configured"})
		return
	}
	file, header, err := c.Request.FormFile("photo")
	if err != nil {
		respondErr(c, apperr.Invalidf("photo file is required"))
		return
	}
	defer file.Close()

	result, err := h.uploader.Upload(file, header.Filename, "facesense/students")
	if err != nil {
		log.WithError(err).Error("photo upload failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "photo upload failed"})
		return
	}

	st, err := h.students.SetPhoto(c.Request.Context(), c.Param("id"), result.SecureURL)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

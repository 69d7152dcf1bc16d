package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"facesense/internal/apperr"
)

type registerRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	Email    string `json:"email" binding:"omitempty,email"`
	Role     string `json:"role"`
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type googleLoginRequest struct {
	Credential string `json:"credential" binding:"required"`
}

func tokenResponse(c *gin.Context, token string) {
	c.JSON(http.StatusOK, gin.H{"access_token": token, "token_type": "bearer"})
}

func (h *Handler) registerUser(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErr(c, apperr.Invalidf("%v", err))
		return
	}
	token, err := h.identity.Register(c.Request.Context(), req.Username, req.Password, req.Email, req.Role)
	if err != nil {
		respondErr(c, err)
		return
	}
	tokenResponse(c, token)
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErr(c, apperr.Invalidf("%v", err))
		return
	}
	token, err := h.identity.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondErr(c, err)
		return
	}
	tokenResponse(c, token)
}

func (h *Handler) googleLogin(c *gin.Context) {
	if h.google == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "federated login not configured"})
		return
	}
	var req googleLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErr(c, apperr.Invalidf("%v", err))
		return
	}
	ident, err := h.google.Verify(c.Request.Context(), req.Credential)
	if err != nil {
		log.WithError(err).Info("google token rejected")
		respondErr(c, apperr.ErrUnauthorized)
		return
	}
	token, err := h.identity.FederatedLogin(c.Request.Context(), ident.Email, ident.FullName, ident.PictureURL)
	if err != nil {
		respondErr(c, err)
		return
	}
	tokenResponse(c, token)
}

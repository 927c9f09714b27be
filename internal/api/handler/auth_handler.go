package handler

import (
	"errors"
	"net/http"

	"smart_toll/internal/domain"
	"smart_toll/internal/service"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// AuthHandler issues operator tokens for the station admin routes.
type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(as *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: as}
}

// POST /auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var dto domain.RegisterUserDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid operator registration", "details": err.Error()})
		return
	}

	operator, err := h.authService.Register(c.Request.Context(), dto)
	if err != nil {
		h.fail(c, "register", dto.Username, err)
		return
	}
	log.WithField("username", operator.Username).Info("Auth: operator registered")
	c.JSON(http.StatusCreated, operator)
}

// POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var dto domain.LoginUserDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid login request", "details": err.Error()})
		return
	}

	token, err := h.authService.Login(c.Request.Context(), dto)
	if err != nil {
		h.fail(c, "login", dto.Username, err)
		return
	}
	c.JSON(http.StatusOK, token)
}

func (h *AuthHandler) fail(c *gin.Context, action, username string, err error) {
	switch {
	case errors.Is(err, service.ErrUserAlreadyExists):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidCredentials):
		log.WithField("username", username).Warn("Auth: rejected login")
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	default:
		log.WithField("username", username).Printf("Auth: %s failed: %v", action, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": action + " failed", "details": err.Error()})
	}
}

package handlers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	logger     *slog.Logger
	passcode   string
	cookieName string
}

func NewAuthHandler(logger *slog.Logger, passcode, cookieName string) *AuthHandler {
	return &AuthHandler{
		logger:     logger,
		passcode:   passcode,
		cookieName: cookieName,
	}
}

type loginRequest struct {
	Passcode string `json:"passcode"`
}

func (h *AuthHandler) SubmitLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	passcode := strings.TrimSpace(req.Passcode)
	if passcode == "" {
		h.logger.Warn("login attempt missing passcode", "ip", c.ClientIP())
		c.JSON(http.StatusBadRequest, gin.H{"error": "passcode is required"})
		return
	}

	if passcode != h.passcode {
		h.logger.Warn("invalid login attempt", "ip", c.ClientIP())
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid passcode"})
		return
	}

	maxAge := int((14 * 24 * time.Hour).Seconds())
	secure := c.Request.TLS != nil
	c.SetCookie(h.cookieName, "1", maxAge, "/", "", secure, true)

	h.logger.Info("admin login successful", "ip", c.ClientIP())
	c.Status(http.StatusNoContent)
}

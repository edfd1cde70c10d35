package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"tareas/internal/middleware"
	"tareas/internal/models"
	"tareas/internal/services"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService services.AuthService
	logger      *slog.Logger
	now         func() time.Time
}

type RegisterResponse struct {
	Token     string         `json:"token"`
	TokenType string         `json:"token_type"`
	User      models.Profile `json:"user"`
}

type LoginResponse struct {
	Token     string `json:"token"`
	TokenType string `json:"token_type"`
	ExpiresIn int64  `json:"expires_in"`
}

func NewAuthHandler(authService services.AuthService, logger *slog.Logger) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{authService: authService, logger: logger, now: time.Now}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req services.RegistrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, h.logger, err)
		return
	}

	token, err := h.authService.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.logger.InfoContext(c.Request.Context(), "user registered", "user_id", token.User.ID.String())
	c.JSON(http.StatusCreated, RegisterResponse{
		Token:     token.Token,
		TokenType: "Bearer",
		User:      token.User.Profile(),
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req services.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, h.logger, err)
		return
	}

	token, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	expiresIn := int64(token.ExpiresAt.Sub(h.now()).Seconds())
	if expiresIn < 0 {
		expiresIn = 0
	}
	c.JSON(http.StatusOK, LoginResponse{
		Token:     token.Token,
		TokenType: "Bearer",
		ExpiresIn: expiresIn,
	})
}

// Me returns the profile of the authenticated caller.
func (h *AuthHandler) Me(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		respondError(c, h.logger, services.ErrUnauthenticated)
		return
	}
	c.JSON(http.StatusOK, user.Profile())
}

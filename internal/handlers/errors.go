package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"tareas/internal/services"

	"github.com/gin-gonic/gin"
)

// respondError writes the HTTP form of err. Unexpected errors are logged and
// hidden behind a generic 500 body.
func respondError(c *gin.Context, logger *slog.Logger, err error) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"message": verr.First(),
			"errors":  verr.Fields,
		})
	case errors.Is(err, services.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":   "invalid_credentials",
			"message": "Invalid email or password",
		})
	case errors.Is(err, services.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":   "unauthenticated",
			"message": "Token is invalid or expired",
		})
	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "No autorizado"})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "not_found",
			"message": "Tarea no encontrada",
		})
	default:
		logger.ErrorContext(c.Request.Context(), "request failed",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"error", err,
		)
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// respondBindError answers a body that failed to bind. Wrong value types are
// field errors; unparseable bodies are a 400.
func respondBindError(c *gin.Context, logger *slog.Logger, err error) {
	if verr := services.DecodeError(err); verr != nil {
		respondError(c, logger, verr)
		return
	}
	respondBadRequest(c, err)
}

func respondBadRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":   "invalid_request",
		"message": "Invalid request format",
		"details": err.Error(),
	})
}

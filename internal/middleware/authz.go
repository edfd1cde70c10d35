package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"tareas/internal/models"
	"tareas/internal/services"

	"github.com/gin-gonic/gin"
)

const currentUserKey = "current_user"

// Authenticator resolves a bearer token to the user it was issued for.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (models.User, error)
}

// BearerAuth rejects requests without a valid bearer token and stores the
// authenticated user in the gin context.
func BearerAuth(auth Authenticator, logger *slog.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}

	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthenticated(c, "Authorization header is required")
			return
		}

		scheme, token, found := strings.Cut(authHeader, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			abortUnauthenticated(c, "Authorization header must use Bearer token")
			return
		}

		user, err := auth.Authenticate(c.Request.Context(), strings.TrimSpace(token))
		if err != nil {
			if !errors.Is(err, services.ErrUnauthenticated) {
				logger.ErrorContext(c.Request.Context(), "authentication failed", "error", err)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
				return
			}
			abortUnauthenticated(c, "Token is invalid or expired")
			return
		}

		SetCurrentUser(c, user)
		c.Next()
	}
}

func SetCurrentUser(c *gin.Context, user models.User) {
	c.Set(currentUserKey, user)
}

// CurrentUser returns the user stored by BearerAuth.
func CurrentUser(c *gin.Context) (models.User, bool) {
	v, ok := c.Get(currentUserKey)
	if !ok {
		return models.User{}, false
	}
	user, ok := v.(models.User)
	return user, ok
}

func abortUnauthenticated(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error":   "unauthenticated",
		"message": message,
	})
}

package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/qs-lzh/coaster-review/internal/auth"
	"github.com/qs-lzh/coaster-review/internal/model"
	"github.com/qs-lzh/coaster-review/internal/service"
)

const sessionContextKey = "session"

const (
	LoginRequiredMessage = "Please log in to perform this action"
	AdminRequiredMessage = "You must be logged in as an admin to take this action"
)

// UserLoader resolves the user id kept in the cookie.
type UserLoader interface {
	GetUserByID(ctx context.Context, id uint) (*model.User, error)
}

// LoadSession attaches an auth.Session to every request. A cookie naming a
// user that no longer exists is cleared and the request continues anonymous.
func LoadSession(sessions *auth.Manager, users UserLoader, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(sessionContextKey, auth.Anonymous())

		id, ok := sessions.UserID(c.Request)
		if !ok {
			c.Next()
			return
		}

		user, err := users.GetUserByID(c.Request.Context(), id)
		if err != nil {
			if errors.Is(err, service.ErrNotFound) {
				if err := sessions.ClearUser(c.Writer, c.Request); err != nil {
					logger.Warn("failed to clear stale session", zap.Error(err))
				}
				c.Next()
				return
			}
			logger.Error("failed to load session user", zap.Uint("user_id", id), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": service.ErrInternal.Error()})
			return
		}

		c.Set(sessionContextKey, auth.Authenticated(user))
		c.Next()
	}
}

// CurrentSession returns the session LoadSession attached, or Anonymous.
func CurrentSession(c *gin.Context) auth.Session {
	if v, ok := c.Get(sessionContextKey); ok {
		if s, ok := v.(auth.Session); ok {
			return s
		}
	}
	return auth.Anonymous()
}

func RequireAuthenticated(sessions *auth.Manager, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentSession(c).IsAuthenticated() {
			c.Next()
			return
		}
		if err := sessions.AddFlash(c.Writer, c.Request, LoginRequiredMessage); err != nil {
			logger.Warn("failed to store flash message", zap.Error(err))
		}
		c.Redirect(http.StatusFound, "/login")
		c.Abort()
	}
}

func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if auth.IsAdmin(CurrentSession(c)) {
			c.Next()
			return
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": AdminRequiredMessage})
	}
}

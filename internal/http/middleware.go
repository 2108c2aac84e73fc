package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"social-app/internal/domain"
	"social-app/internal/service"
)

// ContextUserKey is the gin context key holding the authenticated *domain.User.
const ContextUserKey = "user"

// RequireAuth rejects requests without a valid session cookie and attaches the
// session's user to the context otherwise.
func (h *Handler) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := h.cookies.Read(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized, no token provided"})
			return
		}

		userID, err := h.tokens.Verify(token)
		if err != nil {
			h.logger.WithError(err).Debug("reject session token")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized, invalid token"})
			return
		}

		user, err := h.users.GetByID(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, service.ErrUserNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized, user not found"})
				return
			}
			h.logger.WithError(err).Error("load session user")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": internalErrorMessage})
			return
		}

		c.Set(ContextUserKey, user)
		c.Next()
	}
}

// currentUser returns the user attached by RequireAuth.
func currentUser(c *gin.Context) *domain.User {
	v, ok := c.Get(ContextUserKey)
	if !ok {
		return nil
	}
	user, _ := v.(*domain.User)
	return user
}

func (h *Handler) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := h.logger.WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start),
			"client":  c.ClientIP(),
		})
		switch status := c.Writer.Status(); {
		case status >= http.StatusInternalServerError:
			entry.Warn("request")
		case status >= http.StatusBadRequest:
			entry.Debug("request")
		default:
			entry.Info("request")
		}
	}
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.DefaultConfig()
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	cfg.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	cfg.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
	cfg.MaxAge = 12 * time.Hour
	return cors.New(cfg)
}

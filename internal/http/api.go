package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"social-app/internal/auth"
	"social-app/internal/service"
)

const internalErrorMessage = "Internal server error"

// Handler wires HTTP routes to domain services.
type Handler struct {
	users         service.UserService
	posts         service.PostService
	notifications service.NotificationService
	tokens        *auth.TokenCodec
	cookies       auth.CookieTransport
	corsOrigins   []string
	logger        *logrus.Logger
}

// Options carries the transport settings of the handler.
type Options struct {
	Tokens      *auth.TokenCodec
	Cookies     auth.CookieTransport
	CORSOrigins []string
	Logger      *logrus.Logger
}

func NewHandler(users service.UserService, posts service.PostService, notifications service.NotificationService, opts Options) *Handler {
	logger := opts.Logger
	if logger == nil {
		logger = logrus.New()
	}
	return &Handler{
		users:         users,
		posts:         posts,
		notifications: notifications,
		tokens:        opts.Tokens,
		cookies:       opts.Cookies,
		corsOrigins:   opts.CORSOrigins,
		logger:        logger,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(h.requestLogger())
	if len(h.corsOrigins) > 0 {
		router.Use(corsMiddleware(h.corsOrigins))
	}

	api := router.Group("/api")
	{
		api.GET("/health", func(ctx *gin.Context) {
			ctx.JSON(http.StatusOK, gin.H{"ok": "ok"})
		})
	}

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", h.register)
		authGroup.POST("/login", h.login)
		authGroup.POST("/logout", h.logout)
		authGroup.GET("/me", h.RequireAuth(), h.me)
	}

	users := api.Group("/users", h.RequireAuth())
	{
		users.GET("/profile/:username", h.getProfile)
		users.GET("/suggested", h.suggestedUsers)
		users.POST("/follow/:id", h.followUser)
		users.POST("/update", h.updateProfile)
	}

	// count is the only public posts route
	api.GET("/posts/count/:username", h.countUserPosts)
	posts := api.Group("/posts", h.RequireAuth())
	{
		posts.GET("/all", h.listPosts)
		posts.GET("/following", h.listFollowingPosts)
		posts.GET("/likes/:id", h.listLikedPosts)
		posts.GET("/user/:username", h.listUserPosts)
		posts.POST("/create", h.createPost)
		posts.POST("/like/:id", h.likePost)
		posts.POST("/comment/:id", h.commentPost)
		posts.DELETE("/:id", h.deletePost)
	}

	notifications := api.Group("/notifications", h.RequireAuth())
	{
		notifications.GET("", h.listNotifications)
		notifications.DELETE("", h.deleteNotifications)
		notifications.DELETE("/:id", h.deleteNotification)
	}
}

// respondError maps service failures to their status code. Anything that is not a
// client-facing service.Error is logged and hidden behind a generic 500.
func (h *Handler) respondError(c *gin.Context, err error) {
	var svcErr *service.Error
	if errors.As(err, &svcErr) {
		c.JSON(statusForKind(svcErr.Kind), gin.H{"error": svcErr.Message})
		return
	}

	h.logger.WithError(err).WithFields(logrus.Fields{
		"method": c.Request.Method,
		"path":   c.FullPath(),
	}).Error("request failed")
	c.JSON(http.StatusInternalServerError, gin.H{"error": internalErrorMessage})
}

func statusForKind(kind service.Kind) int {
	switch kind {
	case service.KindInvalidInput, service.KindConflict:
		return http.StatusBadRequest
	case service.KindUnauthorized:
		return http.StatusUnauthorized
	case service.KindForbidden:
		return http.StatusForbidden
	case service.KindNotFound:
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"social-app/internal/service"
)

const invalidBodyMessage = "Invalid request body"

type registerRequest struct {
	Username string `json:"username" binding:"required"`
	FullName string `json:"fullname" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// loginRequest accepts either identifier; missing ones are rejected as bad credentials.
type loginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var missing validator.ValidationErrors
		if errors.As(err, &missing) {
			h.respondError(c, service.ErrRegistrationIncomplete)
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": invalidBodyMessage})
		return
	}

	user, err := h.users.Register(c.Request.Context(), service.RegisterInput{
		Username: req.Username,
		FullName: req.FullName,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	if !h.startSession(c, user.ID) {
		return
	}
	c.JSON(http.StatusCreated, userToResponse(user))
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": invalidBodyMessage})
		return
	}

	user, err := h.users.Login(c.Request.Context(), service.LoginInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	if !h.startSession(c, user.ID) {
		return
	}
	c.JSON(http.StatusOK, userToResponse(user))
}

func (h *Handler) logout(c *gin.Context) {
	h.cookies.Clear(c)
	c.JSON(http.StatusOK, gin.H{"message": "Logout Success"})
}

func (h *Handler) me(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"user": userToResponse(currentUser(c))})
}

// startSession issues a token for userID and attaches it as the session cookie.
// It reports false after writing an error response.
func (h *Handler) startSession(c *gin.Context, userID string) bool {
	token, err := h.tokens.Issue(userID)
	if err != nil {
		h.respondError(c, err)
		return false
	}
	h.cookies.Attach(c, token)
	return true
}

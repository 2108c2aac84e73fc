package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"social-app/internal/service"
)

type updateProfileRequest struct {
	FullName        string `json:"fullname"`
	Username        string `json:"username"`
	Email           string `json:"email"`
	Bio             string `json:"bio"`
	Link            string `json:"link"`
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
	ProfilePicture  string `json:"profilePicture"`
	CoverPicture    string `json:"coverPicture"`
}

func (h *Handler) getProfile(c *gin.Context) {
	user, err := h.users.GetProfile(c.Request.Context(), c.Param("username"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": userToResponse(user)})
}

func (h *Handler) suggestedUsers(c *gin.Context) {
	users, err := h.users.Suggested(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": usersToResponse(users)})
}

func (h *Handler) followUser(c *gin.Context) {
	following, err := h.users.ToggleFollow(c.Request.Context(), currentUser(c).ID, c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	msg := "Unfollowed user successfully"
	if following {
		msg = "Followed user successfully"
	}
	c.JSON(http.StatusOK, gin.H{"message": msg})
}

func (h *Handler) updateProfile(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": invalidBodyMessage})
		return
	}

	user, err := h.users.UpdateProfile(c.Request.Context(), currentUser(c).ID, service.UpdateProfileInput{
		Username:        req.Username,
		FullName:        req.FullName,
		Email:           req.Email,
		Bio:             req.Bio,
		Link:            req.Link,
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
		ProfilePicture:  req.ProfilePicture,
		CoverPicture:    req.CoverPicture,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, userToResponse(user))
}

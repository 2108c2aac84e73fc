package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"social-app/internal/domain"
	"social-app/internal/service"
)

type createPostRequest struct {
	Text string `json:"text"`
	Img  string `json:"img"`
}

type commentRequest struct {
	Text string `json:"text"`
}

func (h *Handler) listPosts(c *gin.Context) {
	h.respondPosts(c, func() ([]domain.Post, error) {
		return h.posts.ListAll(c.Request.Context())
	})
}

func (h *Handler) listFollowingPosts(c *gin.Context) {
	h.respondPosts(c, func() ([]domain.Post, error) {
		return h.posts.ListFollowing(c.Request.Context(), currentUser(c).ID)
	})
}

func (h *Handler) listLikedPosts(c *gin.Context) {
	h.respondPosts(c, func() ([]domain.Post, error) {
		return h.posts.ListLiked(c.Request.Context(), c.Param("id"))
	})
}

func (h *Handler) listUserPosts(c *gin.Context) {
	h.respondPosts(c, func() ([]domain.Post, error) {
		return h.posts.ListByUsername(c.Request.Context(), c.Param("username"))
	})
}

func (h *Handler) respondPosts(c *gin.Context, list func() ([]domain.Post, error)) {
	posts, err := list()
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, postsToResponse(posts))
}

func (h *Handler) countUserPosts(c *gin.Context) {
	count, err := h.posts.CountByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"postCount": count})
}

func (h *Handler) createPost(c *gin.Context) {
	var req createPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": invalidBodyMessage})
		return
	}

	post, err := h.posts.Create(c.Request.Context(), currentUser(c).ID, service.CreatePostInput{
		Text: req.Text,
		Img:  req.Img,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, postToResponse(post))
}

func (h *Handler) likePost(c *gin.Context) {
	likes, err := h.posts.ToggleLike(c.Request.Context(), currentUser(c).ID, c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(likes))
}

func (h *Handler) commentPost(c *gin.Context) {
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": invalidBodyMessage})
		return
	}

	comments, err := h.posts.Comment(c.Request.Context(), currentUser(c).ID, c.Param("id"), req.Text)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, commentsToResponse(comments))
}

func (h *Handler) deletePost(c *gin.Context) {
	if err := h.posts.Delete(c.Request.Context(), currentUser(c).ID, c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Post deleted successfully"})
}

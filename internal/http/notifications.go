package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) listNotifications(c *gin.Context) {
	list, err := h.notifications.List(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, notificationsToResponse(list))
}

func (h *Handler) deleteNotifications(c *gin.Context) {
	if err := h.notifications.DeleteAll(c.Request.Context(), currentUser(c).ID); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notifications deleted"})
}

func (h *Handler) deleteNotification(c *gin.Context) {
	if err := h.notifications.Delete(c.Request.Context(), currentUser(c).ID, c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notification deleted"})
}

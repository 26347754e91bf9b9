package handlers

import (
	"net/http"

	"github.com/cancha-app/cancha-backend/internal/api/middleware"
	"github.com/cancha-app/cancha-backend/internal/models"
	"github.com/cancha-app/cancha-backend/internal/notification"
	"github.com/gin-gonic/gin"
)

// ============================================
// Notification Handler
// ============================================

type NotificationHandler struct {
	notifSvc *notification.Service
}

func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	accountID, ok := middleware.RequireAccountID(c)
	if !ok {
		return
	}

	unreadOnly := c.Query("unread") == "true"

	notifications, err := h.notifSvc.List(c.Request.Context(), accountID, unreadOnly)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load notifications"})
		return
	}

	response := make([]models.NotificationResponse, len(notifications))
	for i, n := range notifications {
		response[i] = toNotificationResponse(n)
	}
	c.JSON(http.StatusOK, response)
}

func (h *NotificationHandler) MarkAsRead(c *gin.Context) {
	accountID, ok := middleware.RequireAccountID(c)
	if !ok {
		return
	}

	marked, err := h.notifSvc.MarkAsRead(c.Request.Context(), c.Param("id"), accountID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to mark as read"})
		return
	}
	if !marked {
		c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Marked as read"})
}

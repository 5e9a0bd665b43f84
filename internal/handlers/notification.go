package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/project-tracker-api/internal/dto"
	apierrors "github.com/yukikurage/project-tracker-api/internal/errors"
	"github.com/yukikurage/project-tracker-api/internal/services"
	"github.com/yukikurage/project-tracker-api/internal/utils"
)

type NotificationHandler struct {
	notificationService *services.NotificationService
}

func NewNotificationHandler(notificationService *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// ListNotifications returns the current user's notifications, newest first.
// ?unread=true limits the list to unread ones.
func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	notifications, err := h.notificationService.List(c.Request.Context(), userID, c.Query("unread") == "true")
	if err != nil {
		apierrors.InternalError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToNotificationListResponse(notifications))
}

func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	id, err := utils.ParseIDParam(c, "id")
	if err != nil {
		apierrors.BadRequest(c, "Invalid notification ID")
		return
	}

	notification, err := h.notificationService.MarkRead(c.Request.Context(), id, userID)
	if err != nil {
		respondNotificationError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToNotificationDTO(*notification))
}

func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	updated, err := h.notificationService.MarkAllRead(c.Request.Context(), userID)
	if err != nil {
		apierrors.InternalError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Notifications marked as read", "updated": updated})
}

func (h *NotificationHandler) DeleteNotification(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	id, err := utils.ParseIDParam(c, "id")
	if err != nil {
		apierrors.BadRequest(c, "Invalid notification ID")
		return
	}

	if err := h.notificationService.Delete(c.Request.Context(), id, userID); err != nil {
		respondNotificationError(c, err)
		return
	}

	c.JSON(http.StatusOK, messageResponse{Message: "Notification deleted successfully"})
}

func respondNotificationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotificationNotFound):
		apierrors.NotFound(c, "Notification not found")
	case errors.Is(err, services.ErrNotNotificationOwner):
		apierrors.Forbidden(c, "You are not authorized to access this notification")
	default:
		apierrors.InternalError(c, err)
	}
}

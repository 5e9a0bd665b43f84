package dto

import (
	"time"

	"github.com/yukikurage/project-tracker-api/internal/models"
)

type NotificationDTO struct {
	ID        uint64    `json:"id"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

type NotificationListResponse struct {
	Notifications []NotificationDTO `json:"notifications"`
	Amount        int               `json:"amount"`
}

func ToNotificationDTO(n models.Notification) NotificationDTO {
	return NotificationDTO{
		ID:        n.ID,
		Message:   n.Message,
		Read:      n.Read,
		CreatedAt: n.CreatedAt,
	}
}

func ToNotificationListResponse(ns []models.Notification) NotificationListResponse {
	items := make([]NotificationDTO, len(ns))
	for i, n := range ns {
		items[i] = ToNotificationDTO(n)
	}
	return NotificationListResponse{Notifications: items, Amount: len(items)}
}

package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/yukikurage/project-tracker-api/internal/models"
	"github.com/yukikurage/project-tracker-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrNotificationNotFound = errors.New("notification not found")
	ErrNotNotificationOwner = errors.New("notification belongs to another user")
)

// NotificationService stores and serves per-user notifications.
type NotificationService struct {
	repo   repository.NotificationRepository
	logger *slog.Logger
}

func NewNotificationService(repo repository.NotificationRepository, logger *slog.Logger) *NotificationService {
	if logger == nil {
		logger = slog.Default()
	}
	return &NotificationService{repo: repo, logger: logger}
}

// Send inserts the notifications as one batch.
func (s *NotificationService) Send(ctx context.Context, notifications []models.Notification) error {
	if err := s.repo.Create(ctx, notifications); err != nil {
		return fmt.Errorf("failed to store notifications: %w", err)
	}
	return nil
}

// Notify sends message to each distinct user. Errors are logged and dropped.
func (s *NotificationService) Notify(ctx context.Context, message string, userIDs ...uint64) {
	userIDs = uniqueUint64(userIDs)
	if len(userIDs) == 0 {
		return
	}

	notifications := make([]models.Notification, len(userIDs))
	for i, id := range userIDs {
		notifications[i] = models.Notification{UserID: id, Message: message}
	}

	if err := s.Send(ctx, notifications); err != nil {
		s.logger.ErrorContext(ctx, "notification fan-out failed",
			"recipients", len(userIDs),
			"error", err,
		)
	}
}

func (s *NotificationService) List(ctx context.Context, userID uint64, unreadOnly bool) ([]models.Notification, error) {
	notifications, err := s.repo.ListByUser(ctx, userID, unreadOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifications, nil
}

// MarkRead flags one of the user's notifications as read.
func (s *NotificationService) MarkRead(ctx context.Context, id, userID uint64) (*models.Notification, error) {
	notification, err := s.findOwned(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.MarkRead(ctx, id); err != nil {
		return nil, fmt.Errorf("failed to mark notification read: %w", err)
	}
	notification.Read = true
	return notification, nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID uint64) (int64, error) {
	n, err := s.repo.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return n, nil
}

func (s *NotificationService) Delete(ctx context.Context, id, userID uint64) error {
	if _, err := s.findOwned(ctx, id, userID); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete notification: %w", err)
	}
	return nil
}

func (s *NotificationService) findOwned(ctx context.Context, id, userID uint64) (*models.Notification, error) {
	notification, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotificationNotFound
		}
		return nil, fmt.Errorf("failed to find notification: %w", err)
	}

	if notification.UserID != userID {
		return nil, ErrNotNotificationOwner
	}
	return notification, nil
}

// uniqueUint64 removes duplicate values from a slice of uint64
func uniqueUint64(values []uint64) []uint64 {
	seen := make(map[uint64]struct{}, len(values))
	result := make([]uint64, 0, len(values))

	for _, v := range values {
		if _, exists := seen[v]; exists {
			continue
		}
		seen[v] = struct{}{}
		result = append(result, v)
	}

	return result
}

// without returns values minus every occurrence of drop.
func without(values []uint64, drop ...uint64) []uint64 {
	result := make([]uint64, 0, len(values))
	for _, v := range values {
		skip := false
		for _, d := range drop {
			if v == d {
				skip = true
				break
			}
		}
		if !skip {
			result = append(result, v)
		}
	}
	return result
}

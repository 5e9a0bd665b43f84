package repository

import (
	"context"
	"time"

	"github.com/yukikurage/project-tracker-api/internal/models"
	"gorm.io/gorm"
)

// GormInvalidTokenRepository is a GORM implementation of InvalidTokenRepository
type GormInvalidTokenRepository struct {
	db *gorm.DB
}

// NewInvalidTokenRepository creates a new InvalidTokenRepository
func NewInvalidTokenRepository(db *gorm.DB) InvalidTokenRepository {
	return &GormInvalidTokenRepository{db: db}
}

func (r *GormInvalidTokenRepository) Add(ctx context.Context, token string, expiresAt time.Time) error {
	return r.db.WithContext(ctx).Create(&models.InvalidToken{
		Token:     token,
		ExpiresAt: expiresAt,
	}).Error
}

func (r *GormInvalidTokenRepository) IsRevoked(ctx context.Context, token string, now time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.InvalidToken{}).
		Where("token = ? AND expires_at > ?", token, now).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *GormInvalidTokenRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Where("expires_at <= ?", now).Delete(&models.InvalidToken{})
	return result.RowsAffected, result.Error
}

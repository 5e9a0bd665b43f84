package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/yukikurage/project-tracker-api/internal/database"
	"github.com/yukikurage/project-tracker-api/internal/models"
	"gorm.io/gorm"
)

var userSortColumns = map[string]string{
	"username":   "users.username",
	"email":      "users.email",
	"created_at": "users.created_at",
}

// GormUserRepository is a GORM implementation of UserRepository
type GormUserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &GormUserRepository{db: db}
}

// Create creates a new user
func (r *GormUserRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// FindByID finds a user by ID
func (r *GormUserRepository) FindByID(ctx context.Context, id uint64) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmail finds a user by email
func (r *GormUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByUsername finds a user by username
func (r *GormUserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *GormUserRepository) FindByResetToken(ctx context.Context, digest string, now time.Time) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Where("reset_password_token = ? AND reset_password_expire > ?", digest, now).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *GormUserRepository) FindByIDs(ctx context.Context, ids []uint64) (map[uint64]models.User, error) {
	result := make(map[uint64]models.User, len(ids))
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return result, nil
	}

	var users []models.User
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	for _, u := range users {
		result[u.ID] = u
	}
	return result, nil
}

func (r *GormUserRepository) List(ctx context.Context, filter UserFilter) ([]models.User, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.User{}).
		Scopes(database.Search(filter.Search, "users.username", "users.email"))

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []models.User
	err := query.
		Scopes(
			database.OrderBy(filter.Sort, userSortColumns, "users.created_at DESC", "users.id"),
			database.Paginate(filter.Pagination),
		).
		Find(&users).Error
	if err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

// Update updates a user
func (r *GormUserRepository) Update(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

// Delete removes the user, the projects they created (with everything in
// them), their memberships, notifications, invitations and personal tasks.
// Tasks assigned to them elsewhere are unassigned.
func (r *GormUserRepository) Delete(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var projectIDs []uint64
		if err := tx.Model(&models.Project{}).Where("created_by = ?", id).Pluck("id", &projectIDs).Error; err != nil {
			return fmt.Errorf("list owned projects: %w", err)
		}
		for _, projectID := range projectIDs {
			if err := deleteProjectTx(tx, projectID); err != nil {
				return err
			}
		}

		if err := tx.Where("user_id = ?", id).Delete(&models.ProjectMember{}).Error; err != nil {
			return fmt.Errorf("delete memberships: %w", err)
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.Notification{}).Error; err != nil {
			return fmt.Errorf("delete notifications: %w", err)
		}
		if err := tx.Where("sender_id = ? OR recipient_id = ?", id, id).Delete(&models.Invitation{}).Error; err != nil {
			return fmt.Errorf("delete invitations: %w", err)
		}
		if err := tx.Where("created_by = ? AND project_id IS NULL", id).Delete(&models.Task{}).Error; err != nil {
			return fmt.Errorf("delete personal tasks: %w", err)
		}
		if err := tx.Model(&models.Task{}).Where("assigned_to = ?", id).Update("assigned_to", nil).Error; err != nil {
			return fmt.Errorf("unassign tasks: %w", err)
		}

		return tx.Delete(&models.User{}, id).Error
	})
}

func uniqueIDs(ids []uint64) []uint64 {
	seen := make(map[uint64]struct{}, len(ids))
	result := make([]uint64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		result = append(result, id)
	}
	return result
}

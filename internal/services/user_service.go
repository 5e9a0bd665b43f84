package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yukikurage/project-tracker-api/internal/constants"
	"github.com/yukikurage/project-tracker-api/internal/models"
	"github.com/yukikurage/project-tracker-api/internal/repository"
	"gorm.io/gorm"
)

var ErrEmailImmutable = errors.New("email cannot be updated")

// UserService manages the authenticated user's own account.
type UserService struct {
	userRepo    repository.UserRepository
	projectRepo repository.ProjectRepository
	blocklist   repository.InvalidTokenRepository
	now         func() time.Time
}

func NewUserService(userRepo repository.UserRepository, projectRepo repository.ProjectRepository, blocklist repository.InvalidTokenRepository) *UserService {
	return &UserService{
		userRepo:    userRepo,
		projectRepo: projectRepo,
		blocklist:   blocklist,
		now:         time.Now,
	}
}

// GetMe returns the user with the projects they belong to.
func (s *UserService) GetMe(ctx context.Context, userID uint64) (*models.User, []models.Project, error) {
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	projects, err := s.projectRepo.ListByMember(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list projects: %w", err)
	}

	return user, projects, nil
}

// UpdateMeInput holds the patchable profile fields.
type UpdateMeInput struct {
	Username      *string
	Bio           *string
	EmailProvided bool
}

func (s *UserService) UpdateMe(ctx context.Context, userID uint64, input UpdateMeInput) (*models.User, error) {
	if input.EmailProvided {
		return nil, ErrEmailImmutable
	}

	user, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.Username != nil {
		username := strings.TrimSpace(*input.Username)
		if username != user.Username {
			existing, err := s.userRepo.FindByUsername(ctx, username)
			if err == nil && existing.ID != user.ID {
				return nil, ErrUsernameTaken
			}
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("failed to check username: %w", err)
			}
			user.Username = username
		}
	}
	if input.Bio != nil {
		user.Bio = *input.Bio
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

// DeleteMe removes the account and blocks the token used for the request.
func (s *UserService) DeleteMe(ctx context.Context, userID uint64, token string) error {
	if _, err := s.findUser(ctx, userID); err != nil {
		return err
	}

	if err := s.blocklist.Add(ctx, token, s.now().Add(constants.DeletedAccountBlockTTL)); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}

	if err := s.userRepo.Delete(ctx, userID); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

func (s *UserService) ListUsers(ctx context.Context, filter repository.UserFilter) ([]models.User, int64, error) {
	users, total, err := s.userRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	return users, total, nil
}

func (s *UserService) findUser(ctx context.Context, userID uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

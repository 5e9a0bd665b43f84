package dto

import (
	"time"

	"github.com/yukikurage/project-tracker-api/internal/models"
	"github.com/yukikurage/project-tracker-api/internal/utils"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID       uint64 `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// ProfileDTO is the authenticated user's own view of their account.
type ProfileDTO struct {
	ID        uint64              `json:"id"`
	Username  string              `json:"username"`
	Email     string              `json:"email"`
	Role      models.UserRole     `json:"role"`
	Bio       string              `json:"bio"`
	CreatedAt time.Time           `json:"created_at"`
	Projects  []ProjectSummaryDTO `json:"projects"`
}

// AuthResponse is returned by register.
type AuthResponse struct {
	User  UserDTO `json:"user"`
	Token string  `json:"token"`
}

// TokenResponse is returned by login.
type TokenResponse struct {
	Token string `json:"token"`
}

// UserListResponse is a page of users for administrators.
type UserListResponse struct {
	Users []ProfileDTO `json:"users"`
	utils.PaginationResponse
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
	}
}

// ToProfileDTO converts a user and the projects they belong to.
func ToProfileDTO(user models.User, projects []models.Project) ProfileDTO {
	summaries := make([]ProjectSummaryDTO, len(projects))
	for i, p := range projects {
		summaries[i] = ToProjectSummaryDTO(p)
	}

	return ProfileDTO{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		Role:      user.Role,
		Bio:       user.Bio,
		CreatedAt: user.CreatedAt,
		Projects:  summaries,
	}
}

func lookupUser(users map[uint64]models.User, id uint64) *UserDTO {
	u, ok := users[id]
	if !ok {
		return nil
	}
	d := ToUserDTO(u)
	return &d
}

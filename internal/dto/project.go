package dto

import (
	"time"

	"github.com/yukikurage/project-tracker-api/internal/models"
	"github.com/yukikurage/project-tracker-api/internal/utils"
)

// ProjectSummaryDTO is the minimal project reference embedded in other payloads.
type ProjectSummaryDTO struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}

// ProjectDTO represents a project in API responses
type ProjectDTO struct {
	ID          uint64    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Completed   bool      `json:"completed"`
	CreatedBy   uint64    `json:"created_by"`
	Creator     *UserDTO  `json:"creator,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ProjectDetailDTO is a project with its members and tasks resolved.
type ProjectDetailDTO struct {
	ProjectDTO
	Members []UserDTO `json:"members"`
	Tasks   []TaskDTO `json:"tasks"`
}

// ProjectListResponse represents a paginated list of projects
type ProjectListResponse struct {
	Projects []ProjectDTO `json:"projects"`
	utils.PaginationResponse
}

// MemberListResponse lists the members of a project.
type MemberListResponse struct {
	Members []UserDTO `json:"members"`
}

func ToProjectSummaryDTO(p models.Project) ProjectSummaryDTO {
	return ProjectSummaryDTO{ID: p.ID, Name: p.Name}
}

// ToProjectDTO converts a project, resolving its creator from users when present.
func ToProjectDTO(p models.Project, users map[uint64]models.User) ProjectDTO {
	return ProjectDTO{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Completed:   p.Completed,
		CreatedBy:   p.CreatedBy,
		Creator:     lookupUser(users, p.CreatedBy),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func ToProjectDetailDTO(p models.Project, members []models.User, tasks []models.Task, users map[uint64]models.User) ProjectDetailDTO {
	return ProjectDetailDTO{
		ProjectDTO: ToProjectDTO(p, users),
		Members:    ToUserDTOs(members),
		Tasks:      ToTaskDTOs(tasks, users, nil),
	}
}

func ToProjectListResponse(projects []models.Project, users map[uint64]models.User, params utils.PaginationParams, total int64) ProjectListResponse {
	items := make([]ProjectDTO, len(projects))
	for i, p := range projects {
		items[i] = ToProjectDTO(p, users)
	}
	return ProjectListResponse{
		Projects:           items,
		PaginationResponse: utils.NewPaginationResponse(params, total),
	}
}

func ToUserDTOs(users []models.User) []UserDTO {
	out := make([]UserDTO, len(users))
	for i, u := range users {
		out[i] = ToUserDTO(u)
	}
	return out
}

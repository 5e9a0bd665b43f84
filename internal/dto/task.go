package dto

import (
	"time"

	"github.com/yukikurage/project-tracker-api/internal/models"
	"github.com/yukikurage/project-tracker-api/internal/utils"
)

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID          uint64              `json:"id"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Status      models.TaskStatus   `json:"status"`
	Priority    models.TaskPriority `json:"priority"`
	DueDate     *time.Time          `json:"due_date"`
	CreatedBy   uint64              `json:"created_by"`
	AssignedTo  *uint64             `json:"assigned_to"`
	ProjectID   *uint64             `json:"project_id"`
	Creator     *UserDTO            `json:"creator,omitempty"`
	Assignee    *UserDTO            `json:"assignee,omitempty"`
	Project     *ProjectSummaryDTO  `json:"project,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// TaskListResponse represents a paginated list of tasks
type TaskListResponse struct {
	Tasks []TaskDTO `json:"tasks"`
	utils.PaginationResponse
}

// GeneratedTaskDTO is an unsaved task draft produced from free text.
type GeneratedTaskDTO struct {
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Priority    models.TaskPriority `json:"priority"`
	DueDate     *time.Time          `json:"due_date"`
}

// ToTaskDTO converts a Task model, resolving creator, assignee and project
// from the lookup maps when present.
func ToTaskDTO(task models.Task, users map[uint64]models.User, projects map[uint64]models.Project) TaskDTO {
	dto := TaskDTO{
		ID:          task.ID,
		Name:        task.Name,
		Description: task.Description,
		Status:      task.Status,
		Priority:    task.Priority,
		DueDate:     task.DueDate,
		CreatedBy:   task.CreatedBy,
		AssignedTo:  task.AssignedTo,
		ProjectID:   task.ProjectID,
		Creator:     lookupUser(users, task.CreatedBy),
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}

	if task.AssignedTo != nil {
		dto.Assignee = lookupUser(users, *task.AssignedTo)
	}

	if task.ProjectID != nil {
		if p, ok := projects[*task.ProjectID]; ok {
			summary := ToProjectSummaryDTO(p)
			dto.Project = &summary
		}
	}

	return dto
}

func ToTaskDTOs(tasks []models.Task, users map[uint64]models.User, projects map[uint64]models.Project) []TaskDTO {
	items := make([]TaskDTO, len(tasks))
	for i, task := range tasks {
		items[i] = ToTaskDTO(task, users, projects)
	}
	return items
}

// ToTaskListResponse converts a page of tasks to TaskListResponse
func ToTaskListResponse(tasks []models.Task, users map[uint64]models.User, projects map[uint64]models.Project, params utils.PaginationParams, total int64) TaskListResponse {
	return TaskListResponse{
		Tasks:              ToTaskDTOs(tasks, users, projects),
		PaginationResponse: utils.NewPaginationResponse(params, total),
	}
}

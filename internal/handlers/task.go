package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/project-tracker-api/internal/dto"
	apierrors "github.com/yukikurage/project-tracker-api/internal/errors"
	"github.com/yukikurage/project-tracker-api/internal/middleware"
	"github.com/yukikurage/project-tracker-api/internal/models"
	"github.com/yukikurage/project-tracker-api/internal/services"
	"github.com/yukikurage/project-tracker-api/internal/utils"
)

const (
	msgTaskUpdateDenied = "You are not authorized to update this task"
	msgTaskDeleteDenied = "You are not authorized to delete this task"
)

type TaskHandler struct {
	taskService *services.TaskService
}

func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
	}
}

// ListTasks returns tasks the current user created or is assigned to.
// With project_id it returns every task of that project instead.
func (h *TaskHandler) ListTasks(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	projectID, err := utils.ParseOptionalIDQuery(c, "project_id")
	if err != nil {
		apierrors.BadRequest(c, "Invalid project_id")
		return
	}

	input := services.ListTasksInput{
		UserID:     userID,
		ProjectID:  projectID,
		Search:     c.Query("search"),
		Sort:       utils.GetSortParams(c),
		Pagination: utils.GetPaginationParams(c),
	}

	if status := c.Query("status"); status != "" {
		s := models.TaskStatus(status)
		if s != models.TaskStatusPending && s != models.TaskStatusInProgress && s != models.TaskStatusCompleted {
			apierrors.BadRequest(c, "Invalid status")
			return
		}
		input.Status = &s
	}
	if priority := c.Query("priority"); priority != "" {
		p := models.TaskPriority(priority)
		if p != models.TaskPriorityLow && p != models.TaskPriorityMedium && p != models.TaskPriorityHigh {
			apierrors.BadRequest(c, "Invalid priority")
			return
		}
		input.Priority = &p
	}

	page, err := h.taskService.ListTasks(c.Request.Context(), input)
	if err != nil {
		respondTaskError(c, err, "You are not authorized to view the tasks of this project")
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskListResponse(page.Tasks, page.Users, page.Projects, input.Pagination, page.Total))
}

// CreateTask creates a new task
func (h *TaskHandler) CreateTask(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req dto.CreateTaskRequest
	if !bindJSON(c, &req) {
		return
	}

	task, err := h.taskService.CreateTask(c.Request.Context(), services.CreateTaskInput{
		Name:        req.Name,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
		AssignedTo:  req.AssignedTo,
		ProjectID:   req.ProjectID,
		CreatorID:   userID,
	})
	if err != nil {
		respondTaskError(c, err, "You are not authorized to add tasks to this project")
		return
	}

	h.respondTask(c, http.StatusCreated, task)
}

// GetTask returns a single task. Requires RequireTaskAccess.
func (h *TaskHandler) GetTask(c *gin.Context) {
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.NotFound(c, "Task not found")
		return
	}

	h.respondTask(c, http.StatusOK, task)
}

// UpdateTask patches a task
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	taskID, err := utils.ParseIDParam(c, "id")
	if err != nil {
		apierrors.BadRequest(c, "Invalid task ID")
		return
	}

	var req dto.UpdateTaskRequest
	if !bindJSON(c, &req) {
		return
	}

	task, err := h.taskService.UpdateTask(c.Request.Context(), taskID, userID, services.UpdateTaskInput{
		Name:        req.Name,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		DueDate:     req.DueDate.Value,
		DueDateSet:  req.DueDate.Set,
	})
	if err != nil {
		respondTaskError(c, err, msgTaskUpdateDenied)
		return
	}

	h.respondTask(c, http.StatusOK, task)
}

// DeleteTask deletes a task
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	taskID, err := utils.ParseIDParam(c, "id")
	if err != nil {
		apierrors.BadRequest(c, "Invalid task ID")
		return
	}

	role, _ := middleware.GetUserRole(c)
	if err := h.taskService.DeleteTask(c.Request.Context(), taskID, userID, role == models.RoleAdmin); err != nil {
		respondTaskError(c, err, msgTaskDeleteDenied)
		return
	}

	c.JSON(http.StatusOK, messageResponse{Message: "Task deleted successfully"})
}

// UpdatePriority changes only the task priority
func (h *TaskHandler) UpdatePriority(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	taskID, err := utils.ParseIDParam(c, "id")
	if err != nil {
		apierrors.BadRequest(c, "Invalid task ID")
		return
	}

	var req dto.UpdatePriorityRequest
	if !bindJSON(c, &req) {
		return
	}

	task, err := h.taskService.UpdatePriority(c.Request.Context(), taskID, userID, req.Priority)
	if err != nil {
		respondTaskError(c, err, msgTaskUpdateDenied)
		return
	}

	h.respondTask(c, http.StatusOK, task)
}

// AssignToMember assigns a project task to a project member
func (h *TaskHandler) AssignToMember(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	taskID, err := utils.ParseIDParam(c, "id")
	if err != nil {
		apierrors.BadRequest(c, "Invalid task ID")
		return
	}

	var req dto.AssignToMemberRequest
	if !bindJSON(c, &req) {
		return
	}

	task, err := h.taskService.AssignToMember(c.Request.Context(), taskID, userID, req.MemberID)
	if err != nil {
		respondTaskError(c, err, "You are not authorized to assign this task")
		return
	}

	h.respondTask(c, http.StatusOK, task)
}

// GenerateTasks drafts tasks for a project from free text using AI
func (h *TaskHandler) GenerateTasks(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req dto.GenerateTasksRequest
	if !bindJSON(c, &req) {
		return
	}

	generated, err := h.taskService.GenerateTasks(c.Request.Context(), services.GenerateTasksInput{
		Text:      req.Text,
		ProjectID: req.ProjectID,
		UserID:    userID,
	})
	if err != nil {
		respondTaskError(c, err, "You are not authorized to add tasks to this project")
		return
	}

	drafts := make([]dto.GeneratedTaskDTO, len(generated))
	for i, t := range generated {
		drafts[i] = dto.GeneratedTaskDTO{
			Name:        t.Name,
			Description: t.Description,
			Priority:    t.Priority,
			DueDate:     t.DueDate,
		}
	}

	c.JSON(http.StatusOK, gin.H{"tasks": drafts})
}

func (h *TaskHandler) respondTask(c *gin.Context, status int, task *models.Task) {
	users, projects, err := h.taskService.Lookups(c.Request.Context(), *task)
	if err != nil {
		apierrors.InternalError(c, err)
		return
	}
	c.JSON(status, dto.ToTaskDTO(*task, users, projects))
}

// respondTaskError maps service errors. denied is the 403 message for the action.
func respondTaskError(c *gin.Context, err error, denied string) {
	switch {
	case errors.Is(err, services.ErrTaskNotFound):
		apierrors.NotFound(c, "Task not found")
	case errors.Is(err, services.ErrProjectNotFound):
		apierrors.NotFound(c, "Project not found")
	case errors.Is(err, services.ErrUserNotFound):
		apierrors.NotFound(c, "User not found")
	case errors.Is(err, services.ErrTaskAccessDenied):
		apierrors.Forbidden(c, "You are not authorized to view this task")
	case errors.Is(err, services.ErrTaskStatusOnly):
		apierrors.Forbidden(c, "You are only allowed to update the task status")
	case errors.Is(err, services.ErrTaskPermissionDenied),
		errors.Is(err, services.ErrNotProjectMember):
		apierrors.Forbidden(c, denied)
	case errors.Is(err, services.ErrTaskWithoutProject):
		apierrors.BadRequest(c, "Task does not belong to a project")
	case errors.Is(err, services.ErrAssigneeNotMember):
		apierrors.BadRequest(c, "Assignee must be a member of the project")
	case errors.Is(err, services.ErrMemberNotInProject):
		apierrors.BadRequest(c, "User is not a member of this project")
	case errors.Is(err, services.ErrAssigneeIsOwner):
		apierrors.BadRequest(c, "Cannot assign task to the project owner")
	case errors.Is(err, services.ErrPersonalTaskAssignee):
		apierrors.BadRequest(c, "Tasks without a project can only be assigned to their creator")
	case errors.Is(err, services.ErrAIServiceNotConfigured):
		apierrors.ServiceUnavailable(c, "AI service is not configured")
	case errors.Is(err, services.ErrAINoTasksGenerated),
		errors.Is(err, services.ErrAINoValidTasks):
		apierrors.BadRequest(c, "No tasks could be generated from the text")
	default:
		apierrors.InternalError(c, err)
	}
}

package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/yukikurage/project-tracker-api/internal/constants"
	"github.com/yukikurage/project-tracker-api/internal/models"
	"github.com/yukikurage/project-tracker-api/internal/repository"
	"github.com/yukikurage/project-tracker-api/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrTaskNotFound           = errors.New("task not found")
	ErrTaskAccessDenied       = errors.New("user cannot view this task")
	ErrTaskPermissionDenied   = errors.New("user does not have permission to modify this task")
	ErrTaskStatusOnly         = errors.New("assignee may only change the task status")
	ErrTaskWithoutProject     = errors.New("task does not belong to a project")
	ErrAssigneeNotMember      = errors.New("assignee is not a member of the project")
	ErrAssigneeIsOwner        = errors.New("project owner cannot be the assignee")
	ErrPersonalTaskAssignee   = errors.New("tasks without a project can only be assigned to their creator")
	ErrAIServiceNotConfigured = errors.New("AI service is not configured")
	ErrAINoTasksGenerated     = errors.New("AI did not generate any tasks")
	ErrAINoValidTasks         = errors.New("no valid tasks could be created from AI output")
)

// TaskService handles task business logic
type TaskService struct {
	taskRepo    repository.TaskRepository
	projectRepo repository.ProjectRepository
	userRepo    repository.UserRepository
	notifier    *NotificationService
	generator   TaskGenerator
}

// NewTaskService creates a new TaskService. generator may be nil.
func NewTaskService(
	taskRepo repository.TaskRepository,
	projectRepo repository.ProjectRepository,
	userRepo repository.UserRepository,
	notifier *NotificationService,
	generator TaskGenerator,
) *TaskService {
	return &TaskService{
		taskRepo:    taskRepo,
		projectRepo: projectRepo,
		userRepo:    userRepo,
		notifier:    notifier,
		generator:   generator,
	}
}

// ListTasksInput represents filters for listing tasks
type ListTasksInput struct {
	UserID     uint64
	ProjectID  *uint64
	Status     *models.TaskStatus
	Priority   *models.TaskPriority
	Search     string
	Sort       utils.SortParams
	Pagination utils.PaginationParams
}

// TaskPage is one page of tasks with referenced users and projects resolved.
type TaskPage struct {
	Tasks    []models.Task
	Users    map[uint64]models.User
	Projects map[uint64]models.Project
	Total    int64
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	Name        string
	Description string
	Status      models.TaskStatus
	Priority    models.TaskPriority
	DueDate     *time.Time
	AssignedTo  *uint64
	ProjectID   *uint64
	CreatorID   uint64
}

// UpdateTaskInput represents input for updating a task. DueDateSet with a
// nil DueDate clears the due date.
type UpdateTaskInput struct {
	Name        *string
	Description *string
	Status      *models.TaskStatus
	Priority    *models.TaskPriority
	DueDate     *time.Time
	DueDateSet  bool
}

func (in UpdateTaskInput) touchesOnlyStatus() bool {
	return in.Name == nil && in.Description == nil && in.Priority == nil && !in.DueDateSet
}

// ListTasks returns the tasks the user created or is assigned to, or every
// task of one project the user belongs to.
func (s *TaskService) ListTasks(ctx context.Context, input ListTasksInput) (*TaskPage, error) {
	if input.ProjectID != nil {
		if _, err := s.findProject(ctx, *input.ProjectID); err != nil {
			return nil, err
		}
		if err := s.ensureProjectMember(ctx, *input.ProjectID, input.UserID); err != nil {
			return nil, err
		}
	}

	tasks, total, err := s.taskRepo.List(ctx, repository.TaskFilter{
		ProjectID:  input.ProjectID,
		VisibleTo:  input.UserID,
		Status:     input.Status,
		Priority:   input.Priority,
		Search:     input.Search,
		Sort:       input.Sort,
		Pagination: input.Pagination,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	users, projects, err := s.Lookups(ctx, tasks...)
	if err != nil {
		return nil, err
	}

	return &TaskPage{Tasks: tasks, Users: users, Projects: projects, Total: total}, nil
}

// Lookups loads the users and projects referenced by tasks.
func (s *TaskService) Lookups(ctx context.Context, tasks ...models.Task) (map[uint64]models.User, map[uint64]models.Project, error) {
	userIDs := make([]uint64, 0, len(tasks)*2)
	projectIDs := make([]uint64, 0, len(tasks))
	for _, t := range tasks {
		userIDs = append(userIDs, t.CreatedBy)
		if t.AssignedTo != nil {
			userIDs = append(userIDs, *t.AssignedTo)
		}
		if t.ProjectID != nil {
			projectIDs = append(projectIDs, *t.ProjectID)
		}
	}

	users, err := s.userRepo.FindByIDs(ctx, userIDs)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load task users: %w", err)
	}
	projects, err := s.projectRepo.FindByIDs(ctx, projectIDs)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load task projects: %w", err)
	}
	return users, projects, nil
}

// GetTask returns a task visible to the user
func (s *TaskService) GetTask(ctx context.Context, taskID, userID uint64) (*models.Task, error) {
	task, err := s.findTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if task.CreatedBy == userID || task.IsAssignedTo(userID) {
		return task, nil
	}
	if task.ProjectID != nil {
		isMember, err := s.projectRepo.IsMember(ctx, *task.ProjectID, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to verify project membership: %w", err)
		}
		if isMember {
			return task, nil
		}
	}

	return nil, ErrTaskAccessDenied
}

// CreateTask validates the project and assignee, stores the task and
// notifies the assignee and the other project members.
func (s *TaskService) CreateTask(ctx context.Context, input CreateTaskInput) (*models.Task, error) {
	var project *models.Project
	if input.ProjectID != nil {
		p, err := s.findProject(ctx, *input.ProjectID)
		if err != nil {
			return nil, err
		}
		if err := s.ensureProjectMember(ctx, p.ID, input.CreatorID); err != nil {
			return nil, err
		}
		project = p
	}

	if input.AssignedTo != nil {
		if err := s.validateAssignee(ctx, project, input.CreatorID, *input.AssignedTo); err != nil {
			return nil, err
		}
	}

	if input.Status == "" {
		input.Status = models.TaskStatusPending
	}
	if input.Priority == "" {
		input.Priority = models.TaskPriorityMedium
	}

	task := &models.Task{
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		Status:      input.Status,
		Priority:    input.Priority,
		DueDate:     input.DueDate,
		CreatedBy:   input.CreatorID,
		AssignedTo:  input.AssignedTo,
		ProjectID:   input.ProjectID,
	}

	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	if task.AssignedTo != nil && *task.AssignedTo != input.CreatorID {
		s.notifier.Notify(ctx, taskAssignedMessage(task.Name), *task.AssignedTo)
	}
	if project != nil {
		memberIDs, err := s.projectRepo.ListMemberIDs(ctx, project.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to list project members: %w", err)
		}
		s.notifier.Notify(ctx, taskAddedMessage(task.Name, project.Name), without(memberIDs, input.CreatorID)...)
	}

	return task, nil
}

// UpdateTask patches a task. The creator and the project owner may change
// every field; the assignee may change only the status.
func (s *TaskService) UpdateTask(ctx context.Context, taskID, actorID uint64, input UpdateTaskInput) (*models.Task, error) {
	task, err := s.findTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	canManage, err := s.canManage(ctx, task, actorID)
	if err != nil {
		return nil, err
	}
	if !canManage {
		if !task.IsAssignedTo(actorID) {
			return nil, ErrTaskPermissionDenied
		}
		if !input.touchesOnlyStatus() {
			return nil, ErrTaskStatusOnly
		}
	}

	wasCompleted := task.Status == models.TaskStatusCompleted
	if input.Name != nil {
		task.Name = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.Status != nil {
		task.Status = *input.Status
	}
	if input.Priority != nil {
		task.Priority = *input.Priority
	}
	if input.DueDateSet {
		task.DueDate = input.DueDate
	}

	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	if !wasCompleted && task.Status == models.TaskStatusCompleted &&
		task.IsAssignedTo(actorID) && task.CreatedBy != actorID {
		s.notifyCompletion(ctx, task, actorID)
	}

	return task, nil
}

// UpdatePriority changes the priority. Creator or project owner only.
func (s *TaskService) UpdatePriority(ctx context.Context, taskID, actorID uint64, priority models.TaskPriority) (*models.Task, error) {
	task, err := s.findTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	canManage, err := s.canManage(ctx, task, actorID)
	if err != nil {
		return nil, err
	}
	if !canManage {
		return nil, ErrTaskPermissionDenied
	}

	task.Priority = priority
	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to update priority: %w", err)
	}
	return task, nil
}

// AssignToMember assigns a project task to one of the project's members
func (s *TaskService) AssignToMember(ctx context.Context, taskID, actorID, memberID uint64) (*models.Task, error) {
	task, err := s.findTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task.ProjectID == nil {
		return nil, ErrTaskWithoutProject
	}

	project, err := s.findProject(ctx, *task.ProjectID)
	if err != nil {
		return nil, err
	}
	if task.CreatedBy != actorID && !project.IsOwner(actorID) {
		return nil, ErrTaskPermissionDenied
	}

	if err := s.validateAssignee(ctx, project, actorID, memberID); err != nil {
		if errors.Is(err, ErrAssigneeNotMember) {
			return nil, ErrMemberNotInProject
		}
		return nil, err
	}

	task.AssignedTo = &memberID
	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to assign task: %w", err)
	}

	s.notifier.Notify(ctx, taskAssignedMessage(task.Name), memberID)
	return task, nil
}

// DeleteTask deletes a task if the actor is the creator, the project owner or an admin
func (s *TaskService) DeleteTask(ctx context.Context, taskID, actorID uint64, isAdmin bool) error {
	task, err := s.findTask(ctx, taskID)
	if err != nil {
		return err
	}

	if !isAdmin {
		canManage, err := s.canManage(ctx, task, actorID)
		if err != nil {
			return err
		}
		if !canManage {
			return ErrTaskPermissionDenied
		}
	}

	if err := s.taskRepo.Delete(ctx, task.ID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}

// GenerateTasksInput represents input for AI task generation
type GenerateTasksInput struct {
	Text      string
	ProjectID uint64
	UserID    uint64
}

// GenerateTasks uses AI to draft tasks for a project from free text
func (s *TaskService) GenerateTasks(ctx context.Context, input GenerateTasksInput) ([]GeneratedTask, error) {
	if s.generator == nil {
		return nil, ErrAIServiceNotConfigured
	}

	if _, err := s.findProject(ctx, input.ProjectID); err != nil {
		return nil, err
	}
	if err := s.ensureProjectMember(ctx, input.ProjectID, input.UserID); err != nil {
		return nil, err
	}

	aiTasks, err := s.generator.GenerateTasksFromText(ctx, input.Text)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tasks: %w", err)
	}

	if len(aiTasks) == 0 {
		return nil, ErrAINoTasksGenerated
	}
	if len(aiTasks) > constants.MaxAIGeneratedTasks {
		aiTasks = aiTasks[:constants.MaxAIGeneratedTasks]
	}

	validTasks := make([]GeneratedTask, 0, len(aiTasks))
	cutoff := time.Now().Add(-24 * time.Hour)
	for _, aiTask := range aiTasks {
		aiTask.Name = strings.TrimSpace(aiTask.Name)
		if utf8.RuneCountInString(aiTask.Name) < constants.MinNameLength {
			continue
		}
		aiTask.Name = truncateRunes(aiTask.Name, constants.MaxNameLength)
		aiTask.Description = truncateRunes(aiTask.Description, constants.MaxDescriptionLength)

		switch aiTask.Priority {
		case models.TaskPriorityLow, models.TaskPriorityMedium, models.TaskPriorityHigh:
		default:
			aiTask.Priority = models.TaskPriorityMedium
		}

		if aiTask.DueDate != nil && aiTask.DueDate.Before(cutoff) {
			aiTask.DueDate = nil
		}

		validTasks = append(validTasks, aiTask)
	}

	if len(validTasks) == 0 {
		return nil, ErrAINoValidTasks
	}

	return validTasks, nil
}

// validateAssignee applies the assignment rules. project is nil for personal tasks.
func (s *TaskService) validateAssignee(ctx context.Context, project *models.Project, creatorID, assigneeID uint64) error {
	if _, err := s.userRepo.FindByID(ctx, assigneeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to find assignee: %w", err)
	}

	if project == nil {
		if assigneeID != creatorID {
			return ErrPersonalTaskAssignee
		}
		return nil
	}

	if project.IsOwner(assigneeID) {
		return ErrAssigneeIsOwner
	}

	isMember, err := s.projectRepo.IsMember(ctx, project.ID, assigneeID)
	if err != nil {
		return fmt.Errorf("failed to verify assignee membership: %w", err)
	}
	if !isMember {
		return ErrAssigneeNotMember
	}
	return nil
}

// canManage reports whether actorID created the task or owns its project.
func (s *TaskService) canManage(ctx context.Context, task *models.Task, actorID uint64) (bool, error) {
	if task.CreatedBy == actorID {
		return true, nil
	}
	if task.ProjectID == nil {
		return false, nil
	}

	project, err := s.projectRepo.FindByID(ctx, *task.ProjectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to find project: %w", err)
	}
	return project.IsOwner(actorID), nil
}

func (s *TaskService) notifyCompletion(ctx context.Context, task *models.Task, actorID uint64) {
	username := "The assignee"
	if actor, err := s.userRepo.FindByID(ctx, actorID); err == nil {
		username = actor.Username
	}
	s.notifier.Notify(ctx, taskCompletedMessage(task.Name, username), task.CreatedBy)
}

func (s *TaskService) findTask(ctx context.Context, taskID uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return task, nil
}

func (s *TaskService) findProject(ctx context.Context, projectID uint64) (*models.Project, error) {
	project, err := s.projectRepo.FindByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}
	return project, nil
}

// ensureProjectMember verifies that a user belongs to a project
func (s *TaskService) ensureProjectMember(ctx context.Context, projectID, userID uint64) error {
	isMember, err := s.projectRepo.IsMember(ctx, projectID, userID)
	if err != nil {
		return fmt.Errorf("failed to verify project membership: %w", err)
	}
	if !isMember {
		return ErrNotProjectMember
	}
	return nil
}

// truncateRunes cuts s to at most limit characters without splitting a rune.
func truncateRunes(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit])
}

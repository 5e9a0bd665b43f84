package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yukikurage/project-tracker-api/internal/models"
	"github.com/yukikurage/project-tracker-api/internal/repository"
	"github.com/yukikurage/project-tracker-api/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrProjectNotFound       = errors.New("project not found")
	ErrNotProjectMember      = errors.New("user is not a member of the project")
	ErrNotProjectOwner       = errors.New("only the project owner can perform this action")
	ErrAlreadyProjectMember  = errors.New("user is already a member of the project")
	ErrInvitationAlreadySent = errors.New("a pending invitation already exists")
	ErrCannotRemoveOwner     = errors.New("project owner cannot be removed")
	ErrMemberNotInProject    = errors.New("target user is not a member of the project")
)

// ProjectService handles project business logic
type ProjectService struct {
	projectRepo    repository.ProjectRepository
	userRepo       repository.UserRepository
	taskRepo       repository.TaskRepository
	invitationRepo repository.InvitationRepository
	notifier       *NotificationService
}

// NewProjectService creates a new ProjectService
func NewProjectService(
	projectRepo repository.ProjectRepository,
	userRepo repository.UserRepository,
	taskRepo repository.TaskRepository,
	invitationRepo repository.InvitationRepository,
	notifier *NotificationService,
) *ProjectService {
	return &ProjectService{
		projectRepo:    projectRepo,
		userRepo:       userRepo,
		taskRepo:       taskRepo,
		invitationRepo: invitationRepo,
		notifier:       notifier,
	}
}

// ListProjectsInput represents filters for listing projects
type ListProjectsInput struct {
	UserID     uint64
	Search     string
	Sort       utils.SortParams
	Pagination utils.PaginationParams
}

// ProjectPage is one page of projects with their creators resolved.
type ProjectPage struct {
	Projects []models.Project
	Users    map[uint64]models.User
	Total    int64
}

// ProjectDetails is a project with its members and tasks resolved.
type ProjectDetails struct {
	Project models.Project
	Members []models.User
	Tasks   []models.Task
	Users   map[uint64]models.User
}

// CreateProjectInput represents input for creating a project
type CreateProjectInput struct {
	Name        string
	Description string
	CreatorID   uint64
}

// UpdateProjectInput represents input for updating a project
type UpdateProjectInput struct {
	Name        *string
	Description *string
	Completed   *bool
}

// ListProjects returns the projects the user belongs to
func (s *ProjectService) ListProjects(ctx context.Context, input ListProjectsInput) (*ProjectPage, error) {
	projects, total, err := s.projectRepo.List(ctx, repository.ProjectFilter{
		MemberID:   input.UserID,
		Search:     input.Search,
		Sort:       input.Sort,
		Pagination: input.Pagination,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	creatorIDs := make([]uint64, len(projects))
	for i, p := range projects {
		creatorIDs[i] = p.CreatedBy
	}
	users, err := s.userRepo.FindByIDs(ctx, creatorIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load project creators: %w", err)
	}

	return &ProjectPage{Projects: projects, Users: users, Total: total}, nil
}

// CreateProject creates a project with its creator as the first member
func (s *ProjectService) CreateProject(ctx context.Context, input CreateProjectInput) (*models.Project, error) {
	project := &models.Project{
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		CreatedBy:   input.CreatorID,
	}

	if err := s.projectRepo.Create(ctx, project); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}
	return project, nil
}

// GetProjectForMember loads a project and verifies the user belongs to it.
func (s *ProjectService) GetProjectForMember(ctx context.Context, projectID, userID uint64) (*models.Project, error) {
	project, err := s.findProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if err := s.ensureMember(ctx, project.ID, userID); err != nil {
		return nil, err
	}
	return project, nil
}

// GetDetails resolves members, tasks and every referenced user.
func (s *ProjectService) GetDetails(ctx context.Context, project *models.Project) (*ProjectDetails, error) {
	members, err := s.projectRepo.ListMembers(ctx, project.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}

	tasks, err := s.taskRepo.ListByProject(ctx, project.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list project tasks: %w", err)
	}

	ids := []uint64{project.CreatedBy}
	for _, t := range tasks {
		ids = append(ids, t.CreatedBy)
		if t.AssignedTo != nil {
			ids = append(ids, *t.AssignedTo)
		}
	}
	users, err := s.userRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load users: %w", err)
	}

	return &ProjectDetails{
		Project: *project,
		Members: members,
		Tasks:   tasks,
		Users:   users,
	}, nil
}

// UpdateProject patches a project. Only the owner may update it.
func (s *ProjectService) UpdateProject(ctx context.Context, projectID, actorID uint64, input UpdateProjectInput) (*models.Project, error) {
	project, err := s.findProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !project.IsOwner(actorID) {
		return nil, ErrNotProjectOwner
	}

	wasCompleted := project.Completed
	if input.Name != nil {
		project.Name = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		project.Description = *input.Description
	}
	if input.Completed != nil {
		project.Completed = *input.Completed
	}

	if err := s.projectRepo.Update(ctx, project); err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}

	if project.Completed && !wasCompleted {
		s.notifyMembers(ctx, project, projectCompletedMessage(project.Name), actorID)
	}

	return project, nil
}

// DeleteProject deletes a project with its tasks, memberships and invitations.
func (s *ProjectService) DeleteProject(ctx context.Context, projectID, actorID uint64) error {
	project, err := s.findProject(ctx, projectID)
	if err != nil {
		return err
	}
	if !project.IsOwner(actorID) {
		return ErrNotProjectOwner
	}

	memberIDs, err := s.projectRepo.ListMemberIDs(ctx, project.ID)
	if err != nil {
		return fmt.Errorf("failed to list members: %w", err)
	}

	if err := s.projectRepo.Delete(ctx, project.ID); err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}

	s.notifier.Notify(ctx, projectDeletedMessage(project.Name), without(memberIDs, actorID)...)
	return nil
}

// InviteMember creates a pending invitation for recipientID.
func (s *ProjectService) InviteMember(ctx context.Context, projectID, actorID, recipientID uint64) (*models.Invitation, error) {
	project, err := s.GetProjectForMember(ctx, projectID, actorID)
	if err != nil {
		return nil, err
	}

	if _, err := s.findUser(ctx, recipientID); err != nil {
		return nil, err
	}

	isMember, err := s.projectRepo.IsMember(ctx, project.ID, recipientID)
	if err != nil {
		return nil, fmt.Errorf("failed to verify membership: %w", err)
	}
	if isMember {
		return nil, ErrAlreadyProjectMember
	}

	if _, err := s.invitationRepo.FindPending(ctx, project.ID, recipientID); err == nil {
		return nil, ErrInvitationAlreadySent
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check invitations: %w", err)
	}

	invitation := &models.Invitation{
		ProjectID:   project.ID,
		SenderID:    actorID,
		RecipientID: recipientID,
		Status:      models.InvitationPending,
	}
	if err := s.invitationRepo.Create(ctx, invitation); err != nil {
		return nil, fmt.Errorf("failed to create invitation: %w", err)
	}

	sender, err := s.findUser(ctx, actorID)
	if err != nil {
		return nil, err
	}
	s.notifier.Notify(ctx, invitationReceivedMessage(sender.Username, project.Name), recipientID)

	return invitation, nil
}

// ListMembers returns the members of a project the user belongs to.
func (s *ProjectService) ListMembers(ctx context.Context, projectID, userID uint64) ([]models.User, error) {
	project, err := s.GetProjectForMember(ctx, projectID, userID)
	if err != nil {
		return nil, err
	}

	members, err := s.projectRepo.ListMembers(ctx, project.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	return members, nil
}

// RemoveMember removes memberID from the project and unassigns their tasks.
func (s *ProjectService) RemoveMember(ctx context.Context, projectID, actorID, memberID uint64) error {
	project, err := s.findProject(ctx, projectID)
	if err != nil {
		return err
	}
	if !project.IsOwner(actorID) {
		return ErrNotProjectOwner
	}

	if _, err := s.findUser(ctx, memberID); err != nil {
		return err
	}
	if project.IsOwner(memberID) {
		return ErrCannotRemoveOwner
	}

	isMember, err := s.projectRepo.IsMember(ctx, project.ID, memberID)
	if err != nil {
		return fmt.Errorf("failed to verify membership: %w", err)
	}
	if !isMember {
		return ErrMemberNotInProject
	}

	if err := s.projectRepo.RemoveMember(ctx, project.ID, memberID); err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}

	s.notifier.Notify(ctx, memberRemovedMessage(project.Name), memberID)
	return nil
}

func (s *ProjectService) notifyMembers(ctx context.Context, project *models.Project, message string, exclude ...uint64) {
	memberIDs, err := s.projectRepo.ListMemberIDs(ctx, project.ID)
	if err != nil {
		s.notifier.logger.ErrorContext(ctx, "failed to list members for notification",
			"project_id", project.ID,
			"error", err,
		)
		return
	}
	s.notifier.Notify(ctx, message, without(memberIDs, exclude...)...)
}

func (s *ProjectService) findProject(ctx context.Context, projectID uint64) (*models.Project, error) {
	project, err := s.projectRepo.FindByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}
	return project, nil
}

func (s *ProjectService) findUser(ctx context.Context, userID uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// ensureMember verifies that a user belongs to a project
func (s *ProjectService) ensureMember(ctx context.Context, projectID, userID uint64) error {
	isMember, err := s.projectRepo.IsMember(ctx, projectID, userID)
	if err != nil {
		return fmt.Errorf("failed to verify project membership: %w", err)
	}
	if !isMember {
		return ErrNotProjectMember
	}
	return nil
}

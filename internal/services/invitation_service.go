package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/yukikurage/project-tracker-api/internal/models"
	"github.com/yukikurage/project-tracker-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrInvitationNotFound      = errors.New("invitation not found")
	ErrNotInvitationRecipient  = errors.New("user is not the recipient of this invitation")
	ErrInvitationResponded     = errors.New("invitation has already been responded to")
	ErrInvalidInvitationStatus = errors.New("invitation status must be accepted or rejected")
)

// InvitationService moves invitations from pending to accepted or rejected.
type InvitationService struct {
	invitationRepo repository.InvitationRepository
	projectRepo    repository.ProjectRepository
	userRepo       repository.UserRepository
	notifier       *NotificationService
}

func NewInvitationService(
	invitationRepo repository.InvitationRepository,
	projectRepo repository.ProjectRepository,
	userRepo repository.UserRepository,
	notifier *NotificationService,
) *InvitationService {
	return &InvitationService{
		invitationRepo: invitationRepo,
		projectRepo:    projectRepo,
		userRepo:       userRepo,
		notifier:       notifier,
	}
}

// InvitationList holds received invitations with senders and projects resolved.
type InvitationList struct {
	Invitations []models.Invitation
	Users       map[uint64]models.User
	Projects    map[uint64]models.Project
}

// ListReceived returns the invitations addressed to userID.
func (s *InvitationService) ListReceived(ctx context.Context, userID uint64, status *models.InvitationStatus) (*InvitationList, error) {
	invitations, err := s.invitationRepo.ListByRecipient(ctx, userID, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list invitations: %w", err)
	}

	senderIDs := make([]uint64, len(invitations))
	projectIDs := make([]uint64, len(invitations))
	for i, inv := range invitations {
		senderIDs[i] = inv.SenderID
		projectIDs[i] = inv.ProjectID
	}

	users, err := s.userRepo.FindByIDs(ctx, senderIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load senders: %w", err)
	}
	projects, err := s.projectRepo.FindByIDs(ctx, projectIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load projects: %w", err)
	}

	return &InvitationList{Invitations: invitations, Users: users, Projects: projects}, nil
}

// Respond accepts or rejects a pending invitation addressed to userID.
func (s *InvitationService) Respond(ctx context.Context, invitationID, userID uint64, status models.InvitationStatus) (*models.Invitation, error) {
	invitation, err := s.invitationRepo.FindByID(ctx, invitationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvitationNotFound
		}
		return nil, fmt.Errorf("failed to find invitation: %w", err)
	}

	if invitation.RecipientID != userID {
		return nil, ErrNotInvitationRecipient
	}
	if invitation.IsTerminal() {
		return nil, ErrInvitationResponded
	}
	if status != models.InvitationAccepted && status != models.InvitationRejected {
		return nil, ErrInvalidInvitationStatus
	}

	project, err := s.projectRepo.FindByID(ctx, invitation.ProjectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}

	recipient, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if status == models.InvitationRejected {
		if err := s.invitationRepo.Reject(ctx, invitation); err != nil {
			return nil, fmt.Errorf("failed to reject invitation: %w", err)
		}
		s.notifier.Notify(ctx, invitationRejectedMessage(recipient.Username, project.Name), invitation.SenderID)
		return invitation, nil
	}

	existingMembers, err := s.projectRepo.ListMemberIDs(ctx, project.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}

	if err := s.invitationRepo.Accept(ctx, invitation); err != nil {
		return nil, fmt.Errorf("failed to accept invitation: %w", err)
	}

	s.notifier.Notify(ctx, invitationAcceptedMessage(recipient.Username, project.Name), invitation.SenderID)
	s.notifier.Notify(ctx, memberJoinedMessage(project.Name), without(existingMembers, userID)...)

	return invitation, nil
}

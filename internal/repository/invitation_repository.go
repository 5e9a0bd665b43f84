package repository

import (
	"context"

	"github.com/yukikurage/project-tracker-api/internal/models"
	"gorm.io/gorm"
)

type GormInvitationRepository struct {
	db *gorm.DB
}

func NewInvitationRepository(db *gorm.DB) InvitationRepository {
	return &GormInvitationRepository{db: db}
}

func (r *GormInvitationRepository) Create(ctx context.Context, invitation *models.Invitation) error {
	return r.db.WithContext(ctx).Create(invitation).Error
}

func (r *GormInvitationRepository) FindByID(ctx context.Context, id uint64) (*models.Invitation, error) {
	var inv models.Invitation
	if err := r.db.WithContext(ctx).First(&inv, id).Error; err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *GormInvitationRepository) FindPending(ctx context.Context, projectID, recipientID uint64) (*models.Invitation, error) {
	var inv models.Invitation
	err := r.db.WithContext(ctx).
		Where("project_id = ? AND recipient_id = ? AND status = ?", projectID, recipientID, models.InvitationPending).
		First(&inv).Error
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *GormInvitationRepository) ListByRecipient(ctx context.Context, recipientID uint64, status *models.InvitationStatus) ([]models.Invitation, error) {
	query := r.db.WithContext(ctx).Where("recipient_id = ?", recipientID)
	if status != nil {
		query = query.Where("status = ?", *status)
	}

	var invitations []models.Invitation
	err := query.Order("created_at DESC, id DESC").Find(&invitations).Error
	return invitations, err
}

func (r *GormInvitationRepository) Reject(ctx context.Context, invitation *models.Invitation) error {
	invitation.Status = models.InvitationRejected
	return r.db.WithContext(ctx).Save(invitation).Error
}

// Accept stores the new status and the membership in one transaction.
func (r *GormInvitationRepository) Accept(ctx context.Context, invitation *models.Invitation) error {
	invitation.Status = models.InvitationAccepted
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(invitation).Error; err != nil {
			return err
		}
		return addMemberTx(tx, invitation.ProjectID, invitation.RecipientID)
	})
}

package dto

import (
	"time"

	"github.com/yukikurage/project-tracker-api/internal/models"
)

type InvitationDTO struct {
	ID          uint64                  `json:"id"`
	Status      models.InvitationStatus `json:"status"`
	ProjectID   uint64                  `json:"project_id"`
	SenderID    uint64                  `json:"sender_id"`
	RecipientID uint64                  `json:"recipient_id"`
	Project     *ProjectSummaryDTO      `json:"project,omitempty"`
	Sender      *UserDTO                `json:"sender,omitempty"`
	CreatedAt   time.Time               `json:"created_at"`
}

type InvitationListResponse struct {
	Invitations []InvitationDTO `json:"invitations"`
}

func ToInvitationDTO(inv models.Invitation, users map[uint64]models.User, projects map[uint64]models.Project) InvitationDTO {
	dto := InvitationDTO{
		ID:          inv.ID,
		Status:      inv.Status,
		ProjectID:   inv.ProjectID,
		SenderID:    inv.SenderID,
		RecipientID: inv.RecipientID,
		Sender:      lookupUser(users, inv.SenderID),
		CreatedAt:   inv.CreatedAt,
	}
	if p, ok := projects[inv.ProjectID]; ok {
		summary := ToProjectSummaryDTO(p)
		dto.Project = &summary
	}
	return dto
}

func ToInvitationListResponse(invs []models.Invitation, users map[uint64]models.User, projects map[uint64]models.Project) InvitationListResponse {
	items := make([]InvitationDTO, len(invs))
	for i, inv := range invs {
		items[i] = ToInvitationDTO(inv, users, projects)
	}
	return InvitationListResponse{Invitations: items}
}

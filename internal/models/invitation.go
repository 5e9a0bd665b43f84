package models

import "time"

type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationRejected InvitationStatus = "rejected"
)

type Invitation struct {
	ID          uint64           `gorm:"primarykey" json:"id"`
	ProjectID   uint64           `gorm:"not null;index" json:"project_id"`
	SenderID    uint64           `gorm:"not null" json:"sender_id"`
	RecipientID uint64           `gorm:"not null;index" json:"recipient_id"`
	Status      InvitationStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// IsTerminal reports whether the invitation has already been answered.
func (i *Invitation) IsTerminal() bool {
	return i.Status != InvitationPending
}

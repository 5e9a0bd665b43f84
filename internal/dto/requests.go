package dto

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/yukikurage/project-tracker-api/internal/models"
)

// OptionalTime distinguishes an absent JSON field from an explicit null.
type OptionalTime struct {
	Set   bool
	Value *time.Time
}

func (o *OptionalTime) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Value = nil
		return nil
	}

	var t time.Time
	if err := json.Unmarshal(data, &t); err != nil {
		return err
	}
	o.Value = &t
	return nil
}

// Auth

type RegisterRequest struct {
	Username string `json:"username" validate:"required,notblank,min=3,max=20"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,password"`
	Bio      string `json:"bio" validate:"max=100"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Password string `json:"password" validate:"required,password"`
}

// Users

type UpdateMeRequest struct {
	Username *string `json:"username" validate:"omitempty,notblank,min=3,max=20"`
	Bio      *string `json:"bio" validate:"omitempty,max=100"`
	Email    *string `json:"email"`
}

// Projects

type CreateProjectRequest struct {
	Name        string `json:"name" validate:"required,notblank,min=3,max=50"`
	Description string `json:"description" validate:"max=500"`
}

type UpdateProjectRequest struct {
	Name        *string `json:"name" validate:"omitempty,notblank,min=3,max=50"`
	Description *string `json:"description" validate:"omitempty,max=500"`
	Completed   *bool   `json:"completed"`
}

type InviteMemberRequest struct {
	RecipientID uint64 `json:"recipient_id" validate:"required"`
}

type RemoveMemberRequest struct {
	MemberID uint64 `json:"member_id" validate:"required"`
}

// Tasks

type CreateTaskRequest struct {
	Name        string              `json:"name" validate:"required,notblank,min=3,max=50"`
	Description string              `json:"description" validate:"max=500"`
	Status      models.TaskStatus   `json:"status" validate:"omitempty,oneof=pending in-progress completed"`
	Priority    models.TaskPriority `json:"priority" validate:"omitempty,oneof=low medium high"`
	DueDate     *time.Time          `json:"due_date"`
	AssignedTo  *uint64             `json:"assigned_to" validate:"omitempty,gt=0"`
	ProjectID   *uint64             `json:"project_id" validate:"omitempty,gt=0"`
}

type UpdateTaskRequest struct {
	Name        *string              `json:"name" validate:"omitempty,notblank,min=3,max=50"`
	Description *string              `json:"description" validate:"omitempty,max=500"`
	Status      *models.TaskStatus   `json:"status" validate:"omitempty,oneof=pending in-progress completed"`
	Priority    *models.TaskPriority `json:"priority" validate:"omitempty,oneof=low medium high"`
	DueDate     OptionalTime         `json:"due_date"`
}

type UpdatePriorityRequest struct {
	Priority models.TaskPriority `json:"priority" validate:"required,oneof=low medium high"`
}

type AssignToMemberRequest struct {
	MemberID uint64 `json:"member_id" validate:"required"`
}

type GenerateTasksRequest struct {
	Text      string `json:"text" validate:"required,notblank,max=4000"`
	ProjectID uint64 `json:"project_id" validate:"required"`
}

// Invitations

type RespondInvitationRequest struct {
	Status models.InvitationStatus `json:"status" validate:"required"`
}

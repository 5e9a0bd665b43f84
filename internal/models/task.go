package models

import (
	"time"

	"gorm.io/gorm"
)

type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in-progress"
	TaskStatusCompleted  TaskStatus = "completed"
)

type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
)

type Task struct {
	ID          uint64         `gorm:"primarykey" json:"id"`
	Name        string         `gorm:"type:varchar(50);not null" json:"name"`
	Description string         `gorm:"type:varchar(500)" json:"description"`
	Status      TaskStatus     `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	Priority    TaskPriority   `gorm:"type:varchar(10);not null;default:'medium'" json:"priority"`
	DueDate     *time.Time     `json:"due_date"`
	CreatedBy   uint64         `gorm:"not null;index" json:"created_by"`
	AssignedTo  *uint64        `gorm:"index" json:"assigned_to"`
	ProjectID   *uint64        `gorm:"index" json:"project_id"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// IsAssignedTo reports whether the task is currently assigned to userID.
func (t *Task) IsAssignedTo(userID uint64) bool {
	return t.AssignedTo != nil && *t.AssignedTo == userID
}

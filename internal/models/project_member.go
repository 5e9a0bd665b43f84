package models

import "time"

type ProjectMember struct {
	ProjectID uint64    `gorm:"primarykey" json:"project_id"`
	UserID    uint64    `gorm:"primarykey;index" json:"user_id"`
	JoinedAt  time.Time `json:"joined_at"`
}

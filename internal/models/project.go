package models

import (
	"time"

	"gorm.io/gorm"
)

type Project struct {
	ID          uint64         `gorm:"primarykey" json:"id"`
	Name        string         `gorm:"type:varchar(50);not null" json:"name"`
	Description string         `gorm:"type:varchar(500)" json:"description"`
	CreatedBy   uint64         `gorm:"not null;index" json:"created_by"`
	Completed   bool           `gorm:"not null;default:false" json:"completed"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// IsOwner reports whether userID created the project.
func (p *Project) IsOwner(userID uint64) bool {
	return p.CreatedBy == userID
}

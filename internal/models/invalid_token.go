package models

import "time"

// InvalidToken is a revoked bearer token kept until it would have expired.
type InvalidToken struct {
	ID        uint64    `gorm:"primarykey" json:"id"`
	Token     string    `gorm:"type:varchar(512);not null;index" json:"-"`
	ExpiresAt time.Time `gorm:"not null;index" json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

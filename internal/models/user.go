package models

import "time"

type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
)

type User struct {
	ID                  uint64     `gorm:"primarykey" json:"id"`
	Username            string     `gorm:"type:varchar(20);uniqueIndex;not null" json:"username"`
	Email               string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash        string     `gorm:"type:varchar(255);not null" json:"-"`
	Role                UserRole   `gorm:"type:varchar(20);not null;default:'user'" json:"role"`
	Bio                 string     `gorm:"type:varchar(100)" json:"bio"`
	ResetPasswordToken  *string    `gorm:"type:varchar(64);index" json:"-"`
	ResetPasswordExpire *time.Time `json:"-"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

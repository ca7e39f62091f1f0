package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const RoleAdmin = "admin"

// User is an admin allowed to manage the profiler
type User struct {
	ID           uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	Email        string     `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string     `gorm:"not null" json:"-"`
	Name         string     `json:"name"`
	Role         string     `gorm:"default:'admin'" json:"role"`
	CreatedAt    time.Time  `json:"created_at"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Role == "" {
		u.Role = RoleAdmin
	}

	return nil
}

func (User) TableName() string {
	return "admin_users"
}

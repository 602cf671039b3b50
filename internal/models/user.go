package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID                 uuid.UUID  `gorm:"type:char(36);primaryKey" json:"id"`
	Email              string     `gorm:"uniqueIndex;size:255;not null" json:"email"`
	FullName           string     `gorm:"size:255" json:"full_name"`
	Phone              string     `gorm:"size:20" json:"phone"`
	PasswordHash       string     `gorm:"size:255;not null" json:"-"`
	IsActive           bool       `gorm:"default:false" json:"is_active"`
	IsSuperuser        bool       `gorm:"default:false" json:"is_superuser"`
	SystemRank         *int       `json:"system_rank"`
	CreatedAt          time.Time  `json:"created_at"`
	RoleAssignmentTime *time.Time `json:"role_assignment_time"`
	LastLogin          *time.Time `json:"last_login"`
	LastLogout         *time.Time `json:"last_logout"`
}

package models

import (
	"time"

	"github.com/google/uuid"
)

// Assignment grants a user one role inside one project. The unique index on
// (user_id, project_id) keeps it to a single role per pair.
type Assignment struct {
	ID        uuid.UUID `gorm:"type:char(36);primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:char(36);not null;uniqueIndex:idx_user_project" json:"user_id"`
	ProjectID uuid.UUID `gorm:"type:char(36);not null;uniqueIndex:idx_user_project;index" json:"project_id"`
	RoleID    uuid.UUID `gorm:"type:char(36);not null;index" json:"role_id"`
	CreatedAt time.Time `json:"created_at"`

	Role *Role `gorm:"foreignKey:RoleID" json:"role,omitempty"`
}

func (Assignment) TableName() string { return "user_project_roles" }

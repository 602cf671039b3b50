package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type AuditLog struct {
	ID         int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	ProjectID  *uuid.UUID     `gorm:"type:char(36);index" json:"project_id"`
	ActorID    uuid.UUID      `gorm:"type:char(36);index" json:"actor_id"`
	ActorEmail string         `gorm:"size:255" json:"actor_email"`
	Action     string         `gorm:"size:200;not null" json:"action"` // e.g. "request.approve"
	TargetType string         `gorm:"size:100" json:"target_type"`
	TargetID   string         `gorm:"size:64;index" json:"target_id"`
	Metadata   datatypes.JSON `json:"metadata"`
	IP         string         `gorm:"size:64" json:"ip"`
	UserAgent  string         `gorm:"size:255" json:"user_agent"`
	CreatedAt  time.Time      `json:"created_at"`
}

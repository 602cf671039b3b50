package models

import (
	"time"

	"github.com/google/uuid"
)

type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestApproved RequestStatus = "approved"
	RequestRejected RequestStatus = "rejected"
)

// Terminal reports whether no further transition is allowed.
func (s RequestStatus) Terminal() bool {
	return s == RequestApproved || s == RequestRejected
}

// Request asks for RoleID inside ProjectID on behalf of RequesterID.
type Request struct {
	ID              uuid.UUID     `gorm:"type:char(36);primaryKey" json:"id"`
	ProjectID       uuid.UUID     `gorm:"type:char(36);not null;index" json:"project_id"`
	RoleID          uuid.UUID     `gorm:"type:char(36);not null;index" json:"role_id"`
	RequesterID     uuid.UUID     `gorm:"type:char(36);not null;index" json:"requester_id"`
	ApproverID      *uuid.UUID    `gorm:"type:char(36)" json:"approver_id"`
	Status          RequestStatus `gorm:"size:16;not null;default:pending;index" json:"status"`
	RequestMessage  string        `gorm:"type:text" json:"request_message"`
	ResponseMessage string        `gorm:"type:text" json:"response_message"`
	CreatedAt       time.Time     `gorm:"autoCreateTime:false" json:"created_at"`
	UpdatedAt       *time.Time    `gorm:"autoUpdateTime:false" json:"updated_at"`
}

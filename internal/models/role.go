package models

import "github.com/google/uuid"

// Role is a global catalog entry. Lower Rank means more privilege.
type Role struct {
	ID          uuid.UUID `gorm:"type:char(36);primaryKey" json:"id"`
	Name        string    `gorm:"size:200;uniqueIndex;not null" json:"name"`
	Rank        int       `gorm:"not null;index" json:"rank"`
	Description string    `gorm:"type:text" json:"description"`
}

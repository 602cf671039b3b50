package models

import "github.com/google/uuid"

// SystemTier is a named global privilege tier. Assigning a tier to a user
// copies RankTotal into User.SystemRank.
type SystemTier struct {
	ID          uuid.UUID `gorm:"type:char(36);primaryKey" json:"id"`
	Name        string    `gorm:"size:200" json:"name"`
	RankTotal   int       `gorm:"not null" json:"rank_total"`
	Description string    `gorm:"type:text" json:"description"`
}

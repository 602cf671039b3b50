package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// newID fills an empty UUID primary key before insert.
func newID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

func (u *User) BeforeCreate(*gorm.DB) error       { newID(&u.ID); return nil }
func (r *Role) BeforeCreate(*gorm.DB) error       { newID(&r.ID); return nil }
func (p *Project) BeforeCreate(*gorm.DB) error    { newID(&p.ID); return nil }
func (a *Assignment) BeforeCreate(*gorm.DB) error { newID(&a.ID); return nil }
func (r *Request) BeforeCreate(*gorm.DB) error    { newID(&r.ID); return nil }
func (s *SystemTier) BeforeCreate(*gorm.DB) error { newID(&s.ID); return nil }

// All lists every model for AutoMigrate.
func All() []any {
	return []any{
		&User{},
		&SystemTier{},
		&Role{},
		&Project{},
		&Assignment{},
		&Request{},
		&AuditLog{},
	}
}

// Package roles manages the global role catalog.
package roles

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"projecthub/internal/apperr"
	"projecthub/internal/audit"
	"projecthub/internal/models"
	"projecthub/internal/validate"
)

type CreateInput struct {
	Name        string `json:"name" validate:"required,max=200"`
	Rank        int    `json:"rank" validate:"min=1"`
	Description string `json:"description"`
}

// UpdateInput changes only the fields that are set.
type UpdateInput struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=200"`
	Rank        *int    `json:"rank" validate:"omitempty,min=1"`
	Description *string `json:"description"`
}

type Service struct {
	db  *gorm.DB
	log *logrus.Logger
}

func NewService(db *gorm.DB, log *logrus.Logger) *Service {
	return &Service{db: db, log: log}
}

func (s *Service) List(ctx context.Context, offset, limit int) ([]models.Role, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	var total int64
	if err := s.db.WithContext(ctx).Model(&models.Role{}).Count(&total).Error; err != nil {
		return nil, 0, apperr.Internal(err, "count roles")
	}
	var out []models.Role
	err := s.db.WithContext(ctx).Order("roles.rank ASC, name ASC").Offset(offset).Limit(limit).Find(&out).Error
	if err != nil {
		return nil, 0, apperr.Internal(err, "list roles")
	}
	return out, total, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.Role, error) {
	var role models.Role
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&role).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("role not found")
	}
	if err != nil {
		return nil, apperr.Internal(err, "load role")
	}
	return &role, nil
}

func (s *Service) Create(ctx context.Context, actor *models.User, in CreateInput) (*models.Role, error) {
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	if err := s.nameFree(ctx, in.Name, uuid.Nil); err != nil {
		return nil, err
	}

	role := &models.Role{Name: in.Name, Rank: in.Rank, Description: in.Description}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(role).Error; err != nil {
			return err
		}
		return audit.Record(tx, audit.Entry{
			Actor:      actor,
			Action:     "role.create",
			TargetType: "role",
			TargetID:   role.ID.String(),
			Metadata:   map[string]any{"name": role.Name, "rank": role.Rank},
		})
	})
	if err != nil {
		return nil, translate(err, "create role")
	}
	s.log.WithFields(logrus.Fields{"role": role.Name, "rank": role.Rank}).Info("role created")
	return role, nil
}

func (s *Service) Update(ctx context.Context, actor *models.User, id uuid.UUID, in UpdateInput) (*models.Role, error) {
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	role, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if in.Name != nil && *in.Name != role.Name {
		if err := s.nameFree(ctx, *in.Name, role.ID); err != nil {
			return nil, err
		}
		updates["name"] = *in.Name
		role.Name = *in.Name
	}
	if in.Rank != nil {
		updates["rank"] = *in.Rank
		role.Rank = *in.Rank
	}
	if in.Description != nil {
		updates["description"] = *in.Description
		role.Description = *in.Description
	}
	if len(updates) == 0 {
		return role, nil
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Role{}).Where("id = ?", role.ID).Updates(updates).Error; err != nil {
			return err
		}
		return audit.Record(tx, audit.Entry{
			Actor:      actor,
			Action:     "role.update",
			TargetType: "role",
			TargetID:   role.ID.String(),
			Metadata:   updates,
		})
	})
	if err != nil {
		return nil, translate(err, "update role")
	}
	return role, nil
}

// Delete removes a role that no assignment or pending request refers to.
func (s *Service) Delete(ctx context.Context, actor *models.User, id uuid.UUID) error {
	role, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	var used int64
	if err := s.db.WithContext(ctx).Model(&models.Assignment{}).Where("role_id = ?", id).Count(&used).Error; err != nil {
		return apperr.Internal(err, "check role usage")
	}
	if used > 0 {
		return apperr.Conflict("role is assigned to %d user(s)", used)
	}
	if err := s.db.WithContext(ctx).Model(&models.Request{}).
		Where("role_id = ? AND status = ?", id, models.RequestPending).Count(&used).Error; err != nil {
		return apperr.Internal(err, "check role usage")
	}
	if used > 0 {
		return apperr.Conflict("role has %d pending request(s)", used)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.Role{}, "id = ?", id).Error; err != nil {
			return err
		}
		return audit.Record(tx, audit.Entry{
			Actor:      actor,
			Action:     "role.delete",
			TargetType: "role",
			TargetID:   id.String(),
			Metadata:   map[string]any{"name": role.Name},
		})
	})
	if err != nil {
		return apperr.Internal(err, "delete role")
	}
	s.log.WithField("role", role.Name).Info("role deleted")
	return nil
}

func (s *Service) nameFree(ctx context.Context, name string, except uuid.UUID) error {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.Role{}).
		Where("name = ? AND id <> ?", name, except).Count(&n).Error; err != nil {
		return apperr.Internal(err, "check role name")
	}
	if n > 0 {
		return apperr.Conflict("role %q already exists", name)
	}
	return nil
}

func translate(err error, op string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperr.Conflict("role name already exists")
	}
	return apperr.Internal(err, "%s", op)
}

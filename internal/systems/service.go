// Package systems manages system tiers, the source of users' global
// system rank.
package systems

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

type Input struct {
	Name        string `json:"name" validate:"required,max=200"`
	RankTotal   int    `json:"rank_total" validate:"min=1"`
	Description string `json:"description"`
}

type Service struct {
	db  *gorm.DB
	log *logrus.Logger
}

func NewService(db *gorm.DB, log *logrus.Logger) *Service {
	return &Service{db: db, log: log}
}

func (s *Service) List(ctx context.Context, offset, limit int) ([]models.SystemTier, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	var total int64
	if err := s.db.WithContext(ctx).Model(&models.SystemTier{}).Count(&total).Error; err != nil {
		return nil, 0, apperr.Internal(err, "count system tiers")
	}
	var out []models.SystemTier
	if err := s.db.WithContext(ctx).Order("rank_total ASC").Offset(offset).Limit(limit).Find(&out).Error; err != nil {
		return nil, 0, apperr.Internal(err, "list system tiers")
	}
	return out, total, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.SystemTier, error) {
	var tier models.SystemTier
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&tier).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("system tier not found")
	}
	if err != nil {
		return nil, apperr.Internal(err, "load system tier")
	}
	return &tier, nil
}

func (s *Service) Create(ctx context.Context, actor *models.User, in Input) (*models.SystemTier, error) {
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	tier := &models.SystemTier{Name: in.Name, RankTotal: in.RankTotal, Description: in.Description}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(tier).Error; err != nil {
			return err
		}
		return s.record(tx, actor, "system_tier.create", tier)
	})
	if err != nil {
		return nil, apperr.Internal(err, "create system tier")
	}
	return tier, nil
}

// Update replaces the tier's fields. Users already holding the tier keep the
// rank they were given.
func (s *Service) Update(ctx context.Context, actor *models.User, id uuid.UUID, in Input) (*models.SystemTier, error) {
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	tier, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	tier.Name, tier.RankTotal, tier.Description = in.Name, in.RankTotal, in.Description

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(tier).Error; err != nil {
			return err
		}
		return s.record(tx, actor, "system_tier.update", tier)
	})
	if err != nil {
		return nil, apperr.Internal(err, "update system tier")
	}
	return tier, nil
}

func (s *Service) Delete(ctx context.Context, actor *models.User, id uuid.UUID) error {
	tier, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.SystemTier{}, "id = ?", id).Error; err != nil {
			return err
		}
		return s.record(tx, actor, "system_tier.delete", tier)
	})
	if err != nil {
		return apperr.Internal(err, "delete system tier")
	}
	s.log.WithField("tier", tier.Name).Info("system tier deleted")
	return nil
}

func (s *Service) record(tx *gorm.DB, actor *models.User, action string, tier *models.SystemTier) error {
	return audit.Record(tx, audit.Entry{
		Actor:      actor,
		Action:     action,
		TargetType: "system_tier",
		TargetID:   tier.ID.String(),
		Metadata:   map[string]any{"name": tier.Name, "rank_total": tier.RankTotal},
	})
}

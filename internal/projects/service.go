// Package projects stores the projects that roles are granted in.
package projects

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"projecthub/internal/apperr"
	"projecthub/internal/assignments"
	"projecthub/internal/audit"
	"projecthub/internal/models"
	"projecthub/internal/rbac"
	"projecthub/internal/validate"
)

// Input carries every editable project field. Values are stored as given.
type Input struct {
	NameVI     string `json:"name_vi" validate:"required,max=255"`
	NameEN     string `json:"name_en" validate:"required,max=255"`
	AddressVI  string `json:"address_vi" validate:"max=255"`
	AddressEN  string `json:"address_en" validate:"max=255"`
	TypeVI     string `json:"type_vi" validate:"max=255"`
	TypeEN     string `json:"type_en" validate:"max=255"`
	InvestorVI string `json:"investor_vi" validate:"max=255"`
	InvestorEN string `json:"investor_en" validate:"max=255"`
	Picture    string `json:"picture" validate:"max=255"`
}

func (in Input) apply(p *models.Project) {
	p.NameVI, p.NameEN = in.NameVI, in.NameEN
	p.AddressVI, p.AddressEN = in.AddressVI, in.AddressEN
	p.TypeVI, p.TypeEN = in.TypeVI, in.TypeEN
	p.InvestorVI, p.InvestorEN = in.InvestorVI, in.InvestorEN
	p.Picture = in.Picture
}

// View is a project together with the caller's rank in it. Rank is nil when
// the caller holds no role there.
type View struct {
	models.Project
	Rank *int `json:"rank"`
}

type Service struct {
	db       *gorm.DB
	resolver *rbac.Resolver
	store    assignments.Store
	log      *logrus.Logger
}

func NewService(db *gorm.DB, resolver *rbac.Resolver, log *logrus.Logger) *Service {
	return &Service{db: db, resolver: resolver, log: log}
}

func (s *Service) List(ctx context.Context, actor *models.User, offset, limit int) ([]View, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	var total int64
	if err := s.db.WithContext(ctx).Model(&models.Project{}).Count(&total).Error; err != nil {
		return nil, 0, apperr.Internal(err, "count projects")
	}
	var rows []models.Project
	if err := s.db.WithContext(ctx).Order("name_en ASC").Offset(offset).Limit(limit).Find(&rows).Error; err != nil {
		return nil, 0, apperr.Internal(err, "list projects")
	}

	ids := make([]uuid.UUID, len(rows))
	for i, p := range rows {
		ids[i] = p.ID
	}
	ranks, err := s.resolver.RanksByProject(ctx, actor, ids)
	if err != nil {
		return nil, 0, err
	}

	out := make([]View, len(rows))
	for i, p := range rows {
		out[i] = View{Project: p}
		if r, ok := ranks[p.ID]; ok {
			out[i].Rank = &r
		}
	}
	return out, total, nil
}

func (s *Service) Get(ctx context.Context, actor *models.User, id uuid.UUID) (*View, error) {
	p, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	ranks, err := s.resolver.RanksByProject(ctx, actor, []uuid.UUID{id})
	if err != nil {
		return nil, err
	}
	v := &View{Project: *p}
	if r, ok := ranks[id]; ok {
		v.Rank = &r
	}
	return v, nil
}

func (s *Service) Create(ctx context.Context, actor *models.User, in Input) (*models.Project, error) {
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	p := &models.Project{}
	in.apply(p)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(p).Error; err != nil {
			return err
		}
		return audit.Record(tx, audit.Entry{
			ProjectID:  &p.ID,
			Actor:      actor,
			Action:     "project.create",
			TargetType: "project",
			TargetID:   p.ID.String(),
			Metadata:   map[string]any{"name_en": p.NameEN},
		})
	})
	if err != nil {
		return nil, apperr.Internal(err, "create project")
	}
	s.log.WithField("project_id", p.ID).Info("project created")
	return p, nil
}

func (s *Service) Update(ctx context.Context, actor *models.User, id uuid.UUID, in Input) (*models.Project, error) {
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	p, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	in.apply(p)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(p).Error; err != nil {
			return err
		}
		return audit.Record(tx, audit.Entry{
			ProjectID:  &p.ID,
			Actor:      actor,
			Action:     "project.update",
			TargetType: "project",
			TargetID:   p.ID.String(),
		})
	})
	if err != nil {
		return nil, apperr.Internal(err, "update project")
	}
	return p, nil
}

// Delete removes the project along with its assignments and requests.
func (s *Service) Delete(ctx context.Context, actor *models.User, id uuid.UUID) error {
	p, err := s.load(ctx, id)
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.store.DeleteByProject(tx, id); err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", id).Delete(&models.Request{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.Project{}, "id = ?", id).Error; err != nil {
			return err
		}
		return audit.Record(tx, audit.Entry{
			ProjectID:  &id,
			Actor:      actor,
			Action:     "project.delete",
			TargetType: "project",
			TargetID:   id.String(),
			Metadata:   map[string]any{"name_en": p.NameEN},
		})
	})
	if err != nil {
		return apperr.Internal(err, "delete project")
	}
	s.log.WithField("project_id", id).Info("project deleted")
	return nil
}

func (s *Service) load(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	var p models.Project
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("project not found")
	}
	if err != nil {
		return nil, apperr.Internal(err, "load project")
	}
	return &p, nil
}

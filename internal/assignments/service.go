package assignments

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"projecthub/internal/apperr"
	"projecthub/internal/audit"
	"projecthub/internal/models"
	"projecthub/internal/observability"
	"projecthub/internal/rbac"
)

// View is an assignment joined with the names a client needs to show it.
type View struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	UserEmail   string    `json:"user_email"`
	UserName    string    `json:"user_name"`
	ProjectID   uuid.UUID `json:"project_id"`
	ProjectName string    `json:"project_name,omitempty"`
	RoleID      uuid.UUID `json:"role_id"`
	RoleName    string    `json:"role_name"`
	RoleRank    int       `json:"role_rank"`
	CreatedAt   time.Time `json:"created_at"`
}

type Service struct {
	db       *gorm.DB
	store    Store
	resolver rbac.AccessResolver
	log      *logrus.Logger
	metrics  *observability.Metrics
	now      func() time.Time
}

func NewService(db *gorm.DB, resolver rbac.AccessResolver, log *logrus.Logger, metrics *observability.Metrics, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		db:       db,
		resolver: resolver,
		log:      log,
		metrics:  metrics,
		now:      func() time.Time { return time.Now().In(loc) },
	}
}

// Assign grants roleID to userID inside projectID.
func (s *Service) Assign(ctx context.Context, actor *models.User, projectID, userID, roleID uuid.UUID) (*models.Assignment, error) {
	if err := s.projectExists(ctx, projectID); err != nil {
		return nil, err
	}
	if err := s.userExists(ctx, userID); err != nil {
		return nil, err
	}
	role, err := s.role(ctx, roleID)
	if err != nil {
		return nil, err
	}
	if err := s.checkOutranks(ctx, actor, projectID, role.Rank); err != nil {
		return nil, err
	}

	existing, err := s.store.Find(s.db.WithContext(ctx), userID, projectID)
	if err != nil {
		return nil, apperr.Internal(err, "assign role")
	}
	if existing != nil {
		return nil, apperr.Conflict("user already holds a role in this project")
	}

	var created *models.Assignment
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		a, err := s.store.Insert(tx, userID, projectID, roleID)
		if err != nil {
			return err
		}
		if err := s.store.StampUser(tx, userID, s.now()); err != nil {
			return err
		}
		created = a
		return audit.Record(tx, audit.Entry{
			ProjectID:  &projectID,
			Actor:      actor,
			Action:     "assignment.create",
			TargetType: "user",
			TargetID:   userID.String(),
			Metadata:   map[string]any{"role_id": roleID, "role": role.Name},
		})
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, apperr.Conflict("user already holds a role in this project")
	}
	if err != nil {
		return nil, apperr.Internal(err, "assign role")
	}

	created.Role = role
	s.metrics.ObserveAssignment("assign")
	s.log.WithFields(logrus.Fields{
		"actor_id":   actor.ID,
		"user_id":    userID,
		"project_id": projectID,
		"role":       role.Name,
	}).Info("role assigned")
	return created, nil
}

// Reassign moves userID from oldRoleID to newRoleID inside projectID. Both
// roles must be below the actor's rank.
func (s *Service) Reassign(ctx context.Context, actor *models.User, projectID, userID, oldRoleID, newRoleID uuid.UUID) (*models.Assignment, error) {
	existing, err := s.store.Find(s.db.WithContext(ctx), userID, projectID)
	if err != nil {
		return nil, apperr.Internal(err, "reassign role")
	}
	if existing == nil || existing.RoleID != oldRoleID {
		return nil, apperr.NotFound("assignment not found")
	}
	newRole, err := s.role(ctx, newRoleID)
	if err != nil {
		return nil, err
	}
	if err := s.checkOutranks(ctx, actor, projectID, existing.Role.Rank); err != nil {
		return nil, err
	}
	if err := s.checkOutranks(ctx, actor, projectID, newRole.Rank); err != nil {
		return nil, err
	}

	var replaced *models.Assignment
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		a, err := s.store.Replace(tx, userID, projectID, newRoleID)
		if err != nil {
			return err
		}
		if err := s.store.StampUser(tx, userID, s.now()); err != nil {
			return err
		}
		replaced = a
		return audit.Record(tx, audit.Entry{
			ProjectID:  &projectID,
			Actor:      actor,
			Action:     "assignment.update",
			TargetType: "user",
			TargetID:   userID.String(),
			Metadata: map[string]any{
				"old_role_id": oldRoleID,
				"new_role_id": newRoleID,
				"role":        newRole.Name,
			},
		})
	})
	if err != nil {
		return nil, apperr.Internal(err, "reassign role")
	}

	replaced.Role = newRole
	s.metrics.ObserveAssignment("reassign")
	s.log.WithFields(logrus.Fields{
		"actor_id":   actor.ID,
		"user_id":    userID,
		"project_id": projectID,
		"role":       newRole.Name,
	}).Info("role reassigned")
	return replaced, nil
}

// Revoke removes userID's roleID assignment from projectID.
func (s *Service) Revoke(ctx context.Context, actor *models.User, projectID, userID, roleID uuid.UUID) error {
	existing, err := s.store.Find(s.db.WithContext(ctx), userID, projectID)
	if err != nil {
		return apperr.Internal(err, "revoke role")
	}
	if existing == nil || existing.RoleID != roleID {
		return apperr.NotFound("assignment not found")
	}
	if err := s.checkOutranks(ctx, actor, projectID, existing.Role.Rank); err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		deleted, err := s.store.Delete(tx, existing.ID)
		if err != nil {
			return err
		}
		if !deleted {
			return apperr.NotFound("assignment not found")
		}
		if err := s.store.StampUser(tx, userID, s.now()); err != nil {
			return err
		}
		return audit.Record(tx, audit.Entry{
			ProjectID:  &projectID,
			Actor:      actor,
			Action:     "assignment.delete",
			TargetType: "user",
			TargetID:   userID.String(),
			Metadata:   map[string]any{"role_id": roleID, "role": existing.Role.Name},
		})
	})
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			return err
		}
		return apperr.Internal(err, "revoke role")
	}

	s.metrics.ObserveAssignment("revoke")
	s.log.WithFields(logrus.Fields{
		"actor_id":   actor.ID,
		"user_id":    userID,
		"project_id": projectID,
	}).Info("role revoked")
	return nil
}

// List returns the project's assignments visible to actor. Superusers see
// every row; others see roles at or below their own rank.
func (s *Service) List(ctx context.Context, actor *models.User, projectID uuid.UUID) ([]View, error) {
	rank, err := s.resolver.Resolve(ctx, actor, projectID)
	if err != nil {
		return nil, err
	}

	q := s.views(ctx).Where("upr.project_id = ?", projectID)
	if !actor.IsSuperuser {
		q = q.Where("r.rank >= ?", rank)
	}
	var out []View
	if err := q.Order("r.rank ASC, u.email ASC").Scan(&out).Error; err != nil {
		return nil, apperr.Internal(err, "list assignments")
	}
	return out, nil
}

// ListAll returns every assignment across projects.
func (s *Service) ListAll(ctx context.Context) ([]View, error) {
	var out []View
	if err := s.views(ctx).Order("p.name_en ASC, r.rank ASC").Scan(&out).Error; err != nil {
		return nil, apperr.Internal(err, "list assignments")
	}
	return out, nil
}

func (s *Service) views(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).
		Table("user_project_roles upr").
		Select(`upr.id AS id, upr.user_id AS user_id, u.email AS user_email, u.full_name AS user_name,
			upr.project_id AS project_id, p.name_en AS project_name,
			upr.role_id AS role_id, r.name AS role_name, r.rank AS role_rank, upr.created_at AS created_at`).
		Joins("JOIN users u ON u.id = upr.user_id").
		Joins("JOIN roles r ON r.id = upr.role_id").
		Joins("JOIN projects p ON p.id = upr.project_id")
}

// checkOutranks passes superusers and actors whose project rank is strictly
// more privileged than targetRank.
func (s *Service) checkOutranks(ctx context.Context, actor *models.User, projectID uuid.UUID, targetRank int) error {
	if actor != nil && actor.IsSuperuser {
		return nil
	}
	rank, err := s.resolver.Resolve(ctx, actor, projectID)
	if err != nil {
		return err
	}
	if !rbac.Outranks(rank, targetRank) {
		return apperr.Forbidden("can only manage roles below your own rank")
	}
	return nil
}

func (s *Service) role(ctx context.Context, id uuid.UUID) (*models.Role, error) {
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

func (s *Service) projectExists(ctx context.Context, id uuid.UUID) error {
	return exists(s.db.WithContext(ctx).Model(&models.Project{}), id, "project not found")
}

func (s *Service) userExists(ctx context.Context, id uuid.UUID) error {
	return exists(s.db.WithContext(ctx).Model(&models.User{}), id, "user not found")
}

func exists(q *gorm.DB, id uuid.UUID, msg string) error {
	var n int64
	if err := q.Where("id = ?", id).Count(&n).Error; err != nil {
		return apperr.Internal(err, "lookup")
	}
	if n == 0 {
		return apperr.NotFound(msg)
	}
	return nil
}

// Package requests implements the role request workflow: a user asks for a
// role inside a project and a higher ranked member approves or rejects it.
package requests

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"projecthub/internal/apperr"
	"projecthub/internal/assignments"
	"projecthub/internal/audit"
	"projecthub/internal/models"
	"projecthub/internal/observability"
	"projecthub/internal/rbac"
)

// MinRequestableRank is the most privileged role rank that can be asked for
// through a request. Ranks 1 and 2 are only ever granted directly.
const MinRequestableRank = 3

const (
	defaultLimit = 100
	maxLimit     = 100
)

type Service struct {
	db          *gorm.DB
	store       assignments.Store
	resolver    rbac.AccessResolver
	requestGate rbac.SystemGate
	log         *logrus.Logger
	metrics     *observability.Metrics
	now         func() time.Time
}

// NewService builds the workflow. requestRanks lists the system ranks allowed
// to open requests; timestamps are taken in loc.
func NewService(db *gorm.DB, resolver rbac.AccessResolver, requestRanks rbac.RankSet, log *logrus.Logger, metrics *observability.Metrics, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		db:          db,
		resolver:    resolver,
		requestGate: rbac.SystemRankGate(requestRanks),
		log:         log,
		metrics:     metrics,
		now:         func() time.Time { return time.Now().In(loc) },
	}
}

// Create opens a pending request for roleID in projectID on behalf of actor.
func (s *Service) Create(ctx context.Context, actor *models.User, projectID, roleID uuid.UUID, message string) (*models.Request, error) {
	if err := s.requestGate(actor); err != nil {
		return nil, err
	}
	if err := s.projectExists(ctx, projectID); err != nil {
		return nil, err
	}
	role, err := s.role(ctx, roleID)
	if err != nil {
		return nil, err
	}
	if role.Rank < MinRequestableRank {
		return nil, apperr.Forbidden("roles with rank below %d cannot be requested", MinRequestableRank)
	}

	req := &models.Request{
		ProjectID:      projectID,
		RoleID:         roleID,
		RequesterID:    actor.ID,
		Status:         models.RequestPending,
		RequestMessage: message,
		CreatedAt:      s.now(),
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(req).Error; err != nil {
			return err
		}
		return audit.Record(tx, audit.Entry{
			ProjectID:  &projectID,
			Actor:      actor,
			Action:     "request.create",
			TargetType: "request",
			TargetID:   req.ID.String(),
			Metadata:   map[string]any{"role_id": roleID, "role": role.Name},
		})
	})
	if err != nil {
		return nil, apperr.Internal(err, "create request")
	}

	s.metrics.ObserveTransition(string(models.RequestPending))
	s.log.WithFields(logrus.Fields{
		"request_id": req.ID,
		"project_id": projectID,
		"requester":  actor.ID,
		"role":       role.Name,
	}).Info("role request created")
	return req, nil
}

// UpdateStatus approves or rejects a pending request. Approval replaces the
// requester's assignment in the project with the requested role, in the
// same transaction as the status change.
func (s *Service) UpdateStatus(ctx context.Context, actor *models.User, projectID, requestID uuid.UUID, status models.RequestStatus, message string) (*models.Request, error) {
	if !status.Terminal() {
		return nil, apperr.InvalidArgument("status must be %q or %q", models.RequestApproved, models.RequestRejected)
	}
	req, err := s.load(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.ProjectID != projectID {
		return nil, apperr.Forbidden("request does not belong to this project")
	}
	if req.Status != models.RequestPending {
		return nil, apperr.Conflict("request already resolved")
	}
	role, err := s.role(ctx, req.RoleID)
	if err != nil {
		return nil, err
	}
	if !actor.IsSuperuser {
		rank, err := s.resolver.Resolve(ctx, actor, projectID)
		if err != nil {
			return nil, err
		}
		if !rbac.Outranks(rank, role.Rank) {
			return nil, apperr.Forbidden("can only act on requests for roles below your own rank")
		}
	}

	if message == "" {
		message = defaultResponse(status)
	}
	now := s.now()
	approver := actor.ID

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Request{}).
			Where("id = ? AND status = ?", req.ID, models.RequestPending).
			Updates(map[string]any{
				"status":           status,
				"approver_id":      approver,
				"response_message": message,
				"updated_at":       now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperr.Conflict("request already resolved")
		}
		if status == models.RequestApproved {
			if _, err := s.store.Replace(tx, req.RequesterID, projectID, req.RoleID); err != nil {
				return err
			}
			if err := s.store.StampUser(tx, req.RequesterID, now); err != nil {
				return err
			}
		}
		return audit.Record(tx, audit.Entry{
			ProjectID:  &projectID,
			Actor:      actor,
			Action:     "request." + actionFor(status),
			TargetType: "request",
			TargetID:   req.ID.String(),
			Metadata: map[string]any{
				"requester_id": req.RequesterID,
				"role_id":      req.RoleID,
				"role":         role.Name,
			},
		})
	})
	if err != nil {
		if apperr.KindOf(err) == apperr.KindConflict {
			return nil, err
		}
		return nil, apperr.Internal(err, "update request")
	}

	req.Status = status
	req.ApproverID = &approver
	req.ResponseMessage = message
	req.UpdatedAt = &now

	s.metrics.ObserveTransition(string(status))
	s.log.WithFields(logrus.Fields{
		"request_id": req.ID,
		"project_id": projectID,
		"approver":   actor.ID,
		"status":     status,
	}).Info("role request resolved")
	return req, nil
}

// Delete removes a request regardless of its status. Superuser only.
func (s *Service) Delete(ctx context.Context, actor *models.User, projectID, requestID uuid.UUID) error {
	if err := rbac.RequireSuperuser(actor); err != nil {
		return err
	}
	req, err := s.load(ctx, requestID)
	if err != nil {
		return err
	}
	if req.ProjectID != projectID {
		return apperr.Forbidden("request does not belong to this project")
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.Request{}, "id = ?", req.ID).Error; err != nil {
			return err
		}
		return audit.Record(tx, audit.Entry{
			ProjectID:  &projectID,
			Actor:      actor,
			Action:     "request.delete",
			TargetType: "request",
			TargetID:   req.ID.String(),
			Metadata:   map[string]any{"status": req.Status},
		})
	})
	if err != nil {
		return apperr.Internal(err, "delete request")
	}
	s.log.WithField("request_id", req.ID).Info("role request deleted")
	return nil
}

// ListQuery pages through a project's requests, optionally by status.
type ListQuery struct {
	Offset int
	Limit  int
	Status models.RequestStatus
}

// List returns the requests in projectID that actor may see and the total
// count before paging. Non-superusers only see requests for roles below
// their own rank.
func (s *Service) List(ctx context.Context, actor *models.User, projectID uuid.UUID, q ListQuery) ([]models.Request, int64, error) {
	rank, err := s.resolver.Resolve(ctx, actor, projectID)
	if err != nil {
		return nil, 0, err
	}

	base := s.db.WithContext(ctx).Model(&models.Request{}).Where("requests.project_id = ?", projectID)
	if !actor.IsSuperuser {
		base = base.Joins("JOIN roles r ON r.id = requests.role_id").Where("r.rank > ?", rank)
	}
	if q.Status != "" {
		base = base.Where("requests.status = ?", q.Status)
	}
	return s.page(base, q.Offset, q.Limit)
}

// Get returns one request if actor may see it.
func (s *Service) Get(ctx context.Context, actor *models.User, projectID, requestID uuid.UUID) (*models.Request, error) {
	rank, err := s.resolver.Resolve(ctx, actor, projectID)
	if err != nil {
		return nil, err
	}
	req, err := s.load(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.ProjectID != projectID {
		return nil, apperr.NotFound("request not found")
	}
	if actor.IsSuperuser {
		return req, nil
	}
	role, err := s.role(ctx, req.RoleID)
	if err != nil {
		return nil, err
	}
	if !rbac.Outranks(rank, role.Rank) {
		return nil, apperr.Forbidden("can only view requests for roles below your own rank")
	}
	return req, nil
}

// ListMine returns the requests actor opened, across all projects.
func (s *Service) ListMine(ctx context.Context, actor *models.User, offset, limit int) ([]models.Request, int64, error) {
	base := s.db.WithContext(ctx).Model(&models.Request{}).Where("requests.requester_id = ?", actor.ID)
	return s.page(base, offset, limit)
}

func (s *Service) page(base *gorm.DB, offset, limit int) ([]models.Request, int64, error) {
	if limit <= 0 || limit > maxLimit {
		limit = defaultLimit
	}
	if offset < 0 {
		offset = 0
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, apperr.Internal(err, "count requests")
	}
	var out []models.Request
	err := base.Session(&gorm.Session{}).
		Select("requests.*").
		Order("requests.created_at DESC").
		Offset(offset).Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, 0, apperr.Internal(err, "list requests")
	}
	return out, total, nil
}

func (s *Service) load(ctx context.Context, id uuid.UUID) (*models.Request, error) {
	var req models.Request
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&req).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("request not found")
	}
	if err != nil {
		return nil, apperr.Internal(err, "load request")
	}
	return &req, nil
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
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.Project{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return apperr.Internal(err, "load project")
	}
	if n == 0 {
		return apperr.NotFound("project not found")
	}
	return nil
}

func defaultResponse(status models.RequestStatus) string {
	if status == models.RequestApproved {
		return "Request approved"
	}
	return "Request rejected"
}

func actionFor(status models.RequestStatus) string {
	if status == models.RequestApproved {
		return "approve"
	}
	return "reject"
}

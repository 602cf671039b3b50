// Package audit records who changed what inside a project.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"projecthub/internal/apperr"
	"projecthub/internal/models"
)

type clientKey struct{}

type client struct {
	ip        string
	userAgent string
}

// WithClient attaches the caller's address and user agent to ctx so that
// entries recorded under it carry them.
func WithClient(ctx context.Context, ip, userAgent string) context.Context {
	return context.WithValue(ctx, clientKey{}, client{ip: ip, userAgent: userAgent})
}

// Entry describes one audited mutation.
type Entry struct {
	ProjectID  *uuid.UUID
	Actor      *models.User
	Action     string
	TargetType string
	TargetID   string
	Metadata   map[string]any
}

// Record writes e with tx, so it commits or rolls back with the mutation it
// describes.
func Record(tx *gorm.DB, e Entry) error {
	row := models.AuditLog{
		ProjectID:  e.ProjectID,
		Action:     e.Action,
		TargetType: e.TargetType,
		TargetID:   e.TargetID,
	}
	if e.Actor != nil {
		row.ActorID = e.Actor.ID
		row.ActorEmail = e.Actor.Email
	}
	if len(e.Metadata) > 0 {
		raw, err := json.Marshal(e.Metadata)
		if err != nil {
			return fmt.Errorf("encode audit metadata: %w", err)
		}
		row.Metadata = datatypes.JSON(raw)
	}
	if ctx := tx.Statement.Context; ctx != nil {
		if cl, ok := ctx.Value(clientKey{}).(client); ok {
			row.IP = cl.ip
			row.UserAgent = cl.userAgent
		}
	}
	if err := tx.Create(&row).Error; err != nil {
		return fmt.Errorf("write audit log: %w", err)
	}
	return nil
}

// Query filters a project's audit trail. AfterID is an exclusive cursor on
// the descending id order.
type Query struct {
	ProjectID uuid.UUID
	AfterID   int64
	Limit     int
	Search    string
}

type Page struct {
	Logs       []models.AuditLog `json:"logs"`
	NextCursor *int64            `json:"next_cursor"`
}

const (
	defaultLimit = 20
	maxLimit     = 100
)

// List returns one page of the project's audit trail, newest first.
func List(ctx context.Context, db *gorm.DB, q Query) (*Page, error) {
	limit := q.Limit
	if limit <= 0 || limit > maxLimit {
		limit = defaultLimit
	}

	query := db.WithContext(ctx).Model(&models.AuditLog{}).
		Where("project_id = ?", q.ProjectID).
		Order("id DESC")
	if q.AfterID > 0 {
		query = query.Where("id < ?", q.AfterID)
	}
	if search := strings.TrimSpace(q.Search); search != "" {
		like := "%" + search + "%"
		query = query.Where("(actor_email LIKE ? OR action LIKE ? OR target_type LIKE ? OR ip LIKE ?)",
			like, like, like, like)
	}

	var logs []models.AuditLog
	if err := query.Limit(limit + 1).Find(&logs).Error; err != nil {
		return nil, apperr.Internal(err, "list audit logs")
	}

	page := &Page{Logs: logs}
	if len(logs) > limit {
		next := logs[limit-1].ID
		page.Logs = logs[:limit]
		page.NextCursor = &next
	}
	return page, nil
}

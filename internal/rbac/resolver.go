package rbac

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"projecthub/internal/apperr"
	"projecthub/internal/models"
)

// SuperuserRank is the rank reported for superusers in every project.
const SuperuserRank = 1

// AccessResolver reports a user's effective rank inside a project.
type AccessResolver interface {
	Resolve(ctx context.Context, user *models.User, projectID uuid.UUID) (int, error)
}

// Resolver reads ranks from user_project_roles joined to roles.
type Resolver struct {
	DB *gorm.DB
}

func NewResolver(db *gorm.DB) *Resolver { return &Resolver{DB: db} }

// Resolve returns the rank of the user's role in the project. Superusers get
// SuperuserRank without a lookup; users without an assignment are forbidden.
func (r *Resolver) Resolve(ctx context.Context, user *models.User, projectID uuid.UUID) (int, error) {
	if user == nil {
		return 0, apperr.Unauthenticated("not authenticated")
	}
	if user.IsSuperuser {
		return SuperuserRank, nil
	}

	var rank int
	res := r.DB.WithContext(ctx).Raw(
		"SELECT r.rank FROM user_project_roles upr JOIN roles r ON r.id = upr.role_id WHERE upr.user_id = ? AND upr.project_id = ? LIMIT 1",
		user.ID, projectID,
	).Scan(&rank)
	if res.Error != nil {
		return 0, apperr.Internal(res.Error, "resolve project rank")
	}
	if res.RowsAffected == 0 {
		return 0, apperr.Forbidden("no access to this project")
	}
	return rank, nil
}

// RanksByProject returns the user's rank for each listed project that has an
// assignment. Superusers get SuperuserRank for every project.
func (r *Resolver) RanksByProject(ctx context.Context, user *models.User, projectIDs []uuid.UUID) (map[uuid.UUID]int, error) {
	ranks := make(map[uuid.UUID]int, len(projectIDs))
	if user == nil || len(projectIDs) == 0 {
		return ranks, nil
	}
	if user.IsSuperuser {
		for _, id := range projectIDs {
			ranks[id] = SuperuserRank
		}
		return ranks, nil
	}

	var rows []struct {
		ProjectID uuid.UUID
		RoleRank  int
	}
	err := r.DB.WithContext(ctx).
		Table("user_project_roles upr").
		Select("upr.project_id AS project_id, r.rank AS role_rank").
		Joins("JOIN roles r ON r.id = upr.role_id").
		Where("upr.user_id = ? AND upr.project_id IN ?", user.ID, projectIDs).
		Scan(&rows).Error
	if err != nil {
		return nil, apperr.Internal(err, "resolve project ranks")
	}
	for _, row := range rows {
		ranks[row.ProjectID] = row.RoleRank
	}
	return ranks, nil
}

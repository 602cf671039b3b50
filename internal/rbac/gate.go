package rbac

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"projecthub/internal/apperr"
	"projecthub/internal/models"
)

// RankSet is a set of permitted ranks. Lower rank means more privilege.
type RankSet map[int]struct{}

func Ranks(ranks ...int) RankSet {
	s := make(RankSet, len(ranks))
	for _, r := range ranks {
		s[r] = struct{}{}
	}
	return s
}

// RanksUpTo expresses an "at most max" threshold as the explicit set {1..max}.
func RanksUpTo(max int) RankSet {
	s := make(RankSet, max)
	for r := 1; r <= max; r++ {
		s[r] = struct{}{}
	}
	return s
}

func (s RankSet) Contains(rank int) bool {
	_, ok := s[rank]
	return ok
}

func (s RankSet) Sorted() []int {
	out := make([]int, 0, len(s))
	for r := range s {
		out = append(out, r)
	}
	sort.Ints(out)
	return out
}

// ProjectGate checks a user against a project and returns the resolved rank.
type ProjectGate func(ctx context.Context, user *models.User, projectID uuid.UUID) (int, error)

// SystemGate checks a user's global system rank.
type SystemGate func(user *models.User) error

// ProjectRankGate passes superusers and users whose project rank is in allowed.
func ProjectRankGate(resolver AccessResolver, allowed RankSet) ProjectGate {
	return func(ctx context.Context, user *models.User, projectID uuid.UUID) (int, error) {
		if user != nil && user.IsSuperuser {
			return SuperuserRank, nil
		}
		rank, err := resolver.Resolve(ctx, user, projectID)
		if err != nil {
			return 0, err
		}
		if !allowed.Contains(rank) {
			return 0, apperr.Forbidden("project rank %d is not permitted for this action (allowed: %v)", rank, allowed.Sorted())
		}
		return rank, nil
	}
}

// ProjectAccessGate passes any user holding some role in the project.
func ProjectAccessGate(resolver AccessResolver) ProjectGate {
	return func(ctx context.Context, user *models.User, projectID uuid.UUID) (int, error) {
		return resolver.Resolve(ctx, user, projectID)
	}
}

// SystemRankGate passes superusers and users whose system rank is set and in
// allowed. Project assignments are not consulted.
func SystemRankGate(allowed RankSet) SystemGate {
	return func(user *models.User) error {
		if user == nil {
			return apperr.Unauthenticated("not authenticated")
		}
		if user.IsSuperuser {
			return nil
		}
		if user.SystemRank == nil {
			return apperr.Forbidden("no system rank assigned")
		}
		if !allowed.Contains(*user.SystemRank) {
			return apperr.Forbidden("system rank %d is not permitted for this action", *user.SystemRank)
		}
		return nil
	}
}

// RequireSuperuser passes superusers only.
func RequireSuperuser(user *models.User) error {
	if user == nil {
		return apperr.Unauthenticated("not authenticated")
	}
	if !user.IsSuperuser {
		return apperr.Forbidden("superuser privileges required")
	}
	return nil
}

// Outranks reports whether an actor holding actorRank may act on a role of
// targetRank: the target must be strictly less privileged.
func Outranks(actorRank, targetRank int) bool {
	return targetRank > actorRank
}

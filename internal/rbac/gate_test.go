package rbac

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"projecthub/internal/apperr"
	"projecthub/internal/models"
)

type fixedResolver struct {
	rank  int
	err   error
	calls int
}

func (f *fixedResolver) Resolve(context.Context, *models.User, uuid.UUID) (int, error) {
	f.calls++
	return f.rank, f.err
}

func TestRankSets(t *testing.T) {
	assert.Equal(t, []int{1, 2, 3}, RanksUpTo(3).Sorted())
	assert.Empty(t, RanksUpTo(0))
	assert.True(t, Ranks(2, 5).Contains(5))
	assert.False(t, Ranks(2, 5).Contains(3))
}

func TestProjectRankGate(t *testing.T) {
	ctx := context.Background()
	user := &models.User{ID: uuid.New()}

	t.Run("member of set passes", func(t *testing.T) {
		gate := ProjectRankGate(&fixedResolver{rank: 2}, Ranks(1, 2, 3))
		rank, err := gate(ctx, user, uuid.New())
		require.NoError(t, err)
		assert.Equal(t, 2, rank)
	})

	t.Run("set is membership not threshold", func(t *testing.T) {
		gate := ProjectRankGate(&fixedResolver{rank: 1}, Ranks(2, 3))
		_, err := gate(ctx, user, uuid.New())
		assert.ErrorIs(t, err, apperr.Forbidden(""))
	})

	t.Run("rank outside set is forbidden", func(t *testing.T) {
		gate := ProjectRankGate(&fixedResolver{rank: 4}, Ranks(1, 2, 3))
		_, err := gate(ctx, user, uuid.New())
		assert.ErrorIs(t, err, apperr.Forbidden(""))
	})

	t.Run("resolver failure propagates", func(t *testing.T) {
		gate := ProjectRankGate(&fixedResolver{err: apperr.Forbidden("no access to this project")}, Ranks(1))
		_, err := gate(ctx, user, uuid.New())
		assert.ErrorIs(t, err, apperr.Forbidden("no access to this project"))
	})

	t.Run("superuser bypasses resolver", func(t *testing.T) {
		res := &fixedResolver{err: errors.New("must not be called")}
		gate := ProjectRankGate(res, Ranks(3))
		rank, err := gate(ctx, &models.User{IsSuperuser: true}, uuid.New())
		require.NoError(t, err)
		assert.Equal(t, SuperuserRank, rank)
		assert.Zero(t, res.calls)
	})
}

func TestProjectAccessGate(t *testing.T) {
	rank, err := ProjectAccessGate(&fixedResolver{rank: 7})(context.Background(), &models.User{}, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, 7, rank)
}

func TestSystemRankGate(t *testing.T) {
	gate := SystemRankGate(Ranks(1, 2))
	two, five := 2, 5

	assert.NoError(t, gate(&models.User{SystemRank: &two}))
	assert.ErrorIs(t, gate(&models.User{SystemRank: &five}), apperr.Forbidden(""))
	assert.ErrorIs(t, gate(&models.User{}), apperr.Forbidden("no system rank assigned"))
	assert.NoError(t, gate(&models.User{IsSuperuser: true}))
	assert.ErrorIs(t, gate(nil), apperr.Unauthenticated(""))
}

func TestRequireSuperuser(t *testing.T) {
	assert.NoError(t, RequireSuperuser(&models.User{IsSuperuser: true}))
	assert.ErrorIs(t, RequireSuperuser(&models.User{}), apperr.Forbidden(""))
}

func TestOutranksIsStrict(t *testing.T) {
	for actor := 1; actor <= 6; actor++ {
		for target := 1; target <= 6; target++ {
			assert.Equal(t, target > actor, Outranks(actor, target), "actor %d target %d", actor, target)
		}
	}
}

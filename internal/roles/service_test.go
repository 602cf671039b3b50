package roles

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"projecthub/internal/apperr"
	"projecthub/internal/models"
	"projecthub/internal/testutil"
)

func TestCreateAndList(t *testing.T) {
	ctx := context.Background()
	gdb := testutil.DB(t)
	su := testutil.Superuser(t, gdb, "root@example.com")
	svc := NewService(gdb, testutil.Logger())

	_, err := svc.Create(ctx, su, CreateInput{Name: "Viewer", Rank: 5})
	require.NoError(t, err)
	_, err = svc.Create(ctx, su, CreateInput{Name: "Admin", Rank: 1, Description: "everything"})
	require.NoError(t, err)

	list, total, err := svc.List(ctx, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, list, 2)
	assert.Equal(t, "Admin", list[0].Name)

	_, err = svc.Create(ctx, su, CreateInput{Name: "Viewer", Rank: 6})
	assert.ErrorIs(t, err, apperr.Conflict(""))

	_, err = svc.Create(ctx, su, CreateInput{Name: "Zero", Rank: 0})
	assert.ErrorIs(t, err, apperr.InvalidArgument(""))

	_, err = svc.Create(ctx, su, CreateInput{Rank: 3})
	assert.ErrorIs(t, err, apperr.InvalidArgument(""))
}

func TestUpdatePartial(t *testing.T) {
	ctx := context.Background()
	gdb := testutil.DB(t)
	su := testutil.Superuser(t, gdb, "root@example.com")
	svc := NewService(gdb, testutil.Logger())
	staff := testutil.Role(t, gdb, "Staff", 4)
	testutil.Role(t, gdb, "Viewer", 5)

	rank := 3
	updated, err := svc.Update(ctx, su, staff.ID, UpdateInput{Rank: &rank})
	require.NoError(t, err)
	assert.Equal(t, "Staff", updated.Name)
	assert.Equal(t, 3, updated.Rank)

	var stored models.Role
	require.NoError(t, gdb.First(&stored, "id = ?", staff.ID).Error)
	assert.Equal(t, 3, stored.Rank)

	taken := "Viewer"
	_, err = svc.Update(ctx, su, staff.ID, UpdateInput{Name: &taken})
	assert.ErrorIs(t, err, apperr.Conflict(""))

	_, err = svc.Update(ctx, su, uuid.New(), UpdateInput{Rank: &rank})
	assert.ErrorIs(t, err, apperr.NotFound("role not found"))
}

func TestDeleteRefusesRolesInUse(t *testing.T) {
	ctx := context.Background()
	gdb := testutil.DB(t)
	su := testutil.Superuser(t, gdb, "root@example.com")
	svc := NewService(gdb, testutil.Logger())
	used := testutil.Role(t, gdb, "Manager", 3)
	free := testutil.Role(t, gdb, "Viewer", 5)
	u := testutil.User(t, gdb, "u@example.com", nil)
	testutil.Assign(t, gdb, u, testutil.Project(t, gdb, "P"), used)

	assert.ErrorIs(t, svc.Delete(ctx, su, used.ID), apperr.Conflict(""))
	require.NoError(t, svc.Delete(ctx, su, free.ID))
	assert.ErrorIs(t, svc.Delete(ctx, su, free.ID), apperr.NotFound("role not found"))
}

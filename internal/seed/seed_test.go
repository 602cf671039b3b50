package seed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"projecthub/internal/auth"
	"projecthub/internal/config"
	"projecthub/internal/models"
	"projecthub/internal/testutil"
)

func TestFirstSetupIsIdempotent(t *testing.T) {
	gdb := testutil.DB(t)
	cfg := &config.Config{FirstSuperuserEmail: "admin@example.com", FirstSuperuserPassword: "changethis"}

	require.NoError(t, FirstSetup(gdb, cfg, testutil.Logger()))
	require.NoError(t, FirstSetup(gdb, cfg, testutil.Logger()))

	var roles, tiers, users int64
	require.NoError(t, gdb.Model(&models.Role{}).Count(&roles).Error)
	require.NoError(t, gdb.Model(&models.SystemTier{}).Count(&tiers).Error)
	require.NoError(t, gdb.Model(&models.User{}).Count(&users).Error)
	assert.Equal(t, int64(len(defaultRoles)), roles)
	assert.Equal(t, int64(len(defaultTiers)), tiers)
	assert.Equal(t, int64(1), users)

	var admin models.User
	require.NoError(t, gdb.Where("email = ?", "admin@example.com").First(&admin).Error)
	assert.True(t, admin.IsSuperuser)
	assert.True(t, admin.IsActive)
	assert.True(t, auth.CheckPassword(admin.PasswordHash, "changethis"))
}

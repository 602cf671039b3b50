package users

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"projecthub/internal/apperr"
	"projecthub/internal/auth"
	"projecthub/internal/models"
	"projecthub/internal/testutil"
)

func newService(t *testing.T) (*Service, *auth.Authenticator, *gorm.DB) {
	t.Helper()
	gdb := testutil.DB(t)
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	authn := auth.NewAuthenticator(gdb, "secret", time.Hour, auth.NewRedisRevocations(client))
	return NewService(gdb, authn, testutil.Logger(), time.UTC), authn, gdb
}

func TestRegisterCreatesInactiveUser(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService(t)

	u, err := svc.Register(ctx, RegisterInput{Email: "  Alice@Example.com ", Password: "correct-horse"})
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", u.Email)
	assert.False(t, u.IsActive)
	assert.False(t, u.IsSuperuser)
	assert.NotEqual(t, "correct-horse", u.PasswordHash)

	_, err = svc.Register(ctx, RegisterInput{Email: "alice@example.com", Password: "another-pass"})
	assert.ErrorIs(t, err, apperr.Conflict("email already registered"))

	_, err = svc.Register(ctx, RegisterInput{Email: "bob@example.com", Password: "short"})
	assert.ErrorIs(t, err, apperr.InvalidArgument(""))
}

func TestLoginLogout(t *testing.T) {
	ctx := context.Background()
	svc, authn, _ := newService(t)
	su := &models.User{ID: uuid.New(), IsSuperuser: true}

	u, err := svc.Register(ctx, RegisterInput{Email: "alice@example.com", Password: "correct-horse"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, "alice@example.com", "correct-horse")
	assert.ErrorIs(t, err, apperr.Forbidden("inactive user"))

	active := true
	_, err = svc.Update(ctx, su, u.ID, AdminUpdateInput{IsActive: &active})
	require.NoError(t, err)

	_, err = svc.Login(ctx, "alice@example.com", "wrong-password")
	assert.ErrorIs(t, err, apperr.Unauthenticated(""))
	_, err = svc.Login(ctx, "nobody@example.com", "correct-horse")
	assert.ErrorIs(t, err, apperr.Unauthenticated(""))

	session, err := svc.Login(ctx, "ALICE@example.com", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, "bearer", session.TokenType)
	assert.NotNil(t, session.User.LastLogin)

	me, claims, err := authn.Authenticate(ctx, session.Token)
	require.NoError(t, err)
	require.NoError(t, svc.Logout(ctx, me, claims))
	assert.NotNil(t, me.LastLogout)

	_, _, err = authn.Authenticate(ctx, session.Token)
	assert.ErrorIs(t, err, apperr.Unauthenticated("token has been revoked"))
}

func TestUpdateMeAndPassword(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService(t)

	u, err := svc.Register(ctx, RegisterInput{Email: "alice@example.com", Password: "correct-horse"})
	require.NoError(t, err)
	_, err = svc.Register(ctx, RegisterInput{Email: "bob@example.com", Password: "correct-horse"})
	require.NoError(t, err)

	name := " Alice Nguyen "
	updated, err := svc.UpdateMe(ctx, u, UpdateMeInput{FullName: &name})
	require.NoError(t, err)
	assert.Equal(t, "Alice Nguyen", updated.FullName)

	taken := "bob@example.com"
	_, err = svc.UpdateMe(ctx, u, UpdateMeInput{Email: &taken})
	assert.ErrorIs(t, err, apperr.Conflict(""))

	err = svc.ChangePassword(ctx, u, ChangePasswordInput{CurrentPassword: "nope-nope", NewPassword: "new-password"})
	assert.ErrorIs(t, err, apperr.InvalidArgument("incorrect password"))
	err = svc.ChangePassword(ctx, u, ChangePasswordInput{CurrentPassword: "correct-horse", NewPassword: "correct-horse"})
	assert.ErrorIs(t, err, apperr.InvalidArgument(""))
	require.NoError(t, svc.ChangePassword(ctx, u, ChangePasswordInput{CurrentPassword: "correct-horse", NewPassword: "new-password"}))

	stored, err := svc.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, auth.CheckPassword(stored.PasswordHash, "new-password"))
}

func TestAdminOperations(t *testing.T) {
	ctx := context.Background()
	svc, _, gdb := newService(t)
	su := testutil.Superuser(t, gdb, "root@example.com")

	u, err := svc.Create(ctx, su, CreateInput{Email: "staff@example.com", Password: "correct-horse", IsActive: true})
	require.NoError(t, err)
	assert.True(t, u.IsActive)

	list, total, err := svc.List(ctx, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, list, 2)

	tier := &models.SystemTier{Name: "Onboarding", RankTotal: 2}
	require.NoError(t, gdb.Create(tier).Error)

	ranked, err := svc.SetSystemTier(ctx, su, u.ID, tier.ID)
	require.NoError(t, err)
	require.NotNil(t, ranked.SystemRank)
	assert.Equal(t, 2, *ranked.SystemRank)

	_, err = svc.SetSystemTier(ctx, su, u.ID, uuid.New())
	assert.ErrorIs(t, err, apperr.NotFound("system tier not found"))
	_, err = svc.SetSystemTier(ctx, su, uuid.New(), tier.ID)
	assert.ErrorIs(t, err, apperr.NotFound("user not found"))
}

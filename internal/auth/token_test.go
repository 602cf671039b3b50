package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"projecthub/internal/apperr"
	"projecthub/internal/testutil"
)

func TestIssueAndAuthenticate(t *testing.T) {
	gdb := testutil.DB(t)
	user := testutil.User(t, gdb, "alice@example.com", testutil.Rank(2))
	authn := NewAuthenticator(gdb, "secret", time.Hour, nil)

	token, expires, err := authn.Issue(user)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expires, 5*time.Second)

	got, claims, err := authn.Authenticate(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, user.ID.String(), claims.Subject)
	require.NotNil(t, claims.SystemRank)
	assert.Equal(t, 2, *claims.SystemRank)
	assert.NotEmpty(t, claims.ID)
}

func TestAuthenticateRejectsBadTokens(t *testing.T) {
	gdb := testutil.DB(t)
	user := testutil.User(t, gdb, "bob@example.com", nil)
	authn := NewAuthenticator(gdb, "secret", time.Hour, nil)

	t.Run("malformed", func(t *testing.T) {
		_, _, err := authn.Authenticate(context.Background(), "not-a-jwt")
		assert.ErrorIs(t, err, apperr.Unauthenticated(""))
	})

	t.Run("empty", func(t *testing.T) {
		_, _, err := authn.Authenticate(context.Background(), "  ")
		assert.ErrorIs(t, err, apperr.Unauthenticated("missing bearer token"))
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewAuthenticator(gdb, "other-secret", time.Hour, nil)
		token, _, err := other.Issue(user)
		require.NoError(t, err)

		_, _, err = authn.Authenticate(context.Background(), token)
		assert.ErrorIs(t, err, apperr.Unauthenticated(""))
	})

	t.Run("expired", func(t *testing.T) {
		past := NewAuthenticator(gdb, "secret", time.Minute, nil)
		past.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
		token, _, err := past.Issue(user)
		require.NoError(t, err)

		_, _, err = authn.Authenticate(context.Background(), token)
		assert.ErrorIs(t, err, apperr.Unauthenticated("token expired"))
	})

	t.Run("other algorithm", func(t *testing.T) {
		claims := Claims{RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("secret"))
		require.NoError(t, err)

		_, _, err = authn.Authenticate(context.Background(), token)
		assert.ErrorIs(t, err, apperr.Unauthenticated(""))
	})

	t.Run("unknown subject", func(t *testing.T) {
		ghost := *user
		ghost.ID = uuid.New()
		token, _, err := authn.Issue(&ghost)
		require.NoError(t, err)

		_, _, err = authn.Authenticate(context.Background(), token)
		assert.ErrorIs(t, err, apperr.Unauthenticated("user not found"))
	})
}

func TestRevokedTokenIsRejected(t *testing.T) {
	gdb := testutil.DB(t)
	user := testutil.User(t, gdb, "carol@example.com", nil)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	authn := NewAuthenticator(gdb, "secret", time.Hour, NewRedisRevocations(client))

	token, _, err := authn.Issue(user)
	require.NoError(t, err)
	_, claims, err := authn.Authenticate(context.Background(), token)
	require.NoError(t, err)

	require.NoError(t, authn.Revoke(context.Background(), claims))
	assert.True(t, mr.Exists("revoked_token:"+claims.ID))

	_, _, err = authn.Authenticate(context.Background(), token)
	assert.ErrorIs(t, err, apperr.Unauthenticated("token has been revoked"))
}

func TestRedisRevocationsSkipsExpiredTokens(t *testing.T) {
	mr := miniredis.RunT(t)
	store := NewRedisRevocations(redis.NewClient(&redis.Options{Addr: mr.Addr()}))

	require.NoError(t, store.Revoke(context.Background(), "old", time.Now().Add(-time.Minute)))
	revoked, err := store.IsRevoked(context.Background(), "old")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)
	assert.True(t, CheckPassword(hash, "correct horse"))
	assert.False(t, CheckPassword(hash, "wrong horse"))
}

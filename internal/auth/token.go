package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"projecthub/internal/apperr"
	"projecthub/internal/models"
)

// Claims represents the JWT claims structure. Subject carries the user id
// and ID (jti) identifies the token for revocation.
type Claims struct {
	IsActive   bool `json:"is_active"`
	SystemRank *int `json:"system_rank,omitempty"`
	jwt.RegisteredClaims
}

// Authenticator issues bearer tokens and resolves them back to users.
type Authenticator struct {
	db      *gorm.DB
	secret  []byte
	ttl     time.Duration
	revoked RevocationStore
	now     func() time.Time
}

func NewAuthenticator(db *gorm.DB, secret string, ttl time.Duration, revoked RevocationStore) *Authenticator {
	if revoked == nil {
		revoked = NoopRevocations{}
	}
	return &Authenticator{db: db, secret: []byte(secret), ttl: ttl, revoked: revoked, now: time.Now}
}

// Issue signs a new access token for user.
func (a *Authenticator) Issue(user *models.User) (string, time.Time, error) {
	now := a.now()
	expires := now.Add(a.ttl)
	claims := Claims{
		IsActive:   user.IsActive,
		SystemRank: user.SystemRank,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expires, nil
}

// Parse validates signature, algorithm and expiry.
func (a *Authenticator) Parse(raw string) (*Claims, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, apperr.Unauthenticated("missing bearer token")
	}
	token, err := jwt.ParseWithClaims(raw, &Claims{}, func(*jwt.Token) (interface{}, error) {
		return a.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil || !token.Valid {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperr.Unauthenticated("token expired")
		}
		return nil, apperr.Unauthenticated("could not validate credentials")
	}
	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, apperr.Unauthenticated("invalid claims")
	}
	return claims, nil
}

// Authenticate resolves a raw token to the stored user it was issued for.
func (a *Authenticator) Authenticate(ctx context.Context, raw string) (*models.User, *Claims, error) {
	claims, err := a.Parse(raw)
	if err != nil {
		return nil, nil, err
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, nil, apperr.Unauthenticated("could not validate credentials")
	}
	if claims.ID != "" {
		revoked, err := a.revoked.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, nil, apperr.Internal(err, "check token revocation")
		}
		if revoked {
			return nil, nil, apperr.Unauthenticated("token has been revoked")
		}
	}

	var user models.User
	if err := a.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apperr.Unauthenticated("user not found")
		}
		return nil, nil, apperr.Internal(err, "load user")
	}
	return &user, claims, nil
}

// Revoke blocks the token described by claims until it would have expired.
func (a *Authenticator) Revoke(ctx context.Context, claims *Claims) error {
	if claims == nil || claims.ID == "" || claims.ExpiresAt == nil {
		return nil
	}
	return a.revoked.Revoke(ctx, claims.ID, claims.ExpiresAt.Time)
}

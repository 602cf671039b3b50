// Package users handles accounts: self-service registration, login and
// profile changes, plus superuser administration.
package users

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"projecthub/internal/apperr"
	"projecthub/internal/audit"
	"projecthub/internal/auth"
	"projecthub/internal/models"
	"projecthub/internal/validate"
)

type RegisterInput struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=40"`
	FullName string `json:"full_name" validate:"max=255"`
	Phone    string `json:"phone" validate:"max=20"`
}

type CreateInput struct {
	Email       string `json:"email" validate:"required,email,max=255"`
	Password    string `json:"password" validate:"required,min=8,max=40"`
	FullName    string `json:"full_name" validate:"max=255"`
	Phone       string `json:"phone" validate:"max=20"`
	IsActive    bool   `json:"is_active"`
	IsSuperuser bool   `json:"is_superuser"`
}

type UpdateMeInput struct {
	Email    *string `json:"email" validate:"omitempty,email,max=255"`
	FullName *string `json:"full_name" validate:"omitempty,max=255"`
	Phone    *string `json:"phone" validate:"omitempty,max=20"`
}

// AdminUpdateInput changes only the fields that are set.
type AdminUpdateInput struct {
	FullName    *string `json:"full_name" validate:"omitempty,max=255"`
	Phone       *string `json:"phone" validate:"omitempty,max=20"`
	IsActive    *bool   `json:"is_active"`
	IsSuperuser *bool   `json:"is_superuser"`
	Password    *string `json:"password" validate:"omitempty,min=8,max=40"`
}

type ChangePasswordInput struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=40"`
}

// Session is what a successful login hands back.
type Session struct {
	Token     string       `json:"access_token"`
	TokenType string       `json:"token_type"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
}

type Service struct {
	db    *gorm.DB
	authn *auth.Authenticator
	log   *logrus.Logger
	now   func() time.Time
}

func NewService(db *gorm.DB, authn *auth.Authenticator, log *logrus.Logger, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		db:    db,
		authn: authn,
		log:   log,
		now:   func() time.Time { return time.Now().In(loc) },
	}
}

// Register creates an inactive account. A superuser activates it later.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Email = normalizeEmail(in.Email)
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	return s.create(ctx, nil, &models.User{
		Email:    in.Email,
		FullName: strings.TrimSpace(in.FullName),
		Phone:    in.Phone,
	}, in.Password)
}

// Create adds an account on behalf of a superuser.
func (s *Service) Create(ctx context.Context, actor *models.User, in CreateInput) (*models.User, error) {
	in.Email = normalizeEmail(in.Email)
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	return s.create(ctx, actor, &models.User{
		Email:       in.Email,
		FullName:    strings.TrimSpace(in.FullName),
		Phone:       in.Phone,
		IsActive:    in.IsActive,
		IsSuperuser: in.IsSuperuser,
	}, in.Password)
}

func (s *Service) create(ctx context.Context, actor *models.User, u *models.User, password string) (*models.User, error) {
	if err := s.emailFree(ctx, u.Email, uuid.Nil); err != nil {
		return nil, err
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, apperr.Internal(err, "hash password")
	}
	u.PasswordHash = hash
	u.CreatedAt = s.now()

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(u).Error; err != nil {
			return err
		}
		if actor == nil {
			actor = u
		}
		return audit.Record(tx, audit.Entry{
			Actor:      actor,
			Action:     "user.create",
			TargetType: "user",
			TargetID:   u.ID.String(),
			Metadata:   map[string]any{"email": u.Email},
		})
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, apperr.Conflict("email already registered")
	}
	if err != nil {
		return nil, apperr.Internal(err, "create user")
	}
	s.log.WithField("email", u.Email).Info("user created")
	return u, nil
}

// Login checks credentials and issues a token for an active account.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	var u models.User
	err := s.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Unauthenticated("incorrect email or password")
	}
	if err != nil {
		return nil, apperr.Internal(err, "load user")
	}
	if !auth.CheckPassword(u.PasswordHash, password) {
		return nil, apperr.Unauthenticated("incorrect email or password")
	}
	if !u.IsActive {
		return nil, apperr.Forbidden("inactive user")
	}

	token, expires, err := s.authn.Issue(&u)
	if err != nil {
		return nil, apperr.Internal(err, "issue token")
	}
	now := s.now()
	if err := s.db.WithContext(ctx).Model(&u).Update("last_login", now).Error; err != nil {
		return nil, apperr.Internal(err, "stamp login")
	}
	u.LastLogin = &now
	return &Session{Token: token, TokenType: "bearer", ExpiresAt: expires, User: &u}, nil
}

// Logout revokes the token described by claims.
func (s *Service) Logout(ctx context.Context, u *models.User, claims *auth.Claims) error {
	if err := s.authn.Revoke(ctx, claims); err != nil {
		return apperr.Internal(err, "revoke token")
	}
	now := s.now()
	if err := s.db.WithContext(ctx).Model(u).Update("last_logout", now).Error; err != nil {
		return apperr.Internal(err, "stamp logout")
	}
	u.LastLogout = &now
	return nil
}

func (s *Service) UpdateMe(ctx context.Context, u *models.User, in UpdateMeInput) (*models.User, error) {
	if in.Email != nil {
		e := normalizeEmail(*in.Email)
		in.Email = &e
	}
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	updates := map[string]any{}
	if in.Email != nil && *in.Email != u.Email {
		if err := s.emailFree(ctx, *in.Email, u.ID); err != nil {
			return nil, err
		}
		updates["email"] = *in.Email
	}
	if in.FullName != nil {
		updates["full_name"] = strings.TrimSpace(*in.FullName)
	}
	if in.Phone != nil {
		updates["phone"] = *in.Phone
	}
	return s.apply(ctx, u.ID, updates)
}

func (s *Service) ChangePassword(ctx context.Context, u *models.User, in ChangePasswordInput) error {
	if err := validate.Struct(in); err != nil {
		return err
	}
	if !auth.CheckPassword(u.PasswordHash, in.CurrentPassword) {
		return apperr.InvalidArgument("incorrect password")
	}
	if in.CurrentPassword == in.NewPassword {
		return apperr.InvalidArgument("new password cannot be the same as the current one")
	}
	hash, err := auth.HashPassword(in.NewPassword)
	if err != nil {
		return apperr.Internal(err, "hash password")
	}
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", u.ID).
		Update("password_hash", hash).Error; err != nil {
		return apperr.Internal(err, "update password")
	}
	u.PasswordHash = hash
	return nil
}

func (s *Service) List(ctx context.Context, offset, limit int) ([]models.User, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	var total int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Count(&total).Error; err != nil {
		return nil, 0, apperr.Internal(err, "count users")
	}
	var out []models.User
	if err := s.db.WithContext(ctx).Order("email ASC").Offset(offset).Limit(limit).Find(&out).Error; err != nil {
		return nil, 0, apperr.Internal(err, "list users")
	}
	return out, total, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var u models.User
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("user not found")
	}
	if err != nil {
		return nil, apperr.Internal(err, "load user")
	}
	return &u, nil
}

// Update is the superuser edit of another account.
func (s *Service) Update(ctx context.Context, actor *models.User, id uuid.UUID, in AdminUpdateInput) (*models.User, error) {
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	updates := map[string]any{}
	if in.FullName != nil {
		updates["full_name"] = strings.TrimSpace(*in.FullName)
	}
	if in.Phone != nil {
		updates["phone"] = *in.Phone
	}
	if in.IsActive != nil {
		updates["is_active"] = *in.IsActive
	}
	if in.IsSuperuser != nil {
		updates["is_superuser"] = *in.IsSuperuser
	}
	if in.Password != nil {
		hash, err := auth.HashPassword(*in.Password)
		if err != nil {
			return nil, apperr.Internal(err, "hash password")
		}
		updates["password_hash"] = hash
	}
	u, err := s.apply(ctx, id, updates)
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"actor_id": actor.ID, "user_id": id}).Info("user updated")
	return u, nil
}

// SetSystemTier copies the tier's rank into the user's system rank.
func (s *Service) SetSystemTier(ctx context.Context, actor *models.User, userID, tierID uuid.UUID) (*models.User, error) {
	if _, err := s.Get(ctx, userID); err != nil {
		return nil, err
	}
	var tier models.SystemTier
	err := s.db.WithContext(ctx).Where("id = ?", tierID).First(&tier).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("system tier not found")
	}
	if err != nil {
		return nil, apperr.Internal(err, "load system tier")
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.User{}).Where("id = ?", userID).
			Update("system_rank", tier.RankTotal).Error; err != nil {
			return err
		}
		return audit.Record(tx, audit.Entry{
			Actor:      actor,
			Action:     "user.system_tier",
			TargetType: "user",
			TargetID:   userID.String(),
			Metadata:   map[string]any{"tier": tier.Name, "system_rank": tier.RankTotal},
		})
	})
	if err != nil {
		return nil, apperr.Internal(err, "set system tier")
	}
	return s.Get(ctx, userID)
}

func (s *Service) apply(ctx context.Context, id uuid.UUID, updates map[string]any) (*models.User, error) {
	if len(updates) > 0 {
		err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(updates).Error
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Conflict("email already registered")
		}
		if err != nil {
			return nil, apperr.Internal(err, "update user")
		}
	}
	return s.Get(ctx, id)
}

func (s *Service) emailFree(ctx context.Context, email string, except uuid.UUID) error {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).
		Where("email = ? AND id <> ?", email, except).Count(&n).Error; err != nil {
		return apperr.Internal(err, "check email")
	}
	if n > 0 {
		return apperr.Conflict("email already registered")
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Package testutil provides fixtures shared by package tests.
package testutil

import (
	"fmt"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"projecthub/internal/db"
	"projecthub/internal/models"
)

// Logger returns a logger that writes nowhere.
func Logger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// DB opens a private in-memory SQLite database with every table migrated.
func DB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	gdb, err := gorm.Open(sqlite.Open(dsn), db.Options(Logger()))
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(gdb))
	return gdb
}

func User(t *testing.T, gdb *gorm.DB, email string, systemRank *int) *models.User {
	t.Helper()
	u := &models.User{Email: email, PasswordHash: "x", IsActive: true, SystemRank: systemRank}
	require.NoError(t, gdb.Create(u).Error)
	return u
}

func Superuser(t *testing.T, gdb *gorm.DB, email string) *models.User {
	t.Helper()
	one := 1
	u := &models.User{Email: email, PasswordHash: "x", IsActive: true, IsSuperuser: true, SystemRank: &one}
	require.NoError(t, gdb.Create(u).Error)
	return u
}

func Role(t *testing.T, gdb *gorm.DB, name string, rank int) *models.Role {
	t.Helper()
	r := &models.Role{Name: name, Rank: rank}
	require.NoError(t, gdb.Create(r).Error)
	return r
}

func Project(t *testing.T, gdb *gorm.DB, name string) *models.Project {
	t.Helper()
	p := &models.Project{NameEN: name, NameVI: name}
	require.NoError(t, gdb.Create(p).Error)
	return p
}

func Assign(t *testing.T, gdb *gorm.DB, user *models.User, project *models.Project, role *models.Role) *models.Assignment {
	t.Helper()
	a := &models.Assignment{UserID: user.ID, ProjectID: project.ID, RoleID: role.ID}
	require.NoError(t, gdb.Create(a).Error)
	return a
}

// Rank returns a pointer to r, for system ranks.
func Rank(r int) *int { return &r }

package config

import (
	"io"
	"os"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("MYSQL_DSN", "user:pass@tcp(localhost:3306)/projecthub")

	cfg, err := Load(quietLogger())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.AppPort)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, []int{1, 2}, cfg.RequestSystemRanks)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6}, cfg.ProjectViewSystemRanks)
	assert.Equal(t, "Asia/Ho_Chi_Minh", cfg.Location().String())
	assert.False(t, cfg.IsProduction())
}

func TestLoadRequiresDSN(t *testing.T) {
	t.Setenv("MYSQL_DSN", "")
	require.NoError(t, os.Unsetenv("MYSQL_DSN"))

	_, err := Load(quietLogger())
	assert.Error(t, err)
}

func TestLoadRejectsDevSecretInProduction(t *testing.T) {
	t.Setenv("MYSQL_DSN", "dsn")
	t.Setenv("APP_ENV", "production")

	_, err := Load(quietLogger())
	assert.ErrorContains(t, err, "JWT_SECRET")
}

func TestLoadOverridesRankSets(t *testing.T) {
	t.Setenv("MYSQL_DSN", "dsn")
	t.Setenv("REQUEST_SYSTEM_RANKS", "1,2,3")

	cfg, err := Load(quietLogger())
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, cfg.RequestSystemRanks)
}

func TestLocationFallsBackToUTC(t *testing.T) {
	cfg := &Config{LocalTimezone: "Not/AZone"}
	assert.Equal(t, time.UTC, cfg.Location())
}

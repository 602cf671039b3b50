package config

import (
	"errors"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
)

type Config struct {
	AppEnv  string `envconfig:"APP_ENV" default:"development"`
	AppPort string `envconfig:"APP_PORT" default:"8080"`

	DSN       string        `envconfig:"MYSQL_DSN" required:"true"`
	JWTSecret string        `envconfig:"JWT_SECRET" default:"dev-secret-only"`
	TokenTTL  time.Duration `envconfig:"TOKEN_TTL" default:"24h"`

	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// RedisAddr enables token revocation on logout. Empty disables it.
	RedisAddr     string `envconfig:"REDIS_ADDR"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`

	LocalTimezone string `envconfig:"LOCAL_TIMEZONE" default:"Asia/Ho_Chi_Minh"`

	RequestSystemRanks         []int `envconfig:"REQUEST_SYSTEM_RANKS" default:"1,2"`
	ProjectViewSystemRanks     []int `envconfig:"PROJECT_VIEW_SYSTEM_RANKS" default:"1,2,3,4,5,6"`
	AssignmentAdminSystemRanks []int `envconfig:"ASSIGNMENT_ADMIN_SYSTEM_RANKS" default:"1,2"`

	FirstSuperuserEmail    string `envconfig:"FIRST_SUPERUSER_EMAIL" default:"admin@example.com"`
	FirstSuperuserPassword string `envconfig:"FIRST_SUPERUSER_PASSWORD" default:"changethis"`

	LoginRatePerMinute int `envconfig:"LOGIN_RATE_PER_MINUTE" default:"10"`
}

// Load reads an optional .env file and then the process environment.
func Load(log *logrus.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Info(".env file not found, using system environment variables")
	} else {
		log.Info(".env file loaded")
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if cfg.DSN == "" {
		return nil, errors.New("MYSQL_DSN not set in environment")
	}
	if cfg.TokenTTL <= 0 {
		return nil, errors.New("TOKEN_TTL must be positive")
	}
	if cfg.IsProduction() && cfg.JWTSecret == "dev-secret-only" {
		return nil, errors.New("JWT_SECRET must be set in production")
	}
	return &cfg, nil
}

func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}

// Location resolves LocalTimezone, falling back to UTC when unknown.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.LocalTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

package db

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"projecthub/internal/models"
)

// Connect opens the MySQL pool and verifies it with a ping.
func Connect(dsn string, log *logrus.Logger) (*gorm.DB, error) {
	gdb, err := gorm.Open(mysql.Open(dsn), Options(log))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("database handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("database ping: %w", err)
	}

	log.Info("database connected")
	return gdb, nil
}

// Options is the gorm configuration shared by every dialect. TranslateError
// turns unique violations into gorm.ErrDuplicatedKey.
func Options(log *logrus.Logger) *gorm.Config {
	return &gorm.Config{
		TranslateError: true,
		Logger: logger.New(log, logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	}
}

// AutoMigrate creates or updates every table.
func AutoMigrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(models.All()...)
}

// Package database handles the GORM connection and schema migration.
package database

import (
	"fmt"

	"cifconnect/internal/config"
	"cifconnect/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect opens the PostgreSQL connection and runs migrations.
func Connect(cfg *config.Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.DBHost,
		cfg.DBPort,
		cfg.DBUser,
		cfg.DBPassword,
		cfg.DBName,
		cfg.DBSSLMode,
	)

	logLevel := logger.Warn
	if cfg.Env == "development" {
		logLevel = logger.Info
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
		// Unique-constraint violations must surface as gorm.ErrDuplicatedKey
		// so the repositories can map them to conflicts.
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

// Migrate runs AutoMigrate for all models in dependency order.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Room{},
		&models.RoomMember{},
		&models.Message{},
		&models.Reaction{},
		&models.Report{},
	); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// EnsureDefaultRoom creates the well-known public room every new user is
// auto-joined to. It is idempotent across restarts.
func EnsureDefaultRoom(db *gorm.DB, name string) error {
	if name == "" {
		return nil
	}
	room := models.Room{
		Name:        name,
		Description: "The default public room for everyone.",
	}
	err := db.Where(models.Room{Name: name}).FirstOrCreate(&room).Error
	if err != nil {
		return fmt.Errorf("failed to ensure default room: %w", err)
	}
	return nil
}

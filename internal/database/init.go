package database

import (
	"fmt"

	"github.com/fixmate/go_booking/internal/config"
)

// InitFromConfig initializes a database connection from application config
func InitFromConfig(cfg *config.Config) (*DB, error) {
	dbConfig := Config{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		DBName:   cfg.Database.DBName,
		SSLMode:  cfg.Database.SSLMode,
	}

	db, err := New(dbConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return db, nil
}

// RunMigrations applies all pending embedded migrations
func RunMigrations(db *DB) error {
	runner := NewMigrationRunner(db, MigrationsFS())
	if err := runner.Run(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

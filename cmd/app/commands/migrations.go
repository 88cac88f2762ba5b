package commands

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/sentimeter/sentimeter/internal/app"
	"github.com/sentimeter/sentimeter/internal/config"
)

// RunMigrations applies all pending database migrations.
// Returns nil if there are no migrations to apply.
func RunMigrations() error {
	cfg := config.Load()

	// Create container just for logger
	container := app.NewContainer(cfg)
	logger := container.Logger()

	logger.Info("running database migrations",
		slog.String("driver", cfg.DBDriver),
	)

	if cfg.DBDriver != "sqlite" {
		return fmt.Errorf("unsupported database driver: %s", cfg.DBDriver)
	}

	migrationsPath := "file://migrations/sqlite"
	databaseURL := fmt.Sprintf("sqlite://%s", cfg.DBConnectionString)

	m, err := migrate.New(migrationsPath, databaseURL)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer closeMigrate(m, logger)

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Info("migrations completed successfully")
	return nil
}

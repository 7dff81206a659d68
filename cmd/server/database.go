package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/advancetodo/api/internal/config"
	"github.com/advancetodo/api/internal/platform/postgres"
	"github.com/advancetodo/api/internal/redact"
)

// setupAppDatabase opens the connection pool and applies pending migrations.
// The pool is closed again if migrating fails.
func setupAppDatabase(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*sql.DB, error) {
	db, err := postgres.Open(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	logger.Info("Database connection established")

	if err := postgres.Migrate(ctx, db, logger); err != nil {
		closeDatabase(db, logger)
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return db, nil
}

func closeDatabase(db *sql.DB, logger *slog.Logger) {
	if err := db.Close(); err != nil {
		logger.Error("Error closing database connection", "error", redact.Error(err))
	}
}

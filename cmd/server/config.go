package main

import (
	"fmt"
	"log/slog"

	"github.com/advancetodo/api/internal/config"
)

// loadAppConfig loads the application configuration from environment variables or config file.
// Returns the loaded config and any loading error.
func loadAppConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	// Log basic configuration details after successful loading
	slog.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel)

	slog.Debug("Mail configuration",
		"transport", cfg.Mail.Transport,
		"enabled", cfg.Mail.Enabled())
	slog.Debug("Scheduler configuration",
		"enabled", cfg.Scheduler.Enabled,
		"morning", cfg.Scheduler.Morning,
		"evening", cfg.Scheduler.Evening,
		"timezone", cfg.Scheduler.Timezone)

	return cfg, nil
}

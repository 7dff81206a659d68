package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/advancetodo/api/internal/config"
	"github.com/advancetodo/api/internal/domain"
	"github.com/advancetodo/api/internal/mail"
	"github.com/advancetodo/api/internal/platform/postgres"
	"github.com/advancetodo/api/internal/redact"
	"github.com/advancetodo/api/internal/reminder"
	"github.com/advancetodo/api/internal/service"
	"github.com/advancetodo/api/internal/service/auth"
	"github.com/advancetodo/api/internal/store"
)

// schedulerStopTimeout bounds how long shutdown waits for an in-flight batch.
const schedulerStopTimeout = 30 * time.Second

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	// Configuration
	config *config.Config

	// Core services
	logger *slog.Logger
	db     *sql.DB
	clock  reminder.Clock

	// Stores (using interfaces for proper abstraction)
	userStore store.UserStore
	taskStore store.TaskStore

	// Reminder pipeline
	selector  *reminder.Selector
	sender    mail.Sender
	notifier  *reminder.Notifier
	scheduler *reminder.Scheduler

	// Service interfaces
	jwtService  auth.JWTService
	taskService service.TaskService
}

// newApplication creates a new application instance with all dependencies initialized.
// It accepts core dependencies like configuration, logger, and database connection that
// must be established before application initialization.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
		clock:  reminder.SystemClock,
	}

	loc, err := cfg.Scheduler.Location()
	if err != nil {
		return nil, fmt.Errorf("failed to load scheduler time zone: %w", err)
	}

	// Initialize JWT service
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}

	// Initialize stores
	app.userStore = postgres.NewPostgresUserStore(db, logger)
	app.taskStore = postgres.NewPostgresTaskStore(db, logger)

	app.selector = reminder.NewSelector(app.taskStore, loc, logger)

	app.sender, err = mail.New(ctx, cfg.Mail, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize mail sender: %w", err)
	}
	logger.Info("Mail sender initialized",
		"transport", cfg.Mail.Transport,
		"enabled", cfg.Mail.Enabled())

	app.notifier = reminder.NewNotifier(app.userStore, app.selector, app.sender, reminder.NotifierConfig{
		Concurrency: cfg.Scheduler.Concurrency,
		SendTimeout: cfg.Mail.SendTimeout,
		BaseURL:     cfg.Server.BaseURL,
	}, logger)

	app.scheduler, err = reminder.NewScheduler(app.notifier, reminder.ScheduleConfig{
		Morning: cfg.Scheduler.Morning,
		Evening: cfg.Scheduler.Evening,
	}, loc, app.clock, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create reminder scheduler: %w", err)
	}

	app.taskService, err = service.NewTaskService(app.taskStore, app.selector, db, app.clock, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create task service: %w", err)
	}

	logger.Info("Application initialized successfully", "timezone", loc.String())
	return app, nil
}

// Run starts the reminder scheduler and the HTTP server, and blocks until
// ctx is done or the server fails.
func (app *application) Run(ctx context.Context) error {
	if app.config.Scheduler.Enabled {
		if err := app.scheduler.Start(); err != nil {
			return fmt.Errorf("failed to start reminder scheduler: %w", err)
		}
	} else {
		app.logger.Warn("Reminder scheduler disabled by configuration")
	}

	// Set up router using the application dependencies
	router := app.setupRouter()

	// Start the HTTP server
	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// runOnce runs a single batch for trigger and logs its outcome.
func (app *application) runOnce(ctx context.Context, trigger domain.Trigger) error {
	report, err := app.scheduler.RunNow(ctx, trigger)
	if err != nil {
		return fmt.Errorf("reminder batch failed: %w", err)
	}

	counts := report.Counts()
	app.logger.Info("One-shot reminder batch completed",
		"trigger", string(trigger),
		"sent", counts.Sent,
		"skipped", counts.Skipped,
		"failed", counts.Failed)
	return nil
}

// cleanup handles graceful shutdown of application resources. The scheduler
// is given until ctx expires, or schedulerStopTimeout, to finish a batch.
func (app *application) cleanup(ctx context.Context) {
	if app.scheduler != nil {
		stopCtx, cancel := context.WithTimeout(ctx, schedulerStopTimeout)
		if err := app.scheduler.Stop(stopCtx); err != nil {
			app.logger.Error("Reminder scheduler did not stop cleanly", "error", redact.Error(err))
		}
		cancel()
	}

	// Close database connection
	if app.db != nil {
		closeDatabase(app.db, app.logger)
	}

	app.logger.Info("Application shutdown completed")
}

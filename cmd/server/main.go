// Package main implements the entry point for the Advance Todo API server,
// which serves the task queries of the web client and sends the daily
// morning and evening reminder emails.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/advancetodo/api/internal/domain"
)

// options are the command-line flags.
type options struct {
	// runOnce names a trigger to run a single batch for before exiting.
	runOnce string
	// migrateOnly applies migrations and exits.
	migrateOnly bool
}

func parseFlags(args []string) (options, error) {
	var opts options
	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.StringVar(&opts.runOnce, "run-once", "", "run one reminder batch (morning|evening) and exit")
	fs.BoolVar(&opts.migrateOnly, "migrate-only", false, "apply database migrations and exit")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if opts.runOnce != "" && opts.migrateOnly {
		return options{}, fmt.Errorf("-run-once and -migrate-only are mutually exclusive")
	}
	if opts.runOnce != "" {
		if _, err := domain.ParseTrigger(opts.runOnce); err != nil {
			return options{}, err
		}
	}
	return opts, nil
}

// main is the entry point for the advance-todo server.
func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts); err != nil {
		slog.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

// run loads configuration, connects to the database and then either serves
// until ctx is done or performs the one-shot operation named by opts.
func run(ctx context.Context, opts options) error {
	cfg, err := loadAppConfig()
	if err != nil {
		return err
	}

	logger, err := setupAppLogger(cfg)
	if err != nil {
		return err
	}

	db, err := setupAppDatabase(ctx, cfg, logger)
	if err != nil {
		return err
	}

	if opts.migrateOnly {
		defer closeDatabase(db, logger)
		logger.Info("migrations applied, exiting")
		return nil
	}

	app, err := newApplication(ctx, cfg, logger, db)
	if err != nil {
		closeDatabase(db, logger)
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	if opts.runOnce != "" {
		defer app.cleanup(context.Background())
		trigger, _ := domain.ParseTrigger(opts.runOnce)
		return app.runOnce(ctx, trigger)
	}

	return app.Run(ctx)
}

// Command server runs the Todo API. Configuration comes from configs/ for
// the profile named by APP_PROFILE, overridden by APP_* environment
// variables. SIGINT or SIGTERM drains in-flight requests before exit.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/samber/do/v2"

	adapthttp "github.com/jsamuelsen11/go-todo-service/internal/adapters/http"
	"github.com/jsamuelsen11/go-todo-service/internal/adapters/persistence/sqlite"
	"github.com/jsamuelsen11/go-todo-service/internal/platform/config"
	"github.com/jsamuelsen11/go-todo-service/internal/platform/logging"
	"github.com/jsamuelsen11/go-todo-service/internal/platform/telemetry"
)

const (
	drainTimeout = 15 * time.Second
	flushTimeout = 5 * time.Second
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run() error {
	profile := os.Getenv("APP_PROFILE")
	if profile == "" {
		return errors.New("APP_PROFILE must name a config profile (local, test, prod)")
	}

	cfg, err := config.Load(profile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	logger := logging.New(os.Stderr, cfg.Log)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	otel, err := telemetry.Setup(ctx, cfg.Telemetry)
	if err != nil {
		return fmt.Errorf("setting up telemetry: %w", err)
	}
	defer flush(logger, otel)

	injector := do.New()
	provide(ctx, injector, cfg, logger, otel.Metrics)

	server, err := do.Invoke[*adapthttp.Server](injector)
	if err != nil {
		return fmt.Errorf("wiring server: %w", err)
	}
	if cfg.Database.Driver == config.DriverSQLite {
		defer closeStore(logger, do.MustInvoke[*sqlite.Store](injector))
	}

	logger.Info("todo service configured",
		slog.String("profile", profile),
		slog.String("database", cfg.Database.Driver),
		slog.Bool("telemetry", cfg.Telemetry.Enabled),
	)

	if err := server.Run(ctx); err != nil {
		return fmt.Errorf("running server: %w", err)
	}
	logger.Info("shutdown complete")
	return nil
}

func flush(logger *slog.Logger, p *telemetry.Providers) {
	ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
	defer cancel()
	if err := p.Shutdown(ctx); err != nil {
		logger.Error("flushing telemetry", slog.Any("error", err))
	}
}

func closeStore(logger *slog.Logger, store *sqlite.Store) {
	if err := store.Close(); err != nil {
		logger.Error("closing sqlite store", slog.Any("error", err))
	}
}

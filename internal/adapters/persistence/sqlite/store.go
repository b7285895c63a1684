// Package sqlite implements the todo repository on a SQLite database through
// sqlx and the pure-Go modernc.org/sqlite driver.
//
//	store, err := sqlite.New(ctx, &cfg.Database, metrics, logger)
//	defer store.Close()
//
// The store applies pending schema migrations on open, records a span and a
// db.client.operation.duration sample per operation, and doubles as the
// readiness health checker for the database.
package sqlite

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	_ "modernc.org/sqlite"

	"github.com/jsamuelsen11/go-todo-service/internal/domain"
	"github.com/jsamuelsen11/go-todo-service/internal/platform/config"
	"github.com/jsamuelsen11/go-todo-service/internal/platform/telemetry"
	"github.com/jsamuelsen11/go-todo-service/internal/ports"
)

const (
	driverName = "sqlite"
	tracerName = "github.com/jsamuelsen11/go-todo-service/internal/adapters/persistence/sqlite"

	// MemoryDSN opens a private in-memory database.
	MemoryDSN = ":memory:"
)

// Compile-time checks.
var (
	_ ports.TodoRepository = (*Store)(nil)
	_ ports.HealthChecker  = (*Store)(nil)
)

// Store is a SQLite-backed todo repository.
type Store struct {
	db      *sqlx.DB
	tracer  trace.Tracer
	metrics *telemetry.Metrics
	logger  *slog.Logger
	now     func() time.Time
}

// New opens (or creates) the database described by cfg, applies pragmas and
// runs any pending schema migrations. If metrics is nil, metric recording is
// skipped. A nil logger is replaced with a discarding one.
func New(ctx context.Context, cfg *config.DatabaseConfig, metrics *telemetry.Metrics, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	db, err := sqlx.Open(driverName, buildDSN(cfg.DSN, cfg.BusyTimeout))
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// Every connection to :memory: gets its own empty database.
	maxOpen := cfg.MaxOpenConns
	if cfg.DSN == MemoryDSN || maxOpen < 1 {
		maxOpen = 1
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxOpen)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	s := &Store{
		db:      db,
		tracer:  otel.Tracer(tracerName),
		metrics: metrics,
		logger:  logger,
		now:     time.Now,
	}

	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// Name returns the health checker identifier.
func (s *Store) Name() string {
	return "sqlite"
}

// HealthCheck verifies that a connection to the database can be obtained.
func (s *Store) HealthCheck(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("pinging sqlite: %w", err)
	}
	return nil
}

// buildDSN appends per-connection pragmas understood by modernc.org/sqlite.
func buildDSN(dsn string, busyTimeout time.Duration) string {
	params := url.Values{}
	params.Add("_pragma", "foreign_keys(1)")
	if busyTimeout > 0 {
		params.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", busyTimeout.Milliseconds()))
	}

	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + params.Encode()
}

// observe starts a client span for a storage operation and returns the span
// context plus a function that ends the span and records the duration metric.
// Not-found results are not treated as failures.
func (s *Store) observe(ctx context.Context, op string) (context.Context, func(error)) {
	start := time.Now()

	ctx, span := s.tracer.Start(ctx, "sqlite "+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			telemetry.AttrDBSystem.String(driverName),
			telemetry.AttrDBOperation.String(op),
		),
	)

	return ctx, func(err error) {
		result := "success"
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			result = "error"
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()

		if s.metrics == nil {
			return
		}
		s.metrics.DBOperationDuration.Record(ctx, time.Since(start).Seconds(),
			metric.WithAttributes(
				telemetry.AttrDBSystem.String(driverName),
				telemetry.AttrDBOperation.String(op),
				telemetry.AttrResult.String(result),
			),
		)
	}
}

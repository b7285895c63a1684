// Package logging builds the service's slog loggers and carries them through
// request contexts.
//
// Inbound middleware stores a logger enriched with the request and
// correlation IDs, so code below the handlers logs through FromContext:
//
//	logging.FromContext(ctx).ErrorContext(ctx, "failed to save todo",
//	    slog.String("operation", "Update"),
//	    slog.Int64("todo_id", t.ID),
//	    slog.Any("error", err),
//	)
package logging

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/jsamuelsen11/go-todo-service/internal/platform/config"
)

// Output formats accepted by New.
const (
	FormatJSON = "json"
	FormatText = "text"
)

type loggerKey struct{}

// New returns a logger writing cfg.Format records at cfg.Level or above to
// w. Unknown levels mean info and unknown formats mean JSON. Debug loggers
// add the source location. Credentials are masked in every record.
func New(w io.Writer, cfg config.LogConfig) *slog.Logger {
	level := ParseLevel(cfg.Level)
	opts := &slog.HandlerOptions{
		Level:       level,
		AddSource:   level <= slog.LevelDebug,
		ReplaceAttr: redactor(),
	}

	if strings.EqualFold(cfg.Format, FormatText) {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// ParseLevel maps a case-insensitive level name (debug, info, warn, error,
// optionally with an offset such as "warn+2") to a slog.Level. Anything
// else is info.
func ParseLevel(name string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// WithLogger stores logger in ctx.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// FromContext returns the logger stored in ctx, or slog.Default.
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}

// Enrich stores a child of the context logger that adds args to every
// record.
func Enrich(ctx context.Context, args ...any) context.Context {
	return WithLogger(ctx, FromContext(ctx).With(args...))
}

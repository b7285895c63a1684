package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/jsamuelsen11/go-todo-service/internal/platform/logging"
)

// Logging writes one access record per request and hands downstream code a
// logger bound to the request and correlation IDs via logging.FromContext.
// The request line and redacted headers are logged at debug on the way in.
// Completion is logged at info, or warn for 5xx.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ctx := logging.Enrich(logging.WithLogger(r.Context(), logger),
				slog.String("request_id", RequestIDFromContext(r.Context())),
				slog.String("correlation_id", CorrelationIDFromContext(r.Context())),
			)
			log := logging.FromContext(ctx)

			if log.Enabled(ctx, slog.LevelDebug) {
				log.DebugContext(ctx, "request received",
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.String("remote", r.RemoteAddr),
					HeaderGroup(r.Header),
				)
			}

			rw := record(w)
			next.ServeHTTP(rw, r.WithContext(ctx))

			level := slog.LevelInfo
			if rw.code() >= http.StatusInternalServerError {
				level = slog.LevelWarn
			}
			log.LogAttrs(ctx, level, "request handled",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("route", matchedRoute(r)),
				slog.Int("status", rw.code()),
				slog.Int64("bytes", rw.bytes),
				slog.Duration("duration", time.Since(start)),
			)
		})
	}
}

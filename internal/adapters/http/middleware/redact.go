package middleware

import (
	"log/slog"
	"maps"
	"net/http"
	"slices"
	"strings"

	"github.com/jsamuelsen11/go-todo-service/internal/platform/logging"
)

const redacted = "[REDACTED]"

// HeaderGroup renders h as a "headers" log group, one attribute per header
// in name order. Values of sensitive headers (see logging.IsSensitiveHeader)
// are replaced with [REDACTED]; repeated values are comma-joined.
func HeaderGroup(h http.Header) slog.Attr {
	attrs := make([]any, 0, len(h))
	for _, name := range slices.Sorted(maps.Keys(h)) {
		value := redacted
		if !logging.IsSensitiveHeader(name) {
			value = strings.Join(h[name], ",")
		}
		attrs = append(attrs, slog.String(name, value))
	}
	return slog.Group("headers", attrs...)
}

package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// Headers carrying request identity. Both are echoed on the response.
const (
	HeaderRequestID     = "X-Request-ID"
	HeaderCorrelationID = "X-Correlation-ID"
)

// maxIDLength bounds client-supplied IDs.
const maxIDLength = 128

type idKey int

const (
	requestIDKey idKey = iota
	correlationIDKey
)

// RequestIDFromContext returns the request ID stored by RequestID, or "".
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// CorrelationIDFromContext returns the correlation ID stored by
// CorrelationID, or "".
func CorrelationIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(correlationIDKey).(string)
	return id
}

// RequestID reuses a well-formed incoming X-Request-ID or generates a random
// UUID.
func RequestID() func(http.Handler) http.Handler {
	return propagateID(requestIDKey, HeaderRequestID, func(*http.Request) string {
		return uuid.NewString()
	})
}

// CorrelationID reuses a well-formed incoming X-Correlation-ID or falls back
// to the request ID, so it must run after RequestID.
func CorrelationID() func(http.Handler) http.Handler {
	return propagateID(correlationIDKey, HeaderCorrelationID, func(r *http.Request) string {
		return RequestIDFromContext(r.Context())
	})
}

func propagateID(key idKey, header string, fallback func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(header)
			if !wellFormedID(id) {
				id = fallback(r)
			}

			ctx := context.WithValue(r.Context(), key, id)

			if id != "" {
				w.Header().Set(header, id)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// wellFormedID accepts non-empty IDs of visible ASCII characters, keeping
// client input from smuggling spaces or control bytes into logs.
func wellFormedID(id string) bool {
	if id == "" || len(id) > maxIDLength {
		return false
	}
	for i := range len(id) {
		if id[i] < '!' || id[i] > '~' {
			return false
		}
	}
	return true
}

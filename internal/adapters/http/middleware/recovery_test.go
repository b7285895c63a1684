package middleware_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen11/go-todo-service/internal/adapters/http/middleware"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func panicking(v any) http.Handler {
	return http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic(v) })
}

func TestRecovery_PassesThrough(t *testing.T) {
	t.Parallel()

	handler := middleware.Recovery(discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/todos", http.NoBody))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestRecovery_ServerErrorEnvelope(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		handler http.Handler
	}{
		{"string panic", panicking("something went wrong")},
		{"int panic", panicking(42)},
		{"error panic", panicking(assert.AnError)},
		{"panic behind Timeout", middleware.Timeout(time.Second)(panicking("async"))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := httptest.NewRecorder()
			middleware.Recovery(discardLogger())(tt.handler).
				ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/todos/1", http.NoBody))

			assert.Equal(t, http.StatusInternalServerError, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.JSONEq(t, `{"success":false,"message":"Server Error"}`, rec.Body.String())
		})
	}
}

func TestRecovery_LogsPanicAndStack(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		handler   http.Handler
		wantFrame string
	}{
		{"direct", panicking("boom"), "middleware_test.panicking"},
		{"relayed by Timeout", middleware.Timeout(time.Second)(panicking("boom")), "middleware_test.panicking"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			logger := slog.New(slog.NewJSONHandler(&buf, nil))
			middleware.Recovery(logger)(tt.handler).
				ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/todos", http.NoBody))

			var rec map[string]any
			require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
			assert.Equal(t, "ERROR", rec["level"])
			assert.Equal(t, "panic recovered", rec["msg"])
			assert.Equal(t, "boom", rec["panic"])
			assert.Equal(t, "/todos", rec["path"])
			assert.Contains(t, rec["stack"], tt.wantFrame)
		})
	}
}

func TestRecovery_LeavesCommittedResponse(t *testing.T) {
	t.Parallel()

	handler := middleware.Recovery(discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte("partial"))
		panic("late panic")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/todos", http.NoBody))

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, "partial", rec.Body.String())
}

func TestRecovery_RepanicsAbortHandler(t *testing.T) {
	t.Parallel()

	handler := middleware.Recovery(discardLogger())(panicking(http.ErrAbortHandler))

	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/todos", http.NoBody))
	})
}

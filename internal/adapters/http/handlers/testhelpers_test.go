package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen11/go-todo-service/internal/domain/todo"
)

var testTime = time.Date(2026, 2, 12, 15, 4, 5, 0, time.UTC)

// envelope is dto.Envelope with a typed payload.
type envelope[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    *T     `json:"data"`
}

// withChiParams attaches URL parameters as chi would after routing.
func withChiParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func validTodo() todo.Todo {
	return todo.Todo{
		ID:          1,
		Title:       "Buy milk",
		Description: "2 liters",
		CreatedAt:   testTime,
		UpdatedAt:   testTime,
	}
}

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(v))
	return &buf
}

func decodeJSON[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v), "body: %s", rec.Body.String())
	return v
}

func requireStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	require.Equal(t, want, rec.Code, "body: %s", rec.Body.String())
}

// requireEnvelope checks the status line and envelope header fields and
// returns the decoded data, nil when absent.
func requireEnvelope[T any](t *testing.T, rec *httptest.ResponseRecorder, status int, success bool, message string) *T {
	t.Helper()
	requireStatus(t, rec, status)

	env := decodeJSON[envelope[T]](t, rec)
	assert.Equal(t, success, env.Success, "success")
	assert.Equal(t, message, env.Message, "message")
	return env.Data
}

package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	adapthttp "github.com/jsamuelsen11/go-todo-service/internal/adapters/http"
	"github.com/jsamuelsen11/go-todo-service/internal/adapters/http/handlers"
	"github.com/jsamuelsen11/go-todo-service/internal/adapters/http/middleware"
	"github.com/jsamuelsen11/go-todo-service/internal/adapters/persistence/memory"
	"github.com/jsamuelsen11/go-todo-service/internal/app"
	"github.com/jsamuelsen11/go-todo-service/internal/domain"
	"github.com/jsamuelsen11/go-todo-service/internal/platform/health"
)

func newTestServer(t *testing.T) string {
	t.Helper()

	logger := slog.New(slog.DiscardHandler)
	srv := httptest.NewServer(adapthttp.NewRouter(adapthttp.Routes{
		Todos:  handlers.NewTodoHandler(app.NewTodoService(memory.New(), logger)),
		Health: handlers.NewHealthHandler(health.New()),
	}))
	t.Cleanup(srv.Close)
	return srv.URL
}

// run executes todoctl against baseURL and returns its standard output.
func run(t *testing.T, baseURL string, args ...string) (string, error) {
	t.Helper()

	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--base-url", baseURL}, args...))

	err := cmd.ExecuteContext(t.Context())
	return out.String(), err
}

func TestTodoctl_Lifecycle(t *testing.T) {
	t.Parallel()

	url := newTestServer(t)

	out, err := run(t, url, "create", "--title", "Buy milk", "--description", "2 liters")
	require.NoError(t, err)
	require.Contains(t, out, "Buy milk")

	out, err = run(t, url, "list", "--json")
	require.NoError(t, err)
	var listed []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &listed))
	require.Len(t, listed, 1)
	require.Equal(t, "2 liters", listed[0]["description"])

	out, err = run(t, url, "update", "1", "--title", "Buy oat milk", "--description", "1 liter")
	require.NoError(t, err)
	require.Contains(t, out, "Buy oat milk")

	out, err = run(t, url, "get", "1", "--json")
	require.NoError(t, err)
	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Equal(t, "Buy oat milk", got["title"])

	out, err = run(t, url, "delete", "1")
	require.NoError(t, err)
	require.Contains(t, out, "Buy oat milk")

	_, err = run(t, url, "get", "1")
	require.ErrorIs(t, err, domain.ErrNotFound)
	require.Contains(t, err.Error(), "todo 1")
}

func TestTodoctl_ListTable(t *testing.T) {
	t.Parallel()

	url := newTestServer(t)
	_, err := run(t, url, "create", "--title", "Buy milk", "--description", "2 liters")
	require.NoError(t, err)

	out, err := run(t, url, "list")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	require.True(t, strings.HasPrefix(lines[0], "ID"))
	require.Contains(t, lines[1], "Buy milk")
}

func TestTodoctl_Errors(t *testing.T) {
	t.Parallel()

	url := newTestServer(t)

	tests := []struct {
		name    string
		args    []string
		wantErr error
		wantMsg string
	}{
		{"invalid id", []string{"get", "abc"}, nil, `invalid todo id "abc"`},
		{"missing flag", []string{"create", "--title", "only"}, nil, "description"},
		{"empty title rejected by server", []string{"create", "--title", "", "--description", "d"}, domain.ErrValidation, "Invalid Request"},
		{"delete unknown", []string{"delete", "42"}, domain.ErrNotFound, "todo 42"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := run(t, url, tt.args...)
			require.Error(t, err)
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want wrapping %v", err, tt.wantErr)
			}
			require.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestTodoctl_Health(t *testing.T) {
	t.Parallel()

	url := newTestServer(t)

	out, err := run(t, url, "health")
	require.NoError(t, err)
	require.Equal(t, "ready\n  client todo-api: ok\n", out)

	out, err = run(t, url, "health", "--json")
	require.NoError(t, err)
	require.JSONEq(t, `{"ready":true,"checks":{},"client":{"todo-api":"ok"}}`, out)
}

func TestTodoctl_SendsCorrelationID(t *testing.T) {
	t.Parallel()

	var (
		mu  sync.Mutex
		ids []string
	)
	logger := slog.New(slog.DiscardHandler)
	router := adapthttp.NewRouter(adapthttp.Routes{
		Todos:  handlers.NewTodoHandler(app.NewTodoService(memory.New(), logger)),
		Health: handlers.NewHealthHandler(health.New()),
	})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		ids = append(ids, r.Header.Get(middleware.HeaderCorrelationID))
		mu.Unlock()
		router.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)

	_, err := run(t, srv.URL, "list")
	require.NoError(t, err)
	_, err = run(t, srv.URL, "health")
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, ids, 2)
	for _, id := range ids {
		require.NoError(t, uuid.Validate(id), "correlation id %q", id)
	}
	require.NotEqual(t, ids[0], ids[1], "each invocation gets its own id")
}

func TestTodoctl_ConfigFile(t *testing.T) {
	t.Parallel()

	file := filepath.Join(t.TempDir(), "todoctl.yaml")
	require.NoError(t, os.WriteFile(file, []byte("base_url: "+newTestServer(t)+"\n"), 0o600))

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"--config", file, "health"})

	require.NoError(t, cmd.ExecuteContext(t.Context()))
	require.Equal(t, "ready\n  client todo-api: ok\n", out.String())
}

func TestTodoctl_InvalidBaseURLFlag(t *testing.T) {
	t.Parallel()

	_, err := run(t, "localhost:8080", "list")
	require.ErrorContains(t, err, "base_url")
}

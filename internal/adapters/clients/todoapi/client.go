// Package todoapi is a typed client for the Todo HTTP API. It unwraps the
// {success, message, data} envelope and maps failures back to domain errors,
// so callers work with todo.Todo values and errors.Is checks.
package todoapi

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/jsamuelsen11/go-todo-service/internal/domain/todo"
	"github.com/jsamuelsen11/go-todo-service/internal/platform/httpclient"
)

// ServiceName identifies the Todo API in traces, metrics and health checks.
const ServiceName = "todo-api"

// Client is the outbound adapter for the Todo API. Every call goes through
// httpclient.Client and so gets circuit breaking, rate limiting, retry of
// idempotent methods and tracing.
type Client struct {
	http *httpclient.Client
	req  *requester
}

// Readiness is the decoded /health/ready answer.
type Readiness struct {
	Ready  bool              `json:"ready"`
	Checks map[string]string `json:"checks"` // name -> "ok" or the failure message
}

// New creates a Client sending requests through client, whose BaseURL must
// point at the API root (e.g. "http://localhost:8080").
func New(client *httpclient.Client, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Client{
		http: client,
		req:  &requester{client: client, logger: logger},
	}
}

// List fetches every todo from GET /todos.
func (c *Client) List(ctx context.Context) ([]todo.Todo, error) {
	var dtos []todoDTO
	if _, err := c.req.do(ctx, http.MethodGet, "/todos", nil, &dtos); err != nil {
		return nil, err
	}
	return toDomainList(dtos)
}

// Get fetches one todo from GET /todos/{id}. Returns domain.ErrNotFound for
// unknown ids.
func (c *Client) Get(ctx context.Context, id int64) (*todo.Todo, error) {
	return c.one(ctx, http.MethodGet, todoPath(id), nil)
}

// Create posts a new todo. Returns domain.ErrValidation when the API rejects
// the input.
func (c *Client) Create(ctx context.Context, in todo.Input) (*todo.Todo, error) {
	return c.one(ctx, http.MethodPost, "/todos", writeRequestDTO(in))
}

// Update replaces title and description of todo id via PUT.
func (c *Client) Update(ctx context.Context, id int64, in todo.Input) (*todo.Todo, error) {
	return c.one(ctx, http.MethodPut, todoPath(id), writeRequestDTO(in))
}

// Delete removes todo id and returns its last state.
func (c *Client) Delete(ctx context.Context, id int64) (*todo.Todo, error) {
	return c.one(ctx, http.MethodDelete, todoPath(id), nil)
}

// Readiness queries GET /health/ready. A 503 answer is not an error; it is
// reported through Readiness.Ready.
func (c *Client) Readiness(ctx context.Context) (*Readiness, error) {
	var dto readinessDTO
	status, err := c.req.getJSON(ctx, "/health/ready", &dto)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK && status != http.StatusServiceUnavailable {
		return nil, fmt.Errorf("GET /health/ready: unexpected status %d", status)
	}

	r := &Readiness{
		Ready:  strings.EqualFold(dto.Status, "ready"),
		Checks: make(map[string]string, len(dto.Checks)),
	}
	for name, check := range dto.Checks {
		if check.Error != "" {
			r.Checks[name] = check.Error
			continue
		}
		r.Checks[name] = check.Status
	}
	return r, nil
}

// Name returns ServiceName.
func (c *Client) Name() string {
	return ServiceName
}

// HealthCheck reports the circuit breaker state of the underlying client
// without a network call.
func (c *Client) HealthCheck(ctx context.Context) error {
	return c.http.HealthCheck(ctx)
}

func (c *Client) one(ctx context.Context, method, path string, body any) (*todo.Todo, error) {
	var dto todoDTO
	if _, err := c.req.do(ctx, method, path, body, &dto); err != nil {
		return nil, err
	}
	t, err := dto.toDomain()
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func todoPath(id int64) string {
	return fmt.Sprintf("/todos/%d", id)
}

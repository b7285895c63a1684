package handlers

import (
	"log/slog"
	"net/http"

	"github.com/jsamuelsen11/go-todo-service/internal/adapters/http/dto"
	"github.com/jsamuelsen11/go-todo-service/internal/platform/logging"
	"github.com/jsamuelsen11/go-todo-service/internal/ports"
)

// Probe states reported in health bodies.
const (
	StateOK       = "ok"
	StateFailing  = "fail"
	StateReady    = "ready"
	StateNotReady = "not_ready"
)

// Readiness is the body of GET /health/ready.
type Readiness struct {
	Status string                `json:"status"`
	Checks map[string]CheckState `json:"checks"`
}

// CheckState reports one dependency.
type CheckState struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// HealthHandler serves the liveness and readiness probes. Probe bodies are
// plain JSON, not the todo envelope.
type HealthHandler struct {
	registry ports.HealthRegistry
}

func NewHealthHandler(registry ports.HealthRegistry) *HealthHandler {
	return &HealthHandler{registry: registry}
}

// Liveness answers 200 while the process can serve HTTP at all.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-store")
	dto.WriteJSON(w, r, http.StatusOK, map[string]string{"status": StateOK})
}

// Readiness runs every registered check. Any failure turns the answer into
// 503 not_ready and is logged at warn.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	body := Readiness{Status: StateReady, Checks: map[string]CheckState{}}

	for name, err := range h.registry.CheckAll(ctx) {
		if err == nil {
			body.Checks[name] = CheckState{Status: StateOK}
			continue
		}
		body.Status = StateNotReady
		body.Checks[name] = CheckState{Status: StateFailing, Error: err.Error()}
		logging.FromContext(ctx).WarnContext(ctx, "dependency not ready",
			slog.String("check", name),
			slog.Any("error", err),
		)
	}

	code := http.StatusOK
	if body.Status != StateReady {
		code = http.StatusServiceUnavailable
	}
	w.Header().Set("Cache-Control", "no-store")
	dto.WriteJSON(w, r, code, body)
}

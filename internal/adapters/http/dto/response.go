// Package dto provides the HTTP wire format of the Todo API: the
// {success, message, data} envelope, todo serialization and request body
// decoding for the inbound HTTP adapter layer.
package dto

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/jsamuelsen11/go-todo-service/internal/domain/todo"
	"github.com/jsamuelsen11/go-todo-service/internal/platform/logging"
)

// Envelope messages.
const (
	MsgListed      = "Todo List"
	MsgCreated     = "Todo created successfully."
	MsgRetrieved   = "Todo retrieved successfully."
	MsgUpdated     = "Todo updated successfully."
	MsgDeleted     = "Todo deleted successfully."
	MsgInvalid     = "Invalid Request"
	MsgNotFound    = "Todo not found."
	MsgServerError = "Server Error"
	MsgTimeout     = "Request timed out."

	MsgNoRoute          = "Not Found"
	MsgMethodNotAllowed = "Method Not Allowed"
)

// TimeLayout is the wire format of created_at and updated_at: ISO-8601 in UTC
// with microseconds, e.g. 2025-01-01T00:00:00.000000Z.
const TimeLayout = "2006-01-02T15:04:05.000000Z07:00"

// Envelope is the body of every Todo API response. Data is omitted from
// failure responses.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// TodoResponse represents a single todo in HTTP responses.
type TodoResponse struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// ToTodoResponse converts a domain Todo entity to an HTTP response DTO.
func ToTodoResponse(t *todo.Todo) TodoResponse {
	return TodoResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		CreatedAt:   t.CreatedAt.UTC().Format(TimeLayout),
		UpdatedAt:   t.UpdatedAt.UTC().Format(TimeLayout),
	}
}

// ToTodoListResponse converts domain todos to response DTOs. An empty input
// yields an empty, non-nil slice so that data serializes as [].
func ToTodoListResponse(todos []todo.Todo) []TodoResponse {
	items := make([]TodoResponse, len(todos))
	for i := range todos {
		items[i] = ToTodoResponse(&todos[i])
	}
	return items
}

// ParseTime parses a wire timestamp produced with TimeLayout.
func ParseTime(s string) (time.Time, error) {
	return time.Parse(TimeLayout, s)
}

// WriteSuccess writes a success envelope with the given status, message and
// data.
func WriteSuccess(w http.ResponseWriter, r *http.Request, status int, message string, data any) {
	writeEnvelope(w, r, status, Envelope{Success: true, Message: message, Data: data})
}

func writeEnvelope(w http.ResponseWriter, r *http.Request, status int, env Envelope) {
	WriteJSON(w, r, status, env)
}

// WriteJSON writes v as a JSON body with the given status. Encoding
// failures can only be logged since the status line is already out.
func WriteJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.FromContext(r.Context()).ErrorContext(r.Context(), "encoding response body",
			"status", status,
			"error", err,
		)
	}
}

package todoapi

import (
	"encoding/json"
	"fmt"

	"github.com/jsamuelsen11/go-todo-service/internal/adapters/http/dto"
	"github.com/jsamuelsen11/go-todo-service/internal/domain/todo"
)

// envelopeDTO is the {success, message, data} body of every Todo API response.
type envelopeDTO struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// todoDTO matches the serialized todo; timestamps use dto.TimeLayout.
type todoDTO struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// writeRequestDTO is the body of create and update calls.
type writeRequestDTO struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// readinessDTO matches the /health/ready body.
type readinessDTO struct {
	Status string `json:"status"`
	Checks map[string]struct {
		Status string `json:"status"`
		Error  string `json:"error,omitempty"`
	} `json:"checks"`
}

func (d *todoDTO) toDomain() (todo.Todo, error) {
	created, err := dto.ParseTime(d.CreatedAt)
	if err != nil {
		return todo.Todo{}, fmt.Errorf("parsing created_at of todo %d: %w", d.ID, err)
	}
	updated, err := dto.ParseTime(d.UpdatedAt)
	if err != nil {
		return todo.Todo{}, fmt.Errorf("parsing updated_at of todo %d: %w", d.ID, err)
	}
	return todo.Todo{
		ID:          d.ID,
		Title:       d.Title,
		Description: d.Description,
		CreatedAt:   created,
		UpdatedAt:   updated,
	}, nil
}

func toDomainList(dtos []todoDTO) ([]todo.Todo, error) {
	todos := make([]todo.Todo, 0, len(dtos))
	for i := range dtos {
		t, err := dtos[i].toDomain()
		if err != nil {
			return nil, err
		}
		todos = append(todos, t)
	}
	return todos, nil
}

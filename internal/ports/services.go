package ports

import (
	"context"

	"github.com/jsamuelsen11/go-todo-service/internal/domain/todo"
)

// TodoService defines the service port for the Todo resource.
// Implemented by the application layer; called by inbound adapters (handlers).
//
// Raw inputs (field maps decoded from request bodies, identifiers taken from
// the URL) are passed through unparsed: validating them is part of the
// service contract.
type TodoService interface {
	// List returns all todos in storage order.
	List(ctx context.Context) ([]todo.Todo, error)

	// Create validates fields and persists a new todo.
	// Returns domain.ErrValidation if title or description is invalid, or a
	// *domain.PersistenceError if storage rejects the record.
	Create(ctx context.Context, fields map[string]any) (*todo.Todo, error)

	// Get returns the todo identified by the raw id.
	// Returns domain.ErrNotFound if no todo matches.
	Get(ctx context.Context, id string) (*todo.Todo, error)

	// Update validates fields, then overwrites title and description of the
	// todo identified by the raw id. Validation runs before the lookup, so an
	// invalid payload for a missing id yields domain.ErrValidation.
	// Returns domain.ErrNotFound if no todo matches.
	Update(ctx context.Context, id string, fields map[string]any) (*todo.Todo, error)

	// Delete removes an already-resolved todo and returns its last known
	// values.
	Delete(ctx context.Context, t *todo.Todo) (*todo.Todo, error)
}

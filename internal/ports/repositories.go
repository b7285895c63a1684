package ports

import (
	"context"

	"github.com/jsamuelsen11/go-todo-service/internal/domain/todo"
)

// TodoRepository defines the persistence port for Todo records.
// Implemented by the persistence adapters (sqlite, memory); called by the
// application layer. The repository owns identifier assignment and the
// created_at/updated_at timestamps.
type TodoRepository interface {
	// All returns every stored todo in the store's native order.
	// An empty store yields an empty, non-nil slice.
	All(ctx context.Context) ([]todo.Todo, error)

	// Create persists a new todo with exactly the given attributes and returns
	// it with its assigned ID and timestamps.
	Create(ctx context.Context, in todo.Input) (*todo.Todo, error)

	// Find returns the todo with the given ID.
	// Returns domain.ErrNotFound if no such todo exists.
	Find(ctx context.Context, id int64) (*todo.Todo, error)

	// Save writes the title and description of an existing todo and refreshes
	// t.UpdatedAt. Returns domain.ErrNotFound if the todo no longer exists.
	Save(ctx context.Context, t *todo.Todo) error

	// Delete removes the todo with the given ID. Deleting an ID that does not
	// exist is not an error.
	Delete(ctx context.Context, id int64) error
}

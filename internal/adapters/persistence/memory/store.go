// Package memory implements the todo repository in process memory. It backs
// the service when database.driver is "memory" and keeps nothing across
// restarts.
package memory

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/jsamuelsen11/go-todo-service/internal/domain"
	"github.com/jsamuelsen11/go-todo-service/internal/domain/todo"
	"github.com/jsamuelsen11/go-todo-service/internal/ports"
)

// Compile-time check that Store implements ports.TodoRepository.
var _ ports.TodoRepository = (*Store)(nil)

// Store is a mutex-guarded map of todos keyed by id. Ids increase
// monotonically and are never reused.
type Store struct {
	mu     sync.RWMutex
	todos  map[int64]todo.Todo
	lastID int64
	now    func() time.Time
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		todos: make(map[int64]todo.Todo),
		now:   time.Now,
	}
}

// All returns copies of every todo ordered by id.
func (s *Store) All(_ context.Context) ([]todo.Todo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	todos := make([]todo.Todo, 0, len(s.todos))
	for _, id := range slices.Sorted(maps.Keys(s.todos)) {
		todos = append(todos, s.todos[id])
	}
	return todos, nil
}

// Create stores a new todo under the next id.
func (s *Store) Create(_ context.Context, in todo.Input) (*todo.Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.timestamp()
	s.lastID++
	t := todo.Todo{
		ID:          s.lastID,
		Title:       in.Title,
		Description: in.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.todos[t.ID] = t

	return &t, nil
}

// Find returns a copy of the todo with the given id or domain.ErrNotFound.
func (s *Store) Find(_ context.Context, id int64) (*todo.Todo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.todos[id]
	if !ok {
		return nil, fmt.Errorf("todo %d: %w", id, domain.ErrNotFound)
	}
	return &t, nil
}

// Save overwrites title and description of an existing todo and refreshes
// t.UpdatedAt.
func (s *Store) Save(_ context.Context, t *todo.Todo) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.todos[t.ID]
	if !ok {
		return fmt.Errorf("todo %d: %w", t.ID, domain.ErrNotFound)
	}

	stored.Title = t.Title
	stored.Description = t.Description
	stored.UpdatedAt = s.timestamp()
	s.todos[t.ID] = stored

	t.UpdatedAt = stored.UpdatedAt
	return nil
}

// Delete removes the todo with the given id. Missing ids are ignored.
func (s *Store) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.todos, id)
	return nil
}

func (s *Store) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

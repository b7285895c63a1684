// Package app provides application services that orchestrate use cases by
// coordinating between domain logic and infrastructure through port interfaces.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jsamuelsen11/go-todo-service/internal/domain"
	"github.com/jsamuelsen11/go-todo-service/internal/domain/todo"
	"github.com/jsamuelsen11/go-todo-service/internal/ports"
)

// Compile-time check that TodoService implements ports.TodoService.
var _ ports.TodoService = (*TodoService)(nil)

// TodoService implements ports.TodoService on top of a TodoRepository. It
// validates raw input at the boundary, performs existence checks and logs
// failures; everything else is delegated to the repository.
type TodoService struct {
	repo   ports.TodoRepository
	logger *slog.Logger
}

// NewTodoService creates a TodoService backed by the given repository. A nil
// logger is replaced with a discarding one.
func NewTodoService(repo ports.TodoRepository, logger *slog.Logger) *TodoService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &TodoService{
		repo:   repo,
		logger: logger,
	}
}

// List returns all todos in storage order.
func (s *TodoService) List(ctx context.Context) ([]todo.Todo, error) {
	s.logger.InfoContext(ctx, "listing todos")

	todos, err := s.repo.All(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to list todos",
			slog.String("operation", "List"),
			slog.Any("error", err),
		)
		return nil, fmt.Errorf("listing todos: %w", err)
	}

	return todos, nil
}

// Create validates the raw fields and persists a new todo. Storage failures
// are returned as *domain.PersistenceError so that their message reaches the
// caller unchanged.
func (s *TodoService) Create(ctx context.Context, fields map[string]any) (*todo.Todo, error) {
	s.logger.InfoContext(ctx, "creating todo")

	in, err := todo.ParseInput(fields)
	if err != nil {
		s.logger.DebugContext(ctx, "rejected todo payload",
			slog.String("operation", "Create"),
			slog.Any("error", err),
		)
		return nil, err
	}

	created, err := s.repo.Create(ctx, in)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to create todo",
			slog.String("operation", "Create"),
			slog.Any("error", err),
		)
		return nil, &domain.PersistenceError{Op: "create", Err: err}
	}

	return created, nil
}

// Get returns the todo identified by the raw id.
func (s *TodoService) Get(ctx context.Context, id string) (*todo.Todo, error) {
	s.logger.InfoContext(ctx, "fetching todo", slog.String("id", id))

	return s.find(ctx, "Get", id)
}

// Update validates the raw fields, looks up the todo and overwrites both
// attributes. The write is skipped when neither attribute changes, leaving
// UpdatedAt untouched.
func (s *TodoService) Update(ctx context.Context, id string, fields map[string]any) (*todo.Todo, error) {
	s.logger.InfoContext(ctx, "updating todo", slog.String("id", id))

	in, err := todo.ParseInput(fields)
	if err != nil {
		s.logger.DebugContext(ctx, "rejected todo payload",
			slog.String("operation", "Update"),
			slog.String("id", id),
			slog.Any("error", err),
		)
		return nil, err
	}

	t, err := s.find(ctx, "Update", id)
	if err != nil {
		return nil, err
	}

	if !t.Apply(in) {
		return t, nil
	}

	if err := s.repo.Save(ctx, t); err != nil {
		s.logger.ErrorContext(ctx, "failed to save todo",
			slog.String("operation", "Update"),
			slog.Int64("todo_id", t.ID),
			slog.Any("error", err),
		)
		return nil, fmt.Errorf("saving todo %d: %w", t.ID, err)
	}

	return t, nil
}

// Delete removes an already-resolved todo and returns it as it was before
// removal.
func (s *TodoService) Delete(ctx context.Context, t *todo.Todo) (*todo.Todo, error) {
	if t == nil {
		return nil, fmt.Errorf("deleting todo: %w", domain.ErrNotFound)
	}

	s.logger.InfoContext(ctx, "deleting todo", slog.Int64("todo_id", t.ID))

	if err := s.repo.Delete(ctx, t.ID); err != nil {
		s.logger.ErrorContext(ctx, "failed to delete todo",
			slog.String("operation", "Delete"),
			slog.Int64("todo_id", t.ID),
			slog.Any("error", err),
		)
		return nil, fmt.Errorf("deleting todo %d: %w", t.ID, err)
	}

	return t, nil
}

// find resolves a raw identifier to a stored todo. Identifiers that cannot be
// a storage key are reported as not found.
func (s *TodoService) find(ctx context.Context, op, raw string) (*todo.Todo, error) {
	id, ok := todo.ParseID(raw)
	if !ok {
		return nil, fmt.Errorf("todo %q: %w", raw, domain.ErrNotFound)
	}

	t, err := s.repo.Find(ctx, id)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.logger.ErrorContext(ctx, "failed to fetch todo",
				slog.String("operation", op),
				slog.Int64("todo_id", id),
				slog.Any("error", err),
			)
		}
		return nil, fmt.Errorf("fetching todo %d: %w", id, err)
	}

	return t, nil
}

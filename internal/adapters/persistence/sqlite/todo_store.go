package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jsamuelsen11/go-todo-service/internal/domain"
	"github.com/jsamuelsen11/go-todo-service/internal/domain/todo"
)

// timeLayout is the storage format of created_at and updated_at.
const timeLayout = time.RFC3339Nano

const selectTodos = `SELECT id, title, description, created_at, updated_at FROM todos`

// todoRow mirrors a row of the todos table.
type todoRow struct {
	ID          int64  `db:"id"`
	Title       string `db:"title"`
	Description string `db:"description"`
	CreatedAt   string `db:"created_at"`
	UpdatedAt   string `db:"updated_at"`
}

func (r *todoRow) toDomain() (todo.Todo, error) {
	created, err := time.Parse(timeLayout, r.CreatedAt)
	if err != nil {
		return todo.Todo{}, fmt.Errorf("parsing created_at of todo %d: %w", r.ID, err)
	}
	updated, err := time.Parse(timeLayout, r.UpdatedAt)
	if err != nil {
		return todo.Todo{}, fmt.Errorf("parsing updated_at of todo %d: %w", r.ID, err)
	}
	return todo.Todo{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		CreatedAt:   created,
		UpdatedAt:   updated,
	}, nil
}

// All returns every todo ordered by id.
func (s *Store) All(ctx context.Context) (todos []todo.Todo, err error) {
	ctx, done := s.observe(ctx, "select")
	defer func() { done(err) }()

	var rows []todoRow
	if err := s.db.SelectContext(ctx, &rows, selectTodos+` ORDER BY id`); err != nil {
		return nil, fmt.Errorf("querying todos: %w", err)
	}

	todos = make([]todo.Todo, 0, len(rows))
	for i := range rows {
		t, err := rows[i].toDomain()
		if err != nil {
			return nil, err
		}
		todos = append(todos, t)
	}
	return todos, nil
}

// Create inserts a todo and returns it with its assigned id and timestamps.
func (s *Store) Create(ctx context.Context, in todo.Input) (created *todo.Todo, err error) {
	ctx, done := s.observe(ctx, "insert")
	defer func() { done(err) }()

	now := s.timestamp()
	stamp := now.Format(timeLayout)

	result, err := s.db.ExecContext(ctx,
		`INSERT INTO todos (title, description, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		in.Title, in.Description, stamp, stamp,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting todo: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("reading inserted todo id: %w", err)
	}

	return &todo.Todo{
		ID:          id,
		Title:       in.Title,
		Description: in.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Find returns the todo with the given id or domain.ErrNotFound.
func (s *Store) Find(ctx context.Context, id int64) (found *todo.Todo, err error) {
	ctx, done := s.observe(ctx, "select")
	defer func() { done(err) }()

	var row todoRow
	if err := s.db.GetContext(ctx, &row, selectTodos+` WHERE id = ?`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("todo %d: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("getting todo %d: %w", id, err)
	}

	t, err := row.toDomain()
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Save writes title and description of t and refreshes t.UpdatedAt.
func (s *Store) Save(ctx context.Context, t *todo.Todo) (err error) {
	ctx, done := s.observe(ctx, "update")
	defer func() { done(err) }()

	now := s.timestamp()

	result, err := s.db.ExecContext(ctx,
		`UPDATE todos SET title = ?, description = ?, updated_at = ? WHERE id = ?`,
		t.Title, t.Description, now.Format(timeLayout), t.ID,
	)
	if err != nil {
		return fmt.Errorf("updating todo %d: %w", t.ID, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows for todo %d: %w", t.ID, err)
	}
	if rows == 0 {
		return fmt.Errorf("todo %d: %w", t.ID, domain.ErrNotFound)
	}

	t.UpdatedAt = now
	return nil
}

// Delete removes the todo with the given id. Missing ids are ignored.
func (s *Store) Delete(ctx context.Context, id int64) (err error) {
	ctx, done := s.observe(ctx, "delete")
	defer func() { done(err) }()

	if _, err := s.db.ExecContext(ctx, `DELETE FROM todos WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting todo %d: %w", id, err)
	}
	return nil
}

// timestamp returns the current time in UTC at microsecond precision, the
// resolution exposed by the API.
func (s *Store) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

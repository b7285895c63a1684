package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jsamuelsen11/go-todo-service/internal/adapters/http/dto"
	"github.com/jsamuelsen11/go-todo-service/internal/domain"
	"github.com/jsamuelsen11/go-todo-service/internal/domain/todo"
	"github.com/jsamuelsen11/go-todo-service/internal/ports"
)

// IDParam is the URL parameter naming a todo.
const IDParam = "id"

// resolvedTodoKey is the context key for the todo loaded by ResolveTodo.
type resolvedTodoKey struct{}

// TodoHandler handles HTTP requests for the Todo resource.
type TodoHandler struct {
	service ports.TodoService
}

// NewTodoHandler creates a new TodoHandler with the given service port.
func NewTodoHandler(service ports.TodoService) *TodoHandler {
	return &TodoHandler{service: service}
}

// List handles GET /todos.
func (h *TodoHandler) List(w http.ResponseWriter, r *http.Request) {
	todos, err := h.service.List(r.Context())
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	dto.WriteSuccess(w, r, http.StatusOK, dto.MsgListed, dto.ToTodoListResponse(todos))
}

// Create handles POST /todos. A successful create answers 200, not 201.
func (h *TodoHandler) Create(w http.ResponseWriter, r *http.Request) {
	fields, err := dto.DecodeFields(w, r)
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	created, err := h.service.Create(r.Context(), fields)
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	dto.WriteSuccess(w, r, http.StatusOK, dto.MsgCreated, dto.ToTodoResponse(created))
}

// Get handles GET /todos/{id}.
func (h *TodoHandler) Get(w http.ResponseWriter, r *http.Request) {
	t, err := h.service.Get(r.Context(), chi.URLParam(r, IDParam))
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	dto.WriteSuccess(w, r, http.StatusOK, dto.MsgRetrieved, dto.ToTodoResponse(t))
}

// Update handles PUT and PATCH /todos/{id}. Both replace title and
// description; the payload is validated before the id is looked up.
func (h *TodoHandler) Update(w http.ResponseWriter, r *http.Request) {
	fields, err := dto.DecodeFields(w, r)
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	updated, err := h.service.Update(r.Context(), chi.URLParam(r, IDParam), fields)
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	dto.WriteSuccess(w, r, http.StatusOK, dto.MsgUpdated, dto.ToTodoResponse(updated))
}

// Delete handles DELETE /todos/{id}. It must be mounted behind ResolveTodo,
// which has already answered 404 for unknown ids.
func (h *TodoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	t, ok := ResolvedTodo(r.Context())
	if !ok {
		dto.WriteErrorResponse(w, r, domain.ErrNotFound)
		return
	}

	deleted, err := h.service.Delete(r.Context(), t)
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	dto.WriteSuccess(w, r, http.StatusOK, dto.MsgDeleted, dto.ToTodoResponse(deleted))
}

// ResolveTodo is a middleware that loads the todo named by the {id} URL
// parameter and stores it in the request context. Unknown ids are answered
// with the not-found envelope and never reach next.
func (h *TodoHandler) ResolveTodo(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t, err := h.service.Get(r.Context(), chi.URLParam(r, IDParam))
		if err != nil {
			dto.WriteErrorResponse(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), resolvedTodoKey{}, t)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ResolvedTodo returns the todo stored by ResolveTodo.
func ResolvedTodo(ctx context.Context) (*todo.Todo, bool) {
	t, ok := ctx.Value(resolvedTodoKey{}).(*todo.Todo)
	return t, ok && t != nil
}

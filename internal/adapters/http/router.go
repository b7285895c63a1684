// Package http is the inbound HTTP adapter: the chi router mapping the Todo
// API onto its handlers, and the server that runs it.
package http

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/jsamuelsen11/go-todo-service/internal/adapters/http/dto"
	"github.com/jsamuelsen11/go-todo-service/internal/adapters/http/handlers"
)

// Routes holds the handlers the router dispatches to.
type Routes struct {
	Todos  *handlers.TodoHandler
	Health *handlers.HealthHandler
}

// NewRouter mounts the Todo API and the health probes:
//
//	GET          /todos        list
//	POST         /todos        create
//	GET          /todos/{id}   get
//	PUT, PATCH   /todos/{id}   update
//	DELETE       /todos/{id}   delete
//	GET          /health/live  liveness
//	GET          /health/ready readiness
//
// middlewares wrap every route, outermost first. Unknown paths and
// methods get failure envelopes.
func NewRouter(routes Routes, middlewares ...func(http.Handler) http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middlewares...)
	r.Use(chimw.StripSlashes)

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		dto.WriteErrorResponse(w, req, fmt.Errorf("%s: %w", req.URL.Path, dto.ErrNoRoute))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		dto.WriteErrorResponse(w, req, fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, dto.ErrMethodNotAllowed))
	})

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", routes.Health.Liveness)
		r.Get("/ready", routes.Health.Readiness)
	})

	t := routes.Todos
	r.Route("/todos", func(r chi.Router) {
		r.Get("/", t.List)
		r.Post("/", t.Create)

		r.Route("/{"+handlers.IDParam+"}", func(r chi.Router) {
			r.Get("/", t.Get)
			r.Put("/", t.Update)
			r.Patch("/", t.Update)
			r.With(t.ResolveTodo).Delete("/", t.Delete)
		})
	})

	return r
}

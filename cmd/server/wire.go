package main

import (
	"context"
	"log/slog"
	nethttp "net/http"

	"github.com/samber/do/v2"

	adapthttp "github.com/jsamuelsen11/go-todo-service/internal/adapters/http"
	"github.com/jsamuelsen11/go-todo-service/internal/adapters/http/handlers"
	"github.com/jsamuelsen11/go-todo-service/internal/adapters/http/middleware"
	"github.com/jsamuelsen11/go-todo-service/internal/adapters/persistence/memory"
	"github.com/jsamuelsen11/go-todo-service/internal/adapters/persistence/sqlite"
	"github.com/jsamuelsen11/go-todo-service/internal/app"
	"github.com/jsamuelsen11/go-todo-service/internal/platform/config"
	"github.com/jsamuelsen11/go-todo-service/internal/platform/health"
	"github.com/jsamuelsen11/go-todo-service/internal/platform/telemetry"
	"github.com/jsamuelsen11/go-todo-service/internal/ports"
)

// provide registers every service of the todo API with the injector. The
// graph is built lazily on the first Invoke.
func provide(ctx context.Context, i do.Injector, cfg *config.Config, logger *slog.Logger, metrics *telemetry.Metrics) {
	do.ProvideValue(i, cfg)
	do.ProvideValue(i, logger)
	do.ProvideValue(i, metrics)

	do.Provide(i, func(do.Injector) (*sqlite.Store, error) {
		return sqlite.New(ctx, &cfg.Database, metrics, logger)
	})

	do.Provide(i, func(i do.Injector) (ports.TodoRepository, error) {
		if cfg.Database.Driver == config.DriverMemory {
			return memory.New(), nil
		}
		return do.Invoke[*sqlite.Store](i)
	})

	do.Provide(i, func(i do.Injector) (ports.HealthRegistry, error) {
		registry := health.New(health.WithCheckTimeout(cfg.Server.RequestTimeout / 2))
		if cfg.Database.Driver == config.DriverSQLite {
			store, err := do.Invoke[*sqlite.Store](i)
			if err != nil {
				return nil, err
			}
			registry.Register(store)
		}
		return registry, nil
	})

	do.Provide(i, func(i do.Injector) (ports.TodoService, error) {
		return app.NewTodoService(do.MustInvoke[ports.TodoRepository](i), logger), nil
	})

	do.Provide(i, func(i do.Injector) (*handlers.TodoHandler, error) {
		return handlers.NewTodoHandler(do.MustInvoke[ports.TodoService](i)), nil
	})

	do.Provide(i, func(i do.Injector) (*handlers.HealthHandler, error) {
		return handlers.NewHealthHandler(do.MustInvoke[ports.HealthRegistry](i)), nil
	})

	do.Provide(i, func(i do.Injector) (nethttp.Handler, error) {
		routes := adapthttp.Routes{
			Todos:  do.MustInvoke[*handlers.TodoHandler](i),
			Health: do.MustInvoke[*handlers.HealthHandler](i),
		}
		return adapthttp.NewRouter(routes,
			middleware.Recovery(logger),
			middleware.RequestID(),
			middleware.CorrelationID(),
			middleware.OpenTelemetry(metrics),
			middleware.Logging(logger),
			middleware.Timeout(cfg.Server.RequestTimeout),
		), nil
	})

	do.Provide(i, func(i do.Injector) (*adapthttp.Server, error) {
		return adapthttp.NewServer(cfg.Server, do.MustInvoke[nethttp.Handler](i), logger,
			adapthttp.WithDrainTimeout(drainTimeout)), nil
	})
}

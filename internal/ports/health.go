package ports

import "context"

// HealthChecker is a dependency the readiness probe can ask about, such as
// the sqlite store or the todo API client.
type HealthChecker interface {
	// Name keys the checker in readiness reports ("sqlite", "todo-api").
	Name() string
	// HealthCheck returns nil while the dependency is usable. It must give
	// up when ctx ends.
	HealthCheck(ctx context.Context) error
}

// HealthRegistry collects checkers at startup and runs them per probe.
type HealthRegistry interface {
	Register(checker HealthChecker)
	// CheckAll maps each checker name to its result, nil meaning healthy.
	CheckAll(ctx context.Context) map[string]error
}

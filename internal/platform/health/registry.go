// Package health runs the readiness checks behind GET /health/ready. The
// sqlite store registers itself at startup; anything else that can fail
// independently of the process may do the same.
package health

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/jsamuelsen11/go-todo-service/internal/platform/fanout"
	"github.com/jsamuelsen11/go-todo-service/internal/ports"
)

const (
	// DefaultCheckTimeout bounds one check.
	DefaultCheckTimeout = 2 * time.Second
	// DefaultMaxConcurrent is how many checks run at once.
	DefaultMaxConcurrent = 4
)

var _ ports.HealthRegistry = (*Registry)(nil)

// Option tunes a Registry.
type Option func(*Registry)

// WithCheckTimeout sets the deadline of each check. Zero or less leaves
// checks bound only by the caller's context.
func WithCheckTimeout(d time.Duration) Option {
	return func(r *Registry) { r.timeout = d }
}

// WithMaxConcurrent caps parallel checks. Below 1 means no cap.
func WithMaxConcurrent(n int) Option {
	return func(r *Registry) { r.maxConcurrent = n }
}

type entry struct {
	name    string
	checker ports.HealthChecker
}

// Registry is a ports.HealthRegistry safe for concurrent use.
type Registry struct {
	mu            sync.RWMutex
	entries       []entry
	timeout       time.Duration
	maxConcurrent int
}

func New(opts ...Option) *Registry {
	r := &Registry{timeout: DefaultCheckTimeout, maxConcurrent: DefaultMaxConcurrent}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds checker. A checker whose name is already registered
// replaces the earlier one.
func (r *Registry) Register(checker ports.HealthChecker) {
	e := entry{name: checker.Name(), checker: checker}

	r.mu.Lock()
	defer r.mu.Unlock()
	if i := slices.IndexFunc(r.entries, func(x entry) bool { return x.name == e.name }); i >= 0 {
		r.entries[i] = e
		return
	}
	r.entries = append(r.entries, e)
}

// CheckAll runs every check, at most maxConcurrent at a time, and maps
// names to results. Checks not started before ctx ends report ctx's error.
func (r *Registry) CheckAll(ctx context.Context) map[string]error {
	r.mu.RLock()
	entries := slices.Clone(r.entries)
	r.mu.RUnlock()

	errs := fanout.Map(ctx, r.maxConcurrent, entries, r.run, func(err error) error { return err })

	results := make(map[string]error, len(entries))
	for i, e := range entries {
		results[e.name] = errs[i]
	}
	return results
}

func (r *Registry) run(ctx context.Context, e entry) error {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}
	return e.checker.HealthCheck(ctx)
}

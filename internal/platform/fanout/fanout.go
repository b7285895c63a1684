// Package fanout runs a function over a slice with bounded concurrency and
// returns the results in input order.
package fanout

import (
	"context"
	"sync"
)

// Map calls fn for every item using at most limit goroutines at a time and
// returns the results indexed like items. A limit below 1 runs every item
// concurrently.
//
// A free slot is always taken, even when ctx is already done, so fn sees the
// canceled context itself. Items still waiting for a slot when ctx is done are
// not passed to fn; their result is onCanceled(ctx.Err()). Map returns after
// every started call has finished.
func Map[T, R any](ctx context.Context, limit int, items []T, fn func(context.Context, T) R, onCanceled func(error) R) []R {
	results := make([]R, len(items))
	if len(items) == 0 {
		return results
	}
	if limit < 1 || limit > len(items) {
		limit = len(items)
	}

	sem := make(chan struct{}, limit)
	var wg sync.WaitGroup

	for i, item := range items {
		wg.Go(func() {
			if !acquire(ctx, sem) {
				results[i] = onCanceled(ctx.Err())
				return
			}
			defer func() { <-sem }()
			results[i] = fn(ctx, item)
		})
	}

	wg.Wait()
	return results
}

func acquire(ctx context.Context, sem chan struct{}) bool {
	select {
	case sem <- struct{}{}:
		return true
	default:
	}

	select {
	case sem <- struct{}{}:
		return true
	case <-ctx.Done():
		return false
	}
}

package httpclient

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"

	"github.com/sony/gobreaker/v2"

	"github.com/jsamuelsen11/go-todo-service/internal/platform/config"
)

// ErrCircuitOpen is returned by HealthCheck while the breaker rejects calls.
var ErrCircuitOpen = errors.New("circuit breaker open")

func newBreaker(peer string, cfg config.CircuitBreakerConfig, logger *slog.Logger) *gobreaker.CircuitBreaker[*http.Response] {
	threshold := uint32(clamp(cfg.MaxFailures))

	return gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:        peer,
		MaxRequests: uint32(clamp(cfg.HalfOpenLimit)),
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return threshold > 0 && counts.ConsecutiveFailures >= threshold
		},
		// A caller giving up says nothing about the peer.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			level := slog.LevelInfo
			if to == gobreaker.StateOpen {
				level = slog.LevelWarn
			}
			logger.Log(context.Background(), level, "circuit breaker state change",
				slog.String("peer", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
		},
	})
}

// HealthCheck derives the peer's health from the breaker state without
// contacting it. A half-open breaker counts as healthy because it is already
// letting probe requests through.
func (c *Client) HealthCheck(_ context.Context) error {
	if c.breaker.State() == gobreaker.StateOpen {
		return fmt.Errorf("%s: %w", c.peer, ErrCircuitOpen)
	}
	return nil
}

func isBreakerRejection(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}

func clamp(v int) int64 {
	return min(max(int64(v), 0), math.MaxUint32)
}

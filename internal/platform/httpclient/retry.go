package httpclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"math/rand/v2"
	"net/http"
	"strconv"
	"time"

	"github.com/jsamuelsen11/go-todo-service/internal/platform/config"
	"github.com/jsamuelsen11/go-todo-service/internal/platform/logging"
)

// ErrRetriesExhausted wraps the last failure once every attempt is used.
var ErrRetriesExhausted = errors.New("retries exhausted")

// jitter spreads each delay over ±25% of its nominal value.
const jitter = 0.25

type retryPolicy struct {
	attempts   int
	initial    time.Duration
	ceiling    time.Duration
	multiplier float64
}

func newRetryPolicy(cfg config.RetryConfig) retryPolicy {
	return retryPolicy{
		attempts:   max(cfg.MaxAttempts, 1),
		initial:    cfg.InitialInterval,
		ceiling:    cfg.MaxInterval,
		multiplier: cfg.Multiplier,
	}
}

// attemptsFor allows a single attempt for methods that may not be repeated
// safely, so a POST never creates two todos.
func (p retryPolicy) attemptsFor(method string) int {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace,
		http.MethodPut, http.MethodDelete:
		return p.attempts
	default:
		return 1
	}
}

// delay returns the wait before retry n (1 for the first retry). A
// Retry-After hint larger than the computed delay wins, capped at the
// ceiling.
func (p retryPolicy) delay(n int, hint time.Duration) time.Duration {
	d := float64(p.initial) * math.Pow(p.multiplier, float64(n-1))
	if p.ceiling > 0 {
		d = math.Min(d, float64(p.ceiling))
	}
	d += d * jitter * (2*rand.Float64() - 1) //nolint:gosec // jitter needs no cryptographic randomness

	wait := time.Duration(max(d, 0))
	if hint > wait {
		wait = hint
		if p.ceiling > 0 {
			wait = min(wait, p.ceiling)
		}
	}
	return wait
}

// send performs req with retries. When the last attempt still gets a
// retryable status, its response is returned unread together with an error.
func (c *Client) send(ctx context.Context, req *http.Request) (*http.Response, error) {
	if err := makeReplayable(req); err != nil {
		return nil, err
	}

	attempts := c.retry.attemptsFor(req.Method)
	var (
		lastErr error
		hint    time.Duration
	)

	for n := range attempts {
		if n > 0 {
			if err := c.pause(ctx, req, n, attempts, hint, lastErr); err != nil {
				return nil, err
			}
			if err := rewind(req); err != nil {
				return nil, err
			}
		}

		resp, err := c.http.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, err
			}
			lastErr, hint = err, 0
			continue
		}
		if !retryableStatus(resp.StatusCode) {
			return resp, nil
		}

		lastErr = fmt.Errorf("%s answered %d", c.peer, resp.StatusCode)
		if n == attempts-1 {
			return resp, giveUp(attempts, lastErr)
		}
		hint = retryAfter(resp.Header)
		discard(resp)
	}

	return nil, giveUp(attempts, lastErr)
}

// giveUp returns the error for a request that failed on its last attempt. A
// request that was never retried reports its failure unwrapped.
func giveUp(attempts int, err error) error {
	if attempts == 1 {
		return err
	}
	return fmt.Errorf("%w after %d attempts: %w", ErrRetriesExhausted, attempts, err)
}

func (c *Client) pause(ctx context.Context, req *http.Request, n, attempts int, hint time.Duration, cause error) error {
	wait := c.retry.delay(n, hint)

	logging.FromContext(ctx).WarnContext(ctx, "retrying outbound request",
		slog.String("peer", c.peer),
		slog.String("method", req.Method),
		slog.String("url", req.URL.String()),
		slog.Int("attempt", n+1),
		slog.Int("max_attempts", attempts),
		slog.Duration("backoff", wait),
		slog.Any("error", cause),
	)

	t := time.NewTimer(wait)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

// retryAfter reads a delay-seconds Retry-After header. HTTP dates are ignored.
func retryAfter(h http.Header) time.Duration {
	secs, err := strconv.Atoi(h.Get("Retry-After"))
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

// makeReplayable buffers a body that cannot be re-read so later attempts can
// send it again.
func makeReplayable(req *http.Request) error {
	if req.Body == nil || req.Body == http.NoBody || req.GetBody != nil {
		return nil
	}

	b, err := io.ReadAll(req.Body)
	_ = req.Body.Close()
	if err != nil {
		return fmt.Errorf("buffering request body: %w", err)
	}

	req.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(b)), nil
	}
	req.Body, _ = req.GetBody()
	req.ContentLength = int64(len(b))
	return nil
}

func rewind(req *http.Request) error {
	if req.GetBody == nil {
		return nil
	}
	body, err := req.GetBody()
	if err != nil {
		return fmt.Errorf("rewinding request body: %w", err)
	}
	req.Body = body
	return nil
}

// discard drains resp so its connection can be reused.
func discard(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}

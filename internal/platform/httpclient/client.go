// Package httpclient is the outbound HTTP client used to talk to a Todo API
// instance.
//
// Every call passes through a circuit breaker and an optional token bucket,
// forwards the caller's request metadata and W3C trace context, and is
// recorded as a client span plus request metrics. Idempotent requests that
// fail with a network error, 429 or 5xx are retried with jittered
// exponential backoff.
//
//	c := httpclient.New(&cfg.Client, httpclient.WithPeer("todo-api"))
//	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, c.URL("/todos"), nil)
//	resp, err := c.Do(req)
package httpclient

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/jsamuelsen11/go-todo-service/internal/platform/config"
	"github.com/jsamuelsen11/go-todo-service/internal/platform/telemetry"
)

const defaultPeer = "downstream"

// Option customizes a Client.
type Option func(*Client)

// WithPeer names the downstream service in spans, metrics, logs and health
// results.
func WithPeer(name string) Option {
	return func(c *Client) {
		c.peer = name
	}
}

// WithMetrics records request counts and durations on m.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithLogger sets the logger used for breaker transitions. Retry warnings use
// the logger carried by the request context.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// WithTransport replaces the underlying round tripper.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) {
		c.http.Transport = rt
	}
}

// Client sends requests to a single downstream base URL.
type Client struct {
	http    *http.Client
	baseURL string
	peer    string
	breaker *gobreaker.CircuitBreaker[*http.Response]
	limiter *rate.Limiter
	retry   retryPolicy
	metrics *telemetry.Metrics
	logger  *slog.Logger
}

// New builds a Client from cfg. Without options the peer is "downstream",
// metrics are off and breaker transitions go to slog.Default.
func New(cfg *config.ClientConfig, opts ...Option) *Client {
	c := &Client{
		http:    &http.Client{Timeout: cfg.Timeout},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		peer:    defaultPeer,
		retry:   newRetryPolicy(cfg.Retry),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.breaker = newBreaker(c.peer, cfg.CircuitBreaker, c.logger)
	if rl := cfg.RateLimit; rl.RequestsPerSecond > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(rl.RequestsPerSecond), max(rl.BurstSize, 1))
	}
	return c
}

// URL joins path onto the configured base URL.
func (c *Client) URL(path string) string {
	if path == "" || path[0] != '/' {
		path = "/" + path
	}
	return c.baseURL + path
}

// Do sends req, bound to its own context, through breaker, limiter,
// forwarding, tracing and retry.
//
// A non-nil response always has an open body the caller must close. When
// retries run out on a retryable status, Do returns that last response
// together with an error. Breaker rejections, limiter failures and transport
// errors return a nil response.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	start := time.Now()

	resp, err := c.breaker.Execute(func() (*http.Response, error) {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		ctx, span := c.startSpan(ctx, req)
		defer span.End()

		out := req.Clone(ctx)
		forwardHeaders(ctx, out.Header)
		injectTraceContext(ctx, out.Header)

		resp, err := c.send(ctx, out)
		endSpan(span, resp, err)
		return resp, err
	})

	c.record(ctx, req.Method, start, resp, err)
	return resp, err
}

// Name reports the downstream peer name.
func (c *Client) Name() string {
	return c.peer
}

package httpclient_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/jsamuelsen11/go-todo-service/internal/platform/config"
	"github.com/jsamuelsen11/go-todo-service/internal/platform/httpclient"
	"github.com/jsamuelsen11/go-todo-service/internal/platform/telemetry"
)

// fastConfig keeps retry and breaker timings short enough for unit tests.
func fastConfig(baseURL string) *config.ClientConfig {
	cfg := config.DefaultClientConfig()
	cfg.BaseURL = baseURL
	cfg.Timeout = 5 * time.Second
	cfg.Retry.MaxAttempts = 3
	cfg.Retry.InitialInterval = 5 * time.Millisecond
	cfg.Retry.MaxInterval = 20 * time.Millisecond
	cfg.CircuitBreaker.MaxFailures = 5
	cfg.CircuitBreaker.Timeout = time.Minute
	cfg.RateLimit.RequestsPerSecond = 0
	return cfg
}

// countingServer answers with statuses in order, repeating the last one, and
// counts every request it sees.
func countingServer(t *testing.T, statuses ...int) (*httptest.Server, *atomic.Int32) {
	t.Helper()

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		n := int(hits.Add(1))
		w.WriteHeader(statuses[min(n, len(statuses))-1])
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func newClient(cfg *config.ClientConfig, opts ...httpclient.Option) *httpclient.Client {
	opts = append([]httpclient.Option{
		httpclient.WithPeer("todo-api"),
		httpclient.WithLogger(slog.New(slog.DiscardHandler)),
	}, opts...)
	return httpclient.New(cfg, opts...)
}

func send(t *testing.T, c *httpclient.Client, method, path string, body io.Reader) (*http.Response, error) {
	t.Helper()

	req, err := http.NewRequestWithContext(t.Context(), method, c.URL(path), body)
	require.NoError(t, err)

	resp, err := c.Do(req)
	if resp != nil {
		t.Cleanup(func() { _ = resp.Body.Close() })
	}
	return resp, err
}

func TestDo_Success(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/todos", r.URL.Path)
		_, _ = w.Write([]byte(`{"success":true}`))
	}))
	t.Cleanup(srv.Close)

	resp, err := send(t, newClient(fastConfig(srv.URL)), http.MethodGet, "/todos", http.NoBody)
	require.NoError(t, err)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"success":true}`, string(body))
}

func TestDo_Retries(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		method     string
		statuses   []int
		wantStatus int
		wantHits   int32
		wantErr    error
	}{
		{"GET recovers after 5xx", http.MethodGet, []int{500, 503, 200}, 200, 3, nil},
		{"GET recovers after 429", http.MethodGet, []int{429, 200}, 200, 2, nil},
		{"DELETE recovers after 502", http.MethodDelete, []int{502, 200}, 200, 2, nil},
		{"4xx is final", http.MethodGet, []int{404, 200}, 404, 1, nil},
		{"GET gives up after max attempts", http.MethodGet, []int{500}, 500, 3, httpclient.ErrRetriesExhausted},
		{"POST is sent once", http.MethodPost, []int{500, 200}, 500, 1, nil},
		{"PATCH is sent once", http.MethodPatch, []int{503, 200}, 503, 1, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv, hits := countingServer(t, tt.statuses...)
			resp, err := send(t, newClient(fastConfig(srv.URL)), tt.method, "/todos/1", http.NoBody)

			require.NotNil(t, resp)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.Equal(t, tt.wantHits, hits.Load())
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else if tt.wantStatus < 500 {
				require.NoError(t, err)
			}
		})
	}
}

func TestDo_ReplaysBodyOnRetry(t *testing.T) {
	t.Parallel()

	var (
		hits   atomic.Int32
		bodies = make(chan string, 3)
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		bodies <- string(b)
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	// NopCloser hides the reader type, so the request has no GetBody.
	body := io.NopCloser(strings.NewReader(`{"title":"Buy milk","description":"2 liters"}`))
	resp, err := send(t, newClient(fastConfig(srv.URL)), http.MethodPut, "/todos/1", body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	close(bodies)
	for got := range bodies {
		assert.JSONEq(t, `{"title":"Buy milk","description":"2 liters"}`, got)
	}
}

func TestDo_ForwardsHeaders(t *testing.T) {
	t.Parallel()

	got := make(chan http.Header, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got <- r.Header.Clone()
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	ctx := httpclient.ForwardHeader(t.Context(), "x-request-id", "req-1")
	ctx = httpclient.ForwardHeader(ctx, "X-Correlation-ID", "corr-1")
	ctx = httpclient.ForwardHeader(ctx, "X-Request-ID", "req-2")
	ctx = httpclient.ForwardHeader(ctx, "X-Tenant", "")

	c := newClient(fastConfig(srv.URL))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL("todos"), http.NoBody)
	require.NoError(t, err)

	resp, err := c.Do(req)
	require.NoError(t, err)
	_ = resp.Body.Close()

	h := <-got
	assert.Equal(t, "req-2", h.Get("X-Request-ID"))
	assert.Equal(t, "corr-1", h.Get("X-Correlation-ID"))
	assert.Empty(t, h.Values("X-Tenant"))
	assert.Empty(t, req.Header.Get("X-Request-ID"), "caller's request must not be mutated")
}

func TestDo_BreakerOpensAfterConsecutiveFailures(t *testing.T) {
	t.Parallel()

	srv, hits := countingServer(t, http.StatusInternalServerError)
	cfg := fastConfig(srv.URL)
	cfg.CircuitBreaker.MaxFailures = 2
	c := newClient(cfg)

	for range 2 {
		_, err := send(t, c, http.MethodPost, "/todos", http.NoBody)
		require.Error(t, err)
	}

	resp, err := send(t, c, http.MethodPost, "/todos", http.NoBody)
	assert.Nil(t, resp)
	require.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, int32(2), hits.Load(), "open breaker must not reach the server")

	err = c.HealthCheck(t.Context())
	require.ErrorIs(t, err, httpclient.ErrCircuitOpen)
	assert.Contains(t, err.Error(), "todo-api")
}

func TestDo_CanceledCallsDoNotTripBreaker(t *testing.T) {
	t.Parallel()

	srv, hits := countingServer(t, http.StatusOK)
	cfg := fastConfig(srv.URL)
	cfg.CircuitBreaker.MaxFailures = 1
	c := newClient(cfg)

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	for range 3 {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL("/todos"), http.NoBody)
		require.NoError(t, err)
		_, err = c.Do(req)
		require.ErrorIs(t, err, context.Canceled)
	}

	require.NoError(t, c.HealthCheck(t.Context()))
	_, err := send(t, c, http.MethodGet, "/todos", http.NoBody)
	require.NoError(t, err)
	assert.Equal(t, int32(1), hits.Load())
}

func TestDo_RateLimitHonorsDeadline(t *testing.T) {
	t.Parallel()

	srv, hits := countingServer(t, http.StatusOK)
	cfg := fastConfig(srv.URL)
	cfg.RateLimit.RequestsPerSecond = 0.01
	cfg.RateLimit.BurstSize = 1
	c := newClient(cfg)

	_, err := send(t, c, http.MethodGet, "/todos", http.NoBody)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(t.Context(), 50*time.Millisecond)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL("/todos"), http.NoBody)
	require.NoError(t, err)

	resp, err := c.Do(req)
	assert.Nil(t, resp)
	require.Error(t, err)
	assert.Equal(t, int32(1), hits.Load())
}

func TestDo_RecordsMetrics(t *testing.T) {
	t.Parallel()

	reader := sdkmetric.NewManualReader()
	metrics, err := telemetry.NewMetrics(sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)), "test")
	require.NoError(t, err)

	srv, _ := countingServer(t, http.StatusOK)
	_, err = send(t, newClient(fastConfig(srv.URL), httpclient.WithMetrics(metrics)), http.MethodGet, "/todos", http.NoBody)
	require.NoError(t, err)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(t.Context(), &rm))

	var found bool
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "http.client.request.total" {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok, "http.client.request.total is %T", m.Data)
			require.Len(t, sum.DataPoints, 1)

			dp := sum.DataPoints[0]
			assert.Equal(t, int64(1), dp.Value)
			assertAttr(t, dp.Attributes, telemetry.AttrPeerService, "todo-api")
			assertAttr(t, dp.Attributes, telemetry.AttrResult, "success")
			found = true
		}
	}
	assert.True(t, found, "http.client.request.total not recorded")
}

func assertAttr(t *testing.T, set attribute.Set, key attribute.Key, want string) {
	t.Helper()

	v, ok := set.Value(key)
	if assert.True(t, ok, "attribute %s missing", key) {
		assert.Equal(t, want, v.AsString())
	}
}

func TestDo_TransportErrorReturnsNoResponse(t *testing.T) {
	t.Parallel()

	boom := errors.New("connection reset")
	cfg := fastConfig("http://todo-api.invalid")
	c := newClient(cfg, httpclient.WithTransport(roundTripFunc(func(*http.Request) (*http.Response, error) {
		return nil, boom
	})))

	resp, err := send(t, c, http.MethodGet, "/todos", http.NoBody)
	assert.Nil(t, resp)
	require.ErrorIs(t, err, boom)
	require.ErrorIs(t, err, httpclient.ErrRetriesExhausted)
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func TestClient_URL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		base, path, want string
	}{
		{"http://localhost:8080", "/todos", "http://localhost:8080/todos"},
		{"http://localhost:8080/", "/todos/1", "http://localhost:8080/todos/1"},
		{"http://localhost:8080/api", "todos", "http://localhost:8080/api/todos"},
		{"http://localhost:8080", "", "http://localhost:8080/"},
	}

	for _, tt := range tests {
		t.Run(tt.base+"+"+tt.path, func(t *testing.T) {
			t.Parallel()
			c := httpclient.New(fastConfig(tt.base))
			assert.Equal(t, tt.want, c.URL(tt.path))
		})
	}
}

func TestClient_Name(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "downstream", httpclient.New(fastConfig("http://x")).Name())
	assert.Equal(t, "todo-api", newClient(fastConfig("http://x")).Name())
}

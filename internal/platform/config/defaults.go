package config

import "time"

// Built-in values for keys that no file or environment variable sets.
const (
	DefaultPort           = 8080
	DefaultRequestTimeout = 8 * time.Second
	DefaultServiceName    = "todo-service"
	DefaultClientBaseURL  = "http://localhost:8080"
)

// defaults is the bottom layer of Load.
func defaults() map[string]any {
	keys := map[string]any{}
	merge(keys, "server", map[string]any{
		"host":            "0.0.0.0",
		"port":            DefaultPort,
		"read_timeout":    "5s",
		"write_timeout":   "10s",
		"idle_timeout":    "120s",
		"request_timeout": DefaultRequestTimeout.String(),
	})
	merge(keys, "log", map[string]any{
		"level":  "info",
		"format": "json",
	})
	merge(keys, "database", map[string]any{
		"driver":         DriverSQLite,
		"dsn":            "todos.db",
		"max_open_conns": 4,
		"busy_timeout":   "5s",
	})
	merge(keys, "telemetry", map[string]any{
		"enabled":      false,
		"exporter":     "stdout",
		"endpoint":     "",
		"service_name": DefaultServiceName,
	})
	return keys
}

// DefaultClientConfig returns the todoctl settings used when nothing
// overrides them: three attempts for idempotent calls, a breaker that opens
// after five straight failures and 20 requests per second with a burst of 5.
func DefaultClientConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL: DefaultClientBaseURL,
		Timeout: 10 * time.Second,
		Retry: RetryConfig{
			MaxAttempts:     3,
			InitialInterval: 100 * time.Millisecond,
			MaxInterval:     2 * time.Second,
			Multiplier:      2,
		},
		CircuitBreaker: CircuitBreakerConfig{
			MaxFailures:   5,
			Timeout:       30 * time.Second,
			HalfOpenLimit: 1,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 20,
			BurstSize:         5,
		},
	}
}

// clientDefaults is the bottom layer of LoadClient.
func clientDefaults() map[string]any {
	d := DefaultClientConfig()
	keys := map[string]any{
		"base_url": d.BaseURL,
		"timeout":  d.Timeout.String(),
	}
	merge(keys, "retry", map[string]any{
		"max_attempts":     d.Retry.MaxAttempts,
		"initial_interval": d.Retry.InitialInterval.String(),
		"max_interval":     d.Retry.MaxInterval.String(),
		"multiplier":       d.Retry.Multiplier,
	})
	merge(keys, "circuit_breaker", map[string]any{
		"max_failures":    d.CircuitBreaker.MaxFailures,
		"timeout":         d.CircuitBreaker.Timeout.String(),
		"half_open_limit": d.CircuitBreaker.HalfOpenLimit,
	})
	merge(keys, "rate_limit", map[string]any{
		"requests_per_second": d.RateLimit.RequestsPerSecond,
		"burst_size":          d.RateLimit.BurstSize,
	})
	return keys
}

// merge copies section's keys into dst under the given dotted prefix.
func merge(dst map[string]any, prefix string, section map[string]any) {
	for k, v := range section {
		dst[prefix+"."+k] = v
	}
}

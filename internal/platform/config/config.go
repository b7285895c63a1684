// Package config loads the settings of the todo service (Config, via Load)
// and of the todoctl client (ClientConfig, via LoadClient). Both are koanf
// layer stacks topped by environment variables; see Load for the order.
package config

import (
	"net"
	"strconv"
	"time"
)

// Storage drivers accepted in DatabaseConfig.Driver.
const (
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)

// Config is the full service configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Log       LogConfig       `koanf:"log"`
	Database  DatabaseConfig  `koanf:"database"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
}

// ServerConfig tunes the inbound HTTP listener.
type ServerConfig struct {
	Host         string        `koanf:"host"`
	Port         int           `koanf:"port"`
	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`
	IdleTimeout  time.Duration `koanf:"idle_timeout"`

	// RequestTimeout bounds the time a handler may take before the request
	// is answered with 504.
	RequestTimeout time.Duration `koanf:"request_timeout"`
}

// Addr is the listen address, host:port.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// LogConfig selects the slog level (debug, info, warn, error) and handler
// (json, text).
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// DatabaseConfig selects and tunes the todo store.
type DatabaseConfig struct {
	Driver       string        `koanf:"driver"`
	DSN          string        `koanf:"dsn"`
	MaxOpenConns int           `koanf:"max_open_conns"`
	BusyTimeout  time.Duration `koanf:"busy_timeout"`
}

// ClientConfig configures the resilient HTTP client todoctl uses to reach
// the service.
type ClientConfig struct {
	BaseURL        string               `koanf:"base_url"`
	Timeout        time.Duration        `koanf:"timeout"`
	Retry          RetryConfig          `koanf:"retry"`
	CircuitBreaker CircuitBreakerConfig `koanf:"circuit_breaker"`
	RateLimit      RateLimitConfig      `koanf:"rate_limit"`
}

// RetryConfig bounds retries of idempotent calls. Delays grow from
// InitialInterval by Multiplier up to MaxInterval.
type RetryConfig struct {
	MaxAttempts     int           `koanf:"max_attempts"`
	InitialInterval time.Duration `koanf:"initial_interval"`
	MaxInterval     time.Duration `koanf:"max_interval"`
	Multiplier      float64       `koanf:"multiplier"`
}

// CircuitBreakerConfig opens the breaker after MaxFailures consecutive
// failures and probes again, HalfOpenLimit calls at a time, after Timeout.
type CircuitBreakerConfig struct {
	MaxFailures   int           `koanf:"max_failures"`
	Timeout       time.Duration `koanf:"timeout"`
	HalfOpenLimit int           `koanf:"half_open_limit"`
}

// RateLimitConfig holds client-side token bucket settings.
// A zero RequestsPerSecond disables rate limiting.
type RateLimitConfig struct {
	RequestsPerSecond float64 `koanf:"requests_per_second"`
	BurstSize         int     `koanf:"burst_size"`
}

// TelemetryConfig switches OpenTelemetry export on and picks the exporter
// (stdout or otlp).
type TelemetryConfig struct {
	Enabled     bool   `koanf:"enabled"`
	Exporter    string `koanf:"exporter"`
	Endpoint    string `koanf:"endpoint"`
	ServiceName string `koanf:"service_name"`
}

package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jsamuelsen11/go-todo-service/internal/platform/config"
)

func validConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Host:           "0.0.0.0",
			Port:           8080,
			ReadTimeout:    5 * time.Second,
			WriteTimeout:   10 * time.Second,
			IdleTimeout:    120 * time.Second,
			RequestTimeout: 8 * time.Second,
		},
		Log: config.LogConfig{Level: "info", Format: "json"},
		Database: config.DatabaseConfig{
			Driver:       config.DriverSQLite,
			DSN:          "todos.db",
			MaxOpenConns: 4,
			BusyTimeout:  5 * time.Second,
		},
		Telemetry: config.TelemetryConfig{Exporter: "stdout"},
	}
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr []string
	}{
		{name: "valid", mutate: func(*config.Config) {}},
		{
			name:    "port out of range",
			mutate:  func(c *config.Config) { c.Server.Port = 70000 },
			wantErr: []string{"server.port"},
		},
		{
			name:    "request timeout not below write timeout",
			mutate:  func(c *config.Config) { c.Server.RequestTimeout = c.Server.WriteTimeout },
			wantErr: []string{"server.request_timeout"},
		},
		{
			name:    "unknown log level",
			mutate:  func(c *config.Config) { c.Log.Level = "verbose" },
			wantErr: []string{"log.level"},
		},
		{
			name:    "unknown driver",
			mutate:  func(c *config.Config) { c.Database.Driver = "postgres" },
			wantErr: []string{"database.driver"},
		},
		{
			name:   "memory driver ignores sqlite settings",
			mutate: func(c *config.Config) { c.Database = config.DatabaseConfig{Driver: config.DriverMemory} },
		},
		{
			name: "otlp without endpoint",
			mutate: func(c *config.Config) {
				c.Telemetry = config.TelemetryConfig{Enabled: true, Exporter: "otlp"}
			},
			wantErr: []string{"telemetry.endpoint"},
		},
		{
			name:   "disabled telemetry is not checked",
			mutate: func(c *config.Config) { c.Telemetry = config.TelemetryConfig{Exporter: "carrier-pigeon"} },
		},
		{
			name: "every problem is reported",
			mutate: func(c *config.Config) {
				c.Server.Port = 0
				c.Log.Format = "xml"
				c.Database.MaxOpenConns = 0
			},
			wantErr: []string{"server.port", "log.format", "database.max_open_conns"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if len(tt.wantErr) == 0 {
				assert.NoError(t, err)
				return
			}
			for _, want := range tt.wantErr {
				assert.ErrorContains(t, err, want)
			}
		})
	}
}

func TestClientConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*config.ClientConfig)
		wantErr string
	}{
		{name: "defaults", mutate: func(*config.ClientConfig) {}},
		{name: "relative base url", mutate: func(c *config.ClientConfig) { c.BaseURL = "/todos" }, wantErr: "base_url"},
		{name: "non-http scheme", mutate: func(c *config.ClientConfig) { c.BaseURL = "ftp://host" }, wantErr: "base_url"},
		{name: "no attempts", mutate: func(c *config.ClientConfig) { c.Retry.MaxAttempts = 0 }, wantErr: "retry.max_attempts"},
		{name: "shrinking backoff", mutate: func(c *config.ClientConfig) { c.Retry.Multiplier = 0.5 }, wantErr: "retry.multiplier"},
		{name: "ceiling below initial", mutate: func(c *config.ClientConfig) { c.Retry.MaxInterval = time.Millisecond }, wantErr: "retry.max_interval"},
		{name: "breaker never opens", mutate: func(c *config.ClientConfig) { c.CircuitBreaker.MaxFailures = 0 }, wantErr: "circuit_breaker.max_failures"},
		{name: "rate limit without burst", mutate: func(c *config.ClientConfig) { c.RateLimit.BurstSize = 0 }, wantErr: "rate_limit.burst_size"},
		{
			name: "disabled rate limit needs no burst",
			mutate: func(c *config.ClientConfig) {
				c.RateLimit = config.RateLimitConfig{}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := config.DefaultClientConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

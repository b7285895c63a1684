package config

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
)

// problems collects every violation so one run reports them all.
type problems []error

func (p *problems) check(ok bool, format string, args ...any) {
	if !ok {
		*p = append(*p, fmt.Errorf(format, args...))
	}
}

func (p problems) err() error {
	return errors.Join(p...)
}

// Validate reports every invalid setting of the service configuration.
func (c *Config) Validate() error {
	var p problems
	c.Server.validate(&p)
	c.Log.validate(&p)
	c.Database.validate(&p)
	c.Telemetry.validate(&p)
	return p.err()
}

func (s *ServerConfig) validate(p *problems) {
	p.check(s.Port >= 1 && s.Port <= 65535, "server.port must be between 1 and 65535, got %d", s.Port)
	p.check(s.ReadTimeout > 0, "server.read_timeout must be positive")
	p.check(s.WriteTimeout > 0, "server.write_timeout must be positive")
	p.check(s.RequestTimeout > 0, "server.request_timeout must be positive")
	if s.RequestTimeout > 0 && s.WriteTimeout > 0 {
		// The 504 envelope has to be written before the connection deadline.
		p.check(s.RequestTimeout < s.WriteTimeout,
			"server.request_timeout (%s) must be shorter than server.write_timeout (%s)",
			s.RequestTimeout, s.WriteTimeout)
	}
}

func (l *LogConfig) validate(p *problems) {
	p.check(slices.Contains([]string{"debug", "info", "warn", "error"}, l.Level),
		"log.level must be one of debug, info, warn, error; got %q", l.Level)
	p.check(slices.Contains([]string{"json", "text"}, l.Format),
		"log.format must be one of json, text; got %q", l.Format)
}

func (d *DatabaseConfig) validate(p *problems) {
	switch d.Driver {
	case DriverSQLite:
		p.check(d.DSN != "", "database.dsn must not be empty for the sqlite driver")
		p.check(d.MaxOpenConns >= 1, "database.max_open_conns must be >= 1, got %d", d.MaxOpenConns)
		p.check(d.BusyTimeout >= 0, "database.busy_timeout must not be negative")
	case DriverMemory:
	default:
		p.check(false, "database.driver must be one of sqlite, memory; got %q", d.Driver)
	}
}

func (t *TelemetryConfig) validate(p *problems) {
	if !t.Enabled {
		return
	}
	p.check(t.Exporter == "stdout" || t.Exporter == "otlp",
		"telemetry.exporter must be one of stdout, otlp; got %q", t.Exporter)
	p.check(t.Exporter != "otlp" || t.Endpoint != "",
		"telemetry.endpoint must not be empty when exporter is otlp")
}

// Validate reports every invalid setting of the client configuration.
func (cl *ClientConfig) Validate() error {
	var p problems

	u, err := url.Parse(cl.BaseURL)
	p.check(err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != "",
		"base_url must be an absolute http(s) URL, got %q", cl.BaseURL)
	p.check(cl.Timeout > 0, "timeout must be positive")

	p.check(cl.Retry.MaxAttempts >= 1, "retry.max_attempts must be >= 1, got %d", cl.Retry.MaxAttempts)
	p.check(cl.Retry.Multiplier >= 1, "retry.multiplier must be >= 1, got %g", cl.Retry.Multiplier)
	p.check(cl.Retry.InitialInterval >= 0, "retry.initial_interval must not be negative")
	p.check(cl.Retry.MaxInterval >= cl.Retry.InitialInterval,
		"retry.max_interval (%s) must not be below retry.initial_interval (%s)",
		cl.Retry.MaxInterval, cl.Retry.InitialInterval)

	p.check(cl.CircuitBreaker.MaxFailures >= 1,
		"circuit_breaker.max_failures must be >= 1, got %d", cl.CircuitBreaker.MaxFailures)

	p.check(cl.RateLimit.RequestsPerSecond >= 0,
		"rate_limit.requests_per_second must not be negative, got %g", cl.RateLimit.RequestsPerSecond)
	p.check(cl.RateLimit.RequestsPerSecond == 0 || cl.RateLimit.BurstSize >= 1,
		"rate_limit.burst_size must be >= 1 when rate limiting, got %d", cl.RateLimit.BurstSize)

	return p.err()
}

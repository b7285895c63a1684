package telemetry

import (
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/metric"
)

// Metrics holds the service's metric instruments.
type Metrics struct {
	ServerRequestDuration metric.Float64Histogram
	ServerRequestTotal    metric.Int64Counter
	ClientRequestDuration metric.Float64Histogram
	ClientRequestTotal    metric.Int64Counter
	DBOperationDuration   metric.Float64Histogram
}

// NewMetrics creates every instrument on a meter named scope.
func NewMetrics(mp metric.MeterProvider, scope string) (*Metrics, error) {
	b := builder{meter: mp.Meter(scope)}

	m := &Metrics{
		ServerRequestDuration: b.seconds("http.server.request.duration", "Duration of incoming HTTP requests"),
		ServerRequestTotal:    b.requests("http.server.request.total", "Incoming HTTP requests"),
		ClientRequestDuration: b.seconds("http.client.request.duration", "Duration of outgoing HTTP requests"),
		ClientRequestTotal:    b.requests("http.client.request.total", "Outgoing HTTP requests"),
		DBOperationDuration:   b.seconds("db.client.operation.duration", "Duration of todo store operations"),
	}
	if err := errors.Join(b.errs...); err != nil {
		return nil, err
	}
	return m, nil
}

// builder collects instrument creation errors so NewMetrics reports all of
// them at once.
type builder struct {
	meter metric.Meter
	errs  []error
}

func (b *builder) seconds(name, desc string) metric.Float64Histogram {
	h, err := b.meter.Float64Histogram(name, metric.WithDescription(desc), metric.WithUnit("s"))
	if err != nil {
		b.errs = append(b.errs, fmt.Errorf("creating %s: %w", name, err))
	}
	return h
}

func (b *builder) requests(name, desc string) metric.Int64Counter {
	c, err := b.meter.Int64Counter(name, metric.WithDescription(desc), metric.WithUnit("{request}"))
	if err != nil {
		b.errs = append(b.errs, fmt.Errorf("creating %s: %w", name, err))
	}
	return c
}

package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.39.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen11/go-todo-service/internal/platform/telemetry"
)

const (
	tracerName     = "github.com/jsamuelsen11/go-todo-service/internal/adapters/http/middleware"
	unmatchedRoute = "unmatched"
)

// OTelOption customizes the OpenTelemetry middleware.
type OTelOption func(*otelConfig)

type otelConfig struct {
	tracers    trace.TracerProvider
	propagator propagation.TextMapPropagator
}

// WithTracerProvider replaces the global tracer provider.
func WithTracerProvider(tp trace.TracerProvider) OTelOption {
	return func(c *otelConfig) { c.tracers = tp }
}

// WithPropagator replaces the global text map propagator.
func WithPropagator(p propagation.TextMapPropagator) OTelOption {
	return func(c *otelConfig) { c.propagator = p }
}

// OpenTelemetry starts a server span per request, continuing any W3C trace
// context in the request headers, and records the server request metrics.
// Both are labelled with the chi route pattern (/todos/{id}), known only
// after routing, so the span is renamed on the way out. metrics may be nil.
func OpenTelemetry(metrics *telemetry.Metrics, opts ...OTelOption) func(http.Handler) http.Handler {
	cfg := otelConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.tracers == nil {
		cfg.tracers = otel.GetTracerProvider()
	}
	if cfg.propagator == nil {
		cfg.propagator = otel.GetTextMapPropagator()
	}
	tracer := cfg.tracers.Tracer(tracerName)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ctx := cfg.propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))
			ctx, span := tracer.Start(ctx, r.Method,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(
					semconv.HTTPRequestMethodKey.String(r.Method),
					semconv.URLPath(r.URL.Path),
					semconv.UserAgentOriginal(r.UserAgent()),
				),
			)
			defer span.End()

			rw := record(w)
			next.ServeHTTP(rw, r.WithContext(ctx))

			route, status := matchedRoute(r), rw.code()

			span.SetName(r.Method + " " + route)
			span.SetAttributes(
				semconv.HTTPRoute(route),
				semconv.HTTPResponseStatusCode(status),
			)
			if status >= http.StatusInternalServerError {
				span.SetStatus(codes.Error, http.StatusText(status))
			}

			if metrics == nil {
				return
			}
			outcome := "success"
			if status >= http.StatusBadRequest {
				outcome = "error"
			}
			attrs := metric.WithAttributes(
				telemetry.AttrHTTPMethod.String(r.Method),
				telemetry.AttrHTTPRoute.String(route),
				telemetry.AttrHTTPStatus.Int(status),
				telemetry.AttrResult.String(outcome),
			)
			metrics.ServerRequestDuration.Record(ctx, time.Since(start).Seconds(), attrs)
			metrics.ServerRequestTotal.Add(ctx, 1, attrs)
		})
	}
}

// matchedRoute is the chi pattern the request was routed to.
func matchedRoute(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil || rctx.RoutePattern() == "" {
		return unmatchedRoute
	}
	return rctx.RoutePattern()
}

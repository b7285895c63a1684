// Package middleware holds the inbound HTTP pipeline of the Todo API. The
// router installs it in this order:
//
//	Recovery → RequestID → CorrelationID → OpenTelemetry → Logging → Timeout → handler
package middleware

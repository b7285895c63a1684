package httpclient

import (
	"context"
	"net/http"
)

type forwardKey struct{}

type forwarded struct {
	name, value string
}

// ForwardHeader returns a context that makes every outbound request sent with
// it carry the header name: value, such as a correlation ID shared by every
// call of one todoctl invocation. A later call for the same name replaces the earlier value;
// an empty value is ignored.
func ForwardHeader(ctx context.Context, name, value string) context.Context {
	if value == "" {
		return ctx
	}
	name = http.CanonicalHeaderKey(name)

	prev, _ := ctx.Value(forwardKey{}).([]forwarded)
	next := make([]forwarded, 0, len(prev)+1)
	for _, h := range prev {
		if h.name != name {
			next = append(next, h)
		}
	}
	next = append(next, forwarded{name: name, value: value})
	return context.WithValue(ctx, forwardKey{}, next)
}

func forwardHeaders(ctx context.Context, h http.Header) {
	headers, _ := ctx.Value(forwardKey{}).([]forwarded)
	for _, f := range headers {
		h.Set(f.name, f.value)
	}
}

package logging

import (
	"log/slog"
	"net/http"
	"regexp"
	"slices"
	"strings"

	"github.com/m-mizutani/masq"
)

// sensitiveHeaders never appear in logs with their values.
var sensitiveHeaders = []string{
	"Authorization",
	"Cookie",
	"Proxy-Authorization",
	"Set-Cookie",
	"X-Api-Key",
}

// sensitiveFields are attribute keys masked wherever they appear.
var sensitiveFields = []string{"password", "secret", "token", "dsn"}

var sensitiveValues = []*regexp.Regexp{
	regexp.MustCompile(`(?i)bearer\s+[a-z0-9\-._~+/]+=*`),
	// JWTs: three base64url segments of at least ten characters each.
	regexp.MustCompile(`[A-Za-z0-9\-_]{10,}\.[A-Za-z0-9\-_]{10,}\.[A-Za-z0-9\-_]{10,}`),
	regexp.MustCompile(`(?i)api[_\-]?key\s*[:=]\s*\S+`),
	// Userinfo in URLs such as a DSN or base URL.
	regexp.MustCompile(`://[^/\s:@]+:[^/\s@]+@`),
}

// IsSensitiveHeader reports whether the named header's values must be
// masked before logging.
func IsSensitiveHeader(name string) bool {
	return slices.Contains(sensitiveHeaders, http.CanonicalHeaderKey(name))
}

func redactor() func([]string, slog.Attr) slog.Attr {
	opts := make([]masq.Option, 0, 2*len(sensitiveHeaders)+len(sensitiveFields)+len(sensitiveValues)+1)

	for _, h := range sensitiveHeaders {
		opts = append(opts, masq.WithFieldName(h), masq.WithFieldName(strings.ToLower(h)))
	}
	for _, f := range sensitiveFields {
		opts = append(opts, masq.WithFieldName(f))
	}
	opts = append(opts, masq.WithFieldPrefix("secret_"))
	for _, re := range sensitiveValues {
		opts = append(opts, masq.WithRegex(re))
	}

	return masq.New(opts...)
}

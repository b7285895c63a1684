package httpclient

import (
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen11/go-todo-service/internal/platform/config"
)

func TestRetryPolicy_AttemptsFor(t *testing.T) {
	t.Parallel()

	p := newRetryPolicy(config.RetryConfig{MaxAttempts: 4})

	for _, m := range []string{http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace, http.MethodPut, http.MethodDelete} {
		assert.Equal(t, 4, p.attemptsFor(m), m)
	}
	for _, m := range []string{http.MethodPost, http.MethodPatch, http.MethodConnect} {
		assert.Equal(t, 1, p.attemptsFor(m), m)
	}
}

func TestNewRetryPolicy_AtLeastOneAttempt(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 1, newRetryPolicy(config.RetryConfig{}).attemptsFor(http.MethodGet))
}

func TestRetryPolicy_Delay(t *testing.T) {
	t.Parallel()

	p := retryPolicy{attempts: 5, initial: 100 * time.Millisecond, ceiling: time.Second, multiplier: 2}

	tests := []struct {
		name    string
		n       int
		hint    time.Duration
		nominal time.Duration
	}{
		{"first retry", 1, 0, 100 * time.Millisecond},
		{"grows exponentially", 3, 0, 400 * time.Millisecond},
		{"capped at ceiling", 6, 0, time.Second},
		{"small hint ignored", 2, time.Millisecond, 200 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			for range 50 {
				got := p.delay(tt.n, tt.hint)
				assert.GreaterOrEqual(t, got, time.Duration(float64(tt.nominal)*(1-jitter)))
				assert.LessOrEqual(t, got, time.Duration(float64(tt.nominal)*(1+jitter)))
			}
		})
	}

	t.Run("hint wins and is capped", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, 700*time.Millisecond, p.delay(1, 700*time.Millisecond))
		assert.Equal(t, time.Second, p.delay(1, time.Hour))
	})
}

func TestRetryAfter(t *testing.T) {
	t.Parallel()

	tests := map[string]time.Duration{
		"":                              0,
		"3":                             3 * time.Second,
		"-1":                            0,
		"Wed, 21 Oct 2015 07:28:00 GMT": 0,
	}

	for value, want := range tests {
		h := http.Header{}
		if value != "" {
			h.Set("Retry-After", value)
		}
		assert.Equal(t, want, retryAfter(h), "Retry-After %q", value)
	}
}

func TestRetryableStatus(t *testing.T) {
	t.Parallel()

	for code, want := range map[int]bool{
		http.StatusOK:                  false,
		http.StatusBadRequest:          false,
		http.StatusNotFound:            false,
		http.StatusTooManyRequests:     true,
		http.StatusInternalServerError: true,
		http.StatusBadGateway:          true,
		http.StatusGatewayTimeout:      true,
	} {
		assert.Equal(t, want, retryableStatus(code), "status %d", code)
	}
}

func TestMakeReplayable(t *testing.T) {
	t.Parallel()

	req, err := http.NewRequest(http.MethodPut, "http://x/todos/1", io.NopCloser(strings.NewReader("payload")))
	require.NoError(t, err)
	require.Nil(t, req.GetBody)

	require.NoError(t, makeReplayable(req))
	require.NotNil(t, req.GetBody)
	assert.Equal(t, int64(len("payload")), req.ContentLength)

	for range 2 {
		b, err := io.ReadAll(req.Body)
		require.NoError(t, err)
		assert.Equal(t, "payload", string(b))
		require.NoError(t, rewind(req))
	}
}

func TestResult(t *testing.T) {
	t.Parallel()

	assert.Equal(t, resultSuccess, result(http.StatusOK, nil))
	assert.Equal(t, resultError, result(http.StatusNotFound, nil))
	assert.Equal(t, resultError, result(http.StatusInternalServerError, ErrRetriesExhausted))
	assert.Equal(t, resultError, result(0, io.ErrUnexpectedEOF))
}

package todoapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/jsamuelsen11/go-todo-service/internal/platform/httpclient"
)

// errUnsuccessful is returned when a 2xx response carries success=false.
var errUnsuccessful = errors.New("todo api reported failure")

// requester runs one call against the Todo API: it encodes the request body,
// executes through httpclient.Client, translates failures and unwraps the
// response envelope.
type requester struct {
	client *httpclient.Client
	logger *slog.Logger
}

// do sends method path with reqBody (nil for none) and decodes the envelope
// data into data (nil to discard). It returns the envelope message.
func (r *requester) do(ctx context.Context, method, path string, reqBody, data any) (string, error) {
	req, err := r.newRequest(ctx, method, path, reqBody)
	if err != nil {
		return "", err
	}

	resp, err := r.client.Do(req)
	if resp != nil {
		defer r.closeBody(ctx, resp)
	}
	if err != nil {
		// Retries exhausted on a retryable status still hand back the response.
		if resp != nil {
			return "", TranslateHTTPError(resp)
		}
		r.logger.ErrorContext(ctx, "request failed",
			slog.String("method", method),
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
		return "", fmt.Errorf("%s %s: %w", method, path, err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		r.logger.DebugContext(ctx, "unexpected status",
			slog.String("method", method),
			slog.String("path", path),
			slog.Int("status", resp.StatusCode),
		)
		return "", TranslateHTTPError(resp)
	}

	var env envelopeDTO
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return "", fmt.Errorf("decoding response from %s %s: %w", method, path, err)
	}
	if !env.Success {
		return "", fmt.Errorf("%s %s: %s: %w", method, path, env.Message, errUnsuccessful)
	}
	if data != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, data); err != nil {
			return "", fmt.Errorf("decoding data from %s %s: %w", method, path, err)
		}
	}
	return env.Message, nil
}

// getJSON fetches a plain JSON document that is not wrapped in an envelope.
// Any status is accepted; the caller inspects it.
func (r *requester) getJSON(ctx context.Context, path string, v any) (int, error) {
	req, err := r.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return 0, err
	}

	resp, err := r.client.Do(req)
	if resp != nil {
		defer r.closeBody(ctx, resp)
	}
	if resp == nil {
		return 0, fmt.Errorf("GET %s: %w", path, err)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return resp.StatusCode, fmt.Errorf("decoding response from GET %s: %w", path, err)
	}
	return resp.StatusCode, nil
}

func (r *requester) newRequest(ctx context.Context, method, path string, reqBody any) (*http.Request, error) {

	var body io.Reader = http.NoBody
	if reqBody != nil {
		b, err := json.Marshal(reqBody)
		if err != nil {
			return nil, fmt.Errorf("marshaling %s body for %s: %w", method, path, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, r.client.URL(path), body)
	if err != nil {
		return nil, fmt.Errorf("creating %s request for %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

func (r *requester) closeBody(ctx context.Context, resp *http.Response) {
	if err := resp.Body.Close(); err != nil {
		r.logger.WarnContext(ctx, "failed to close response body",
			slog.String("error", err.Error()),
		)
	}
}

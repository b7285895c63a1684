package todoapi

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/jsamuelsen11/go-todo-service/internal/domain"
)

// maxErrorBodySize limits how much of an error response body we read.
const maxErrorBodySize = 1 << 20

// TranslateHTTPError maps a failed Todo API response to a domain error. The
// envelope message, when present, becomes the error text:
//
//	400 -> domain.ErrValidation
//	404 -> domain.ErrNotFound
//	5xx -> domain.ErrUnavailable
func TranslateHTTPError(resp *http.Response) error {
	message := envelopeMessage(resp)
	if message == "" {
		message = http.StatusText(resp.StatusCode)
	}

	switch {
	case resp.StatusCode == http.StatusBadRequest:
		return fmt.Errorf("%s: %w", message, domain.ErrValidation)
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%s: %w", message, domain.ErrNotFound)
	case resp.StatusCode >= http.StatusInternalServerError:
		return fmt.Errorf("%s: %w", message, domain.ErrUnavailable)
	default:
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, message)
	}
}

// envelopeMessage reads the message field of an envelope body. Returns ""
// when the body is missing or is not an envelope.
func envelopeMessage(resp *http.Response) string {
	if resp.Body == nil {
		return ""
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
	if err != nil {
		return ""
	}

	var env envelopeDTO
	if err := json.Unmarshal(body, &env); err != nil {
		return ""
	}
	return env.Message
}

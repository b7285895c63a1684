package dto

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/jsamuelsen11/go-todo-service/internal/domain"
	"github.com/jsamuelsen11/go-todo-service/internal/platform/logging"
)

// Transport-level failures that have no domain counterpart.
var (
	ErrTimeout          = errors.New("request timed out")
	ErrNoRoute          = errors.New("no such route")
	ErrMethodNotAllowed = errors.New("method not allowed")
)

// WriteErrorResponse writes a failure envelope for err:
//
//	domain.ErrValidation      -> 400 "Invalid Request"
//	domain.ErrNotFound        -> 404 "Todo not found."
//	*domain.PersistenceError  -> 500 with the storage error message
//	ErrTimeout                -> 504 "Request timed out."
//	ErrNoRoute                -> 404 "Not Found"
//	ErrMethodNotAllowed       -> 405 "Method Not Allowed"
//	anything else             -> 500 "Server Error"
//
// Field-level validation details are logged, never returned.
func WriteErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	status, message := ErrorToStatus(err)

	logger := logging.FromContext(r.Context())
	if status >= http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), "request failed",
			slog.Int("status", status),
			slog.Any("error", err),
		)
	} else {
		logger.DebugContext(r.Context(), "request rejected",
			slog.Int("status", status),
			slog.Any("error", err),
		)
	}

	writeEnvelope(w, r, status, Envelope{Success: false, Message: message})
}

// ErrorToStatus maps a domain error to the HTTP status and envelope message
// reported for it.
func ErrorToStatus(err error) (int, string) {
	var perr *domain.PersistenceError

	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, MsgInvalid
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, MsgNotFound
	case errors.Is(err, ErrTimeout):
		return http.StatusGatewayTimeout, MsgTimeout
	case errors.Is(err, ErrNoRoute):
		return http.StatusNotFound, MsgNoRoute
	case errors.Is(err, ErrMethodNotAllowed):
		return http.StatusMethodNotAllowed, MsgMethodNotAllowed
	case errors.As(err, &perr):
		return http.StatusInternalServerError, perr.Error()
	default:
		return http.StatusInternalServerError, MsgServerError
	}
}

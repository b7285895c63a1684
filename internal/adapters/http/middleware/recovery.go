package middleware

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/jsamuelsen11/go-todo-service/internal/adapters/http/dto"
)

var errPanic = errors.New("handler panicked")

// Recovery turns a handler panic into the 500 "Server Error" envelope and
// an error record carrying the panic value and stack. Nothing is written
// when the handler already committed a response. http.ErrAbortHandler is
// re-raised so net/http can abort the connection.
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rw := record(w)
			defer func() {
				v := recover()
				switch v {
				case nil:
					return
				case http.ErrAbortHandler:
					panic(v)
				}

				// Panics relayed by Timeout already carry the handler's stack.
				value, stack := v, debug.Stack()
				if hp, ok := v.(handlerPanic); ok {
					value, stack = hp.value, hp.stack
				}

				logger.LogAttrs(r.Context(), slog.LevelError, "panic recovered",
					slog.String("panic", fmt.Sprint(value)),
					slog.String("stack", string(stack)),
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.Bool("response_committed", rw.committed()),
				)

				if !rw.committed() {
					dto.WriteErrorResponse(rw, r, fmt.Errorf("%w: %v", errPanic, value))
				}
			}()

			next.ServeHTTP(rw, r)
		})
	}
}

package middleware

import (
	"bytes"
	"context"
	"fmt"
	"maps"
	"net/http"
	"runtime/debug"
	"sync"
	"time"

	"github.com/jsamuelsen11/go-todo-service/internal/adapters/http/dto"
)

// Timeout bounds each request to d. The handler runs on its own goroutine
// against a buffered writer and a context carrying the deadline. When the
// deadline passes first, the client gets the 504 error envelope and later
// handler writes fail with http.ErrHandlerTimeout. A handler panic is
// re-raised on the serving goroutine so Recovery still sees it.
func Timeout(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()
			r = r.WithContext(ctx)

			bw := &bufferedWriter{header: make(http.Header)}
			done := make(chan struct{})
			panicked := make(chan any, 1)

			go func() {
				defer func() {
					switch v := recover(); v {
					case nil:
					case http.ErrAbortHandler:
						panicked <- v
					default:
						panicked <- handlerPanic{value: v, stack: debug.Stack()}
					}
				}()
				next.ServeHTTP(bw, r)
				close(done)
			}()

			select {
			case v := <-panicked:
				panic(v)
			case <-done:
				bw.mu.Lock()
				defer bw.mu.Unlock()
				bw.copyTo(w)
			case <-ctx.Done():
				bw.mu.Lock()
				bw.timedOut = true
				bw.mu.Unlock()
				dto.WriteErrorResponse(w, r, fmt.Errorf("%s %s after %s: %w", r.Method, r.URL.Path, d, dto.ErrTimeout))
			}
		})
	}
}

// handlerPanic carries a panic and the stack of the goroutine that raised it.
type handlerPanic struct {
	value any
	stack []byte
}

func (p handlerPanic) String() string {
	return fmt.Sprintf("%v\n\n%s", p.value, p.stack)
}

// bufferedWriter holds the handler's response until Timeout decides whether
// to send it.
type bufferedWriter struct {
	mu       sync.Mutex
	header   http.Header
	body     bytes.Buffer
	status   int
	timedOut bool
}

func (bw *bufferedWriter) Header() http.Header {
	return bw.header
}

func (bw *bufferedWriter) WriteHeader(code int) {
	bw.mu.Lock()
	defer bw.mu.Unlock()

	if bw.status == 0 && !bw.timedOut {
		bw.status = code
	}
}

func (bw *bufferedWriter) Write(b []byte) (int, error) {
	bw.mu.Lock()
	defer bw.mu.Unlock()

	if bw.timedOut {
		return 0, http.ErrHandlerTimeout
	}
	if bw.status == 0 {
		bw.status = http.StatusOK
	}
	return bw.body.Write(b)
}

// copyTo sends the buffered response to w. Callers hold bw.mu.
func (bw *bufferedWriter) copyTo(w http.ResponseWriter) {
	maps.Copy(w.Header(), bw.header)
	if bw.status == 0 {
		bw.status = http.StatusOK
	}
	w.WriteHeader(bw.status)
	_, _ = bw.body.WriteTo(w)
}

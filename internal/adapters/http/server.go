package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jsamuelsen11/go-todo-service/internal/platform/config"
)

// DefaultDrainTimeout bounds how long Serve waits for in-flight requests
// once its context is canceled.
const DefaultDrainTimeout = 10 * time.Second

// ServerOption customizes a Server.
type ServerOption func(*Server)

// WithDrainTimeout overrides DefaultDrainTimeout.
func WithDrainTimeout(d time.Duration) ServerOption {
	return func(s *Server) {
		if d > 0 {
			s.drain = d
		}
	}
}

// Server runs the Todo API until its context ends, then drains.
type Server struct {
	http   *http.Server
	logger *slog.Logger
	drain  time.Duration
}

// NewServer builds a server for handler listening on cfg.Addr(). net/http's
// own error log is routed to logger at warn level.
func NewServer(cfg config.ServerConfig, handler http.Handler, logger *slog.Logger, opts ...ServerOption) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Server{
		http: &http.Server{
			Addr:              cfg.Addr(),
			Handler:           handler,
			ReadTimeout:       cfg.ReadTimeout,
			ReadHeaderTimeout: cfg.ReadTimeout,
			WriteTimeout:      cfg.WriteTimeout,
			IdleTimeout:       cfg.IdleTimeout,
			ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
		},
		logger: logger,
		drain:  DefaultDrainTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Addr is the configured listen address.
func (s *Server) Addr() string {
	return s.http.Addr
}

// Run listens on Addr and serves until ctx is canceled. See Serve.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.http.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is canceled or serving fails.
// Either way the server is then shut down, giving in-flight requests the
// drain timeout to finish. A clean drain after cancellation returns nil.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("http server listening", slog.String("addr", ln.Addr().String()))
		if err := s.http.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serving http: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		s.logger.Info("draining http server", slog.Duration("timeout", s.drain))

		drainCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.drain)
		defer cancel()
		if err := s.http.Shutdown(drainCtx); err != nil {
			return fmt.Errorf("draining http server: %w", err)
		}
		return nil
	})

	return g.Wait()
}

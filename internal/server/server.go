// Package server assembles the HTTP router and owns the listener
// lifecycle, including graceful shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	apperrors "github.com/printforge/slicerd/internal/errors"
	"github.com/printforge/slicerd/internal/server/handlers"
	"github.com/printforge/slicerd/internal/server/middleware"
)

// Deps carries the wired endpoint sets and request policies.
type Deps struct {
	Profiles *handlers.Profiles
	Slice    *handlers.Slice
	Health   *handlers.HealthManager

	// UploadLimiter shapes the write endpoints. Nil disables limiting.
	UploadLimiter *rate.Limiter

	// MaxUploadBytes caps request bodies.
	MaxUploadBytes int64

	Logger *zap.Logger

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// Server is the HTTP front end.
type Server struct {
	host    string
	port    int
	deps    Deps
	handler http.Handler
}

// New builds the router. The server does not listen until Start.
func New(host string, port int, deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	s := &Server{host: host, port: port, deps: deps}
	s.handler = s.buildRouter()
	return s
}

// Host returns the configured bind host.
func (s *Server) Host() string { return s.host }

// Port returns the configured bind port.
func (s *Server) Port() int { return s.port }

// Handler returns the assembled router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.handler }

func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery)
	r.Use(middleware.Logger(s.deps.Logger))
	if s.deps.MaxUploadBytes > 0 {
		r.Use(middleware.MaxBytes(s.deps.MaxUploadBytes))
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		apperrors.WriteError(w, r, http.StatusNotFound, apperrors.CodeNotFound, "Not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		apperrors.WriteError(w, r, http.StatusMethodNotAllowed, apperrors.CodeMethodNotAllowed, "Method not allowed", nil)
	})

	limited := func(h http.HandlerFunc) http.HandlerFunc {
		if s.deps.UploadLimiter == nil {
			return h
		}
		return middleware.RateLimit(s.deps.UploadLimiter)(h).ServeHTTP
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.deps.Health.HealthHandler)
		r.Get("/help", handlers.Help)

		r.Route("/profiles/{category}", func(r chi.Router) {
			r.Get("/", s.deps.Profiles.List)
			r.Post("/", limited(s.deps.Profiles.Create))
			r.Get("/{name}", s.deps.Profiles.Get)
			r.Put("/{name}", limited(s.deps.Profiles.Replace))
			r.Patch("/{name}", s.deps.Profiles.Rename)
			r.Delete("/{name}", s.deps.Profiles.Delete)
		})

		r.Get("/slice/status", s.deps.Slice.Status)
		r.Post("/slice", limited(s.deps.Slice.Submit))
	})

	return r
}

// Start listens until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.host, s.port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.handler,
		ReadTimeout:  s.deps.ReadTimeout,
		WriteTimeout: s.deps.WriteTimeout,
		IdleTimeout:  s.deps.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.deps.Logger.Info("HTTP server listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	timeout := s.deps.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s.deps.Logger.Info("Shutting down HTTP server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

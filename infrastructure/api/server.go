package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// Server wraps the HTTP listener and the root chi router. Request ID,
// real-IP, and panic recovery middleware are installed at construction.
// Timeouts are applied per route group rather than globally, so raw
// content downloads are free to stream.
type Server struct {
	router     chi.Router
	httpServer *http.Server
	logger     *slog.Logger
	addr       string
}

// NewServer creates a Server that listens on addr once started.
func NewServer(addr string, logger *slog.Logger) Server {
	if logger == nil {
		logger = slog.Default()
	}

	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)

	return Server{router: router, addr: addr, logger: logger}
}

// Router returns the root router for registering routes.
func (s Server) Router() chi.Router { return s.router }

// Addr returns the configured listen address.
func (s Server) Addr() string { return s.addr }

// Start serves HTTP until Shutdown is called or the listener fails.
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	s.logger.LogAttrs(context.Background(), slog.LevelInfo, "starting HTTP server",
		slog.String("addr", s.addr))

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests and stops the listener. Calling it
// before Start is a no-op.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}

	s.logger.LogAttrs(ctx, slog.LevelInfo, "shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

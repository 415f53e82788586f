package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"

	"github.com/mcoot/crossword-extravaganza/internal/config"
)

// Server runs the router on a listener and stops it on request.
// Websocket sessions are hijacked out of the http.Server, so neither the
// write timeout nor Shutdown reach them; the session manager closes those.
type Server struct {
	http   *http.Server
	logger *slog.Logger
	cfg    config.ServerConfig
}

// NewServer creates a server for handler using the listener settings in cfg
func NewServer(handler http.Handler, cfg config.ServerConfig, logger *slog.Logger) *Server {
	return &Server{
		http: &http.Server{
			Addr:         net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
			Handler:      handler,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
		logger: logger.With(slog.String("component", "http")),
		cfg:    cfg,
	}
}

// Listen binds the configured address. Binding before serving surfaces a
// taken port at startup and fixes Addr when port 0 is configured.
func (s *Server) Listen() (net.Listener, error) {
	l, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", s.http.Addr, err)
	}
	s.http.Addr = l.Addr().String()
	return l, nil
}

// Serve accepts connections on l until Shutdown is called
func (s *Server) Serve(l net.Listener) error {
	s.http.Addr = l.Addr().String()
	s.logger.Info("accepting connections", slog.String("addr", s.http.Addr))

	err := s.http.Serve(l)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return fmt.Errorf("serve: %w", err)
}

// Shutdown stops accepting requests and waits for in-flight API calls,
// bounded by the configured shutdown timeout
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.ShutdownTimeout)
	defer cancel()

	if err := s.http.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.logger.Info("HTTP server stopped")
	return nil
}

// Addr is the listen address; after Listen or Serve it holds the bound port
func (s *Server) Addr() string {
	return s.http.Addr
}

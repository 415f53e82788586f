package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mcoot/crossword-extravaganza/internal/middleware"
)

// Time a session closed at shutdown gets to flush and say goodbye
const closeGrace = 2 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Terminal clients send no Origin
	},
}

// Manager upgrades websocket requests into sessions and tracks them until
// they end
type Manager struct {
	handler *Handler
	logger  *slog.Logger

	mu       sync.Mutex
	sessions map[*Session]struct{}
	closing  bool
	wg       sync.WaitGroup
}

// NewManager creates a Manager dispatching every session through handler
func NewManager(handler *Handler, logger *slog.Logger) *Manager {
	return &Manager{
		handler:  handler,
		logger:   logger.With(slog.String("component", "sessions")),
		sessions: make(map[*Session]struct{}),
	}
}

// ServeHTTP upgrades the request and runs the session's pumps
func (m *Manager) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	closing := m.closing
	m.mu.Unlock()
	if closing {
		http.Error(w, "server shutting down", http.StatusServiceUnavailable)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		m.logger.Warn("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}

	logger := m.logger
	if id := middleware.RequestID(r.Context()); id != "" {
		logger = logger.With(slog.String("request_id", id))
	}
	s := newSession(conn, logger)
	if !m.add(s) {
		_ = conn.Close()
		return
	}
	s.Logger().Info("session opened", slog.String("remote_addr", r.RemoteAddr))

	ctx := context.WithoutCancel(r.Context())
	go func() {
		defer m.wg.Done()
		s.writePump()
	}()
	go func() {
		defer m.wg.Done()
		s.readPump(ctx, m.handler)
		m.remove(s)
		s.Logger().Info("session closed", slog.Duration("duration", time.Since(s.connectedAt)))
	}()
}

// Count returns the number of live sessions
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Shutdown stops accepting sessions and lets the live ones run until their
// players leave or ctx ends. Sessions still open at that point are closed
// after their queued messages flush; any that have not gone within
// closeGrace are cut off. No message handler is interrupted.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	m.closing = true
	live := len(m.sessions)
	m.mu.Unlock()

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		m.logger.Info("all sessions finished", slog.Int("sessions", live))
		return nil
	case <-ctx.Done():
	}

	remaining := m.snapshot()
	m.logger.Info("closing sessions still running", slog.Int("sessions", len(remaining)))
	for _, s := range remaining {
		s.Close()
	}

	select {
	case <-done:
		return nil
	case <-time.After(closeGrace):
	}

	for _, s := range m.snapshot() {
		_ = s.conn.Close()
	}
	return fmt.Errorf("sessions did not close within %s: %w", closeGrace, ctx.Err())
}

// snapshot returns the live sessions
func (m *Manager) snapshot() []*Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	live := make([]*Session, 0, len(m.sessions))
	for s := range m.sessions {
		live = append(live, s)
	}
	return live
}

// add registers s and reserves its two pump goroutines
func (m *Manager) add(s *Session) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closing {
		return false
	}
	m.sessions[s] = struct{}{}
	m.wg.Add(2)
	return true
}

func (m *Manager) remove(s *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, s)
}

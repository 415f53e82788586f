package server

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/mcoot/crossword-extravaganza/internal/model"
	"github.com/mcoot/crossword-extravaganza/internal/protocol"
	"github.com/mcoot/crossword-extravaganza/internal/services/match"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong from the peer
	pongWait = 60 * time.Second

	// Time between keepalive pings; must be less than pongWait
	pingPeriod = 30 * time.Second

	// Largest inbound frame accepted
	maxMessageSize = 8192

	// Outbound queue length; a session that falls this far behind is dropped
	sendBufferSize = 64
)

// Session is one websocket connection and its protocol state
type Session struct {
	id          string
	conn        *websocket.Conn
	connectedAt time.Time

	mu       sync.Mutex
	logger   *slog.Logger
	state    protocol.State
	playerID model.PlayerID
	match    *match.Match

	sendMu sync.Mutex
	send   chan []byte
	closed bool
}

// newSession wraps an upgraded connection
func newSession(conn *websocket.Conn, logger *slog.Logger) *Session {
	id := uuid.NewString()
	return &Session{
		id:          id,
		conn:        conn,
		connectedAt: time.Now(),
		logger:      logger.With(slog.String("session_id", id)),
		state:       protocol.StateStart,
		send:        make(chan []byte, sendBufferSize),
	}
}

// ID returns the session id
func (s *Session) ID() string {
	return s.id
}

// State returns the protocol state
func (s *Session) State() protocol.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// SetState moves the session to a new protocol state. CLOSED is final.
func (s *Session) SetState(state protocol.State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == protocol.StateClosed {
		return
	}
	if s.state != state {
		s.logger.Debug("state changed",
			slog.String("from", string(s.state)),
			slog.String("to", string(state)),
		)
	}
	s.state = state
}

// PlayerID returns the claimed player id, or "" before set-id
func (s *Session) PlayerID() model.PlayerID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playerID
}

// SetPlayerID records the claimed player id
func (s *Session) SetPlayerID(id model.PlayerID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playerID = id
	if id != "" {
		s.logger = s.logger.With(slog.String("player_id", string(id)))
	}
}

// Match returns the match the session is bound to, if any
func (s *Session) Match() *match.Match {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.match
}

// Bind attaches the session to a match; nil detaches it
func (s *Session) Bind(m *match.Match) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.match = m
}

// Logger returns the session's logger
func (s *Session) Logger() *slog.Logger {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.logger
}

// Send queues msg for the writer. It never blocks: a session whose queue is
// full is closed.
func (s *Session) Send(msg protocol.Message) {
	data, err := protocol.Encode(msg)
	if err != nil {
		s.Logger().Error("failed to encode message",
			slog.String("type", string(msg.Type())),
			slog.String("error", err.Error()),
		)
		return
	}

	s.sendMu.Lock()
	defer s.sendMu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.send <- data:
	default:
		s.Logger().Warn("send queue full, closing session")
		s.closed = true
		close(s.send)
		_ = s.conn.Close()
	}
}

// Close stops accepting messages. Whatever is already queued is still
// written before the connection closes.
func (s *Session) Close() {
	s.sendMu.Lock()
	defer s.sendMu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.send)
	}
}

// readPump decodes inbound frames and hands them to the handler until the
// connection fails or closes
func (s *Session) readPump(ctx context.Context, h *Handler) {
	defer func() {
		h.Disconnect(ctx, s)
		s.Close()
	}()

	s.conn.SetReadLimit(maxMessageSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
				s.Logger().Warn("websocket read error", slog.String("error", err.Error()))
			}
			return
		}
		h.HandleFrame(ctx, s, data)
	}
}

// writePump is the only writer on the connection. It preserves queue order.
func (s *Session) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = s.conn.Close()
	}()

	for {
		select {
		case message, ok := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = s.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

var _ Client = (*Session)(nil)

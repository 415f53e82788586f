package server

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mcoot/crossword-extravaganza/internal/model"
	"github.com/mcoot/crossword-extravaganza/internal/protocol"
	"github.com/mcoot/crossword-extravaganza/internal/services/match"
	"github.com/mcoot/crossword-extravaganza/internal/services/registry"
)

// Error strings sent to clients
const (
	msgInvalidMessage  = "Invalid message"
	msgInvalidID       = "Invalid id"
	msgWrongMatch      = "Wrong match"
	msgMatchStarted    = "Match already started"
	msgCannotTry       = "You cannot try to guess that word"
	msgCannotChallenge = "You cannot challenge that word"
)

// Client is a connection as seen by the dispatcher
type Client interface {
	registry.Conn
	PlayerID() model.PlayerID
	SetPlayerID(id model.PlayerID)
	Match() *match.Match
	Logger() *slog.Logger
	// Close flushes queued messages, then closes the connection
	Close()
}

// Handler runs the protocol state machine for every connection
type Handler struct {
	registry registry.RegistryInterface
}

// NewHandler creates a Handler dispatching into reg
func NewHandler(reg registry.RegistryInterface) *Handler {
	return &Handler{registry: reg}
}

// HandleFrame decodes one inbound frame and dispatches it.
// Malformed frames are answered with an error and change nothing.
func (h *Handler) HandleFrame(ctx context.Context, c Client, data []byte) {
	if c.State() == protocol.StateClosed {
		return
	}
	msg, err := protocol.Decode(data)
	if err != nil {
		c.Logger().DebugContext(ctx, "undecodable message", slog.String("error", err.Error()))
		c.Send(protocol.Error{Message: msgInvalidMessage})
		return
	}
	h.Handle(ctx, c, msg)
}

// Handle applies one message to the connection's state machine.
// Frames still in flight after an exit are dropped without a reply.
func (h *Handler) Handle(ctx context.Context, c Client, msg protocol.Message) {
	state := c.State()
	if state == protocol.StateClosed {
		c.Logger().DebugContext(ctx, "message after exit dropped", slog.String("type", string(msg.Type())))
		return
	}
	if !state.Allows(msg.Type()) {
		c.Logger().DebugContext(ctx, "message not allowed",
			slog.String("type", string(msg.Type())),
			slog.String("state", string(state)),
		)
		c.Send(protocol.Error{Message: msgInvalidMessage})
		return
	}

	switch m := msg.(type) {
	case protocol.SetID:
		h.setID(c, m)
	case protocol.NewMatch:
		h.newMatch(c, m)
	case protocol.PickMatch:
		h.pickMatch(c, m)
	case protocol.TryWord:
		h.play(ctx, c, msgCannotTry, func(mt *match.Match) error {
			return mt.TryWord(c.PlayerID(), m.EntryID, m.Word)
		})
	case protocol.ChallengeWord:
		h.play(ctx, c, msgCannotChallenge, func(mt *match.Match) error {
			return mt.ChallengeWord(c.PlayerID(), m.EntryID, m.Word)
		})
	case protocol.Reset:
		c.Bind(nil)
		c.SetState(protocol.StateChoose)
		h.registry.PushMatches()
	case protocol.Exit:
		h.exit(ctx, c, state)
	default:
		c.Send(protocol.Error{Message: msgInvalidMessage})
	}
}

// Disconnect releases everything a dropped connection held.
// There is no forfeit: an opponent mid-match simply stops hearing from it.
func (h *Handler) Disconnect(ctx context.Context, c Client) {
	if id := c.PlayerID(); id != "" {
		c.SetPlayerID("")
		h.registry.Unregister(id, c)
	}
}

func (h *Handler) setID(c Client, m protocol.SetID) {
	if err := h.registry.Register(m.PlayerID, c); err != nil {
		c.Send(protocol.Error{Message: msgInvalidID})
		return
	}
	c.SetPlayerID(m.PlayerID)
	c.SetState(protocol.StateChoose)
	c.Send(protocol.PuzzlesList{Puzzles: h.registry.Puzzles()})
	c.Send(protocol.MatchesList{Matches: h.registry.OpenMatches()})
}

func (h *Handler) newMatch(c Client, m protocol.NewMatch) {
	mt, err := h.registry.CreateMatch(c.PlayerID(), m.MatchID, m.PuzzleName, m.Description)
	if err != nil {
		c.Logger().Debug("match not created",
			slog.String("match_id", string(m.MatchID)),
			slog.String("error", err.Error()),
		)
		c.Send(protocol.Wait{OK: false})
	} else {
		c.Bind(mt)
		c.SetState(protocol.StateWait)
		c.Send(protocol.Wait{OK: true})
	}
	h.registry.PushMatches()
}

func (h *Handler) pickMatch(c Client, m protocol.PickMatch) {
	mt, err := h.registry.JoinMatch(c.PlayerID(), m.MatchID)
	if err != nil {
		if errors.Is(err, model.ErrMatchNotFound) {
			c.Send(protocol.Error{Message: msgWrongMatch})
		} else {
			c.Send(protocol.Error{Message: msgMatchStarted})
		}
		return
	}
	c.Bind(mt)
	c.SetState(protocol.StatePlay)
	h.registry.PushMatches()
	c.Send(protocol.GameStart{PuzzleName: mt.Puzzle().Name})
}

// play runs one move against the bound match, then pushes the new board to
// both players and closes the match out if the game is over. The match
// latches game over inside the move, so a racing opponent move cannot hide it.
func (h *Handler) play(ctx context.Context, c Client, rejection string, move func(*match.Match) error) {
	mt := c.Match()
	if mt == nil {
		c.Send(protocol.Error{Message: msgInvalidMessage})
		return
	}
	if err := move(mt); err != nil {
		c.Logger().DebugContext(ctx, "move rejected",
			slog.String("match_id", string(mt.ID())),
			slog.String("error", err.Error()),
		)
		c.Send(protocol.Error{Message: rejection})
		return
	}

	h.registry.BroadcastState(mt)
	if mt.IsGameOver() {
		h.registry.FinishMatch(ctx, mt)
	}
}

// exit from PLAY ends the match for both players before this connection
// closes. From any other state the connection simply quits.
func (h *Handler) exit(ctx context.Context, c Client, state protocol.State) {
	if state == protocol.StatePlay {
		if mt := c.Match(); mt != nil {
			h.registry.FinishMatch(ctx, mt)
		}
	}
	c.SetState(protocol.StateClosed)
	c.Send(protocol.Exit{})
	c.Close()
	h.Disconnect(ctx, c)
}

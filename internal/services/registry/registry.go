package registry

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/mcoot/crossword-extravaganza/internal/dependencies/clock"
	"github.com/mcoot/crossword-extravaganza/internal/model"
	"github.com/mcoot/crossword-extravaganza/internal/protocol"
	"github.com/mcoot/crossword-extravaganza/internal/services/match"
	"github.com/mcoot/crossword-extravaganza/internal/services/puzzles"
	"github.com/mcoot/crossword-extravaganza/internal/storage"
)

// Conn is the registry's view of a live connection.
// Send must never block.
type Conn interface {
	State() protocol.State
	SetState(state protocol.State)
	Bind(m *match.Match)
	Send(msg protocol.Message)
}

// Registry tracks live connections by player id and live matches by match id.
// Connection methods are only called with the registry lock released.
type Registry struct {
	logger  *slog.Logger
	library puzzles.LibraryInterface
	storage storage.Storage
	clock   clock.Clock

	mu      sync.Mutex
	conns   map[model.PlayerID]Conn
	matches map[model.MatchID]*match.Match
}

// New creates an empty Registry
func New(
	logger *slog.Logger,
	library puzzles.LibraryInterface,
	storage storage.Storage,
	clock clock.Clock,
) *Registry {
	return &Registry{
		logger:  logger.With(slog.String("component", "registry")),
		library: library,
		storage: storage,
		clock:   clock,
		conns:   make(map[model.PlayerID]Conn),
		matches: make(map[model.MatchID]*match.Match),
	}
}

// Register claims id for conn. The check and the claim are one atomic step.
func (r *Registry) Register(id model.PlayerID, conn Conn) error {
	if !model.ValidPlayerID(id) {
		return model.ErrInvalidPlayerID
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.conns[id]; taken {
		return model.ErrPlayerIDTaken
	}
	r.conns[id] = conn
	r.logger.Debug("player registered", slog.String("player_id", string(id)))
	return nil
}

// IsIDFree reports whether id is well formed and not held by a live connection
func (r *Registry) IsIDFree(id model.PlayerID) bool {
	if !model.ValidPlayerID(id) {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	_, taken := r.conns[id]
	return !taken
}

// Unregister releases id along with every match it created, then refreshes
// the lobby. It does nothing unless conn still holds id. An opponent already
// playing one of the removed matches keeps playing but the departed player
// receives nothing further.
func (r *Registry) Unregister(id model.PlayerID, conn Conn) {
	if id == "" {
		return
	}

	r.mu.Lock()
	if current, ok := r.conns[id]; !ok || current != conn {
		r.mu.Unlock()
		return
	}
	delete(r.conns, id)
	var removed []model.MatchID
	for matchID, m := range r.matches {
		if m.PlayerOne() == id {
			delete(r.matches, matchID)
			removed = append(removed, matchID)
		}
	}
	r.mu.Unlock()

	for _, matchID := range removed {
		r.logger.Info("match removed",
			slog.String("match_id", string(matchID)),
			slog.String("reason", "creator left"),
		)
	}
	r.logger.Debug("player unregistered", slog.String("player_id", string(id)))
	r.PushMatches()
}

// CreateMatch opens a new match on the named puzzle, owned by playerID
func (r *Registry) CreateMatch(playerID model.PlayerID, matchID model.MatchID, puzzleName, description string) (*match.Match, error) {
	if !model.ValidPlayerID(playerID) {
		return nil, model.ErrInvalidPlayerID
	}
	if !model.ValidMatchID(matchID) {
		return nil, model.ErrInvalidMatchID
	}
	puzzle, err := r.library.Get(puzzleName)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	if _, exists := r.matches[matchID]; exists {
		r.mu.Unlock()
		return nil, model.ErrMatchExists
	}
	m := match.New(matchID, puzzle, playerID, description)
	r.matches[matchID] = m
	r.mu.Unlock()

	r.logger.Info("match created",
		slog.String("match_id", string(matchID)),
		slog.String("puzzle", puzzleName),
		slog.String("player_id", string(playerID)),
	)
	return m, nil
}

// JoinMatch seats playerID in an open match and moves its creator into play.
// The caller is responsible for its own connection's transition.
func (r *Registry) JoinMatch(playerID model.PlayerID, matchID model.MatchID) (*match.Match, error) {
	if !model.ValidPlayerID(playerID) {
		return nil, model.ErrInvalidPlayerID
	}
	r.mu.Lock()
	m, ok := r.matches[matchID]
	if !ok {
		r.mu.Unlock()
		return nil, model.ErrMatchNotFound
	}
	if err := m.TryJoin(playerID); err != nil {
		r.mu.Unlock()
		return nil, err
	}
	creator := r.conns[m.PlayerOne()]
	r.mu.Unlock()

	if creator != nil {
		creator.Bind(m)
		creator.SetState(protocol.StatePlay)
		creator.Send(protocol.GameStart{PuzzleName: m.Puzzle().Name})
	}

	r.logger.Info("match joined",
		slog.String("match_id", string(matchID)),
		slog.String("player_id", string(playerID)),
	)
	return m, nil
}

// OpenMatches maps each match still waiting for an opponent to its puzzle name
func (r *Registry) OpenMatches() map[model.MatchID]string {
	r.mu.Lock()
	defer r.mu.Unlock()

	open := make(map[model.MatchID]string)
	for id, m := range r.matches {
		if !m.IsStarted() {
			open[id] = m.Puzzle().Name
		}
	}
	return open
}

// Matches lists every live match, sorted by id
func (r *Registry) Matches() []model.MatchSummary {
	r.mu.Lock()
	summaries := make([]model.MatchSummary, 0, len(r.matches))
	for _, m := range r.matches {
		summaries = append(summaries, m.Summary())
	}
	r.mu.Unlock()

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].ID < summaries[j].ID
	})
	return summaries
}

// Puzzles returns the answer-free puzzle list
func (r *Registry) Puzzles() []model.Puzzle {
	return r.library.Transfer()
}

// Counts returns the number of live connections and matches
func (r *Registry) Counts() (players, matches int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.conns), len(r.matches)
}

// Broadcast sends msg to both participants of m. A participant without a
// live connection is skipped.
func (r *Registry) Broadcast(m *match.Match, msg protocol.Message) {
	for _, conn := range r.participants(m) {
		conn.Send(msg)
	}
}

// BroadcastState pushes a fresh snapshot of m to both participants
func (r *Registry) BroadcastState(m *match.Match) {
	r.Broadcast(m, protocol.GameState{State: m.State()})
}

// FinishMatch closes m out: the match leaves the registry, the result is
// recorded, and both participants receive the score and move to SHOW_SCORE.
// Only the first call for a match has any effect.
func (r *Registry) FinishMatch(ctx context.Context, m *match.Match) (match.Result, bool) {
	result, first := m.Finish()
	if !first {
		return result, false
	}

	r.removeMatch(m)

	record := result.Record(uuid.NewString(), m.ID(), m.Puzzle().Name, r.clock.Now())
	if err := r.storage.SaveResult(ctx, record); err != nil {
		r.logger.ErrorContext(ctx, "failed to save result",
			slog.String("match_id", string(m.ID())),
			slog.String("error", err.Error()),
		)
	}

	for _, conn := range r.participants(m) {
		conn.Send(protocol.Score{Result: result.String()})
		conn.SetState(protocol.StateShowScore)
	}

	r.logger.InfoContext(ctx, "match finished",
		slog.String("match_id", string(m.ID())),
		slog.String("result", result.String()),
	)
	return result, true
}

// PushMatches sends the open match list to every connection in the lobby
func (r *Registry) PushMatches() {
	open := r.OpenMatches()

	r.mu.Lock()
	lobby := make([]Conn, 0, len(r.conns))
	for _, conn := range r.conns {
		lobby = append(lobby, conn)
	}
	r.mu.Unlock()

	for _, conn := range lobby {
		if conn.State() == protocol.StateChoose {
			conn.Send(protocol.MatchesList{Matches: open})
		}
	}
}

// removeMatch drops m, unless its id already names a newer match
func (r *Registry) removeMatch(m *match.Match) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if current, ok := r.matches[m.ID()]; ok && current == m {
		delete(r.matches, m.ID())
	}
}

// participants resolves both players of m to their live connections
func (r *Registry) participants(m *match.Match) []Conn {
	one, two := m.Players()

	r.mu.Lock()
	defer r.mu.Unlock()

	conns := make([]Conn, 0, 2)
	for _, id := range []model.PlayerID{one, two} {
		if id == "" {
			continue
		}
		if conn, ok := r.conns[id]; ok {
			conns = append(conns, conn)
		}
	}
	return conns
}

// RegistryInterface is the surface used by connection handlers and the HTTP API
type RegistryInterface interface {
	Register(id model.PlayerID, conn Conn) error
	IsIDFree(id model.PlayerID) bool
	Unregister(id model.PlayerID, conn Conn)
	CreateMatch(playerID model.PlayerID, matchID model.MatchID, puzzleName, description string) (*match.Match, error)
	JoinMatch(playerID model.PlayerID, matchID model.MatchID) (*match.Match, error)
	OpenMatches() map[model.MatchID]string
	Matches() []model.MatchSummary
	Puzzles() []model.Puzzle
	Counts() (players, matches int)
	Broadcast(m *match.Match, msg protocol.Message)
	BroadcastState(m *match.Match)
	FinishMatch(ctx context.Context, m *match.Match) (match.Result, bool)
	PushMatches()
}

var _ RegistryInterface = (*Registry)(nil)

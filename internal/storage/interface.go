package storage

import (
	"context"

	"github.com/mcoot/crossword-extravaganza/internal/model"
)

// Result listing bounds
const (
	DefaultResultLimit = 20
	MaxResultLimit     = 100
)

// ResultQuery filters a result listing
type ResultQuery struct {
	// Player restricts the listing to matches the player took part in
	Player model.PlayerID
	Limit  int
}

// Normalize clamps the limit into [1, MaxResultLimit], defaulting when unset
func (q ResultQuery) Normalize() ResultQuery {
	switch {
	case q.Limit <= 0:
		q.Limit = DefaultResultLimit
	case q.Limit > MaxResultLimit:
		q.Limit = MaxResultLimit
	}
	return q
}

// Matches reports whether r passes the player filter
func (q ResultQuery) Matches(r *model.MatchResult) bool {
	return q.Player == "" || r.PlayerOne == q.Player || r.PlayerTwo == q.Player
}

// Storage defines the interface for finished match history.
// Live matches are never persisted.
type Storage interface {
	SaveResult(ctx context.Context, result *model.MatchResult) error
	GetResult(ctx context.Context, id string) (*model.MatchResult, error)
	// ListResults returns the newest results first
	ListResults(ctx context.Context, query ResultQuery) ([]*model.MatchResult, error)
	Close() error
}

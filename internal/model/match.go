package model

import "time"

// MatchPhase describes where a match is in its lifetime
type MatchPhase string

const (
	MatchPhaseOpen     MatchPhase = "open"     // Waiting for a second player
	MatchPhasePlaying  MatchPhase = "playing"  // Both players present
	MatchPhaseFinished MatchPhase = "finished" // Score has been announced
)

// MatchState is the read-only view of a match handed to connections.
// It never contains puzzle answers.
type MatchState struct {
	MatchID   MatchID          `json:"match_id"`
	Puzzle    string           `json:"puzzle"`
	PlayerOne PlayerID         `json:"player_one"`
	PlayerTwo PlayerID         `json:"player_two,omitempty"`
	ScoreOne  int              `json:"score_one"`
	ScoreTwo  int              `json:"score_two"`
	Guesses   map[int]string   `json:"guesses"`
	Owners    map[int]PlayerID `json:"owners"`
	Confirmed map[int]bool     `json:"confirmed"`
}

// MatchSummary describes a live match for listings
type MatchSummary struct {
	ID          MatchID    `json:"id"`
	Puzzle      string     `json:"puzzle"`
	Description string     `json:"description"`
	Creator     PlayerID   `json:"creator"`
	Phase       MatchPhase `json:"phase"`
}

// MatchResult is a lightweight record of a finished match
type MatchResult struct {
	ID         string    `json:"id"`
	MatchID    MatchID   `json:"match_id"`
	Puzzle     string    `json:"puzzle"`
	PlayerOne  PlayerID  `json:"player_one"`
	PlayerTwo  PlayerID  `json:"player_two"`
	ScoreOne   int       `json:"score_one"`
	ScoreTwo   int       `json:"score_two"`
	Winner     PlayerID  `json:"winner,omitempty"` // Empty if tie
	Summary    string    `json:"summary"`
	FinishedAt time.Time `json:"finished_at"`
}

// IsTie returns true if neither player won
func (r *MatchResult) IsTie() bool {
	return r.Winner == ""
}

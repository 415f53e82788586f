package match

import (
	"fmt"
	"time"

	"github.com/mcoot/crossword-extravaganza/internal/model"
)

// Result holds the final standings of a match
type Result struct {
	PlayerOne model.PlayerID
	PlayerTwo model.PlayerID
	ScoreOne  int
	ScoreTwo  int
	Winner    model.PlayerID // Empty if tie
	Loser     model.PlayerID // Empty if tie
}

// DetermineResult compares both scores; the strictly higher one wins
func DetermineResult(one model.PlayerID, scoreOne int, two model.PlayerID, scoreTwo int) Result {
	r := Result{
		PlayerOne: one,
		PlayerTwo: two,
		ScoreOne:  scoreOne,
		ScoreTwo:  scoreTwo,
	}
	switch {
	case scoreOne > scoreTwo:
		r.Winner, r.Loser = one, two
	case scoreTwo > scoreOne:
		r.Winner, r.Loser = two, one
	}
	return r
}

// IsTie returns true if neither player won
func (r Result) IsTie() bool {
	return r.Winner == ""
}

// String renders the human-readable announcement sent to both players
func (r Result) String() string {
	if r.IsTie() {
		return "The match ended in a tie."
	}
	return fmt.Sprintf("Final score: %d - %d %s won! %s lost.", r.ScoreOne, r.ScoreTwo, r.Winner, r.Loser)
}

// Record converts the result into a history record
func (r Result) Record(id string, matchID model.MatchID, puzzle string, finishedAt time.Time) *model.MatchResult {
	return &model.MatchResult{
		ID:         id,
		MatchID:    matchID,
		Puzzle:     puzzle,
		PlayerOne:  r.PlayerOne,
		PlayerTwo:  r.PlayerTwo,
		ScoreOne:   r.ScoreOne,
		ScoreTwo:   r.ScoreTwo,
		Winner:     r.Winner,
		Summary:    r.String(),
		FinishedAt: finishedAt,
	}
}

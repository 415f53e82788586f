package response

import (
	"github.com/mcoot/crossword-extravaganza/internal/model"
)

// Health is the response for the health endpoint
type Health struct {
	Status   string `json:"status"`
	Puzzles  int    `json:"puzzles"`
	Players  int    `json:"players"`
	Matches  int    `json:"matches"`
	Sessions int    `json:"sessions"`
}

// PuzzleList is the response for the puzzle listing. Answers are hidden.
type PuzzleList struct {
	Puzzles []model.Puzzle `json:"puzzles"`
}

// MatchList is the response for the live match listing
type MatchList struct {
	Matches []model.MatchSummary `json:"matches"`
}

// ResultList is the response for the result history listing
type ResultList struct {
	Results []*model.MatchResult `json:"results"`
}


package model

import "errors"

// Common errors used across the application
var (
	// Player errors
	ErrInvalidPlayerID = errors.New("invalid player id")
	ErrPlayerIDTaken   = errors.New("player id already in use")
	ErrNotParticipant  = errors.New("player is not in this match")

	// Match errors
	ErrInvalidMatchID = errors.New("invalid match id")
	ErrMatchExists    = errors.New("match id already in use")
	ErrMatchNotFound  = errors.New("match not found")
	ErrMatchStarted   = errors.New("match has already started")
	ErrMatchNotReady  = errors.New("match has not started")
	ErrMatchFinished  = errors.New("match is finished")

	// Guess errors
	ErrInvalidEntry      = errors.New("no such entry")
	ErrInvalidGuess      = errors.New("guess must be lowercase letters and hyphens")
	ErrWrongLength       = errors.New("word has the wrong length")
	ErrInconsistentGuess = errors.New("guess conflicts with the board")
	ErrEntryOwned        = errors.New("entry is held by the other player")

	// Challenge errors
	ErrNoGuess        = errors.New("entry has no guess to challenge")
	ErrGuessConfirmed = errors.New("guess is already confirmed")
	ErrSameWord       = errors.New("challenge repeats the current guess")
	ErrOwnGuess       = errors.New("cannot challenge your own guess")

	// Puzzle errors
	ErrPuzzleNotFound     = errors.New("puzzle not found")
	ErrNoPuzzles          = errors.New("no valid puzzles found")
	ErrInvalidPuzzleName  = errors.New("invalid puzzle name")
	ErrInvalidWord        = errors.New("invalid word")
	ErrInvalidDirection   = errors.New("invalid direction")
	ErrInvalidCoordinate  = errors.New("invalid coordinate")
	ErrDuplicateWord      = errors.New("duplicate word")
	ErrOverlappingEntries = errors.New("entries overlap in the same direction")
	ErrConflictingEntries = errors.New("crossing entries disagree")
	ErrEmptyPuzzle        = errors.New("puzzle has no entries")

	// Result errors
	ErrResultNotFound = errors.New("result not found")
)

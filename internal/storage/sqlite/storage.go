package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mcoot/crossword-extravaganza/internal/model"
	"github.com/mcoot/crossword-extravaganza/internal/storage"
)

//go:embed schema.sql
var schema string

// timeLayout sorts lexically in time order, so finished_at can be ordered as text
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Storage is an embedded SQLite implementation of the storage interface
type Storage struct {
	db *sql.DB
}

// New opens (creating if needed) the database at path
func New(path string) (*Storage, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// SQLite only supports one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec("PRAGMA journal_mode = WAL; PRAGMA busy_timeout = 5000;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting pragmas: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Storage{db: db}, nil
}

// Close closes the database connection
func (s *Storage) Close() error {
	return s.db.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func (s *Storage) SaveResult(ctx context.Context, r *model.MatchResult) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO match_results
			(id, match_id, puzzle, player_one, player_two, score_one, score_two, winner, summary, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			score_one = excluded.score_one,
			score_two = excluded.score_two,
			winner = excluded.winner,
			summary = excluded.summary,
			finished_at = excluded.finished_at
	`, r.ID, string(r.MatchID), r.Puzzle, string(r.PlayerOne), string(r.PlayerTwo),
		r.ScoreOne, r.ScoreTwo, string(r.Winner), r.Summary, formatTime(r.FinishedAt))
	if err != nil {
		return fmt.Errorf("saving result %s: %w", r.ID, err)
	}
	return nil
}

const selectColumns = `
	SELECT id, match_id, puzzle, player_one, player_two, score_one, score_two, winner, summary, finished_at
	FROM match_results`

func (s *Storage) GetResult(ctx context.Context, id string) (*model.MatchResult, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, id)
	r, err := scanResult(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrResultNotFound
	}
	return r, err
}

func (s *Storage) ListResults(ctx context.Context, query storage.ResultQuery) ([]*model.MatchResult, error) {
	query = query.Normalize()

	var (
		rows *sql.Rows
		err  error
	)
	if query.Player == "" {
		rows, err = s.db.QueryContext(ctx,
			selectColumns+` ORDER BY finished_at DESC, seq DESC LIMIT ?`, query.Limit)
	} else {
		rows, err = s.db.QueryContext(ctx,
			selectColumns+` WHERE player_one = ? OR player_two = ? ORDER BY finished_at DESC, seq DESC LIMIT ?`,
			string(query.Player), string(query.Player), query.Limit)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := make([]*model.MatchResult, 0)
	for rows.Next() {
		r, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanResult(row scanner) (*model.MatchResult, error) {
	var (
		r                              model.MatchResult
		matchID, one, two, winner, fin string
	)
	if err := row.Scan(&r.ID, &matchID, &r.Puzzle, &one, &two, &r.ScoreOne, &r.ScoreTwo, &winner, &r.Summary, &fin); err != nil {
		return nil, err
	}
	finishedAt, err := time.Parse(timeLayout, fin)
	if err != nil {
		return nil, fmt.Errorf("parsing finished_at %q: %w", fin, err)
	}
	r.MatchID = model.MatchID(matchID)
	r.PlayerOne = model.PlayerID(one)
	r.PlayerTwo = model.PlayerID(two)
	r.Winner = model.PlayerID(winner)
	r.FinishedAt = finishedAt
	return &r, nil
}

// formatTime renders t in UTC with fixed-width nanoseconds
func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

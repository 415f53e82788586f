package puzzles

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/mcoot/crossword-extravaganza/internal/model"
)

// Extension is the file suffix of puzzle sources
const Extension = ".puzzle"

// FileResult is the outcome of parsing one puzzle file
type FileResult struct {
	Path   string
	Puzzle *model.Puzzle
	Err    error
}

// Library holds the puzzles available to matches. It is filled once at
// startup and only read afterwards.
type Library struct {
	logger *slog.Logger

	mu      sync.RWMutex
	puzzles map[string]*model.Puzzle
	names   []string
}

// New creates an empty Library
func New(logger *slog.Logger) *Library {
	return &Library{
		logger:  logger.With(slog.String("component", "puzzles")),
		puzzles: make(map[string]*model.Puzzle),
	}
}

// ScanDir parses every puzzle file in dir without loading anything
func ScanDir(dir string) ([]FileResult, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrNoPuzzles, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", model.ErrNoPuzzles, dir)
	}

	paths, err := filepath.Glob(filepath.Join(dir, "*"+Extension))
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)

	results := make([]FileResult, 0, len(paths))
	for _, path := range paths {
		result := FileResult{Path: path}
		data, err := os.ReadFile(path)
		if err != nil {
			result.Err = err
		} else {
			result.Puzzle, result.Err = Parse(string(data))
		}
		results = append(results, result)
	}
	return results, nil
}

// LoadDir loads every valid puzzle in dir. Invalid files are skipped and
// logged. It fails if dir is missing or holds no valid puzzle.
func (l *Library) LoadDir(ctx context.Context, dir string) error {
	results, err := ScanDir(dir)
	if err != nil {
		return err
	}

	var valid []*model.Puzzle
	for _, r := range results {
		if r.Err != nil {
			l.logger.WarnContext(ctx, "puzzle rejected",
				slog.String("path", r.Path),
				slog.String("error", r.Err.Error()),
			)
			continue
		}
		valid = append(valid, r.Puzzle)
	}

	if err := l.LoadPuzzles(valid...); err != nil {
		return fmt.Errorf("%w in %s", err, dir)
	}

	l.logger.InfoContext(ctx, "puzzles loaded",
		slog.String("dir", dir),
		slog.Int("files", len(results)),
		slog.Int("loaded", l.Count()),
	)
	return nil
}

// LoadPuzzles replaces the library contents. When two puzzles share a name
// the first one wins.
func (l *Library) LoadPuzzles(puzzles ...*model.Puzzle) error {
	byName := make(map[string]*model.Puzzle, len(puzzles))
	names := make([]string, 0, len(puzzles))
	for _, p := range puzzles {
		if _, dup := byName[p.Name]; dup {
			l.logger.Warn("duplicate puzzle name ignored", slog.String("name", p.Name))
			continue
		}
		byName[p.Name] = p
		names = append(names, p.Name)
	}
	if len(names) == 0 {
		return model.ErrNoPuzzles
	}
	sort.Strings(names)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.puzzles = byName
	l.names = names
	return nil
}

// Get returns the puzzle with the given name
func (l *Library) Get(name string) (*model.Puzzle, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	p, ok := l.puzzles[name]
	if !ok {
		return nil, model.ErrPuzzleNotFound
	}
	return p, nil
}

// Names returns the puzzle names in sorted order
func (l *Library) Names() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]string(nil), l.names...)
}

// Count returns the number of loaded puzzles
func (l *Library) Count() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.names)
}

// Transfer returns answer-free copies of every puzzle, sorted by name
func (l *Library) Transfer() []model.Puzzle {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]model.Puzzle, 0, len(l.names))
	for _, name := range l.names {
		out = append(out, l.puzzles[name].Transfer())
	}
	return out
}

// LibraryInterface is the read side used by the registry and HTTP handlers
type LibraryInterface interface {
	Get(name string) (*model.Puzzle, error)
	Names() []string
	Count() int
	Transfer() []model.Puzzle
}

var _ LibraryInterface = (*Library)(nil)

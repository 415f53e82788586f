package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/mcoot/crossword-extravaganza/internal/model"
	"github.com/mcoot/crossword-extravaganza/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	results map[string]*model.MatchResult
	order   []string // Insertion order
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		results: make(map[string]*model.MatchResult),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func (s *Storage) SaveResult(ctx context.Context, result *model.MatchResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *result
	if _, exists := s.results[result.ID]; !exists {
		s.order = append(s.order, result.ID)
	}
	s.results[result.ID] = &stored
	return nil
}

func (s *Storage) GetResult(ctx context.Context, id string) (*model.MatchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result, ok := s.results[id]
	if !ok {
		return nil, model.ErrResultNotFound
	}
	out := *result
	return &out, nil
}

func (s *Storage) ListResults(ctx context.Context, query storage.ResultQuery) ([]*model.MatchResult, error) {
	query = query.Normalize()

	s.mu.RLock()
	defer s.mu.RUnlock()

	// Walk newest insertions first so equal timestamps keep that order after the stable sort
	matched := make([]*model.MatchResult, 0)
	for i := len(s.order) - 1; i >= 0; i-- {
		r := s.results[s.order[i]]
		if query.Matches(r) {
			out := *r
			matched = append(matched, &out)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].FinishedAt.After(matched[j].FinishedAt)
	})

	if len(matched) > query.Limit {
		matched = matched[:query.Limit]
	}
	return matched, nil
}

// Close is a no-op for memory storage
func (s *Storage) Close() error {
	return nil
}

package mocks

import (
	"github.com/mcoot/crossword-extravaganza/internal/dependencies/random"
)

// MockRandom returns queued strings in order, then a fixed fallback
type MockRandom struct {
	Fallback string
	queue    []string
}

var _ random.Random = (*MockRandom)(nil)

// NewMockRandom creates a MockRandom returning the given strings in order
func NewMockRandom(values ...string) *MockRandom {
	return &MockRandom{queue: values}
}

// String pops the next queued value and ignores the requested shape
func (r *MockRandom) String(length int, alphabet string) string {
	if len(r.queue) == 0 {
		return r.Fallback
	}
	v := r.queue[0]
	r.queue = r.queue[1:]
	return v
}

// Queue appends values to return
func (r *MockRandom) Queue(values ...string) {
	r.queue = append(r.queue, values...)
}

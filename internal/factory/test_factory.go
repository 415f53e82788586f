package factory

import (
	"time"

	"github.com/mcoot/crossword-extravaganza/internal/dependencies/mocks"
	"github.com/mcoot/crossword-extravaganza/internal/storage/memory"
	"github.com/mcoot/crossword-extravaganza/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock *mocks.MockClock
}

// NewTestApp creates an App configured for testing with mocked dependencies
func NewTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))

	app := newWithDependencies(store, mockClock, testutil.NopLogger())

	return &TestApp{
		App:       app,
		MockClock: mockClock,
	}
}

// LoadTestPuzzles fills the library with the shared test puzzles
func (t *TestApp) LoadTestPuzzles() error {
	return t.Library.LoadPuzzles(
		testutil.SimplePuzzle(),
		testutil.ComplexPuzzle(),
		testutil.OverlapPuzzle(),
	)
}

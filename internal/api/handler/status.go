package handler

import (
	"net/http"

	"github.com/mcoot/crossword-extravaganza/internal/api/response"
	"github.com/mcoot/crossword-extravaganza/internal/services/puzzles"
	"github.com/mcoot/crossword-extravaganza/internal/services/registry"
)

// SessionCounter reports the number of live websocket sessions
type SessionCounter interface {
	Count() int
}

// StatusHandler serves health and the live lobby views
type StatusHandler struct {
	library  puzzles.LibraryInterface
	registry registry.RegistryInterface
	sessions SessionCounter
}

// NewStatusHandler creates a new status handler
func NewStatusHandler(library puzzles.LibraryInterface, reg registry.RegistryInterface, sessions SessionCounter) *StatusHandler {
	return &StatusHandler{
		library:  library,
		registry: reg,
		sessions: sessions,
	}
}

// Health handles GET /api/v1/health
func (h *StatusHandler) Health(w http.ResponseWriter, r *http.Request) {
	players, matches := h.registry.Counts()
	response.JSON(w, http.StatusOK, response.Health{
		Status:   "ok",
		Puzzles:  h.library.Count(),
		Players:  players,
		Matches:  matches,
		Sessions: h.sessions.Count(),
	})
}

// Puzzles handles GET /api/v1/puzzles
func (h *StatusHandler) Puzzles(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, response.PuzzleList{Puzzles: h.library.Transfer()})
}

// Matches handles GET /api/v1/matches
func (h *StatusHandler) Matches(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, response.MatchList{Matches: h.registry.Matches()})
}

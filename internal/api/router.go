package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/crossword-extravaganza/internal/api/apierr"
	"github.com/mcoot/crossword-extravaganza/internal/api/handler"
	"github.com/mcoot/crossword-extravaganza/internal/middleware"
	"github.com/mcoot/crossword-extravaganza/internal/server"
	"github.com/mcoot/crossword-extravaganza/internal/services/puzzles"
	"github.com/mcoot/crossword-extravaganza/internal/services/registry"
	"github.com/mcoot/crossword-extravaganza/internal/storage"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger   *slog.Logger
	Library  puzzles.LibraryInterface
	Registry registry.RegistryInterface
	Storage  storage.Storage
	Sessions *server.Manager
}

// NewRouter creates the router serving the websocket endpoint and the JSON API
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	statusHandler := handler.NewStatusHandler(cfg.Library, cfg.Registry, cfg.Sessions)
	resultHandler := handler.NewResultHandler(cfg.Storage)

	// Create middleware
	logger := cfg.Logger.With(slog.String("component", "http"))
	loggingMiddleware := middleware.Logging(logger)
	recoveryMiddleware := middleware.Recovery(logger, func(w http.ResponseWriter, _ *http.Request, _ any) {
		apierr.WriteError(w, apierr.NewInternalError())
	})

	// Logging wraps the response writer (hijack-capable for /ws); recovery
	// runs inside it so hijacked connections are left alone
	r.Use(loggingMiddleware)
	r.Use(recoveryMiddleware)

	// Game connections
	r.Handle("/ws", cfg.Sessions).Methods(http.MethodGet)

	// API subrouter
	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/health", statusHandler.Health).Methods(http.MethodGet)
	api.HandleFunc("/puzzles", statusHandler.Puzzles).Methods(http.MethodGet)
	api.HandleFunc("/matches", statusHandler.Matches).Methods(http.MethodGet)
	api.HandleFunc("/results", resultHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/results/{id}", resultHandler.Get).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		apierr.WriteError(w, apierr.NewNotFoundError())
	})

	return r
}

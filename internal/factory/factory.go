package factory

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/mcoot/crossword-extravaganza/internal/config"
	"github.com/mcoot/crossword-extravaganza/internal/dependencies/clock"
	"github.com/mcoot/crossword-extravaganza/internal/server"
	"github.com/mcoot/crossword-extravaganza/internal/services/puzzles"
	"github.com/mcoot/crossword-extravaganza/internal/services/registry"
	"github.com/mcoot/crossword-extravaganza/internal/storage"
	"github.com/mcoot/crossword-extravaganza/internal/storage/memory"
	redisstorage "github.com/mcoot/crossword-extravaganza/internal/storage/redis"
	"github.com/mcoot/crossword-extravaganza/internal/storage/sqlite"
)

// App contains all wired application components
type App struct {
	Logger *slog.Logger

	// Storage
	Storage storage.Storage

	// External dependencies
	Clock clock.Clock

	// Services
	Library  *puzzles.Library
	Registry *registry.Registry

	// Connection handling
	Handler  *server.Handler
	Sessions *server.Manager
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the result store ("memory", "redis" or "sqlite")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// SQLitePath is the database file (required if StorageType is "sqlite")
	SQLitePath string
}

// FromConfig builds a factory Config from the server configuration
func FromConfig(cfg config.Config, logger *slog.Logger) Config {
	redisCfg := redisstorage.DefaultConfig()
	redisCfg.URL = cfg.Redis.URL
	redisCfg.PoolSize = cfg.Redis.PoolSize
	redisCfg.MinIdleConns = cfg.Redis.MinIdleConns
	redisCfg.ResultTTL = cfg.Redis.ResultTTL
	redisCfg.HistoryLimit = cfg.Redis.HistoryLimit

	return Config{
		Logger:      logger,
		StorageType: cfg.Storage.Type,
		RedisConfig: &redisCfg,
		SQLitePath:  cfg.SQLite.Path,
	}
}

// New creates a new application with all dependencies wired.
// The puzzle library starts empty.
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	store, err := newStorage(cfg)
	if err != nil {
		return nil, err
	}

	return newWithDependencies(store, clock.System, logger), nil
}

// newStorage opens the configured result store
func newStorage(cfg Config) (storage.Storage, error) {
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = config.StorageMemory
	}

	switch storageType {
	case config.StorageMemory:
		return memory.New(), nil
	case config.StorageRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		store, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, fmt.Errorf("connecting to redis: %w", err)
		}
		return store, nil
	case config.StorageSQLite:
		if cfg.SQLitePath == "" {
			return nil, errors.New("SQLitePath required when StorageType is sqlite")
		}
		return sqlite.New(cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("invalid StorageType %q: must be 'memory', 'redis' or 'sqlite'", storageType)
	}
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, clk clock.Clock, logger *slog.Logger) *App {
	library := puzzles.New(logger)
	reg := registry.New(logger, library, store, clk)
	handler := server.NewHandler(reg)
	sessions := server.NewManager(handler, logger)

	return &App{
		Logger:   logger,
		Storage:  store,
		Clock:    clk,
		Library:  library,
		Registry: reg,
		Handler:  handler,
		Sessions: sessions,
	}
}

// Close releases the result store
func (a *App) Close() error {
	return a.Storage.Close()
}

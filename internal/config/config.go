package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Storage backends
const (
	StorageMemory = "memory"
	StorageRedis  = "redis"
	StorageSQLite = "sqlite"
)

// DefaultPort is the port the server listens on when none is configured
const DefaultPort = 4949

// Config holds the server configuration
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Puzzles PuzzlesConfig `yaml:"puzzles"`
	Storage StorageConfig `yaml:"storage"`
	Redis   RedisConfig   `yaml:"redis"`
	SQLite  SQLiteConfig  `yaml:"sqlite"`
	Log     LogConfig     `yaml:"log"`
}

// ServerConfig holds HTTP and websocket listener settings
type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// PuzzlesConfig locates the puzzle folder
type PuzzlesConfig struct {
	Dir string `yaml:"dir"`
}

// StorageConfig selects the result history backend
type StorageConfig struct {
	Type string `yaml:"type"`
}

// RedisConfig holds Redis settings, used when Storage.Type is redis
type RedisConfig struct {
	URL          string        `yaml:"url"`
	PoolSize     int           `yaml:"pool_size"`
	MinIdleConns int           `yaml:"min_idle_conns"`
	ResultTTL    time.Duration `yaml:"result_ttl"`
	HistoryLimit int           `yaml:"history_limit"`
}

// SQLiteConfig holds SQLite settings, used when Storage.Type is sqlite
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns the configuration used when nothing is overridden
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Host:            "",
			Port:            DefaultPort,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Puzzles: PuzzlesConfig{
			Dir: "puzzles",
		},
		Storage: StorageConfig{
			Type: StorageMemory,
		},
		Redis: RedisConfig{
			URL:          "redis://localhost:6379",
			PoolSize:     10,
			MinIdleConns: 2,
			ResultTTL:    30 * 24 * time.Hour,
			HistoryLimit: 1000,
		},
		SQLite: SQLiteConfig{
			Path: "crossword.db",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads a YAML file over the defaults. Keys missing from the file keep
// their default values.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config file: %w", err)
	}
	return cfg, nil
}

// ApplyEnv overrides settings from environment variables read through getenv.
// Empty variables are ignored.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if v := getenv("CROSSWORD_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("CROSSWORD_PORT: %w", err)
		}
		c.Server.Port = port
	}
	if v := getenv("CROSSWORD_HOST"); v != "" {
		c.Server.Host = v
	}
	if v := getenv("CROSSWORD_PUZZLES"); v != "" {
		c.Puzzles.Dir = v
	}
	if v := getenv("STORAGE_TYPE"); v != "" {
		c.Storage.Type = v
	}
	if v := getenv("REDIS_URL"); v != "" {
		c.Redis.URL = v
	}
	if v := getenv("SQLITE_PATH"); v != "" {
		c.SQLite.Path = v
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	return nil
}

// Validate checks that the configuration can be used to start a server
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	if c.Puzzles.Dir == "" {
		errs = append(errs, errors.New("puzzles.dir is required"))
	}
	switch c.Storage.Type {
	case StorageMemory:
	case StorageRedis:
		if c.Redis.URL == "" {
			errs = append(errs, errors.New("redis.url is required when storage.type is redis"))
		}
	case StorageSQLite:
		if c.SQLite.Path == "" {
			errs = append(errs, errors.New("sqlite.path is required when storage.type is sqlite"))
		}
	default:
		errs = append(errs, fmt.Errorf("storage.type %q: must be memory, redis or sqlite", c.Storage.Type))
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// ParseLevel converts a level name into a slog level
func ParseLevel(name string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(name))); err != nil {
		return slog.LevelInfo, fmt.Errorf("log.level %q: %w", name, err)
	}
	return level, nil
}

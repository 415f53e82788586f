package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/mcoot/crossword-extravaganza/internal/api"
	"github.com/mcoot/crossword-extravaganza/internal/config"
	"github.com/mcoot/crossword-extravaganza/internal/factory"
)

func main() {
	// Optional .env in the working directory
	_ = godotenv.Load()

	cfg, err := loadConfig(os.Args[1:])
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(2)
	}

	level, _ := config.ParseLevel(cfg.Log.Level)

	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	// Create application factory
	app, err := factory.New(factory.FromConfig(cfg, logger))
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() { _ = app.Close() }()

	// Load puzzles; a missing or empty folder is fatal
	if err := app.Library.LoadDir(context.Background(), cfg.Puzzles.Dir); err != nil {
		logger.Error("could not load puzzles",
			slog.String("dir", cfg.Puzzles.Dir),
			slog.String("error", err.Error()),
		)
		_ = app.Close()
		os.Exit(1)
	}

	// Create router
	router := api.NewRouter(api.RouterConfig{
		Logger:   logger,
		Library:  app.Library,
		Registry: app.Registry,
		Storage:  app.Storage,
		Sessions: app.Sessions,
	})

	// Create server
	server := api.NewServer(router, cfg.Server, logger)
	listener, err := server.Listen()
	if err != nil {
		logger.Error("failed to start server", slog.String("error", err.Error()))
		_ = app.Close()
		os.Exit(1)
	}

	// Handle graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Serve(listener)
	}()

	logger.Info("server started",
		slog.String("addr", server.Addr()),
		slog.Int("puzzles", app.Library.Count()),
		slog.String("storage", cfg.Storage.Type),
	)

	// Wait for shutdown or error
	exitCode := 0
	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			exitCode = 1
		}
	case <-ctx.Done():
		// a second signal kills the process instead of waiting out the drain
		stop()
		logger.Info("shutdown signal received")
		if err := server.Shutdown(context.Background()); err != nil {
			logger.Error("shutdown error", slog.String("error", err.Error()))
			exitCode = 1
		}
	}

	// Hijacked websocket connections outlive http.Server.Shutdown; running
	// sessions get the shutdown timeout to finish before they are closed
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := app.Sessions.Shutdown(shutdownCtx); err != nil {
		logger.Warn("sessions did not close cleanly", slog.String("error", err.Error()))
	}

	logger.Info("server stopped")
	if exitCode != 0 {
		_ = app.Close()
		os.Exit(exitCode)
	}
}

// loadConfig layers defaults, the config file, the environment, flags and
// finally the positional puzzle folder
func loadConfig(args []string) (config.Config, error) {
	fs := pflag.NewFlagSet("crossword-server", pflag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: crossword-server [flags] [PUZZLE_DIR]\n\n")
		fs.PrintDefaults()
	}
	configPath := fs.StringP("config", "c", "", "YAML config file")
	port := fs.IntP("port", "p", config.DefaultPort, "Listen port (env: CROSSWORD_PORT)")
	host := fs.String("host", "", "Listen host (env: CROSSWORD_HOST)")
	storageType := fs.String("storage", "", "Result store: memory, redis or sqlite (env: STORAGE_TYPE)")
	logLevel := fs.String("log-level", "", "debug, info, warn or error (env: LOG_LEVEL)")

	if err := fs.Parse(args); err != nil {
		return config.Config{}, err
	}
	if fs.NArg() > 1 {
		return config.Config{}, fmt.Errorf("expected at most one puzzle folder, got %d arguments", fs.NArg())
	}

	cfg := config.DefaultConfig()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return config.Config{}, err
	}

	if fs.Changed("port") {
		cfg.Server.Port = *port
	}
	if fs.Changed("host") {
		cfg.Server.Host = *host
	}
	if fs.Changed("storage") {
		cfg.Storage.Type = *storageType
	}
	if fs.Changed("log-level") {
		cfg.Log.Level = *logLevel
	}
	if fs.NArg() == 1 {
		cfg.Puzzles.Dir = fs.Arg(0)
	}

	return cfg, cfg.Validate()
}

package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mcoot/crossword-extravaganza/internal/config"
)

// Config holds the persistent flag values shared by every command
type Config struct {
	ServerURL string
	Output    string
}

// DefaultConfig returns flag defaults; CROSSWORD_SERVER overrides the server URL
func DefaultConfig() *Config {
	serverURL := os.Getenv("CROSSWORD_SERVER")
	if serverURL == "" {
		serverURL = fmt.Sprintf("http://localhost:%d", config.DefaultPort)
	}
	return &Config{ServerURL: serverURL, Output: "text"}
}

var (
	cfg    *Config
	client *Client
)

// NewRootCmd builds the crossword command tree
func NewRootCmd() *cobra.Command {
	cfg = DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "crossword",
		Short: "Client for the crossword match server",
		Long: `crossword plays two-player crossword matches against a crossword server.

"play" connects over a websocket and reads commands from stdin. The read-only
commands (puzzles, matches, results, health) query the server's JSON API, and
"check" validates a puzzle folder without a server.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cfg.Output != "text" && cfg.Output != "json" {
				return fmt.Errorf("unknown output format %q: use text or json", cfg.Output)
			}
			client = NewClient(cfg.ServerURL)
			return nil
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "Server URL for API commands (env: CROSSWORD_SERVER)")
	rootCmd.PersistentFlags().StringVarP(&cfg.Output, "output", "o", cfg.Output, "Output format: text, json")

	rootCmd.AddCommand(
		newPlayCmd(),
		newPuzzlesCmd(),
		newMatchesCmd(),
		newResultsCmd(),
		newHealthCmd(),
		newCheckCmd(),
	)

	return rootCmd
}

// Execute runs the root command and exits non-zero on failure
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

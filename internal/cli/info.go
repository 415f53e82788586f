package cli

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mcoot/crossword-extravaganza/internal/api/response"
	"github.com/mcoot/crossword-extravaganza/internal/model"
)

func newHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check server health and live counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Health

			if err := client.Get("/api/v1/health", nil, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newPuzzlesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "puzzles",
		Short: "List the server's puzzles (answers hidden)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.PuzzleList

			if err := client.Get("/api/v1/puzzles", nil, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newMatchesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "matches",
		Short: "List live matches",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.MatchList

			if err := client.Get("/api/v1/matches", nil, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newResultsCmd() *cobra.Command {
	var (
		limit  int
		player string
	)

	cmd := &cobra.Command{
		Use:   "results [id]",
		Short: "Show finished match results, or one result by id",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := NewOutput(cfg.Output, cmd.OutOrStdout())

			if len(args) == 1 {
				var result model.MatchResult
				if err := client.Get("/api/v1/results/"+url.PathEscape(args[0]), nil, &result); err != nil {
					return err
				}
				out.Print(result)
				return nil
			}

			query := url.Values{}
			if limit < 0 {
				return fmt.Errorf("limit must not be negative")
			}
			if limit > 0 {
				query.Set("limit", strconv.Itoa(limit))
			}
			if player != "" {
				query.Set("player", player)
			}

			var result response.ResultList
			if err := client.Get("/api/v1/results", query, &result); err != nil {
				return err
			}
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum number of results (server default if unset)")
	cmd.Flags().StringVar(&player, "player", "", "Only results involving this player")

	return cmd
}

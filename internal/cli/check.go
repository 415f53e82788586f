package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mcoot/crossword-extravaganza/internal/model"
	"github.com/mcoot/crossword-extravaganza/internal/services/puzzles"
)

// CheckReport is the outcome of validating a puzzle folder
type CheckReport struct {
	Dir   string       `json:"dir"`
	Files []CheckEntry `json:"files"`
	Valid int          `json:"valid"`
}

// CheckEntry describes one puzzle file
type CheckEntry struct {
	File    string `json:"file"`
	Puzzle  string `json:"puzzle,omitempty"`
	Entries int    `json:"entries,omitempty"`
	Error   string `json:"error,omitempty"`
}

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <dir>",
		Short: "Validate a folder of puzzle files without a server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := checkDir(args[0])
			if err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(report)
			if report.Valid == 0 {
				return fmt.Errorf("%w in %s", model.ErrNoPuzzles, report.Dir)
			}
			return nil
		},
	}
}

// checkDir parses every puzzle file in dir. Names that repeat an earlier
// file are reported the way the server would skip them.
func checkDir(dir string) (CheckReport, error) {
	results, err := puzzles.ScanDir(dir)
	if err != nil {
		return CheckReport{}, err
	}

	report := CheckReport{Dir: dir, Files: make([]CheckEntry, 0, len(results))}
	seen := make(map[string]string)
	for _, r := range results {
		entry := CheckEntry{File: filepath.Base(r.Path)}
		switch {
		case r.Err != nil:
			entry.Error = r.Err.Error()
		case seen[r.Puzzle.Name] != "":
			entry.Puzzle = r.Puzzle.Name
			entry.Error = fmt.Sprintf("duplicate puzzle name, already defined in %s", seen[r.Puzzle.Name])
		default:
			seen[r.Puzzle.Name] = entry.File
			entry.Puzzle = r.Puzzle.Name
			entry.Entries = len(r.Puzzle.Entries)
			report.Valid++
		}
		report.Files = append(report.Files, entry)
	}
	return report, nil
}

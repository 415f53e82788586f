package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/mcoot/crossword-extravaganza/internal/api/response"
	"github.com/mcoot/crossword-extravaganza/internal/model"
)

const timeFormat = "2006-01-02 15:04:05"

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter writing to w
func NewOutput(format string, w io.Writer) *Output {
	return &Output{format: format, w: w}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]any{
			"error": map[string]string{"message": err.Error()},
		})
		fmt.Fprintln(o.w, string(data))
	} else {
		fmt.Fprintf(o.w, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Fprintln(o.w, string(data))
	} else {
		fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case response.Health:
		o.printHealth(v)
	case response.PuzzleList:
		o.printPuzzles(v.Puzzles)
	case response.MatchList:
		o.printMatches(v.Matches)
	case response.ResultList:
		o.printResults(v.Results)
	case model.MatchResult:
		o.printResult(&v)
	case CheckReport:
		o.printCheckReport(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

func (o *Output) printHealth(h response.Health) {
	fmt.Fprintf(o.w, "Status: %s\n", h.Status)
	fmt.Fprintf(o.w, "Puzzles: %d\n", h.Puzzles)
	fmt.Fprintf(o.w, "Players: %d\n", h.Players)
	fmt.Fprintf(o.w, "Matches: %d\n", h.Matches)
	fmt.Fprintf(o.w, "Sessions: %d\n", h.Sessions)
}

func (o *Output) printPuzzles(puzzles []model.Puzzle) {
	if len(puzzles) == 0 {
		fmt.Fprintln(o.w, "No puzzles.")
		return
	}
	for i, p := range puzzles {
		if i > 0 {
			fmt.Fprintln(o.w)
		}
		printPuzzle(o.w, p)
	}
}

// printPuzzle lists a puzzle's clues with their entry ids
func printPuzzle(w io.Writer, p model.Puzzle) {
	fmt.Fprintf(w, "%s", p.Name)
	if p.Description != "" {
		fmt.Fprintf(w, " - %s", p.Description)
	}
	fmt.Fprintln(w)
	for id, e := range p.Entries {
		fmt.Fprintf(w, "  [%d] %-6s (%d,%d) %d letters: %s\n",
			id, strings.ToLower(string(e.Direction)), e.Row, e.Col, e.Length(), e.Clue)
	}
}

func (o *Output) printMatches(matches []model.MatchSummary) {
	if len(matches) == 0 {
		fmt.Fprintln(o.w, "No live matches.")
		return
	}
	for _, m := range matches {
		fmt.Fprintf(o.w, "%-12s %-8s %s (by %s)", m.ID, m.Phase, m.Puzzle, m.Creator)
		if m.Description != "" {
			fmt.Fprintf(o.w, ": %s", m.Description)
		}
		fmt.Fprintln(o.w)
	}
}

func (o *Output) printResults(results []*model.MatchResult) {
	if len(results) == 0 {
		fmt.Fprintln(o.w, "No results.")
		return
	}
	for _, r := range results {
		fmt.Fprintf(o.w, "%s  %-12s %s %d - %d %s  %s\n",
			r.FinishedAt.Local().Format(timeFormat), r.MatchID,
			r.PlayerOne, r.ScoreOne, r.ScoreTwo, r.PlayerTwo, resultWinner(r))
	}
}

func (o *Output) printResult(r *model.MatchResult) {
	fmt.Fprintf(o.w, "Result: %s\n", r.ID)
	fmt.Fprintf(o.w, "Match: %s (%s)\n", r.MatchID, r.Puzzle)
	fmt.Fprintf(o.w, "Players: %s %d - %d %s\n", r.PlayerOne, r.ScoreOne, r.ScoreTwo, r.PlayerTwo)
	fmt.Fprintf(o.w, "Outcome: %s\n", resultWinner(r))
	fmt.Fprintf(o.w, "Finished: %s\n", r.FinishedAt.Local().Format(timeFormat))
	if r.Summary != "" {
		fmt.Fprintf(o.w, "%s\n", r.Summary)
	}
}

func resultWinner(r *model.MatchResult) string {
	if r.IsTie() {
		return "tie"
	}
	return string(r.Winner) + " won"
}

func (o *Output) printCheckReport(r CheckReport) {
	for _, f := range r.Files {
		if f.Error != "" {
			fmt.Fprintf(o.w, "FAIL %s: %s\n", f.File, f.Error)
			continue
		}
		fmt.Fprintf(o.w, "ok   %s: %q, %d entries\n", f.File, f.Puzzle, f.Entries)
	}
	fmt.Fprintf(o.w, "%d of %d files valid\n", r.Valid, len(r.Files))
}

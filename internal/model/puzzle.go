package model

import (
	"fmt"
	"strings"
)

// Puzzle is an immutable, validated set of entries
type Puzzle struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Entries     []Entry `json:"entries"`
}

// NewPuzzle builds a puzzle and rejects it unless it is consistent
func NewPuzzle(name, description string, entries []Entry) (*Puzzle, error) {
	p := &Puzzle{
		Name:        name,
		Description: description,
		Entries:     append([]Entry(nil), entries...),
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// ValidPuzzleName reports whether name is non-empty and free of quotes,
// backslashes and control whitespace
func ValidPuzzleName(name string) bool {
	return name != "" && !strings.ContainsAny(name, "\"\\\r\n\t")
}

// Validate checks every entry and all pairwise constraints
func (p *Puzzle) Validate() error {
	if !ValidPuzzleName(p.Name) {
		return fmt.Errorf("%w: %q", ErrInvalidPuzzleName, p.Name)
	}
	if len(p.Entries) == 0 {
		return ErrEmptyPuzzle
	}

	seen := make(map[string]int, len(p.Entries))
	for i, e := range p.Entries {
		if err := e.Validate(); err != nil {
			return fmt.Errorf("entry %d: %w", i, err)
		}
		if j, ok := seen[e.Word]; ok {
			return fmt.Errorf("%w: %q at entries %d and %d", ErrDuplicateWord, e.Word, j, i)
		}
		seen[e.Word] = i
	}

	for i := range p.Entries {
		for j := i + 1; j < len(p.Entries); j++ {
			a, b := p.Entries[i], p.Entries[j]
			crossings := Crossings(a, b)
			if len(crossings) == 0 {
				continue
			}
			if a.Direction == b.Direction {
				return fmt.Errorf("%w: entries %d and %d", ErrOverlappingEntries, i, j)
			}
			if !Agree(a, a.Word, b, b.Word) {
				return fmt.Errorf("%w: entries %d and %d at (%d, %d)",
					ErrConflictingEntries, i, j, crossings[0].Cell.Row, crossings[0].Cell.Col)
			}
		}
	}
	return nil
}

// Entry returns the entry at index id
func (p *Puzzle) Entry(id int) (Entry, bool) {
	if id < 0 || id >= len(p.Entries) {
		return Entry{}, false
	}
	return p.Entries[id], true
}

// Cells returns the set of all cells covered by the puzzle
func (p *Puzzle) Cells() map[Cell]struct{} {
	cells := make(map[Cell]struct{})
	for _, e := range p.Entries {
		for _, c := range e.Cells() {
			cells[c] = struct{}{}
		}
	}
	return cells
}

// Size returns the number of rows and columns spanned by the grid
func (p *Puzzle) Size() (rows, cols int) {
	for _, e := range p.Entries {
		last := e.CellAt(e.Length() - 1)
		rows = max(rows, last.Row+1)
		cols = max(cols, last.Col+1)
	}
	return rows, cols
}

// Transfer returns a copy safe to hand to a client: no answers are included
func (p *Puzzle) Transfer() Puzzle {
	out := Puzzle{
		Name:        p.Name,
		Description: p.Description,
		Entries:     make([]Entry, len(p.Entries)),
	}
	for i, e := range p.Entries {
		out.Entries[i] = e.Transfer()
	}
	return out
}

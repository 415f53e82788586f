package model

import (
	"fmt"
	"regexp"
	"strings"
)

// Direction is the orientation of an entry on the grid
type Direction string

const (
	Across Direction = "ACROSS"
	Down   Direction = "DOWN"
)

// Valid reports whether d is a known direction
func (d Direction) Valid() bool {
	return d == Across || d == Down
}

// ParseDirection converts the textual form of a direction
func ParseDirection(s string) (Direction, error) {
	d := Direction(strings.ToUpper(s))
	if !d.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidDirection, s)
	}
	return d, nil
}

// Placeholder replaces answer letters in transfer copies
const Placeholder = '-'

var wordPattern = regexp.MustCompile(`^[-a-z]+$`)

// ValidWord reports whether w is a lowercase word (hyphens allowed)
func ValidWord(w string) bool {
	return wordPattern.MatchString(w)
}

// Cell is one square of the grid
type Cell struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Entry is one answer slot of a puzzle
type Entry struct {
	Word      string    `json:"word"`
	Clue      string    `json:"clue"`
	Direction Direction `json:"direction"`
	Row       int       `json:"row"`
	Col       int       `json:"col"`
}

// NewEntry builds and validates an entry
func NewEntry(word, clue string, direction Direction, row, col int) (Entry, error) {
	e := Entry{Word: word, Clue: clue, Direction: direction, Row: row, Col: col}
	if err := e.Validate(); err != nil {
		return Entry{}, err
	}
	return e, nil
}

// Validate checks the entry's own fields
func (e Entry) Validate() error {
	if !ValidWord(e.Word) {
		return fmt.Errorf("%w: %q", ErrInvalidWord, e.Word)
	}
	if !e.Direction.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidDirection, e.Direction)
	}
	if e.Row < 0 || e.Col < 0 {
		return fmt.Errorf("%w: (%d, %d)", ErrInvalidCoordinate, e.Row, e.Col)
	}
	return nil
}

// Length returns the number of cells the entry spans
func (e Entry) Length() int {
	return len(e.Word)
}

// CellAt returns the grid cell holding the i-th letter
func (e Entry) CellAt(i int) Cell {
	if e.Direction == Across {
		return Cell{Row: e.Row, Col: e.Col + i}
	}
	return Cell{Row: e.Row + i, Col: e.Col}
}

// Cells returns the cells the entry occupies, in letter order
func (e Entry) Cells() []Cell {
	cells := make([]Cell, e.Length())
	for i := range cells {
		cells[i] = e.CellAt(i)
	}
	return cells
}

// IndexOf returns the letter index of c within the entry, or -1
func (e Entry) IndexOf(c Cell) int {
	var i int
	if e.Direction == Across {
		if c.Row != e.Row {
			return -1
		}
		i = c.Col - e.Col
	} else {
		if c.Col != e.Col {
			return -1
		}
		i = c.Row - e.Row
	}
	if i < 0 || i >= e.Length() {
		return -1
	}
	return i
}

// Transfer returns a copy with the answer replaced by placeholders
func (e Entry) Transfer() Entry {
	e.Word = strings.Repeat(string(Placeholder), len(e.Word))
	return e
}

// Crossing is a cell shared by two entries along with each entry's letter index there
type Crossing struct {
	Cell   Cell
	IndexA int
	IndexB int
}

// Crossings returns every cell shared by a and b
func Crossings(a, b Entry) []Crossing {
	var out []Crossing
	for i := 0; i < a.Length(); i++ {
		c := a.CellAt(i)
		if j := b.IndexOf(c); j >= 0 {
			out = append(out, Crossing{Cell: c, IndexA: i, IndexB: j})
		}
	}
	return out
}

// Agree reports whether words wa and wb, placed on a and b, match at every shared cell
func Agree(a Entry, wa string, b Entry, wb string) bool {
	for _, x := range Crossings(a, b) {
		if x.IndexA >= len(wa) || x.IndexB >= len(wb) {
			continue
		}
		if wa[x.IndexA] != wb[x.IndexB] {
			return false
		}
	}
	return true
}

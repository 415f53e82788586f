package model

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type EntrySuite struct {
	suite.Suite
}

func TestEntrySuite(t *testing.T) {
	suite.Run(t, new(EntrySuite))
}

func (s *EntrySuite) TestCellsAcross() {
	e := Entry{Word: "mat", Direction: Across, Row: 1, Col: 0}
	s.Equal([]Cell{{1, 0}, {1, 1}, {1, 2}}, e.Cells())
}

func (s *EntrySuite) TestCellsDown() {
	e := Entry{Word: "cat", Direction: Down, Row: 0, Col: 1}
	s.Equal([]Cell{{0, 1}, {1, 1}, {2, 1}}, e.Cells())
}

func (s *EntrySuite) TestIndexOf() {
	e := Entry{Word: "table", Direction: Across, Row: 2, Col: 3}
	s.Equal(0, e.IndexOf(Cell{2, 3}))
	s.Equal(4, e.IndexOf(Cell{2, 7}))
	s.Equal(-1, e.IndexOf(Cell{2, 8}))
	s.Equal(-1, e.IndexOf(Cell{3, 3}))
}

func (s *EntrySuite) TestCrossings() {
	down := Entry{Word: "cat", Direction: Down, Row: 0, Col: 1}
	across := Entry{Word: "mat", Direction: Across, Row: 1, Col: 0}

	crossings := Crossings(down, across)
	s.Equal([]Crossing{{Cell: Cell{1, 1}, IndexA: 1, IndexB: 1}}, crossings)
	s.True(Agree(down, "cat", across, "mat"))
	s.False(Agree(down, "cot", across, "mat"))

	apart := Entry{Word: "dog", Direction: Across, Row: 5, Col: 5}
	s.Empty(Crossings(down, apart))
	s.True(Agree(down, "cat", apart, "zzz"))
}

func (s *EntrySuite) TestValidate() {
	_, err := NewEntry("x-ray", "clue", Down, 0, 0)
	s.NoError(err)

	_, err = NewEntry("Xray", "clue", Down, 0, 0)
	s.ErrorIs(err, ErrInvalidWord)
	_, err = NewEntry("xray", "clue", "DIAGONAL", 0, 0)
	s.ErrorIs(err, ErrInvalidDirection)
	_, err = NewEntry("xray", "clue", Across, 0, -2)
	s.ErrorIs(err, ErrInvalidCoordinate)
}

func (s *EntrySuite) TestTransferKeepsShape() {
	e := Entry{Word: "x-ray", Clue: "see through", Direction: Down, Row: 3, Col: 4}
	t := e.Transfer()
	s.Equal("-----", t.Word)
	s.Equal(e.Clue, t.Clue)
	s.Equal(e.Cells(), t.Cells())
	s.Equal("x-ray", e.Word)
}

func (s *EntrySuite) TestPuzzleSizeAndCells() {
	p, err := NewPuzzle("Grid", "", []Entry{
		{Word: "cat", Direction: Down, Row: 0, Col: 1},
		{Word: "mat", Direction: Across, Row: 1, Col: 0},
	})
	s.Require().NoError(err)

	rows, cols := p.Size()
	s.Equal(3, rows)
	s.Equal(3, cols)
	s.Len(p.Cells(), 5)
}

func (s *EntrySuite) TestParseDirection() {
	d, err := ParseDirection("down")
	s.Require().NoError(err)
	s.Equal(Down, d)

	_, err = ParseDirection("sideways")
	s.ErrorIs(err, ErrInvalidDirection)
}

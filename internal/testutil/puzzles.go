package testutil

import "github.com/mcoot/crossword-extravaganza/internal/model"

// SimplePuzzle returns two crossing entries sharing the letter 'a':
// "cat" down from (0,1) and "mat" across from (1,0).
func SimplePuzzle() *model.Puzzle {
	return mustPuzzle("Simple Puzzle", "Two words", []model.Entry{
		{Word: "cat", Clue: "feline companion", Direction: model.Down, Row: 0, Col: 1},
		{Word: "mat", Clue: "lounging area for 0-down", Direction: model.Across, Row: 1, Col: 0},
	})
}

// ComplexPuzzle returns a five entry grid:
//
//	0 table across (0,0)   1 book down (0,2)   2 kite across (3,2)
//	3 eat down (0,4)       4 window across (6,0), crossing nothing
func ComplexPuzzle() *model.Puzzle {
	return mustPuzzle("Complex Puzzle", "Furniture and friends", []model.Entry{
		{Word: "table", Clue: "you eat at it", Direction: model.Across, Row: 0, Col: 0},
		{Word: "book", Clue: "bound pages", Direction: model.Down, Row: 0, Col: 2},
		{Word: "kite", Clue: "flies on a string", Direction: model.Across, Row: 3, Col: 2},
		{Word: "eat", Clue: "consume", Direction: model.Down, Row: 0, Col: 4},
		{Word: "window", Clue: "glass in a wall", Direction: model.Across, Row: 6, Col: 0},
	})
}

// OverlapPuzzle returns a 2x2 grid whose two down entries alone cover every cell
func OverlapPuzzle() *model.Puzzle {
	return mustPuzzle("Overlap Puzzle", "Square", []model.Entry{
		{Word: "to", Clue: "toward", Direction: model.Across, Row: 0, Col: 0},
		{Word: "ta", Clue: "thanks", Direction: model.Down, Row: 0, Col: 0},
		{Word: "on", Clue: "not off", Direction: model.Down, Row: 0, Col: 1},
		{Word: "an", Clue: "indefinite article", Direction: model.Across, Row: 1, Col: 0},
	})
}

// SimplePuzzleSource is SimplePuzzle in puzzle file syntax
const SimplePuzzleSource = `>> "Simple Puzzle" "Two words"
// cat crosses mat at the 'a'
(cat, "feline companion", DOWN, 0, 1)
(mat, "lounging area for 0-down", ACROSS, 1, 0)
`

func mustPuzzle(name, description string, entries []model.Entry) *model.Puzzle {
	p, err := model.NewPuzzle(name, description, entries)
	if err != nil {
		panic(err)
	}
	return p
}

package puzzles

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mcoot/crossword-extravaganza/internal/model"
)

// SyntaxError reports where a puzzle source stopped making sense
type SyntaxError struct {
	Line int
	Col  int
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Col, e.Msg)
}

// Parse reads a puzzle in the text format
//
//	>> "Name" "Description"
//	(word, "clue", ACROSS, row, col)
//	(word, "clue", DOWN, row, col)
//
// Whitespace is free-form and // starts a comment running to end of line.
// Quoted strings accept the escapes \\ \" \n \r and \t.
// The parsed puzzle is validated before it is returned.
func Parse(src string) (*model.Puzzle, error) {
	p := &parser{src: src, line: 1, col: 1}

	name, description, err := p.header()
	if err != nil {
		return nil, err
	}

	var entries []model.Entry
	for {
		p.skip()
		if p.eof() {
			break
		}
		entry, err := p.entry()
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	return model.NewPuzzle(name, description, entries)
}

type parser struct {
	src  string
	pos  int
	line int
	col  int
}

func (p *parser) eof() bool {
	return p.pos >= len(p.src)
}

func (p *parser) peek() byte {
	if p.eof() {
		return 0
	}
	return p.src[p.pos]
}

func (p *parser) advance() byte {
	c := p.src[p.pos]
	p.pos++
	if c == '\n' {
		p.line++
		p.col = 1
	} else {
		p.col++
	}
	return c
}

func (p *parser) errorf(format string, args ...any) error {
	return &SyntaxError{Line: p.line, Col: p.col, Msg: fmt.Sprintf(format, args...)}
}

// skip consumes whitespace and comments
func (p *parser) skip() {
	for !p.eof() {
		switch c := p.peek(); {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			p.advance()
		case strings.HasPrefix(p.src[p.pos:], "//"):
			for !p.eof() && p.peek() != '\n' {
				p.advance()
			}
		default:
			return
		}
	}
}

func (p *parser) expect(lit string) error {
	p.skip()
	if !strings.HasPrefix(p.src[p.pos:], lit) {
		return p.errorf("expected %q", lit)
	}
	for range lit {
		p.advance()
	}
	return nil
}

func (p *parser) header() (name, description string, err error) {
	if err = p.expect(">>"); err != nil {
		return "", "", err
	}
	if name, err = p.quoted(); err != nil {
		return "", "", err
	}
	if description, err = p.quoted(); err != nil {
		return "", "", err
	}
	return name, description, nil
}

func (p *parser) entry() (model.Entry, error) {
	if err := p.expect("("); err != nil {
		return model.Entry{}, err
	}
	word, err := p.word()
	if err != nil {
		return model.Entry{}, err
	}
	if err := p.expect(","); err != nil {
		return model.Entry{}, err
	}
	clue, err := p.quoted()
	if err != nil {
		return model.Entry{}, err
	}
	if err := p.expect(","); err != nil {
		return model.Entry{}, err
	}
	direction, err := p.direction()
	if err != nil {
		return model.Entry{}, err
	}
	if err := p.expect(","); err != nil {
		return model.Entry{}, err
	}
	row, err := p.integer()
	if err != nil {
		return model.Entry{}, err
	}
	if err := p.expect(","); err != nil {
		return model.Entry{}, err
	}
	col, err := p.integer()
	if err != nil {
		return model.Entry{}, err
	}
	if err := p.expect(")"); err != nil {
		return model.Entry{}, err
	}
	return model.NewEntry(word, clue, direction, row, col)
}

func (p *parser) word() (string, error) {
	p.skip()
	start := p.pos
	for !p.eof() && (p.peek() == '-' || (p.peek() >= 'a' && p.peek() <= 'z')) {
		p.advance()
	}
	if p.pos == start {
		return "", p.errorf("expected a lowercase word")
	}
	return p.src[start:p.pos], nil
}

func (p *parser) direction() (model.Direction, error) {
	p.skip()
	start := p.pos
	for !p.eof() && p.peek() >= 'A' && p.peek() <= 'Z' {
		p.advance()
	}
	d := model.Direction(p.src[start:p.pos])
	if !d.Valid() {
		return "", p.errorf("expected ACROSS or DOWN, got %q", d)
	}
	return d, nil
}

func (p *parser) integer() (int, error) {
	p.skip()
	start := p.pos
	for !p.eof() && p.peek() >= '0' && p.peek() <= '9' {
		p.advance()
	}
	if p.pos == start {
		return 0, p.errorf("expected a non-negative integer")
	}
	n, err := strconv.Atoi(p.src[start:p.pos])
	if err != nil {
		return 0, p.errorf("bad integer: %v", err)
	}
	return n, nil
}

func (p *parser) quoted() (string, error) {
	p.skip()
	if p.peek() != '"' {
		return "", p.errorf("expected a quoted string")
	}
	p.advance()

	var b strings.Builder
	for {
		if p.eof() {
			return "", p.errorf("unterminated string")
		}
		c := p.advance()
		switch c {
		case '"':
			return b.String(), nil
		case '\n':
			return "", p.errorf("newline in string")
		case '\\':
			if p.eof() {
				return "", p.errorf("unterminated escape")
			}
			switch e := p.advance(); e {
			case 'n':
				b.WriteByte('\n')
			case 'r':
				b.WriteByte('\r')
			case 't':
				b.WriteByte('\t')
			case '\\', '"':
				b.WriteByte(e)
			default:
				return "", p.errorf("unknown escape \\%c", e)
			}
		default:
			b.WriteByte(c)
		}
	}
}

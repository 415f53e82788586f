package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	"github.com/mcoot/crossword-extravaganza/internal/config"
	"github.com/mcoot/crossword-extravaganza/internal/dependencies/random"
	"github.com/mcoot/crossword-extravaganza/internal/model"
	"github.com/mcoot/crossword-extravaganza/internal/protocol"
)

const (
	matchIDAlphabet = "abcdefghjkmnpqrstuvwxyz23456789"
	matchIDLength   = 5

	// exitWait bounds how long to wait for the server to close after exit
	exitWait = 5 * time.Second
)

const playUsage = `Commands:
  id NAME                             claim a player id
  new "PUZZLE" [MATCH [DESCRIPTION]]  open a match (random id if omitted)
  join MATCH                          join an open match
  try ENTRY WORD                      guess a word for an entry
  challenge ENTRY WORD                contest the opponent's guess
  reset                               leave the score screen
  exit                                leave the match or disconnect
  help                                show this text`

var errHelp = errors.New("help requested")

func newPlayCmd() *cobra.Command {
	var (
		host string
		port int
		id   string
	)

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play a match interactively over a websocket",
		Long:  "Connects to a crossword server and reads commands from stdin.\n\n" + playUsage,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			target := url.URL{
				Scheme: "ws",
				Host:   net.JoinHostPort(host, strconv.Itoa(port)),
				Path:   "/ws",
			}
			conn, _, err := websocket.DefaultDialer.DialContext(cmd.Context(), target.String(), nil)
			if err != nil {
				return fmt.Errorf("connecting to %s: %w", target.String(), err)
			}
			defer func() { _ = conn.Close() }()

			p := newPlayer(conn, cmd.OutOrStdout(), random.New())
			if id != "" {
				if err := p.send(protocol.SetID{PlayerID: model.PlayerID(id)}); err != nil {
					return err
				}
			}
			return p.run(cmd.Context(), cmd.InOrStdin())
		},
	}

	cmd.Flags().StringVar(&host, "host", "localhost", "Server host")
	cmd.Flags().IntVarP(&port, "port", "p", config.DefaultPort, "Server port")
	cmd.Flags().StringVar(&id, "id", "", "Claim this player id on connect")

	return cmd
}

// player drives one websocket connection from line commands. Only run's
// goroutine writes to the connection.
type player struct {
	conn *websocket.Conn
	rand random.Random

	mu      sync.Mutex
	out     io.Writer
	puzzles map[string]model.Puzzle
}

func newPlayer(conn *websocket.Conn, out io.Writer, rnd random.Random) *player {
	return &player{
		conn:    conn,
		rand:    rnd,
		out:     out,
		puzzles: make(map[string]model.Puzzle),
	}
}

func (p *player) printf(format string, args ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.out, format, args...)
}

func (p *player) send(msg protocol.Message) error {
	data, err := protocol.Encode(msg)
	if err != nil {
		return err
	}
	if err := p.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("sending %s: %w", msg.Type(), err)
	}
	return nil
}

// run sends commands read from in until exit, end of input, or the server
// closing the connection
func (p *player) run(ctx context.Context, in io.Reader) error {
	done := make(chan error, 1)
	go func() { done <- p.readLoop() }()

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case err := <-done:
			return err
		case <-ctx.Done():
			return p.leave(done)
		case line, ok := <-lines:
			if !ok {
				return p.leave(done)
			}
			msg, err := parseCommand(line, p.rand)
			switch {
			case errors.Is(err, errHelp):
				p.printf("%s\n", playUsage)
				continue
			case err != nil:
				p.printf("Error: %s\n", err)
				continue
			case msg == nil:
				continue
			}
			if nm, ok := msg.(protocol.NewMatch); ok {
				p.printf("Opening match %s on %q\n", nm.MatchID, nm.PuzzleName)
			}
			if msg.Type() == protocol.TypeExit {
				return p.leave(done)
			}
			if err := p.send(msg); err != nil {
				return err
			}
		}
	}
}

// leave sends exit and waits for the server to close the connection
func (p *player) leave(done <-chan error) error {
	if err := p.send(protocol.Exit{}); err != nil {
		return nil
	}
	select {
	case err := <-done:
		return err
	case <-time.After(exitWait):
		return nil
	}
}

func (p *player) readLoop() error {
	for {
		_, data, err := p.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("connection lost: %w", err)
		}

		msg, err := protocol.Decode(data)
		if err != nil {
			p.printf("Unreadable message from server: %s\n", err)
			continue
		}
		p.render(msg)
	}
}

func (p *player) render(msg protocol.Message) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch m := msg.(type) {
	case protocol.PuzzlesList:
		fmt.Fprintln(p.out, "Puzzles:")
		for _, pz := range m.Puzzles {
			p.puzzles[pz.Name] = pz
			printPuzzle(p.out, pz)
		}
	case protocol.MatchesList:
		if len(m.Matches) == 0 {
			fmt.Fprintln(p.out, "No open matches.")
			return
		}
		ids := make([]string, 0, len(m.Matches))
		for id := range m.Matches {
			ids = append(ids, string(id))
		}
		sort.Strings(ids)
		fmt.Fprintln(p.out, "Open matches:")
		for _, id := range ids {
			fmt.Fprintf(p.out, "  %s: %s\n", id, m.Matches[model.MatchID(id)])
		}
	case protocol.Wait:
		if m.OK {
			fmt.Fprintln(p.out, "Waiting for an opponent...")
		} else {
			fmt.Fprintln(p.out, "Could not open that match.")
		}
	case protocol.GameStart:
		fmt.Fprintf(p.out, "Match started on %q.\n", m.PuzzleName)
		if pz, ok := p.puzzles[m.PuzzleName]; ok {
			printPuzzle(p.out, pz)
			writeBoard(p.out, pz, nil)
		}
	case protocol.GameState:
		p.renderState(m.State)
	case protocol.Score:
		fmt.Fprintln(p.out, m.Result)
		fmt.Fprintln(p.out, `Type "reset" to return to the lobby.`)
	case protocol.Error:
		fmt.Fprintf(p.out, "Error: %s\n", m.Message)
	case protocol.Exit:
		fmt.Fprintln(p.out, "Goodbye.")
	default:
		fmt.Fprintf(p.out, "Unexpected %s message\n", msg.Type())
	}
}

func (p *player) renderState(state model.MatchState) {
	fmt.Fprintf(p.out, "%s %d - %d %s\n", state.PlayerOne, state.ScoreOne, state.ScoreTwo, state.PlayerTwo)

	pz, ok := p.puzzles[state.Puzzle]
	if ok {
		writeBoard(p.out, pz, state.Guesses)
	}

	ids := make([]int, 0, len(state.Guesses))
	for id := range state.Guesses {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		status := "guessed"
		if state.Confirmed[id] {
			status = "confirmed"
		}
		fmt.Fprintf(p.out, "  [%d] %s by %s (%s)\n", id, state.Guesses[id], state.Owners[id], status)
	}
}

// writeBoard draws the grid: '#' outside any entry, '.' for an empty cell
func writeBoard(w io.Writer, pz model.Puzzle, guesses map[int]string) {
	rows, cols := pz.Size()
	letters := make(map[model.Cell]byte)
	for _, e := range pz.Entries {
		for _, cell := range e.Cells() {
			letters[cell] = '.'
		}
	}
	for id, word := range guesses {
		e, ok := pz.Entry(id)
		if !ok || len(word) != e.Length() {
			continue
		}
		for i, cell := range e.Cells() {
			letters[cell] = word[i]
		}
	}

	var b strings.Builder
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			if c > 0 {
				b.WriteByte(' ')
			}
			if l, ok := letters[model.Cell{Row: r, Col: c}]; ok {
				b.WriteByte(l)
			} else {
				b.WriteByte('#')
			}
		}
		b.WriteByte('\n')
	}
	fmt.Fprint(w, b.String())
}

// parseCommand turns one input line into a client message. A blank line
// yields a nil message.
func parseCommand(line string, rnd random.Random) (protocol.Message, error) {
	args, err := splitArgs(line)
	if err != nil {
		return nil, err
	}
	if len(args) == 0 {
		return nil, nil
	}

	name, args := strings.ToLower(args[0]), args[1:]
	switch name {
	case "help", "?":
		return nil, errHelp
	case "id":
		if len(args) != 1 {
			return nil, fmt.Errorf("usage: id NAME")
		}
		return protocol.SetID{PlayerID: model.PlayerID(args[0])}, nil
	case "new":
		if len(args) == 0 {
			return nil, fmt.Errorf(`usage: new "PUZZLE" [MATCH [DESCRIPTION]]`)
		}
		m := protocol.NewMatch{PuzzleName: args[0]}
		if len(args) > 1 {
			m.MatchID = model.MatchID(args[1])
		} else {
			m.MatchID = model.MatchID(rnd.String(matchIDLength, matchIDAlphabet))
		}
		if len(args) > 2 {
			m.Description = strings.Join(args[2:], " ")
		}
		return m, nil
	case "join":
		if len(args) != 1 {
			return nil, fmt.Errorf("usage: join MATCH")
		}
		return protocol.PickMatch{MatchID: model.MatchID(args[0])}, nil
	case "try", "challenge":
		if len(args) != 2 {
			return nil, fmt.Errorf("usage: %s ENTRY WORD", name)
		}
		entry, err := strconv.Atoi(args[0])
		if err != nil {
			return nil, fmt.Errorf("entry must be a number, got %q", args[0])
		}
		word := strings.ToLower(args[1])
		if !model.ValidWord(word) {
			return nil, fmt.Errorf("word must be letters and hyphens, got %q", args[1])
		}
		if name == "try" {
			return protocol.TryWord{EntryID: entry, Word: word}, nil
		}
		return protocol.ChallengeWord{EntryID: entry, Word: word}, nil
	case "reset":
		return protocol.Reset{}, nil
	case "exit", "quit":
		return protocol.Exit{}, nil
	}
	return nil, fmt.Errorf("unknown command %q, try help", name)
}

// splitArgs splits on whitespace; double quotes group words
func splitArgs(line string) ([]string, error) {
	var (
		args    []string
		current strings.Builder
		quoted  bool
		started bool
	)
	for _, r := range line {
		switch {
		case r == '"':
			quoted = !quoted
			started = true
		case !quoted && (r == ' ' || r == '\t'):
			if started {
				args = append(args, current.String())
				current.Reset()
				started = false
			}
		default:
			current.WriteRune(r)
			started = true
		}
	}
	if quoted {
		return nil, fmt.Errorf("unterminated quote")
	}
	if started {
		args = append(args, current.String())
	}
	return args, nil
}

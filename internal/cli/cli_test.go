package cli

import (
	"bytes"
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/crossword-extravaganza/internal/api"
	"github.com/mcoot/crossword-extravaganza/internal/api/apierr"
	"github.com/mcoot/crossword-extravaganza/internal/dependencies/mocks"
	"github.com/mcoot/crossword-extravaganza/internal/factory"
	"github.com/mcoot/crossword-extravaganza/internal/model"
	"github.com/mcoot/crossword-extravaganza/internal/protocol"
	"github.com/mcoot/crossword-extravaganza/internal/testutil"
)

type CLISuite struct {
	suite.Suite
	app    *factory.TestApp
	server *httptest.Server
}

func TestCLISuite(t *testing.T) {
	suite.Run(t, new(CLISuite))
}

func (s *CLISuite) SetupTest() {
	s.app = factory.NewTestApp()
	s.Require().NoError(s.app.LoadTestPuzzles())

	s.server = httptest.NewServer(api.NewRouter(api.RouterConfig{
		Logger:   testutil.NopLogger(),
		Library:  s.app.Library,
		Registry: s.app.Registry,
		Storage:  s.app.Storage,
		Sessions: s.app.Sessions,
	}))
}

func (s *CLISuite) TearDownTest() {
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_ = s.app.Sessions.Shutdown(ctx)
	s.server.Close()
	_ = s.app.Close()
}

// execute runs the root command against the test server
func (s *CLISuite) execute(stdin string, args ...string) (string, error) {
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append([]string{"--server", s.server.URL}, args...))
	err := root.Execute()
	return out.String(), err
}

// Command parsing

func (s *CLISuite) TestParseCommand() {
	rnd := mocks.NewMockRandom()
	cases := map[string]protocol.Message{
		"id bob":                             protocol.SetID{PlayerID: "bob"},
		`new "Simple Puzzle" m1`:             protocol.NewMatch{MatchID: "m1", PuzzleName: "Simple Puzzle"},
		`new "Simple Puzzle" m1 a quick one`: protocol.NewMatch{MatchID: "m1", PuzzleName: "Simple Puzzle", Description: "a quick one"},
		"join m1":                            protocol.PickMatch{MatchID: "m1"},
		"try 0 cat":                          protocol.TryWord{EntryID: 0, Word: "cat"},
		"CHALLENGE 1 mat":                    protocol.ChallengeWord{EntryID: 1, Word: "mat"},
		"try 2 Hen-Coop":                     protocol.TryWord{EntryID: 2, Word: "hen-coop"},
		"reset":                              protocol.Reset{},
		"  exit  ":                           protocol.Exit{},
	}
	for line, want := range cases {
		got, err := parseCommand(line, rnd)
		s.Require().NoError(err, line)
		s.Equal(want, got, line)
	}
}

func (s *CLISuite) TestParseCommandErrors() {
	rnd := mocks.NewMockRandom()
	for _, line := range []string{"id", "id a b", "join", "try x cat", "try 0", "try 0 c4t", "new", `new "open`, "dance"} {
		_, err := parseCommand(line, rnd)
		s.Error(err, line)
	}

	msg, err := parseCommand("   ", rnd)
	s.NoError(err)
	s.Nil(msg)

	_, err = parseCommand("help", rnd)
	s.ErrorIs(err, errHelp)
}

func (s *CLISuite) TestNewWithoutIDUsesRandomCode() {
	msg, err := parseCommand(`new "Simple Puzzle"`, mocks.NewMockRandom("k7p2q"))
	s.Require().NoError(err)
	s.Equal(protocol.NewMatch{MatchID: "k7p2q", PuzzleName: "Simple Puzzle"}, msg)
}

func (s *CLISuite) TestSplitArgs() {
	args, err := splitArgs(`new  "Simple Puzzle"  m1 ""`)
	s.Require().NoError(err)
	s.Equal([]string{"new", "Simple Puzzle", "m1", ""}, args)
}

// Rendering

func (s *CLISuite) TestWriteBoard() {
	pz := testutil.SimplePuzzle().Transfer()

	var empty bytes.Buffer
	writeBoard(&empty, pz, nil)
	s.Equal("# . #\n. . .\n# . #\n", empty.String())

	var guessed bytes.Buffer
	writeBoard(&guessed, pz, map[int]string{0: "cat", 1: "toolong"})
	s.Equal("# c #\n. a .\n# t #\n", guessed.String())
}

func (s *CLISuite) TestRenderState() {
	var out bytes.Buffer
	p := newPlayer(nil, &out, mocks.NewMockRandom())
	p.render(protocol.PuzzlesList{Puzzles: []model.Puzzle{testutil.SimplePuzzle().Transfer()}})
	out.Reset()

	p.render(protocol.GameState{State: model.MatchState{
		MatchID:   "m1",
		Puzzle:    "Simple Puzzle",
		PlayerOne: "bob",
		PlayerTwo: "jill",
		ScoreTwo:  1,
		Guesses:   map[int]string{1: "mat"},
		Owners:    map[int]model.PlayerID{1: "jill"},
		Confirmed: map[int]bool{},
	}})

	s.Equal("bob 0 - 1 jill\n# . #\nm a t\n# . #\n  [1] mat by jill (guessed)\n", out.String())
}

// Commands

func (s *CLISuite) TestHealth() {
	out, err := s.execute("", "health")
	s.Require().NoError(err)
	s.Contains(out, "Status: ok")
	s.Contains(out, "Puzzles: 3")
}

func (s *CLISuite) TestPuzzlesJSON() {
	out, err := s.execute("", "--output", "json", "puzzles")
	s.Require().NoError(err)
	s.Contains(out, `"name": "Simple Puzzle"`)
	s.NotContains(out, `"cat"`)
}

func (s *CLISuite) TestResults() {
	ctx := context.Background()
	s.Require().NoError(s.app.Storage.SaveResult(ctx, &model.MatchResult{
		ID: "r1", MatchID: "m1", Puzzle: "Simple Puzzle",
		PlayerOne: "bob", PlayerTwo: "jill", ScoreTwo: 2, Winner: "jill",
		FinishedAt: s.app.MockClock.Now(),
	}))

	out, err := s.execute("", "results", "--player", "jill")
	s.Require().NoError(err)
	s.Contains(out, "bob 0 - 2 jill  jill won")

	out, err = s.execute("", "results", "r1")
	s.Require().NoError(err)
	s.Contains(out, "Match: m1 (Simple Puzzle)")

	out, err = s.execute("", "results", "missing")
	var apiErr *apierr.Error
	s.Require().ErrorAs(err, &apiErr)
	s.Equal(http.StatusNotFound, apiErr.Status)
	s.Contains(out, "RESULT_NOT_FOUND")
}

func (s *CLISuite) TestCheck() {
	dir := s.T().TempDir()
	s.Require().NoError(os.WriteFile(filepath.Join(dir, "a.puzzle"), []byte(testutil.SimplePuzzleSource), 0o644))
	s.Require().NoError(os.WriteFile(filepath.Join(dir, "b.puzzle"), []byte(testutil.SimplePuzzleSource), 0o644))
	s.Require().NoError(os.WriteFile(filepath.Join(dir, "c.puzzle"), []byte(`>> "Broken"`), 0o644))

	out, err := s.execute("", "check", dir)
	s.Require().NoError(err)
	s.Contains(out, `ok   a.puzzle: "Simple Puzzle", 2 entries`)
	s.Contains(out, "FAIL b.puzzle: duplicate puzzle name")
	s.Contains(out, "FAIL c.puzzle")
	s.Contains(out, "1 of 3 files valid")

	_, err = s.execute("", "check", s.T().TempDir())
	s.ErrorIs(err, model.ErrNoPuzzles)
}

func (s *CLISuite) TestPlayOpensAndLeaves() {
	host, port, err := net.SplitHostPort(strings.TrimPrefix(s.server.URL, "http://"))
	s.Require().NoError(err)

	out, err := s.execute("new \"Simple Puzzle\" m1 quick\nexit\n",
		"play", "--host", host, "--port", port, "--id", "bob")
	s.Require().NoError(err)

	s.Contains(out, "Puzzles:")
	s.Contains(out, "No open matches.")
	s.Contains(out, `Opening match m1 on "Simple Puzzle"`)
	s.Contains(out, "Waiting for an opponent...")
	s.Contains(out, "Goodbye.")

	s.Eventually(func() bool {
		return s.app.Registry.IsIDFree("bob")
	}, time.Second, 10*time.Millisecond)
	s.Empty(s.app.Registry.OpenMatches())
}

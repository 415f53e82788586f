package server

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/crossword-extravaganza/internal/dependencies/mocks"
	"github.com/mcoot/crossword-extravaganza/internal/model"
	"github.com/mcoot/crossword-extravaganza/internal/protocol"
	"github.com/mcoot/crossword-extravaganza/internal/services/puzzles"
	"github.com/mcoot/crossword-extravaganza/internal/services/registry"
	"github.com/mcoot/crossword-extravaganza/internal/storage"
	"github.com/mcoot/crossword-extravaganza/internal/storage/memory"
	"github.com/mcoot/crossword-extravaganza/internal/testutil"
)

const readTimeout = 2 * time.Second

type ServerSuite struct {
	suite.Suite
	registry *registry.Registry
	storage  *memory.Storage
	manager  *Manager
	server   *httptest.Server
	url      string
}

func TestServerSuite(t *testing.T) {
	suite.Run(t, new(ServerSuite))
}

func (s *ServerSuite) SetupTest() {
	library := puzzles.New(testutil.NopLogger())
	s.Require().NoError(library.LoadPuzzles(testutil.SimplePuzzle(), testutil.ComplexPuzzle()))

	s.storage = memory.New()
	clk := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.registry = registry.New(testutil.NopLogger(), library, s.storage, clk)
	s.manager = NewManager(NewHandler(s.registry), testutil.NopLogger())
	s.server = httptest.NewServer(s.manager)
	s.url = "ws" + strings.TrimPrefix(s.server.URL, "http")
}

func (s *ServerSuite) TearDownTest() {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_ = s.manager.Shutdown(ctx)
	s.server.Close()
}

// testClient is a raw websocket peer speaking the JSON protocol
type testClient struct {
	s    *ServerSuite
	conn *websocket.Conn
}

func (s *ServerSuite) dial() *testClient {
	conn, _, err := websocket.DefaultDialer.Dial(s.url, nil)
	s.Require().NoError(err)
	s.T().Cleanup(func() { _ = conn.Close() })
	return &testClient{s: s, conn: conn}
}

// join dials and claims id, consuming the lobby greeting
func (s *ServerSuite) join(id model.PlayerID) *testClient {
	c := s.dial()
	c.send(protocol.SetID{PlayerID: id})
	c.expect(protocol.TypePuzzlesList)
	c.expect(protocol.TypeMatchesList)
	return c
}

// startMatch has bob open m1 on the simple puzzle and jill join it
func (s *ServerSuite) startMatch() (*testClient, *testClient) {
	bob := s.join("bob")
	bob.send(protocol.NewMatch{MatchID: "m1", PuzzleName: "Simple Puzzle"})
	s.Equal(protocol.Wait{OK: true}, bob.await(protocol.TypeWait))

	jill := s.join("jill")
	jill.send(protocol.PickMatch{MatchID: "m1"})
	s.Equal(protocol.GameStart{PuzzleName: "Simple Puzzle"}, jill.await(protocol.TypeGameStart))
	s.Equal(protocol.GameStart{PuzzleName: "Simple Puzzle"}, bob.await(protocol.TypeGameStart))
	return bob, jill
}

func (c *testClient) send(msg protocol.Message) {
	data, err := protocol.Encode(msg)
	c.s.Require().NoError(err)
	c.s.Require().NoError(c.conn.WriteMessage(websocket.TextMessage, data))
}

func (c *testClient) sendRaw(frame string) {
	c.s.Require().NoError(c.conn.WriteMessage(websocket.TextMessage, []byte(frame)))
}

func (c *testClient) next() protocol.Message {
	_ = c.conn.SetReadDeadline(time.Now().Add(readTimeout))
	_, data, err := c.conn.ReadMessage()
	c.s.Require().NoError(err)
	msg, err := protocol.Decode(data)
	c.s.Require().NoError(err)
	return msg
}

// expect reads the next message and requires its type
func (c *testClient) expect(t protocol.Type) protocol.Message {
	msg := c.next()
	c.s.Require().Equal(t, msg.Type(), "unexpected %#v", msg)
	return msg
}

// await skips lobby pushes until a message of type t arrives
func (c *testClient) await(t protocol.Type) protocol.Message {
	for {
		msg := c.next()
		if msg.Type() == t {
			return msg
		}
		c.s.Require().Equal(protocol.TypeMatchesList, msg.Type(), "unexpected %#v", msg)
	}
}

// closed reports whether the server closes the connection cleanly
func (c *testClient) closed() bool {
	_ = c.conn.SetReadDeadline(time.Now().Add(readTimeout))
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return websocket.IsCloseError(err, websocket.CloseNormalClosure)
		}
	}
}

// Lobby tests

func (s *ServerSuite) TestSetIDSendsPuzzlesThenMatches() {
	c := s.dial()
	c.send(protocol.SetID{PlayerID: "bob"})

	list := c.expect(protocol.TypePuzzlesList).(protocol.PuzzlesList)
	s.Require().Len(list.Puzzles, 2)
	s.Equal("Complex Puzzle", list.Puzzles[0].Name)
	s.Equal("-----", list.Puzzles[0].Entries[0].Word)

	matches := c.expect(protocol.TypeMatchesList).(protocol.MatchesList)
	s.Empty(matches.Matches)
}

func (s *ServerSuite) TestSetIDRejectsTakenAndBadIDs() {
	s.join("bob")

	c := s.dial()
	c.send(protocol.SetID{PlayerID: "bob"})
	s.Equal(protocol.Error{Message: "Invalid id"}, c.next())
	c.send(protocol.SetID{PlayerID: "bob smith"})
	s.Equal(protocol.Error{Message: "Invalid id"}, c.next())

	// Still in START, so a fresh id works
	c.send(protocol.SetID{PlayerID: "jill"})
	c.expect(protocol.TypePuzzlesList)
}

func (s *ServerSuite) TestIllegalMessageLeavesStateAlone() {
	c := s.dial()
	c.send(protocol.NewMatch{MatchID: "m1", PuzzleName: "Simple Puzzle"})
	s.Equal(protocol.Error{Message: "Invalid message"}, c.next())

	c.send(protocol.SetID{PlayerID: "bob"})
	c.expect(protocol.TypePuzzlesList)
	c.expect(protocol.TypeMatchesList)

	c.send(protocol.TryWord{EntryID: 0, Word: "cat"})
	s.Equal(protocol.Error{Message: "Invalid message"}, c.next())
}

func (s *ServerSuite) TestMalformedFrames() {
	c := s.dial()
	c.sendRaw(`{"type":"set-id","payload":{"player_id":7}}`)
	s.Equal(protocol.Error{Message: "Invalid message"}, c.next())
	c.sendRaw(`{"type":"fly"}`)
	s.Equal(protocol.Error{Message: "Invalid message"}, c.next())
	c.sendRaw(`garbage`)
	s.Equal(protocol.Error{Message: "Invalid message"}, c.next())
}

func (s *ServerSuite) TestNewMatchFailuresReplyWaitFalse() {
	bob := s.join("bob")
	bob.send(protocol.NewMatch{MatchID: "m1", PuzzleName: "No Such Puzzle"})
	s.Equal(protocol.Wait{OK: false}, bob.await(protocol.TypeWait))

	ann := s.join("ann")
	ann.send(protocol.NewMatch{MatchID: "m1", PuzzleName: "Simple Puzzle"})
	s.Equal(protocol.Wait{OK: true}, ann.await(protocol.TypeWait))

	bob.send(protocol.NewMatch{MatchID: "m1", PuzzleName: "Complex Puzzle"})
	s.Equal(protocol.Wait{OK: false}, bob.await(protocol.TypeWait))
}

func (s *ServerSuite) TestLobbySeesNewMatches() {
	watcher := s.join("ann")
	bob := s.join("bob")

	bob.send(protocol.NewMatch{MatchID: "m1", PuzzleName: "Complex Puzzle", Description: "hard"})
	bob.await(protocol.TypeWait)

	s.Equal(protocol.MatchesList{Matches: map[model.MatchID]string{"m1": "Complex Puzzle"}},
		watcher.expect(protocol.TypeMatchesList))
}

func (s *ServerSuite) TestPickMatchFailures() {
	s.startMatch()
	ann := s.join("ann")

	ann.send(protocol.PickMatch{MatchID: "m1"})
	s.Equal(protocol.Error{Message: "Match already started"}, ann.await(protocol.TypeError))

	ann.send(protocol.PickMatch{MatchID: "nope"})
	s.Equal(protocol.Error{Message: "Wrong match"}, ann.await(protocol.TypeError))
}

// Play tests

func (s *ServerSuite) TestFullMatch() {
	bob, jill := s.startMatch()

	jill.send(protocol.TryWord{EntryID: 0, Word: "cat"})
	for _, c := range []*testClient{jill, bob} {
		gs := c.expect(protocol.TypeGameState).(protocol.GameState)
		s.Equal("cat", gs.State.Guesses[0])
		s.Equal(model.PlayerID("jill"), gs.State.Owners[0])
		s.False(gs.State.Confirmed[0])
	}

	jill.send(protocol.TryWord{EntryID: 1, Word: "mat"})
	want := protocol.Score{Result: "Final score: 0 - 2 jill won! bob lost."}
	for _, c := range []*testClient{jill, bob} {
		c.expect(protocol.TypeGameState)
		s.Equal(want, c.expect(protocol.TypeScore))
	}

	// SHOW_SCORE only accepts lobby messages
	bob.send(protocol.TryWord{EntryID: 0, Word: "cot"})
	s.Equal(protocol.Error{Message: "Invalid message"}, bob.next())

	bob.send(protocol.Reset{})
	s.Equal(protocol.MatchesList{Matches: map[model.MatchID]string{}}, bob.expect(protocol.TypeMatchesList))

	history, err := s.storage.ListResults(context.Background(), storage.ResultQuery{})
	s.Require().NoError(err)
	s.Require().Len(history, 1)
	s.Equal(want.Result, history[0].Summary)
}

func (s *ServerSuite) TestRejectedMovesReplyWithError() {
	bob, jill := s.startMatch()

	jill.send(protocol.TryWord{EntryID: 0, Word: "cats"})
	s.Equal(protocol.Error{Message: "You cannot try to guess that word"}, jill.next())

	jill.send(protocol.TryWord{EntryID: 9, Word: "cat"})
	s.Equal(protocol.Error{Message: "You cannot try to guess that word"}, jill.next())

	jill.send(protocol.TryWord{EntryID: 0, Word: "cot"})
	jill.expect(protocol.TypeGameState)
	bob.expect(protocol.TypeGameState)

	jill.send(protocol.ChallengeWord{EntryID: 0, Word: "cat"})
	s.Equal(protocol.Error{Message: "You cannot challenge that word"}, jill.next())

	bob.send(protocol.TryWord{EntryID: 0, Word: "cat"})
	s.Equal(protocol.Error{Message: "You cannot try to guess that word"}, bob.next())
}

func (s *ServerSuite) TestChallengeWins() {
	bob, jill := s.startMatch()

	jill.send(protocol.TryWord{EntryID: 0, Word: "cot"})
	jill.expect(protocol.TypeGameState)
	bob.expect(protocol.TypeGameState)

	bob.send(protocol.ChallengeWord{EntryID: 0, Word: "cat"})
	for _, c := range []*testClient{bob, jill} {
		gs := c.expect(protocol.TypeGameState).(protocol.GameState)
		s.Equal(model.PlayerID("bob"), gs.State.Owners[0])
		s.True(gs.State.Confirmed[0])
		s.Equal(3, gs.State.ScoreOne)
		s.Equal(0, gs.State.ScoreTwo)
	}
}

func (s *ServerSuite) TestExitFromPlayScoresBothThenCloses() {
	bob, jill := s.startMatch()

	jill.send(protocol.Exit{})

	s.Equal(protocol.Score{Result: "The match ended in a tie."}, jill.expect(protocol.TypeScore))
	jill.expect(protocol.TypeExit)
	s.True(jill.closed())

	s.Equal(protocol.Score{Result: "The match ended in a tie."}, bob.expect(protocol.TypeScore))
	bob.send(protocol.Reset{})
	bob.expect(protocol.TypeMatchesList)

	s.Eventually(func() bool { return s.registry.IsIDFree("jill") }, readTimeout, 10*time.Millisecond)
}

func (s *ServerSuite) TestExitFromLobbyReleasesID() {
	bob := s.join("bob")
	bob.send(protocol.Exit{})
	bob.expect(protocol.TypeExit)
	s.True(bob.closed())

	s.Eventually(func() bool { return s.registry.IsIDFree("bob") }, readTimeout, 10*time.Millisecond)
	s.join("bob")
}

func (s *ServerSuite) TestNewMatchAfterExitIsDropped() {
	bob := s.join("bob")
	bob.send(protocol.Exit{})
	bob.send(protocol.NewMatch{MatchID: "ghost", PuzzleName: "Simple Puzzle"})
	bob.expect(protocol.TypeExit)
	s.True(bob.closed())

	s.Eventually(func() bool { return s.manager.Count() == 0 }, readTimeout, 10*time.Millisecond)
	s.Empty(s.registry.OpenMatches())
	players, matches := s.registry.Counts()
	s.Zero(players)
	s.Zero(matches)
}

func (s *ServerSuite) TestExitIsFinal() {
	h := NewHandler(s.registry)
	sess := newSession(nil, testutil.NopLogger())
	ctx := context.Background()

	h.Handle(ctx, sess, protocol.SetID{PlayerID: "bob"})
	h.Handle(ctx, sess, protocol.Exit{})
	h.Handle(ctx, sess, protocol.NewMatch{MatchID: "ghost", PuzzleName: "Simple Puzzle"})
	h.Handle(ctx, sess, protocol.SetID{PlayerID: "bob2"})
	h.HandleFrame(ctx, sess, []byte("not json"))

	// a late finish or lobby transition cannot reopen the session
	sess.SetState(protocol.StateShowScore)
	s.Equal(protocol.StateClosed, sess.State())

	s.Empty(s.registry.OpenMatches())
	s.True(s.registry.IsIDFree("bob"))
	s.True(s.registry.IsIDFree("bob2"))

	var types []protocol.Type
	for data := range sess.send {
		msg, err := protocol.Decode(data)
		s.Require().NoError(err)
		types = append(types, msg.Type())
	}
	s.Equal([]protocol.Type{protocol.TypePuzzlesList, protocol.TypeMatchesList, protocol.TypeExit}, types)
}

func (s *ServerSuite) TestDisconnectRemovesCreatedMatch() {
	watcher := s.join("ann")
	bob := s.join("bob")
	bob.send(protocol.NewMatch{MatchID: "m1", PuzzleName: "Simple Puzzle"})
	bob.await(protocol.TypeWait)
	watcher.expect(protocol.TypeMatchesList)

	_ = bob.conn.Close()

	s.Equal(protocol.MatchesList{Matches: map[model.MatchID]string{}}, watcher.expect(protocol.TypeMatchesList))
	s.Empty(s.registry.OpenMatches())
}

func (s *ServerSuite) TestOpponentKeepsPlayingAfterDisconnect() {
	bob, jill := s.startMatch()
	_ = bob.conn.Close()
	s.Eventually(func() bool { return s.registry.IsIDFree("bob") }, readTimeout, 10*time.Millisecond)

	jill.send(protocol.TryWord{EntryID: 0, Word: "cat"})
	jill.expect(protocol.TypeGameState)
}

// Lifecycle tests

func (s *ServerSuite) TestShutdownLetsSessionsFinish() {
	bob, jill := s.startMatch()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	result := make(chan error, 1)
	go func() { result <- s.manager.Shutdown(ctx) }()

	// the match carries on while the server drains
	bob.send(protocol.TryWord{EntryID: 0, Word: "cat"})
	bob.expect(protocol.TypeGameState)
	jill.expect(protocol.TypeGameState)
	jill.send(protocol.TryWord{EntryID: 1, Word: "mat"})
	s.Equal(protocol.Score{Result: "The match ended in a tie."}, jill.await(protocol.TypeScore))
	s.Equal(protocol.Score{Result: "The match ended in a tie."}, bob.await(protocol.TypeScore))

	bob.send(protocol.Exit{})
	bob.expect(protocol.TypeExit)
	jill.send(protocol.Exit{})
	jill.expect(protocol.TypeExit)

	select {
	case err := <-result:
		s.NoError(err)
	case <-time.After(readTimeout):
		s.Fail("shutdown did not return once sessions ended")
	}
	s.Equal(0, s.manager.Count())
	history, err := s.storage.ListResults(context.Background(), storage.ResultQuery{})
	s.Require().NoError(err)
	s.Len(history, 1)
}

func (s *ServerSuite) TestShutdownClosesSessionsAtDeadline() {
	bob := s.join("bob")
	s.Equal(1, s.manager.Count())

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	s.Require().NoError(s.manager.Shutdown(ctx))

	s.True(bob.closed())
	s.Equal(0, s.manager.Count())

	_, _, err := websocket.DefaultDialer.Dial(s.url, nil)
	s.Error(err)
}

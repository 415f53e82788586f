package protocol

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mcoot/crossword-extravaganza/internal/model"
)

// Type is the tag of a wire message
type Type string

const (
	// Client to server
	TypeSetID         Type = "set-id"
	TypePickMatch     Type = "pick-match"
	TypeNewMatch      Type = "new-match"
	TypeTryWord       Type = "try-word"
	TypeChallengeWord Type = "challenge-word"
	TypeReset         Type = "reset"

	// Server to client
	TypePuzzlesList Type = "puzzles-list"
	TypeMatchesList Type = "matches-list"
	TypeWait        Type = "wait"
	TypeGameStart   Type = "game-start"
	TypeGameState   Type = "game-state"
	TypeScore       Type = "score"
	TypeError       Type = "error"

	// Both directions
	TypeExit Type = "exit"
)

// Decoding errors
var (
	ErrMalformed   = errors.New("malformed message")
	ErrUnknownType = errors.New("unknown message type")
)

// Message is one of the concrete payload types below. The set is closed:
// only types in this package implement it.
type Message interface {
	Type() Type
	isMessage()
}

// SetID claims a player id
type SetID struct {
	PlayerID model.PlayerID `json:"player_id"`
}

// PuzzlesList carries answer-free puzzles
type PuzzlesList struct {
	Puzzles []model.Puzzle `json:"puzzles"`
}

// MatchesList maps each open match to its puzzle name
type MatchesList struct {
	Matches map[model.MatchID]string `json:"matches"`
}

// NewMatch asks to create a match
type NewMatch struct {
	MatchID     model.MatchID `json:"match_id"`
	PuzzleName  string        `json:"puzzle_name"`
	Description string        `json:"description"`
}

// PickMatch asks to join an open match
type PickMatch struct {
	MatchID model.MatchID `json:"match_id"`
}

// Wait answers NewMatch
type Wait struct {
	OK bool `json:"ok"`
}

// GameStart announces that both players are present
type GameStart struct {
	PuzzleName string `json:"puzzle_name"`
}

// GameState pushes the current board
type GameState struct {
	State model.MatchState `json:"state"`
}

// TryWord proposes a word for an entry
type TryWord struct {
	EntryID int    `json:"entry_id"`
	Word    string `json:"word"`
}

// ChallengeWord contests the opponent's guess
type ChallengeWord struct {
	EntryID int    `json:"entry_id"`
	Word    string `json:"word"`
}

// Score announces the final result
type Score struct {
	Result string `json:"result"`
}

// Error reports a rejected request
type Error struct {
	Message string `json:"message"`
}

// Exit leaves the current match or closes the connection
type Exit struct{}

// Reset returns from the score screen to the lobby
type Reset struct{}

func (SetID) Type() Type         { return TypeSetID }
func (PuzzlesList) Type() Type   { return TypePuzzlesList }
func (MatchesList) Type() Type   { return TypeMatchesList }
func (NewMatch) Type() Type      { return TypeNewMatch }
func (PickMatch) Type() Type     { return TypePickMatch }
func (Wait) Type() Type          { return TypeWait }
func (GameStart) Type() Type     { return TypeGameStart }
func (GameState) Type() Type     { return TypeGameState }
func (TryWord) Type() Type       { return TypeTryWord }
func (ChallengeWord) Type() Type { return TypeChallengeWord }
func (Score) Type() Type         { return TypeScore }
func (Error) Type() Type         { return TypeError }
func (Exit) Type() Type          { return TypeExit }
func (Reset) Type() Type         { return TypeReset }

func (SetID) isMessage()         {}
func (PuzzlesList) isMessage()   {}
func (MatchesList) isMessage()   {}
func (NewMatch) isMessage()      {}
func (PickMatch) isMessage()     {}
func (Wait) isMessage()          {}
func (GameStart) isMessage()     {}
func (GameState) isMessage()     {}
func (TryWord) isMessage()       {}
func (ChallengeWord) isMessage() {}
func (Score) isMessage()         {}
func (Error) isMessage()         {}
func (Exit) isMessage()          {}
func (Reset) isMessage()         {}

// envelope is the JSON frame: {"type": "...", "payload": {...}}
type envelope struct {
	Type    Type            `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Encode frames a message as JSON
func Encode(m Message) ([]byte, error) {
	payload, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encoding %s payload: %w", m.Type(), err)
	}
	return json.Marshal(envelope{Type: m.Type(), Payload: payload})
}

// decoders maps each tag to the parser for its payload
var decoders = map[Type]func(json.RawMessage) (Message, error){
	TypeSetID:         decodePayload[SetID],
	TypePuzzlesList:   decodePayload[PuzzlesList],
	TypeMatchesList:   decodePayload[MatchesList],
	TypeNewMatch:      decodePayload[NewMatch],
	TypePickMatch:     decodePayload[PickMatch],
	TypeWait:          decodePayload[Wait],
	TypeGameStart:     decodePayload[GameStart],
	TypeGameState:     decodePayload[GameState],
	TypeTryWord:       decodePayload[TryWord],
	TypeChallengeWord: decodePayload[ChallengeWord],
	TypeScore:         decodePayload[Score],
	TypeError:         decodePayload[Error],
	TypeExit:          func(json.RawMessage) (Message, error) { return Exit{}, nil },
	TypeReset:         func(json.RawMessage) (Message, error) { return Reset{}, nil },
}

// Decode parses a JSON frame into its concrete message type
func Decode(data []byte) (Message, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	decode, ok := decoders[env.Type]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, env.Type)
	}
	return decode(env.Payload)
}

// decodePayload strictly decodes a payload; unknown fields are malformed
func decodePayload[T Message](raw json.RawMessage) (Message, error) {
	var v T
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, fmt.Errorf("%w: missing payload", ErrMalformed)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return v, nil
}

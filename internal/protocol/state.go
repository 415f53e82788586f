package protocol

// State is a connection's position in the session flow
type State string

const (
	StateStart     State = "START"      // Waiting for a player id
	StateChoose    State = "CHOOSE"     // In the lobby
	StateWait      State = "WAIT"       // Created a match, waiting for an opponent
	StatePlay      State = "PLAY"       // Match in progress
	StateShowScore State = "SHOW_SCORE" // Match over, result shown
	StateClosed    State = "CLOSED"     // Exited; nothing further is accepted
)

// legal lists the client messages each state accepts. Exit is accepted everywhere.
var legal = map[State]map[Type]bool{
	StateStart:     {TypeSetID: true},
	StateChoose:    {TypePickMatch: true, TypeNewMatch: true},
	StateWait:      {},
	StatePlay:      {TypeTryWord: true, TypeChallengeWord: true},
	StateShowScore: {TypePickMatch: true, TypeNewMatch: true, TypeReset: true},
}

// Allows reports whether a message of type t may be received in state s
func (s State) Allows(t Type) bool {
	if s == StateClosed {
		return false
	}
	if t == TypeExit {
		_, known := legal[s]
		return known
	}
	return legal[s][t]
}

// Valid reports whether s is a known state
func (s State) Valid() bool {
	_, ok := legal[s]
	return ok || s == StateClosed
}

package match

import (
	"sync"

	"github.com/mcoot/crossword-extravaganza/internal/model"
)

// Points awarded or deducted when a challenge resolves
const (
	ChallengeReward  = 2
	ChallengePenalty = -1
)

// guess is the state held for one entry: word, owner and confirmation
// always change together, so the three live in one record.
type guess struct {
	word      string
	owner     model.PlayerID
	confirmed bool
}

// Match is one contest between two players on one puzzle.
// Every method is safe for concurrent use; operations on a single match are serialized.
type Match struct {
	mu sync.Mutex

	id          model.MatchID
	description string
	puzzle      *model.Puzzle

	playerOne model.PlayerID
	playerTwo model.PlayerID

	// Challenge bonuses and penalties, kept apart from per-guess points
	baseOne int
	baseTwo int

	guesses map[int]guess
	// over latches once a move completes the board; no later move is accepted
	over     bool
	finished bool
}

// New creates an open match owned by creator
func New(id model.MatchID, puzzle *model.Puzzle, creator model.PlayerID, description string) *Match {
	return &Match{
		id:          id,
		description: description,
		puzzle:      puzzle,
		playerOne:   creator,
		guesses:     make(map[int]guess),
	}
}

// ID returns the match id
func (m *Match) ID() model.MatchID {
	return m.id
}

// Puzzle returns the puzzle being played. Puzzles are immutable.
func (m *Match) Puzzle() *model.Puzzle {
	return m.puzzle
}

// Description returns the creator's description of the match
func (m *Match) Description() string {
	return m.description
}

// PlayerOne returns the creator's id
func (m *Match) PlayerOne() model.PlayerID {
	return m.playerOne
}

// PlayerTwo returns the second player's id, or "" while the match is open
func (m *Match) PlayerTwo() model.PlayerID {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.playerTwo
}

// Players returns both participant ids
func (m *Match) Players() (model.PlayerID, model.PlayerID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.playerOne, m.playerTwo
}

// IsStarted reports whether a second player has joined
func (m *Match) IsStarted() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.playerTwo != ""
}

// IsFinished reports whether the match has been closed out
func (m *Match) IsFinished() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.finished
}

// Summary returns a listing record for the match
func (m *Match) Summary() model.MatchSummary {
	m.mu.Lock()
	defer m.mu.Unlock()

	phase := model.MatchPhaseOpen
	switch {
	case m.finished:
		phase = model.MatchPhaseFinished
	case m.playerTwo != "":
		phase = model.MatchPhasePlaying
	}

	return model.MatchSummary{
		ID:          m.id,
		Puzzle:      m.puzzle.Name,
		Description: m.description,
		Creator:     m.playerOne,
		Phase:       phase,
	}
}

// TryJoin seats playerID as the second player. It succeeds at most once.
func (m *Match) TryJoin(playerID model.PlayerID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.playerTwo != "" || m.finished {
		return model.ErrMatchStarted
	}
	if !model.ValidPlayerID(playerID) || playerID == m.playerOne {
		return model.ErrInvalidPlayerID
	}
	m.playerTwo = playerID
	return nil
}

// TryWord places playerID's guess for an entry. A rejected guess changes nothing.
func (m *Match) TryWord(playerID model.PlayerID, entryID int, word string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.checkPlayable(playerID); err != nil {
		return err
	}
	entry, err := m.entryFor(entryID, word)
	if err != nil {
		return err
	}
	if err := m.validGuess(playerID, entryID, entry, word); err != nil {
		return err
	}

	m.guesses[entryID] = guess{word: word, owner: playerID}
	m.clearInconsistencies(entryID)
	m.checkOver()
	return nil
}

// ChallengeWord contests the opponent's unconfirmed guess with a different word.
// Exactly one outcome applies:
//   - the existing guess was right: it is confirmed and the challenger loses a point
//   - the challenger is right: the challenger gains two points and takes the entry, confirmed
//   - both are wrong: the challenger loses a point and the entry is emptied
func (m *Match) ChallengeWord(playerID model.PlayerID, entryID int, word string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.checkPlayable(playerID); err != nil {
		return err
	}
	entry, err := m.entryFor(entryID, word)
	if err != nil {
		return err
	}
	current, err := m.validChallenge(playerID, entryID, word)
	if err != nil {
		return err
	}

	switch {
	case current.word == entry.Word:
		current.confirmed = true
		m.guesses[entryID] = current
		m.updateScore(playerID, ChallengePenalty)
	case word == entry.Word:
		m.guesses[entryID] = guess{word: word, owner: playerID, confirmed: true}
		m.updateScore(playerID, ChallengeReward)
		m.clearInconsistencies(entryID)
	default:
		delete(m.guesses, entryID)
		m.updateScore(playerID, ChallengePenalty)
	}
	m.checkOver()
	return nil
}

// Score returns a player's baseline plus one point per correct guess they own
func (m *Match) Score(playerID model.PlayerID) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.score(playerID)
}

// State returns a snapshot of the board without any answers
func (m *Match) State() model.MatchState {
	m.mu.Lock()
	defer m.mu.Unlock()

	state := model.MatchState{
		MatchID:   m.id,
		Puzzle:    m.puzzle.Name,
		PlayerOne: m.playerOne,
		PlayerTwo: m.playerTwo,
		ScoreOne:  m.score(m.playerOne),
		Guesses:   make(map[int]string, len(m.guesses)),
		Owners:    make(map[int]model.PlayerID, len(m.guesses)),
		Confirmed: make(map[int]bool, len(m.guesses)),
	}
	if m.playerTwo != "" {
		state.ScoreTwo = m.score(m.playerTwo)
	}
	for id, g := range m.guesses {
		state.Guesses[id] = g.word
		state.Owners[id] = g.owner
		state.Confirmed[id] = g.confirmed
	}
	return state
}

// IsGameOver reports whether a move has left every entry holding its answer,
// or the correct guesses together covering every cell of the grid. Once true
// it stays true, so the player whose move ended the game always sees it.
func (m *Match) IsGameOver() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.over
}

// Finish closes the match out and returns its result. Only the first call
// reports ok; later calls return the same scores with ok false.
func (m *Match) Finish() (Result, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	first := !m.finished
	m.finished = true
	return m.result(), first
}

// Result returns the current standings without finishing the match
func (m *Match) Result() Result {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.result()
}

func (m *Match) result() Result {
	return DetermineResult(m.playerOne, m.score(m.playerOne), m.playerTwo, m.score(m.playerTwo))
}

// checkPlayable rejects moves on unstarted or finished matches and from outsiders
func (m *Match) checkPlayable(playerID model.PlayerID) error {
	if playerID == "" || (playerID != m.playerOne && playerID != m.playerTwo) {
		return model.ErrNotParticipant
	}
	if m.playerTwo == "" {
		return model.ErrMatchNotReady
	}
	if m.finished || m.over {
		return model.ErrMatchFinished
	}
	return nil
}

// entryFor looks up an entry and checks the word fits it
func (m *Match) entryFor(entryID int, word string) (model.Entry, error) {
	entry, ok := m.puzzle.Entry(entryID)
	if !ok {
		return model.Entry{}, model.ErrInvalidEntry
	}
	if !model.ValidWord(word) {
		return model.Entry{}, model.ErrInvalidGuess
	}
	// valid words are ASCII, so the byte length is the letter count
	if len(word) != entry.Length() {
		return model.Entry{}, model.ErrWrongLength
	}
	return entry, nil
}

// validGuess rejects a guess on an entry the opponent holds, and a guess that
// disagrees with a crossing guess which is confirmed or belongs to the opponent.
// Disagreeing with one's own unconfirmed guess is allowed; that guess is cleared.
func (m *Match) validGuess(playerID model.PlayerID, entryID int, entry model.Entry, word string) error {
	if g, ok := m.guesses[entryID]; ok && g.owner != playerID {
		return model.ErrEntryOwned
	}

	for otherID, other := range m.guesses {
		if otherID == entryID {
			continue
		}
		otherEntry := m.puzzle.Entries[otherID]
		if otherEntry.Direction == entry.Direction {
			continue
		}
		if model.Agree(entry, word, otherEntry, other.word) {
			continue
		}
		if other.confirmed || other.owner != playerID {
			return model.ErrInconsistentGuess
		}
	}
	return nil
}

// validChallenge returns the guess being challenged if the challenge is allowed
func (m *Match) validChallenge(playerID model.PlayerID, entryID int, word string) (guess, error) {
	current, ok := m.guesses[entryID]
	if !ok {
		return guess{}, model.ErrNoGuess
	}
	if current.confirmed {
		return guess{}, model.ErrGuessConfirmed
	}
	if current.word == word {
		return guess{}, model.ErrSameWord
	}
	if current.owner == playerID {
		return guess{}, model.ErrOwnGuess
	}
	return current, nil
}

// clearInconsistencies deletes every unconfirmed guess crossing entryID that
// now disagrees with it. It does not cascade further.
func (m *Match) clearInconsistencies(entryID int) {
	placed := m.guesses[entryID]
	entry := m.puzzle.Entries[entryID]

	for otherID, other := range m.guesses {
		if otherID == entryID || other.confirmed {
			continue
		}
		otherEntry := m.puzzle.Entries[otherID]
		if otherEntry.Direction == entry.Direction {
			continue
		}
		if !model.Agree(entry, placed.word, otherEntry, other.word) {
			delete(m.guesses, otherID)
		}
	}
}

func (m *Match) updateScore(playerID model.PlayerID, delta int) {
	if playerID == m.playerOne {
		m.baseOne += delta
	} else if playerID == m.playerTwo {
		m.baseTwo += delta
	}
}

func (m *Match) score(playerID model.PlayerID) int {
	var total int
	switch {
	case playerID == "":
		return 0
	case playerID == m.playerOne:
		total = m.baseOne
	case playerID == m.playerTwo:
		total = m.baseTwo
	default:
		return 0
	}

	for id, g := range m.guesses {
		if g.owner == playerID && g.word == m.puzzle.Entries[id].Word {
			total++
		}
	}
	return total
}

func (m *Match) checkOver() {
	if m.isGameOver() {
		m.over = true
	}
}

func (m *Match) isGameOver() bool {
	correct := 0
	covered := make(map[model.Cell]struct{})
	for id, g := range m.guesses {
		entry := m.puzzle.Entries[id]
		if !g.confirmed && g.word != entry.Word {
			continue
		}
		correct++
		for _, c := range entry.Cells() {
			covered[c] = struct{}{}
		}
	}
	if correct == len(m.puzzle.Entries) {
		return true
	}
	return coversAll(covered, m.puzzle.Cells())
}

// coversAll reports whether covered contains every cell of want
func coversAll(covered, want map[model.Cell]struct{}) bool {
	if len(covered) < len(want) {
		return false
	}
	for c := range want {
		if _, ok := covered[c]; !ok {
			return false
		}
	}
	return true
}

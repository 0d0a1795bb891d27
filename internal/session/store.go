package session

import (
	"errors"
	"sync"

	"github.com/mcdev12/partyround/internal/models"
)

// ErrNoCredits is returned when a reveal would spend a credit the user
// does not have.
var ErrNoCredits = errors.New("no reveal credits remaining")

// Snapshot is a read-only copy of the session state for presentation.
type Snapshot struct {
	User    models.User
	Room    models.Room
	Round   *models.Round
	Answers []models.Answer
}

// Answer returns the answer with the given id, if present in the snapshot.
func (s Snapshot) Answer(answerID int64) (models.Answer, bool) {
	for _, a := range s.Answers {
		if a.ID == answerID {
			return a, true
		}
	}
	return models.Answer{}, false
}

// Store owns the mutable session record: current user, room, round and the
// answer-list snapshot. All mutation happens through its field-scoped
// methods, each a single committed update followed by a change notification,
// so readers never observe a half-applied state.
type Store struct {
	mu      sync.RWMutex
	user    models.User
	room    models.Room
	round   *models.Round
	answers []models.Answer

	subMu sync.Mutex
	subs  []func()
}

// NewStore creates an empty session store.
func NewStore() *Store {
	return &Store{}
}

// Subscribe registers fn to be called after every committed mutation.
// Subscribers read the latest state via Snapshot.
func (s *Store) Subscribe(fn func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	s.subs = append(s.subs, fn)
}

func (s *Store) notify() {
	s.subMu.Lock()
	subs := make([]func(), len(s.subs))
	copy(subs, s.subs)
	s.subMu.Unlock()

	for _, fn := range subs {
		fn()
	}
}

// Snapshot returns a consistent copy of the current session state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		User: s.user,
		Room: s.room,
	}
	if s.round != nil {
		round := *s.round
		snap.Round = &round
	}
	snap.Answers = make([]models.Answer, len(s.answers))
	copy(snap.Answers, s.answers)
	return snap
}

// SetUser replaces the session user.
func (s *Store) SetUser(user models.User) {
	s.mu.Lock()
	s.user = user
	s.mu.Unlock()
	s.notify()
}

// MergeUser updates only the identity fields of the session user, leaving
// the credit balance untouched.
func (s *Store) MergeUser(id int64, externalID, name string) {
	s.mu.Lock()
	s.user.ID = id
	if externalID != "" {
		s.user.ExternalID = externalID
	}
	if name != "" {
		s.user.Name = name
	}
	s.mu.Unlock()
	s.notify()
}

// SetCredits replaces the reveal-credit balance, e.g. from a room join or
// room reload response. Negative values are clamped to zero.
func (s *Store) SetCredits(credits int) {
	if credits < 0 {
		credits = 0
	}
	s.mu.Lock()
	s.user.Credits = credits
	s.mu.Unlock()
	s.notify()
}

// Credits returns the current reveal-credit balance.
func (s *Store) Credits() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user.Credits
}

// SetRoom applies a full room reload. When the reload carries a different
// current round than the one held, the answer snapshot is cleared: answers
// always belong to the round the session references.
func (s *Store) SetRoom(room models.Room, round *models.Round) {
	s.mu.Lock()
	s.room = room
	if round == nil {
		s.round = nil
		s.answers = nil
	} else {
		if s.round == nil || s.round.ID != round.ID {
			s.answers = nil
		}
		r := *round
		s.round = &r
	}
	s.mu.Unlock()
	s.notify()
}

// SetRound replaces the current round reference and clears the answer
// snapshot. This is the only path, besides a room reload, that changes
// which round is current.
func (s *Store) SetRound(round models.Round) {
	s.mu.Lock()
	r := round
	s.round = &r
	s.answers = nil
	s.mu.Unlock()
	s.notify()
}

// Round returns the current round, if any.
func (s *Store) Round() (models.Round, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.round == nil {
		return models.Round{}, false
	}
	return *s.round, true
}

// SetRoundStatus updates the status of the current round. It is a no-op
// when no round is set.
func (s *Store) SetRoundStatus(status models.RoundStatus) {
	s.mu.Lock()
	if s.round == nil {
		s.mu.Unlock()
		return
	}
	s.round.Status = status
	s.mu.Unlock()
	s.notify()
}

// SetAnswers replaces the answer snapshot with the result of a list fetch
// for roundID. The update is refused when roundID is not the current round,
// so a late fetch for an old round can never leak into a new one. Reveals
// already recorded locally are preserved even if the fetched data has not
// caught up yet: the revealed transition is monotone.
func (s *Store) SetAnswers(roundID int64, answers []models.Answer) bool {
	s.mu.Lock()
	if s.round == nil || s.round.ID != roundID {
		s.mu.Unlock()
		return false
	}

	revealed := make(map[int64]string, len(s.answers))
	for _, a := range s.answers {
		if a.Revealed {
			revealed[a.ID] = a.AuthorDisplay
		}
	}

	next := make([]models.Answer, len(answers))
	for i, a := range answers {
		a.RoundID = roundID
		if author, ok := revealed[a.ID]; ok && !a.Revealed {
			a.Revealed = true
			a.AuthorDisplay = author
		}
		next[i] = a
	}
	s.answers = next
	s.mu.Unlock()
	s.notify()
	return true
}

// MarkRevealed records a reveal observed from outside this session, e.g.
// a push event for another player's reveal. It never touches the credit
// balance and is a no-op for unknown or already-revealed answers.
func (s *Store) MarkRevealed(answerID int64, authorDisplay string) {
	s.mu.Lock()
	for i := range s.answers {
		if s.answers[i].ID != answerID || s.answers[i].Revealed {
			continue
		}
		s.answers[i].Revealed = true
		s.answers[i].AuthorDisplay = authorDisplay
		s.mu.Unlock()
		s.notify()
		return
	}
	s.mu.Unlock()
}

// ApplyReveal records a successful reveal: it marks the answer revealed
// with its author and debits exactly one credit, as one committed update.
// An answer that is already revealed is left as is and costs nothing.
func (s *Store) ApplyReveal(answerID int64, authorDisplay string) error {
	s.mu.Lock()
	for i := range s.answers {
		if s.answers[i].ID != answerID {
			continue
		}
		if s.answers[i].Revealed {
			s.mu.Unlock()
			return nil
		}
		if s.user.Credits <= 0 {
			s.mu.Unlock()
			return ErrNoCredits
		}
		s.answers[i].Revealed = true
		s.answers[i].AuthorDisplay = authorDisplay
		s.user.Credits--
		s.mu.Unlock()
		s.notify()
		return nil
	}
	s.mu.Unlock()
	return errors.New("answer not in current snapshot")
}

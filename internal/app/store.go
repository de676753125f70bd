package app

import (
	"fmt"
	"sync"

	"training-quiz-service/internal/domain"
)

// Listener receives a private copy of the snapshot after every mutation.
type Listener func(domain.Snapshot)

// Update carries the top-level fields Set may replace. Nil fields are left alone.
type Update struct {
	User *domain.UserProfile
	Page *domain.Page
}

// Store owns one player's session state. Reads return deep copies and every
// mutation notifies listeners synchronously, in registration order, before returning.
type Store struct {
	// notifyMu serializes mutation plus notification so listeners see snapshots in order.
	notifyMu sync.Mutex

	mu        sync.RWMutex
	state     domain.Snapshot
	listeners []*listenerEntry
	closed    bool
}

type listenerEntry struct {
	fn Listener
}

// NewStore returns a store positioned on the login page with an empty game.
func NewStore() *Store {
	return &Store{
		state: domain.Snapshot{CurrentPage: domain.PageLogin},
	}
}

// Get returns an independent copy of the full state.
func (s *Store) Get() domain.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// Set shallow-merges the non-scored top-level fields.
func (s *Store) Set(u Update) {
	s.mutate(func(st *domain.Snapshot) error {
		if u.User != nil {
			st.User = *u.User
		}
		if u.Page != nil {
			st.CurrentPage = *u.Page
		}
		return nil
	})
}

// Subscribe registers fn and returns a function that removes it.
func (s *Store) Subscribe(fn Listener) func() {
	entry := &listenerEntry{fn: fn}
	s.mu.Lock()
	s.listeners = append(s.listeners, entry)
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for i, l := range s.listeners {
				if l == entry {
					s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
					return
				}
			}
		})
	}
}

// InitializeGame rebuilds total fresh statuses and zeroes every counter.
func (s *Store) InitializeGame(total int) {
	if total < 0 {
		total = 0
	}
	s.mutate(func(st *domain.Snapshot) error {
		st.Game = domain.GameState{QuestionStatus: make([]domain.QuestionStatus, total)}
		return nil
	})
}

// AnswerQuestion records a verdict and reports whether this was the first
// answer to index. Counters and score move only the first time index is
// answered; the status always reflects the latest submission.
func (s *Store) AnswerQuestion(index int, correct bool, answer domain.Answer, points int) (bool, error) {
	first := false
	err := s.mutate(func(st *domain.Snapshot) error {
		if index < 0 || index >= len(st.Game.QuestionStatus) {
			return fmt.Errorf("%w: %d", domain.ErrInvalidIndex, index)
		}
		status := &st.Game.QuestionStatus[index]
		first = !status.Answered
		if first {
			if correct {
				st.Game.CorrectCount++
			} else {
				st.Game.IncorrectCount++
			}
			st.Game.TotalScore += points
		}
		recorded := answer.Clone()
		status.Answered = true
		status.Correct = correct
		status.UserAnswer = &recorded
		return nil
	})
	return first, err
}

// SetCurrentQuestion moves the resume pointer.
func (s *Store) SetCurrentQuestion(index int) error {
	return s.mutate(func(st *domain.Snapshot) error {
		if index < 0 || index >= len(st.Game.QuestionStatus) {
			return fmt.Errorf("%w: %d", domain.ErrInvalidIndex, index)
		}
		st.Game.CurrentQuestionIndex = index
		return nil
	})
}

// Restore replaces the state with a persisted snapshot. A game part whose
// status list is empty or not total long is replaced by a fresh game; the
// return value reports whether the saved game was kept.
func (s *Store) Restore(snap domain.Snapshot, total int) bool {
	kept := len(snap.Game.QuestionStatus) == total && total > 0
	s.mutate(func(st *domain.Snapshot) error {
		*st = snap.Clone()
		if st.CurrentPage == "" {
			st.CurrentPage = domain.PageLogin
		}
		if !kept {
			st.Game = domain.GameState{QuestionStatus: make([]domain.QuestionStatus, total)}
		} else if st.Game.CurrentQuestionIndex < 0 || st.Game.CurrentQuestionIndex >= total {
			st.Game.CurrentQuestionIndex = 0
		}
		return nil
	})
	return kept
}

// mutate applies fn under the state lock and, if it succeeds, notifies
// listeners outside that lock so they may call Get.
func (s *Store) mutate(fn func(*domain.Snapshot) error) error {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return domain.ErrSessionClosed
	}
	if err := fn(&s.state); err != nil {
		s.mu.Unlock()
		return err
	}
	listeners := make([]*listenerEntry, len(s.listeners))
	copy(listeners, s.listeners)
	snap := s.state.Clone()
	s.mu.Unlock()

	for _, l := range listeners {
		l.fn(snap.Clone())
	}
	return nil
}

// Close rejects every later mutation with ErrSessionClosed. It waits for an
// in-flight notification to finish, so no listener runs after Close returns.
func (s *Store) Close() {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()
	s.mu.Lock()
	s.closed = true
	s.listeners = nil
	s.mu.Unlock()
}

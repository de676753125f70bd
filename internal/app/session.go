package app

import (
	"sync"

	"training-quiz-service/internal/domain"
)

// Session binds one player's Store to its persistence key.
type Session struct {
	playerID string
	key      string
	store    *Store

	mu      sync.Mutex
	closed  bool
	detach  []func()
	watches map[chan domain.Snapshot]func()
}

// NewSession is exported for infrastructure layers that need to seed sessions.
func NewSession(playerID, key string, store *Store) *Session {
	return &Session{
		playerID: playerID,
		key:      key,
		store:    store,
		watches:  make(map[chan domain.Snapshot]func()),
	}
}

func (s *Session) PlayerID() string { return s.playerID }
func (s *Session) Key() string      { return s.key }
func (s *Session) Store() *Store    { return s.store }

// attach subscribes fn for the lifetime of the session.
func (s *Session) attach(fn Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.detach = append(s.detach, s.store.Subscribe(fn))
}

// watch returns a channel of state updates. Slow readers lose stale updates,
// never the latest one. On a closed session the channel is closed at once.
func (s *Session) watch() (<-chan domain.Snapshot, func()) {
	ch := make(chan domain.Snapshot, 8)
	var mu sync.Mutex
	closed := false

	unsub := s.store.Subscribe(func(snap domain.Snapshot) {
		mu.Lock()
		defer mu.Unlock()
		if closed {
			return
		}
		select {
		case ch <- snap:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- snap
		}
	})

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			unsub()
			mu.Lock()
			closed = true
			close(ch)
			mu.Unlock()
			s.mu.Lock()
			delete(s.watches, ch)
			s.mu.Unlock()
		})
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		cancel()
		return ch, cancel
	}
	s.watches[ch] = cancel
	s.mu.Unlock()
	return ch, cancel
}

// Close stops the store from accepting mutations, then detaches every
// listener and closes open watch channels. Once it returns no listener of
// this session runs again.
func (s *Session) Close() {
	s.store.Close()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	detach := s.detach
	s.detach = nil
	cancels := make([]func(), 0, len(s.watches))
	for _, cancel := range s.watches {
		cancels = append(cancels, cancel)
	}
	s.mu.Unlock()

	for _, fn := range detach {
		fn()
	}
	for _, cancel := range cancels {
		cancel()
	}
}

package redis

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"training-quiz-service/internal/app"
)

// SessionStore is a Redis-aware implementation of app.SessionRepository.
// Notes:
//   - Live sessions stay in a local map so store listeners keep running in-process.
//   - Redis marks which players are active on this instance; the marker expires
//     unless refreshed by Touch.
type SessionStore struct {
	client   *redis.Client
	ttl      time.Duration
	mu       sync.RWMutex
	sessions map[string]*app.Session
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{
		client:   client,
		ttl:      ttl,
		sessions: make(map[string]*app.Session),
	}
}

func (s *SessionStore) Add(session *app.Session) *app.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.sessions[session.PlayerID()]; ok {
		return existing
	}
	s.sessions[session.PlayerID()] = session
	// best-effort liveness marker
	_ = s.client.Set(context.Background(), s.key(session.PlayerID()), session.Key(), s.ttl).Err()
	return session
}

func (s *SessionStore) Get(playerID string) (*app.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[playerID]
	return session, ok
}

func (s *SessionStore) Delete(playerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[playerID]; !ok {
		return
	}
	delete(s.sessions, playerID)
	_ = s.client.Del(context.Background(), s.key(playerID)).Err()
}

// Touch extends the liveness marker of an active player.
func (s *SessionStore) Touch(ctx context.Context, playerID string) error {
	if s.ttl <= 0 {
		return nil
	}
	return s.client.Expire(ctx, s.key(playerID), s.ttl).Err()
}

func (s *SessionStore) key(playerID string) string {
	return "training:session:" + playerID
}

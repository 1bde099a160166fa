package memory

import (
	"sync"

	"kidvoice-service/internal/app"
)

// SessionStore is an in-memory implementation of app.SessionRepository,
// keyed by child name.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*app.Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*app.Session),
	}
}

func (s *SessionStore) GetOrCreate(child string) *app.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if session, ok := s.sessions[child]; ok {
		return session
	}
	session := app.NewSession(child)
	s.sessions[child] = session
	return session
}

func (s *SessionStore) Get(child string) (*app.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[child]
	return session, ok
}

func (s *SessionStore) DeleteIfIdle(child string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[child]
	if !ok {
		return
	}
	if session.IsIdle() {
		delete(s.sessions, child)
	}
}

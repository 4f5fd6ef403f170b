package authsession

import (
	"sync"

	"github.com/jrsteele09/go-auth-proxy/internal/errors"
)

// Store is a thread-safe in-memory store of in-flight PKCE sessions.
// Entries persist until consumed; a replayed callback with the same
// state must fail, so Consume removes the entry atomically.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

// NewStore creates an empty session store.
func NewStore() *Store {
	return &Store{
		sessions: make(map[string]Session),
	}
}

// Begin generates a new PKCE session for the given state and stores it.
func (s *Store) Begin(state string) (Session, error) {
	if state == "" {
		return Session{}, errors.Wrapf(errors.ErrSessionNotFound, "empty state")
	}

	session, err := newSession(state)
	if err != nil {
		return Session{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[state] = session

	return session, nil
}

// Contains reports whether a session exists for state without consuming it.
func (s *Store) Contains(state string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.sessions[state]
	return ok
}

// Consume removes the session for state and returns its code verifier.
// It fails with ErrSessionNotFound if the state is unknown or was
// already consumed by an earlier callback.
func (s *Store) Consume(state string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[state]
	if !ok {
		return "", errors.ErrSessionNotFound
	}
	delete(s.sessions, state)

	return session.CodeVerifier, nil
}

// Len returns the number of in-flight sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

package sessions

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mkarpov/rapport/internal/logger"
	"github.com/mkarpov/rapport/internal/services"
)

var ErrNotFound = errors.New("session not found or expired")

// Session holds one upload batch's parse result so the UI collaborator can
// iterate on identity mappings without re-uploading. Nothing outlives the
// store; there is no persistence behind it.
type Session struct {
	ID        string
	CreatedAt time.Time
	expiresAt time.Time
	Result    services.ParseResult
}

// Store is an in-memory, TTL-bounded session registry. Expired sessions
// are swept by a scheduled Cleanup call; Get also refuses sessions past
// their deadline so the sweep cadence never extends a session's life.
type Store struct {
	mu       sync.RWMutex
	ttl      time.Duration
	sessions map[string]*Session

	// now is swappable for tests
	now func() time.Time
}

func NewStore(ttl time.Duration) *Store {
	return &Store{
		ttl:      ttl,
		sessions: make(map[string]*Session),
		now:      time.Now,
	}
}

// Create registers a parse result under a fresh session id.
func (s *Store) Create(result services.ParseResult) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	session := &Session{
		ID:        uuid.NewString(),
		CreatedAt: now,
		expiresAt: now.Add(s.ttl),
		Result:    result,
	}
	s.sessions[session.ID] = session
	return session
}

// Get returns the session for id, or ErrNotFound if it never existed or
// has expired.
func (s *Store) Get(id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[id]
	if !ok || s.now().After(session.expiresAt) {
		return nil, ErrNotFound
	}
	return session, nil
}

// Delete removes a session regardless of expiry.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// Len reports the number of live sessions, expired or not yet swept
// included.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Cleanup drops every expired session and returns how many were removed.
// Wired to a cron schedule at startup.
func (s *Store) Cleanup() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for id, session := range s.sessions {
		if now.After(session.expiresAt) {
			delete(s.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		logger.WithField("removed", removed).Info("swept expired parse sessions")
	}
	return removed
}

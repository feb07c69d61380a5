package checkout

import (
	"context"
	"sync"
	"time"
)

// Store persists checkout sessions for their 30-minute lifetime.
//
// Get enforces ownership through the user ID embedded in the session ID:
// a session that belongs to someone else reads as not found, never as
// forbidden, so session IDs can't be probed.
type Store interface {
	Create(ctx context.Context, session *CheckoutSession) error
	Get(ctx context.Context, sessionID string, userID uint) (*CheckoutSession, error)
	Update(ctx context.Context, session *CheckoutSession) error
	Delete(ctx context.Context, sessionID string) error
}

// ownerMatches is the shared ownership gate for both store backends.
func ownerMatches(sessionID string, userID uint) bool {
	owner, ok := SessionOwner(sessionID)
	return ok && owner == userID
}

// MemoryStore keeps sessions in a mutex-guarded map. A janitor sweeps
// expired entries so abandoned checkouts don't accumulate.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*CheckoutSession
	stop     chan struct{}
	stopOnce sync.Once
}

func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{
		sessions: make(map[string]*CheckoutSession),
		stop:     make(chan struct{}),
	}
	go s.janitor()
	return s
}

func (s *MemoryStore) janitor() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			now := time.Now()
			s.mu.Lock()
			for id, session := range s.sessions {
				if now.After(session.ExpiresAt) {
					delete(s.sessions, id)
				}
			}
			s.mu.Unlock()
		case <-s.stop:
			return
		}
	}
}

// Close stops the janitor.
func (s *MemoryStore) Close() {
	s.stopOnce.Do(func() { close(s.stop) })
}

func (s *MemoryStore) Create(ctx context.Context, session *CheckoutSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *session
	s.sessions[session.ID] = &copied
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, sessionID string, userID uint) (*CheckoutSession, error) {
	if !ownerMatches(sessionID, userID) {
		return nil, ErrSessionNotFound
	}

	s.mu.RLock()
	session, ok := s.sessions[sessionID]
	s.mu.RUnlock()

	if !ok {
		return nil, ErrSessionNotFound
	}
	if session.Expired() {
		s.mu.Lock()
		delete(s.sessions, sessionID)
		s.mu.Unlock()
		return nil, ErrSessionExpired
	}

	copied := *session
	return &copied, nil
}

func (s *MemoryStore) Update(ctx context.Context, session *CheckoutSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[session.ID]; !ok {
		return ErrSessionNotFound
	}

	copied := *session
	s.sessions[session.ID] = &copied
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, sessionID)
	return nil
}

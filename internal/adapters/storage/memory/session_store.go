package memory

import (
	"context"
	"sync"

	"github.com/lacura/lacura-api/internal/domain"
)

// SessionStore keeps conversation state in process memory. The default
// backend for local development and tests.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[domain.ConversationID]*domain.ChatSession
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[domain.ConversationID]*domain.ChatSession),
	}
}

func (s *SessionStore) Get(ctx context.Context, id domain.ConversationID) (*domain.ChatSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, domain.ErrNotFound
	}

	cp := *sess
	return &cp, nil
}

func (s *SessionStore) Put(ctx context.Context, session *domain.ChatSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *session
	s.sessions[session.ConversationID] = &cp
	return nil
}

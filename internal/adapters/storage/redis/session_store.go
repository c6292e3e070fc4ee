package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/lacura/lacura-api/internal/domain"
)

const (
	sessionPrefix = "session:"
	sessionTTL    = 24 * time.Hour
)

// SessionStore persists conversation state in Redis as JSON values with a
// sliding 24-hour TTL.
type SessionStore struct {
	rdb *redis.Client
}

func NewSessionStore(addr, password string) *SessionStore {
	return &SessionStore{
		rdb: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
		}),
	}
}

func (s *SessionStore) Get(ctx context.Context, id domain.ConversationID) (*domain.ChatSession, error) {
	data, err := s.rdb.Get(ctx, sessionPrefix+string(id)).Bytes()
	if err == redis.Nil {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get session: %w", err)
	}

	var session domain.ChatSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	return &session, nil
}

func (s *SessionStore) Put(ctx context.Context, session *domain.ChatSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	key := sessionPrefix + string(session.ConversationID)
	if err := s.rdb.Set(ctx, key, data, sessionTTL).Err(); err != nil {
		return fmt.Errorf("redis set session: %w", err)
	}
	return nil
}

// Ping verifies connectivity at startup.
func (s *SessionStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"sola/internal/adapters/redis"
	"sola/internal/domain/session"
	"sola/pkg/errors"
)

const sessionKeyPrefix = "session:"

// SessionRepository stores chat sessions in Redis with a TTL
type SessionRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(client *redis.Client, ttl time.Duration) *SessionRepository {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &SessionRepository{client: client, ttl: ttl}
}

func sessionKey(id uuid.UUID) string {
	return fmt.Sprintf("%s%s", sessionKeyPrefix, id)
}

// Save persists a session, refreshing its TTL
func (r *SessionRepository) Save(ctx context.Context, s *session.Session) error {
	return r.client.Set(ctx, sessionKey(s.ID), s, r.ttl)
}

// Get retrieves a session by ID
func (r *SessionRepository) Get(ctx context.Context, id uuid.UUID) (*session.Session, error) {
	var s session.Session
	err := r.client.Get(ctx, sessionKey(id), &s)
	if redis.IsNotFound(err) {
		return nil, errors.Wrapf(errors.ErrNotFound, "session %s", id)
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Delete removes a session
func (r *SessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.client.Delete(ctx, sessionKey(id))
}

// Touch refreshes a session's TTL without rewriting it
func (r *SessionRepository) Touch(ctx context.Context, id uuid.UUID) error {
	return r.client.Expire(ctx, sessionKey(id), r.ttl)
}

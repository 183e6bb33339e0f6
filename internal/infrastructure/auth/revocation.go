package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RevocationList answers whether a verified token was revoked by the
// identity service, either individually or by a user-wide logout.
type RevocationList interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
	// IsUserInvalidated reports whether the user's tokens issued before
	// the invalidation time must be rejected
	IsUserInvalidated(ctx context.Context, userID string, issuedAt time.Time) (bool, error)
}

const (
	revokedJTIPrefix  = "auth:revoked:jti:"
	revokedUserPrefix = "auth:revoked:user:"
)

// RedisRevocationList reads the revocation keys the identity service writes
type RedisRevocationList struct {
	client *redis.Client
}

// NewRedisRevocationList wraps client
func NewRedisRevocationList(client *redis.Client) *RedisRevocationList {
	return &RedisRevocationList{client: client}
}

func (r *RedisRevocationList) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := r.client.Exists(ctx, revokedJTIPrefix+jti).Result()
	if err != nil {
		return false, fmt.Errorf("check revoked token: %w", err)
	}
	return n > 0, nil
}

func (r *RedisRevocationList) IsUserInvalidated(ctx context.Context, userID string, issuedAt time.Time) (bool, error) {
	ts, err := r.client.Get(ctx, revokedUserPrefix+userID).Int64()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check user invalidation: %w", err)
	}
	return issuedAt.Unix() < ts, nil
}

// Revoke marks jti revoked for ttl
func (r *RedisRevocationList) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	return r.client.Set(ctx, revokedJTIPrefix+jti, 1, ttl).Err()
}

// InvalidateUser rejects every token of userID issued before now
func (r *RedisRevocationList) InvalidateUser(ctx context.Context, userID string, ttl time.Duration) error {
	return r.client.Set(ctx, revokedUserPrefix+userID, time.Now().Unix(), ttl).Err()
}

// MemoryRevocationList is the single-process implementation
type MemoryRevocationList struct {
	mu    sync.RWMutex
	jtis  map[string]time.Time
	users map[string]time.Time
	now   func() time.Time
}

// NewMemoryRevocationList creates an empty list
func NewMemoryRevocationList() *MemoryRevocationList {
	return &MemoryRevocationList{
		jtis:  make(map[string]time.Time),
		users: make(map[string]time.Time),
		now:   time.Now,
	}
}

func (m *MemoryRevocationList) IsRevoked(_ context.Context, jti string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	exp, ok := m.jtis[jti]
	return ok && m.now().Before(exp), nil
}

func (m *MemoryRevocationList) IsUserInvalidated(_ context.Context, userID string, issuedAt time.Time) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	at, ok := m.users[userID]
	return ok && issuedAt.Before(at), nil
}

// Revoke marks jti revoked for ttl
func (m *MemoryRevocationList) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jtis[jti] = m.now().Add(ttl)
	return nil
}

// InvalidateUser rejects every token of userID issued before now
func (m *MemoryRevocationList) InvalidateUser(_ context.Context, userID string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[userID] = m.now()
	return nil
}

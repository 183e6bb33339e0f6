package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers delivery keys that were already applied
type IdempotencyStore interface {
	// MarkProcessed marks a key as processed with a TTL
	// Returns true if the key was newly marked, false if it was already processed
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// IsProcessed checks if a key has already been processed
	IsProcessed(ctx context.Context, key string) (bool, error)

	// Close closes the store and releases resources
	Close() error
}

// Locker serializes work on a single key across instances
type Locker interface {
	// Acquire blocks until the lock for key is held or ctx is done.
	// The returned release func must be called exactly once.
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(), err error)
}

// ErrLockNotAcquired is returned when a lock could not be taken before the deadline
var ErrLockNotAcquired = NewDomainError(CodeConflict, "Another request for this account is in progress, retry shortly")

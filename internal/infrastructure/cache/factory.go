package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/chidoskyi/ecommerce-app-sub001/internal/domain/shared"
	"github.com/chidoskyi/ecommerce-app-sub001/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Backends bundles the coordination primitives the services need
type Backends struct {
	Idempotency shared.IdempotencyStore
	Locker      shared.Locker
	client      *redis.Client
}

// Distributed reports whether the backends are shared across instances
func (b *Backends) Distributed() bool {
	return b.client != nil
}

// Client returns the shared Redis client, or nil for in-memory backends
func (b *Backends) Client() *redis.Client {
	return b.client
}

// Close releases the idempotency store and the Redis client, if any
func (b *Backends) Close() error {
	if err := b.Idempotency.Close(); err != nil {
		return err
	}
	if b.client != nil {
		return b.client.Close()
	}
	return nil
}

// BackendFactory creates idempotency stores and lockers based on configuration
type BackendFactory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// BackendFactoryOption is a functional option for configuring the factory
type BackendFactoryOption func(*BackendFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) BackendFactoryOption {
	return func(f *BackendFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to in-memory backends when Redis is unavailable.
// Default is true.
func WithInMemoryFallback(allow bool) BackendFactoryOption {
	return func(f *BackendFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewBackendFactory creates a new factory
func NewBackendFactory(cfg config.RedisConfig, opts ...BackendFactoryOption) *BackendFactory {
	f := &BackendFactory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// NewRedisClient connects to Redis and verifies the connection with a ping
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// CreateInMemory creates process-local backends
func (f *BackendFactory) CreateInMemory() *Backends {
	return &Backends{
		Idempotency: NewInMemoryIdempotencyStore(),
		Locker:      NewInMemoryLocker(),
	}
}

// Create returns Redis backends when Redis is enabled and reachable.
// Otherwise it falls back to in-memory backends if the factory allows it.
func (f *BackendFactory) Create(ctx context.Context) (*Backends, error) {
	if !f.redisConfig.Enabled {
		f.logger.Info("Redis disabled, using in-memory idempotency store and locker")
		return f.CreateInMemory(), nil
	}

	client, err := NewRedisClient(ctx, f.redisConfig)
	if err == nil {
		f.logger.Info("Using Redis idempotency store and locker", zap.String("addr", f.redisConfig.Addr()))
		return &Backends{
			Idempotency: NewRedisIdempotencyStore(client, ""),
			Locker:      NewRedisLocker(client, WithLockerLogger(f.logger)),
			client:      client,
		}, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("redis required but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory idempotency store and locker. "+
		"Concurrent checkouts across instances are then only guarded by the database.",
		zap.Error(err),
	)
	return f.CreateInMemory(), nil
}

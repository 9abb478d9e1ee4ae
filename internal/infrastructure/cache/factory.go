package cache

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/erp/inventory/internal/domain/shared"
	"github.com/erp/inventory/internal/infrastructure/config"
)

// IdempotencyStoreFactory builds the idempotency store selected by
// configuration, falling back to the in-memory store when Redis is
// unreachable and the fallback is allowed.
type IdempotencyStoreFactory struct {
	redisConfig   config.RedisConfig
	logger        *zap.Logger
	allowFallback bool
}

// FactoryOption customizes the factory
type FactoryOption func(*IdempotencyStoreFactory)

// WithLogger sets the factory's logger
func WithLogger(logger *zap.Logger) FactoryOption {
	return func(f *IdempotencyStoreFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether a Redis failure degrades to the
// in-memory store instead of erroring
func WithInMemoryFallback(allow bool) FactoryOption {
	return func(f *IdempotencyStoreFactory) {
		f.allowFallback = allow
	}
}

// NewIdempotencyStoreFactory creates a factory. The fallback is allowed
// unless disabled through an option.
func NewIdempotencyStoreFactory(redisConfig config.RedisConfig, opts ...FactoryOption) *IdempotencyStoreFactory {
	f := &IdempotencyStoreFactory{
		redisConfig:   redisConfig,
		logger:        zap.NewNop(),
		allowFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateStore builds the store for the given kind, "memory" or "redis".
// An unknown kind is treated as "redis" since that is the durable choice.
func (f *IdempotencyStoreFactory) CreateStore(kind string) (shared.IdempotencyStore, error) {
	if kind == "memory" {
		f.logger.Info("using in-memory idempotency store")
		return NewInMemoryIdempotencyStore(), nil
	}

	store, err := NewRedisIdempotencyStore(f.redisConfig)
	if err == nil {
		f.logger.Info("using redis idempotency store",
			zap.String("host", f.redisConfig.Host),
			zap.Int("port", f.redisConfig.Port),
		)
		return store, nil
	}

	if !f.allowFallback {
		return nil, fmt.Errorf("create redis idempotency store: %w", err)
	}
	f.logger.Warn("redis unavailable, falling back to in-memory idempotency store",
		zap.Error(err),
	)
	return NewInMemoryIdempotencyStore(), nil
}

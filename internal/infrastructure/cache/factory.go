package cache

import (
	"github.com/fincore/backend/internal/domain/shared"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// NewIdempotencyStore returns a Redis-backed store when a client is
// available and an in-memory store otherwise.
func NewIdempotencyStore(client *redis.Client, logger *zap.Logger) shared.IdempotencyStore {
	if client != nil {
		logger.Info("Using Redis idempotency store")
		return NewRedisIdempotencyStore(client, "")
	}
	logger.Warn("Redis unavailable, falling back to in-memory idempotency store; " +
		"command keys and delivery claims are not shared between instances")
	return NewInMemoryIdempotencyStore()
}

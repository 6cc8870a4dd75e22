package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/TaimoorByteNinja/CRM-sub004/internal/domain/shared"
	"github.com/bsm/redislock"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultTTL     = 10 * time.Second
	retryBackoff   = 50 * time.Millisecond
	releaseTimeout = 2 * time.Second
)

// RedisLocker serializes callers per party across processes with a Redis lock
type RedisLocker struct {
	client *redislock.Client
	ttl    time.Duration
	wait   time.Duration
	logger *zap.Logger
}

// NewRedisLocker creates a locker over any go-redis client
func NewRedisLocker(client redislock.RedisClient, ttl, wait time.Duration, logger *zap.Logger) *RedisLocker {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisLocker{
		client: redislock.New(client),
		ttl:    ttl,
		wait:   wait,
		logger: logger,
	}
}

// Lock implements ledger.PartyLocker
func (l *RedisLocker) Lock(ctx context.Context, tenantID shared.TenantID, partyID uuid.UUID) (func(), error) {
	key := partyKey(tenantID, partyID)

	lock, err := l.client.Obtain(ctx, key, l.ttl, &redislock.Options{RetryStrategy: l.retryStrategy()})
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, conflict(tenantID, partyID, l.wait)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to obtain party lock %s: %w", key, err)
	}

	return func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), releaseTimeout)
		defer cancel()
		if err := lock.Release(releaseCtx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			l.logger.Warn("failed to release party lock",
				zap.String("key", key),
				zap.Error(err),
			)
		}
	}, nil
}

// retryStrategy retries with a linear backoff for at most the configured wait
func (l *RedisLocker) retryStrategy() redislock.RetryStrategy {
	return retryStrategyFor(l.wait)
}

func retryStrategyFor(wait time.Duration) redislock.RetryStrategy {
	if wait <= 0 {
		return redislock.NoRetry()
	}
	attempts := int(wait / retryBackoff)
	if attempts < 1 {
		attempts = 1
	}
	return redislock.LimitRetry(redislock.LinearBackoff(retryBackoff), attempts)
}

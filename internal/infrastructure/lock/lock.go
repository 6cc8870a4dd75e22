// Package lock serializes balance updates per party.
package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/TaimoorByteNinja/CRM-sub004/internal/application/ledger"
	"github.com/TaimoorByteNinja/CRM-sub004/internal/domain/shared"
	"github.com/TaimoorByteNinja/CRM-sub004/internal/infrastructure/config"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const keyPrefix = "ledger:party:"

// partyKey identifies one party's lock across tenants
func partyKey(tenantID shared.TenantID, partyID uuid.UUID) string {
	return keyPrefix + tenantID.String() + ":" + partyID.String()
}

// NopLocker never blocks. Atomic deltas alone keep balances consistent.
type NopLocker struct{}

// Lock implements ledger.PartyLocker
func (NopLocker) Lock(context.Context, shared.TenantID, uuid.UUID) (func(), error) {
	return func() {}, nil
}

// NewFromConfig builds the locker selected by ledger.lock_mode. The redis
// client is only required in redis mode.
func NewFromConfig(cfg config.LedgerConfig, client *redis.Client, logger *zap.Logger) (ledger.PartyLocker, error) {
	switch cfg.LockMode {
	case config.LockModeNone:
		return NopLocker{}, nil
	case config.LockModeLocal, "":
		return NewKeyedMutexLocker(cfg.LockWait), nil
	case config.LockModeRedis:
		if client == nil {
			return nil, fmt.Errorf("lock mode %q requires a redis client", cfg.LockMode)
		}
		return NewRedisLocker(client, cfg.LockTTL, cfg.LockWait, logger), nil
	default:
		return nil, fmt.Errorf("unknown lock mode %q", cfg.LockMode)
	}
}

func conflict(tenantID shared.TenantID, partyID uuid.UUID, wait time.Duration) error {
	return shared.NewDomainError(shared.ErrConcurrencyConflict.Code,
		fmt.Sprintf("Party %s of tenant %s is busy (waited %s)", partyID, tenantID, wait))
}

var (
	_ ledger.PartyLocker = NopLocker{}
	_ ledger.PartyLocker = (*KeyedMutexLocker)(nil)
	_ ledger.PartyLocker = (*RedisLocker)(nil)
)

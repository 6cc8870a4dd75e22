package lock

import (
	"context"
	"sync"
	"time"

	"github.com/TaimoorByteNinja/CRM-sub004/internal/domain/shared"
	"github.com/google/uuid"
)

// keyedSlot is a one-token semaphore shared by all waiters on a key
type keyedSlot struct {
	token chan struct{}
	refs  int
}

// KeyedMutexLocker serializes callers per party within one process.
// Slots are reference counted and dropped once no caller holds or waits on them.
type KeyedMutexLocker struct {
	mu    sync.Mutex
	slots map[string]*keyedSlot
	wait  time.Duration
}

// NewKeyedMutexLocker creates a locker. A non-positive wait blocks until the
// context is done.
func NewKeyedMutexLocker(wait time.Duration) *KeyedMutexLocker {
	return &KeyedMutexLocker{
		slots: make(map[string]*keyedSlot),
		wait:  wait,
	}
}

// Lock implements ledger.PartyLocker
func (l *KeyedMutexLocker) Lock(ctx context.Context, tenantID shared.TenantID, partyID uuid.UUID) (func(), error) {
	key := partyKey(tenantID, partyID)
	slot := l.acquire(key)

	waitCtx := ctx
	if l.wait > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, l.wait)
		defer cancel()
	}

	select {
	case slot.token <- struct{}{}:
	case <-waitCtx.Done():
		l.release(key)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, conflict(tenantID, partyID, l.wait)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-slot.token
			l.release(key)
		})
	}, nil
}

// held reports how many keys currently have holders or waiters
func (l *KeyedMutexLocker) held() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.slots)
}

func (l *KeyedMutexLocker) acquire(key string) *keyedSlot {
	l.mu.Lock()
	defer l.mu.Unlock()
	slot, ok := l.slots[key]
	if !ok {
		slot = &keyedSlot{token: make(chan struct{}, 1)}
		l.slots[key] = slot
	}
	slot.refs++
	return slot
}

func (l *KeyedMutexLocker) release(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	slot, ok := l.slots[key]
	if !ok {
		return
	}
	slot.refs--
	if slot.refs == 0 {
		delete(l.slots, key)
	}
}

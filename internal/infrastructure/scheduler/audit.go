package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/TaimoorByteNinja/CRM-sub004/internal/application/ledger"
	"github.com/TaimoorByteNinja/CRM-sub004/internal/domain/partner"
	"github.com/TaimoorByteNinja/CRM-sub004/internal/domain/shared"
	"github.com/TaimoorByteNinja/CRM-sub004/internal/infrastructure/config"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BalanceAuditor compares and repairs party balances
type BalanceAuditor interface {
	Verify(ctx context.Context, tenantID shared.TenantID, partyID uuid.UUID) (*ledger.DriftReport, error)
	Recompute(ctx context.Context, tenantID shared.TenantID, partyID uuid.UUID) (*ledger.DriftReport, error)
}

// AuditStats counts audit outcomes since startup
type AuditStats struct {
	Checked  int64 `json:"checked"`
	Drifted  int64 `json:"drifted"`
	Repaired int64 `json:"repaired"`
	Missing  int64 `json:"missing"`
}

// AuditExecutor verifies one party per job and recomputes drifted balances
// when the job asks for it
type AuditExecutor struct {
	auditor BalanceAuditor
	logger  *zap.Logger

	checked  atomic.Int64
	drifted  atomic.Int64
	repaired atomic.Int64
	missing  atomic.Int64
}

// NewAuditExecutor creates an executor backed by the balance ledger
func NewAuditExecutor(auditor BalanceAuditor, logger *zap.Logger) *AuditExecutor {
	return &AuditExecutor{auditor: auditor, logger: logger}
}

// Execute implements JobExecutor
func (e *AuditExecutor) Execute(ctx context.Context, job *Job) error {
	report, err := e.auditor.Verify(ctx, job.Party.TenantID, job.Party.ID)
	if err != nil {
		// deleted between listing and auditing
		if errors.Is(err, ledger.ErrPartyNotFound) {
			e.missing.Add(1)
			return nil
		}
		return err
	}
	e.checked.Add(1)
	if report.InSync() {
		return nil
	}

	e.drifted.Add(1)
	e.logger.Warn("party balance drift detected",
		zap.String("tenant_id", job.Party.TenantID.String()),
		zap.String("party_id", job.Party.ID.String()),
		zap.String("stored", report.Stored.String()),
		zap.String("computed", report.Computed.String()),
		zap.String("drift", report.Drift.String()),
	)
	if !job.Repair {
		return nil
	}

	repaired, err := e.auditor.Recompute(ctx, job.Party.TenantID, job.Party.ID)
	if err != nil {
		if errors.Is(err, ledger.ErrPartyNotFound) {
			e.missing.Add(1)
			return nil
		}
		return err
	}
	if repaired.Repaired {
		e.repaired.Add(1)
	}
	return nil
}

// Stats returns a snapshot of the counters
func (e *AuditExecutor) Stats() AuditStats {
	return AuditStats{
		Checked:  e.checked.Load(),
		Drifted:  e.drifted.Load(),
		Repaired: e.repaired.Load(),
		Missing:  e.missing.Load(),
	}
}

// PartyKeySource pages through every party across tenants
type PartyKeySource interface {
	ListKeys(ctx context.Context, after uuid.UUID, limit int) ([]partner.PartyKey, error)
}

// AuditTrigger submits one audit job per party on every interval tick
type AuditTrigger struct {
	config    config.AuditConfig
	scheduler *Scheduler
	source    PartyKeySource
	logger    *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewAuditTrigger creates a new audit trigger
func NewAuditTrigger(
	cfg config.AuditConfig,
	scheduler *Scheduler,
	source PartyKeySource,
	logger *zap.Logger,
) *AuditTrigger {
	return &AuditTrigger{
		config:    cfg,
		scheduler: scheduler,
		source:    source,
		logger:    logger,
	}
}

// Start starts the trigger loop
func (t *AuditTrigger) Start(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.isRunning {
		return nil
	}
	t.isRunning = true

	ctx, cancel := context.WithCancel(ctx)
	t.cancel = cancel

	t.wg.Add(1)
	go t.runLoop(ctx)

	t.logger.Info("Balance audit trigger started",
		zap.Duration("interval", t.config.Interval),
		zap.Bool("auto_repair", t.config.AutoRepair),
	)
	return nil
}

// Stop stops the trigger loop
func (t *AuditTrigger) Stop(ctx context.Context) error {
	t.mu.Lock()
	if !t.isRunning {
		t.mu.Unlock()
		return nil
	}
	t.isRunning = false
	t.mu.Unlock()

	if t.cancel != nil {
		t.cancel()
	}

	done := make(chan struct{})
	go func() {
		t.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		t.logger.Info("Balance audit trigger stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (t *AuditTrigger) runLoop(ctx context.Context) {
	defer t.wg.Done()

	ticker := time.NewTicker(t.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := t.Sweep(ctx); err != nil && ctx.Err() == nil {
				t.logger.Error("Balance audit sweep failed", zap.Error(err))
			}
		}
	}
}

// Sweep queues an audit job for every party and returns how many were
// queued. It waits for queue room rather than dropping parties.
func (t *AuditTrigger) Sweep(ctx context.Context) (int, error) {
	batch := t.config.BatchSize
	if batch <= 0 {
		batch = 500
	}

	queued := 0
	after := uuid.Nil
	for {
		keys, err := t.source.ListKeys(ctx, after, batch)
		if err != nil {
			return queued, err
		}
		for _, key := range keys {
			job := NewJob(key, t.config.AutoRepair, t.config.RetryAttempts)
			if err := t.scheduler.Enqueue(ctx, job); err != nil {
				return queued, err
			}
			queued++
		}
		if len(keys) < batch {
			break
		}
		after = keys[len(keys)-1].ID
	}

	t.logger.Info("Balance audit sweep queued", zap.Int("parties", queued))
	return queued, nil
}

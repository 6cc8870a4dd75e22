package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/TaimoorByteNinja/CRM-sub004/internal/domain/finance"
	"github.com/TaimoorByteNinja/CRM-sub004/internal/domain/partner"
	"github.com/TaimoorByteNinja/CRM-sub004/internal/domain/shared"
	"github.com/TaimoorByteNinja/CRM-sub004/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PartyLocker serializes ledger operations per party.
// The returned unlock function must always be called.
type PartyLocker interface {
	Lock(ctx context.Context, tenantID shared.TenantID, partyID uuid.UUID) (unlock func(), err error)
}

// Reconciliation describes the outcome of one ledger call
type Reconciliation struct {
	TenantID          shared.TenantID
	PartyID           *uuid.UUID
	DocumentID        uuid.UUID
	Reason            partner.EntryReason
	Delta             decimal.Decimal
	Applied           bool
	Balance           decimal.Decimal
	TotalTransactions int64
}

// BalanceLedger keeps party balances equal to the sum of effects of the
// active documents referencing them.
//
// Every balance change is a single atomic delta on the party row, so
// concurrent calls for the same party cannot lose updates. The optional
// PartyLocker additionally keeps a full recompute from interleaving with
// incremental deltas.
type BalanceLedger struct {
	parties   partner.PartyRepository
	documents finance.DocumentRepository
	entries   partner.BalanceEntryRepository
	locker    PartyLocker
	publisher shared.EventPublisher
	effects   finance.EffectTable
	logger    *zap.Logger
	now       func() time.Time
}

// Option configures a BalanceLedger
type Option func(*BalanceLedger)

// WithEntryRepository records a BalanceEntry for each applied delta
func WithEntryRepository(entries partner.BalanceEntryRepository) Option {
	return func(l *BalanceLedger) {
		l.entries = entries
	}
}

// WithLocker sets the per-party locker
func WithLocker(locker PartyLocker) Option {
	return func(l *BalanceLedger) {
		l.locker = locker
	}
}

// WithPublisher publishes PartyBalanceChangedEvent after each applied delta
func WithPublisher(publisher shared.EventPublisher) Option {
	return func(l *BalanceLedger) {
		l.publisher = publisher
	}
}

// WithEffectTable replaces the default effect table
func WithEffectTable(effects finance.EffectTable) Option {
	return func(l *BalanceLedger) {
		l.effects = effects
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(l *BalanceLedger) {
		l.logger = logger
	}
}

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(l *BalanceLedger) {
		l.now = now
	}
}

// NewBalanceLedger creates a new balance ledger
func NewBalanceLedger(
	parties partner.PartyRepository,
	documents finance.DocumentRepository,
	opts ...Option,
) *BalanceLedger {
	l := &BalanceLedger{
		parties:   parties,
		documents: documents,
		effects:   finance.DefaultEffectTable(),
		logger:    zap.NewNop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Effects returns the effect table in use
func (l *BalanceLedger) Effects() finance.EffectTable {
	return l.effects
}

// OnCreate applies the effect of a newly persisted document.
// Documents without a party or with a zero amount are ignored.
func (l *BalanceLedger) OnCreate(ctx context.Context, doc *finance.FinancialDocument) (*Reconciliation, error) {
	if err := validateDocument(doc); err != nil {
		return nil, err
	}
	rec := newReconciliation(doc, partner.EntryReasonCreate)
	if !doc.HasParty() || !doc.Amount.IsPositive() {
		return rec, nil
	}
	return l.apply(ctx, doc, rec, l.effects.Effect(*doc))
}

// OnStatusChange applies effect(next) - effect(prev) for a document whose
// status moved from prev to next. No-op transitions do not touch the party.
func (l *BalanceLedger) OnStatusChange(
	ctx context.Context,
	doc *finance.FinancialDocument,
	prev, next finance.DocumentStatus,
) (*Reconciliation, error) {
	if err := validateDocument(doc); err != nil {
		return nil, err
	}
	if err := finance.ValidateTransition(prev, next); err != nil {
		return nil, err
	}
	rec := newReconciliation(doc, partner.EntryReasonStatusChange)
	if !doc.HasParty() {
		return rec, nil
	}
	return l.apply(ctx, doc, rec, l.effects.Transition(*doc, prev, next))
}

// OnDelete reverses the effect of a document as it existed immediately
// before deletion. Deleting a draft never touches a party.
func (l *BalanceLedger) OnDelete(ctx context.Context, doc *finance.FinancialDocument) (*Reconciliation, error) {
	if err := validateDocument(doc); err != nil {
		return nil, err
	}
	rec := newReconciliation(doc, partner.EntryReasonDelete)
	if !doc.HasParty() {
		return rec, nil
	}
	return l.apply(ctx, doc, rec, l.effects.Effect(*doc).Neg())
}

func (l *BalanceLedger) apply(
	ctx context.Context,
	doc *finance.FinancialDocument,
	rec *Reconciliation,
	delta decimal.Decimal,
) (*Reconciliation, error) {
	rec.Delta = delta
	if delta.IsZero() {
		return rec, nil
	}

	partyID := *doc.PartyID
	ctx, span := telemetry.StartServiceSpan(ctx, "ledger", string(rec.Reason),
		telemetry.SpanAttrTenantID, doc.TenantID.String(),
		telemetry.SpanAttrPartyID, partyID.String(),
		telemetry.SpanAttrDocumentID, doc.ID.String(),
		telemetry.SpanAttrDocumentKind, doc.Kind.String(),
		telemetry.SpanAttrDelta, delta.String(),
	)
	defer span.End()

	unlock, err := l.lock(ctx, doc.TenantID, partyID)
	if err != nil {
		telemetry.RecordError(span, err)
		return rec, err
	}
	defer unlock()

	at := l.now()
	party, err := l.parties.ApplyDelta(ctx, doc.TenantID, partyID, delta, at)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			l.logger.Warn("party not found during balance reconciliation",
				zap.String("tenant_id", doc.TenantID.String()),
				zap.String("party_id", partyID.String()),
				zap.String("document_id", doc.ID.String()),
				zap.String("reason", string(rec.Reason)),
				zap.String("delta", delta.String()),
			)
			telemetry.RecordError(span, ErrPartyNotFound)
			return rec, ErrPartyNotFound
		}
		telemetry.RecordError(span, err)
		l.logger.Error("failed to apply balance delta",
			zap.String("tenant_id", doc.TenantID.String()),
			zap.String("party_id", partyID.String()),
			zap.String("document_id", doc.ID.String()),
			zap.Error(err),
		)
		return rec, fmt.Errorf("failed to apply balance delta: %w", err)
	}

	rec.Applied = true
	rec.Balance = party.Balance
	rec.TotalTransactions = party.TotalTransactions

	l.logger.Info("party balance updated",
		zap.String("tenant_id", doc.TenantID.String()),
		zap.String("party_id", partyID.String()),
		zap.String("document_id", doc.ID.String()),
		zap.String("document_kind", doc.Kind.String()),
		zap.String("reason", string(rec.Reason)),
		zap.String("delta", delta.String()),
		zap.String("balance", party.Balance.String()),
	)

	l.record(ctx, party, rec.Reason, delta, at, doc)
	return rec, nil
}

// record writes the audit entry and publishes the balance event.
// Both are best-effort; the delta is already applied.
func (l *BalanceLedger) record(
	ctx context.Context,
	party *partner.Party,
	reason partner.EntryReason,
	delta decimal.Decimal,
	at time.Time,
	doc *finance.FinancialDocument,
) {
	if l.entries == nil && l.publisher == nil {
		return
	}
	entry, err := partner.NewBalanceEntry(party, reason, delta, at)
	if err != nil {
		l.logger.Error("failed to build balance entry", zap.Error(err))
		return
	}
	if doc != nil {
		entry.WithDocument(doc.ID, doc.Kind.String())
	}

	if l.entries != nil {
		if err := l.entries.Create(ctx, entry); err != nil {
			l.logger.Error("failed to record balance entry",
				zap.String("tenant_id", party.TenantID.String()),
				zap.String("party_id", party.ID.String()),
				zap.Error(err),
			)
		}
	}
	if l.publisher != nil {
		if err := l.publisher.Publish(ctx, partner.NewPartyBalanceChangedEvent(entry)); err != nil {
			l.logger.Warn("failed to publish balance changed event",
				zap.String("party_id", party.ID.String()),
				zap.Error(err),
			)
		}
	}
}

func (l *BalanceLedger) lock(ctx context.Context, tenantID shared.TenantID, partyID uuid.UUID) (func(), error) {
	if l.locker == nil {
		return func() {}, nil
	}
	unlock, err := l.locker.Lock(ctx, tenantID, partyID)
	if err != nil {
		l.logger.Warn("failed to lock party",
			zap.String("tenant_id", tenantID.String()),
			zap.String("party_id", partyID.String()),
			zap.Error(err),
		)
		if errors.Is(err, shared.ErrConcurrencyConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to lock party: %w", err)
	}
	return unlock, nil
}

func newReconciliation(doc *finance.FinancialDocument, reason partner.EntryReason) *Reconciliation {
	rec := &Reconciliation{
		TenantID:   doc.TenantID,
		DocumentID: doc.ID,
		Reason:     reason,
		Delta:      decimal.Zero,
	}
	if doc.HasParty() {
		id := *doc.PartyID
		rec.PartyID = &id
	}
	return rec
}

func validateDocument(doc *finance.FinancialDocument) error {
	if doc == nil {
		return shared.NewValidationError("Document is required")
	}
	if doc.TenantID.IsZero() {
		return shared.NewValidationError("Tenant key is required")
	}
	if !doc.Kind.IsValid() {
		return shared.NewValidationError("Invalid document kind: " + string(doc.Kind))
	}
	if !doc.Status.IsValid() {
		return shared.NewValidationError("Invalid status: " + string(doc.Status))
	}
	if doc.Amount.IsNegative() {
		return shared.NewValidationError("Amount cannot be negative")
	}
	return nil
}

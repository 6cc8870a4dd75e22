package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/TaimoorByteNinja/CRM-sub004/internal/domain/partner"
	"github.com/TaimoorByteNinja/CRM-sub004/internal/domain/shared"
	"github.com/TaimoorByteNinja/CRM-sub004/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DriftReport compares a stored balance with the balance derived from documents
type DriftReport struct {
	TenantID        shared.TenantID
	PartyID         uuid.UUID
	Stored          decimal.Decimal
	Computed        decimal.Decimal
	Drift           decimal.Decimal
	ActiveDocuments int
	Repaired        bool
}

// InSync reports whether the stored balance matches the documents
func (r *DriftReport) InSync() bool {
	return r.Drift.IsZero()
}

// Verify recomputes a party balance from its active documents without writing
func (l *BalanceLedger) Verify(ctx context.Context, tenantID shared.TenantID, partyID uuid.UUID) (*DriftReport, error) {
	if tenantID.IsZero() {
		return nil, shared.NewValidationError("Tenant key is required")
	}
	unlock, err := l.lock(ctx, tenantID, partyID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	_, report, err := l.compute(ctx, tenantID, partyID)
	return report, err
}

// Recompute overwrites a party balance with the sum of effects of its active
// documents. The transaction counter and timestamp are left unchanged.
func (l *BalanceLedger) Recompute(ctx context.Context, tenantID shared.TenantID, partyID uuid.UUID) (_ *DriftReport, err error) {
	if tenantID.IsZero() {
		return nil, shared.NewValidationError("Tenant key is required")
	}
	ctx, span := telemetry.StartServiceSpan(ctx, "ledger", "recompute",
		telemetry.SpanAttrTenantID, tenantID.String(),
		telemetry.SpanAttrPartyID, partyID.String(),
	)
	defer func() {
		telemetry.RecordError(span, err)
		span.End()
	}()

	unlock, err := l.lock(ctx, tenantID, partyID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	_, report, err := l.compute(ctx, tenantID, partyID)
	if err != nil {
		return nil, err
	}
	if report.InSync() {
		return report, nil
	}

	party, err := l.parties.SetBalance(ctx, tenantID, partyID, report.Computed)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, ErrPartyNotFound
		}
		return nil, fmt.Errorf("failed to set party balance: %w", err)
	}
	report.Repaired = true
	telemetry.SetAttributes(span, telemetry.SpanAttrDelta, report.Drift.String())

	l.logger.Warn("party balance repaired",
		zap.String("tenant_id", tenantID.String()),
		zap.String("party_id", partyID.String()),
		zap.String("stored", report.Stored.String()),
		zap.String("computed", report.Computed.String()),
		zap.String("drift", report.Drift.String()),
	)

	l.record(ctx, party, partner.EntryReasonRepair, report.Drift, l.now(), nil)
	return report, nil
}

func (l *BalanceLedger) compute(ctx context.Context, tenantID shared.TenantID, partyID uuid.UUID) (*partner.Party, *DriftReport, error) {
	party, err := l.parties.FindByIDForTenant(ctx, tenantID, partyID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, nil, ErrPartyNotFound
		}
		return nil, nil, fmt.Errorf("failed to load party: %w", err)
	}

	docs, err := l.documents.FindActiveByParty(ctx, tenantID, partyID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load active documents: %w", err)
	}

	computed := l.effects.Sum(docs)
	return party, &DriftReport{
		TenantID:        tenantID,
		PartyID:         partyID,
		Stored:          party.Balance,
		Computed:        computed,
		Drift:           computed.Sub(party.Balance),
		ActiveDocuments: len(docs),
	}, nil
}

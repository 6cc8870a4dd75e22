package partner

import (
	"time"

	"github.com/TaimoorByteNinja/CRM-sub004/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EntryReason names the document lifecycle event that produced a balance change
type EntryReason string

const (
	EntryReasonCreate       EntryReason = "create"
	EntryReasonStatusChange EntryReason = "status_change"
	EntryReasonDelete       EntryReason = "delete"
	EntryReasonRepair       EntryReason = "repair"
)

// IsValid returns true if the reason is valid
func (r EntryReason) IsValid() bool {
	switch r {
	case EntryReasonCreate, EntryReasonStatusChange, EntryReasonDelete, EntryReasonRepair:
		return true
	}
	return false
}

// BalanceEntry is an append-only record of one balance change applied to a party.
// Entries are history only; the party row stays the source of truth.
type BalanceEntry struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey"`
	TenantID     shared.TenantID `gorm:"type:varchar(32);not null;index:idx_balance_entries_party,priority:1"`
	PartyID      uuid.UUID       `gorm:"type:uuid;not null;index:idx_balance_entries_party,priority:2"`
	DocumentID   *uuid.UUID      `gorm:"type:uuid;index"`
	DocumentKind string          `gorm:"type:varchar(30)"`
	Reason       EntryReason     `gorm:"type:varchar(20);not null"`
	Delta        decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	BalanceAfter decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	OccurredAt   time.Time       `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (BalanceEntry) TableName() string {
	return "balance_entries"
}

// NewBalanceEntry creates a balance entry for a party after a delta was applied
func NewBalanceEntry(party *Party, reason EntryReason, delta decimal.Decimal, at time.Time) (*BalanceEntry, error) {
	if party == nil {
		return nil, shared.NewValidationError("Party is required")
	}
	if !reason.IsValid() {
		return nil, shared.NewValidationError("Invalid balance entry reason")
	}
	return &BalanceEntry{
		ID:           uuid.New(),
		TenantID:     party.TenantID,
		PartyID:      party.ID,
		Reason:       reason,
		Delta:        delta,
		BalanceAfter: party.Balance,
		OccurredAt:   at,
	}, nil
}

// WithDocument links the entry to the document that caused it
func (e *BalanceEntry) WithDocument(documentID uuid.UUID, kind string) *BalanceEntry {
	e.DocumentID = &documentID
	e.DocumentKind = kind
	return e
}

// BalanceBefore returns the balance prior to this entry
func (e *BalanceEntry) BalanceBefore() decimal.Decimal {
	return e.BalanceAfter.Sub(e.Delta)
}

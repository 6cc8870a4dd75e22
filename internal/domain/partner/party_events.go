package partner

import (
	"github.com/TaimoorByteNinja/CRM-sub004/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	// AggregateTypeParty is the aggregate type for party events
	AggregateTypeParty = "Party"

	// EventTypePartyBalanceChanged is published after the ledger applies a non-zero delta
	EventTypePartyBalanceChanged = "PartyBalanceChanged"
)

// PartyBalanceChangedEvent records a single applied balance delta
type PartyBalanceChangedEvent struct {
	shared.BaseDomainEvent
	PartyID    uuid.UUID       `json:"party_id"`
	DocumentID *uuid.UUID      `json:"document_id,omitempty"`
	Reason     EntryReason     `json:"reason"`
	Delta      decimal.Decimal `json:"delta"`
	Balance    decimal.Decimal `json:"balance"`
}

// NewPartyBalanceChangedEvent creates a PartyBalanceChangedEvent from an entry
func NewPartyBalanceChangedEvent(entry *BalanceEntry) *PartyBalanceChangedEvent {
	return &PartyBalanceChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(
			EventTypePartyBalanceChanged,
			AggregateTypeParty,
			entry.PartyID,
			entry.TenantID,
		),
		PartyID:    entry.PartyID,
		DocumentID: entry.DocumentID,
		Reason:     entry.Reason,
		Delta:      entry.Delta,
		Balance:    entry.BalanceAfter,
	}
}

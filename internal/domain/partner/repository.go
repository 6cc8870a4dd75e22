package partner

import (
	"context"
	"time"

	"github.com/TaimoorByteNinja/CRM-sub004/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PartyFilter contains filter options for listing parties
type PartyFilter struct {
	shared.Filter
	Type   *PartyType
	Search string
}

// PartyRepository defines the interface for party persistence.
// Every method is scoped by tenant.
type PartyRepository interface {
	// FindByIDForTenant finds a party by ID within a tenant
	FindByIDForTenant(ctx context.Context, tenantID shared.TenantID, id uuid.UUID) (*Party, error)

	// FindAllForTenant lists parties of a tenant
	FindAllForTenant(ctx context.Context, tenantID shared.TenantID, filter PartyFilter) ([]Party, int64, error)

	// Save creates or updates a party's descriptive fields
	Save(ctx context.Context, party *Party) error

	// DeleteForTenant deletes a party within a tenant
	DeleteForTenant(ctx context.Context, tenantID shared.TenantID, id uuid.UUID) error

	// ApplyDelta atomically adds delta to the balance, increments the
	// transaction counter and stamps the transaction time in one round trip,
	// then returns the updated party. Returns shared.ErrNotFound if the party
	// does not exist for the tenant.
	ApplyDelta(ctx context.Context, tenantID shared.TenantID, id uuid.UUID, delta decimal.Decimal, at time.Time) (*Party, error)

	// SetBalance overwrites the balance (used by repair only)
	SetBalance(ctx context.Context, tenantID shared.TenantID, id uuid.UUID, balance decimal.Decimal) (*Party, error)
}

// BalanceEntryRepository stores the balance change history
type BalanceEntryRepository interface {
	// Create appends a balance entry
	Create(ctx context.Context, entry *BalanceEntry) error

	// FindByParty lists entries of a party, newest first
	FindByParty(ctx context.Context, tenantID shared.TenantID, partyID uuid.UUID, filter shared.Filter) ([]BalanceEntry, int64, error)
}

// PartyKey identifies a party across tenants
type PartyKey struct {
	TenantID shared.TenantID
	ID       uuid.UUID
}

// String renders the key as tenant:party
func (k PartyKey) String() string {
	return k.TenantID.String() + ":" + k.ID.String()
}

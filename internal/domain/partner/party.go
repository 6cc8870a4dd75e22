package partner

import (
	"strings"
	"time"

	"github.com/TaimoorByteNinja/CRM-sub004/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// PartyType distinguishes customers from suppliers
type PartyType string

const (
	PartyTypeCustomer PartyType = "customer"
	PartyTypeSupplier PartyType = "supplier"
)

// IsValid returns true if the party type is valid
func (t PartyType) IsValid() bool {
	switch t {
	case PartyTypeCustomer, PartyTypeSupplier:
		return true
	}
	return false
}

// Party is a customer or supplier with a running balance against the business.
//
// Balance equals the sum of effects of every active financial document that
// references the party. Only the balance ledger mutates Balance,
// TotalTransactions and LastTransactionAt.
type Party struct {
	shared.TenantAggregateRoot
	Name              string          `gorm:"type:varchar(200);not null"`
	Type              PartyType       `gorm:"type:varchar(20);not null;default:'supplier'"`
	Phone             string          `gorm:"type:varchar(50)"`
	Balance           decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	TotalTransactions int64           `gorm:"not null;default:0"`
	LastTransactionAt *time.Time
}

// TableName returns the table name for GORM
func (Party) TableName() string {
	return "parties"
}

// NewParty registers a new party with a zero balance
func NewParty(tenantID shared.TenantID, name string, partyType PartyType) (*Party, error) {
	if tenantID.IsZero() {
		return nil, shared.NewValidationError("Tenant key is required")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewValidationError("Party name cannot be empty")
	}
	if len(name) > 200 {
		return nil, shared.NewValidationError("Party name cannot exceed 200 characters")
	}
	if !partyType.IsValid() {
		return nil, shared.NewValidationError("Invalid party type")
	}

	return &Party{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Name:                name,
		Type:                partyType,
		Balance:             decimal.Zero,
	}, nil
}

// SetPhone sets the party's contact phone
func (p *Party) SetPhone(phone string) {
	p.Phone = strings.TrimSpace(phone)
	p.Touch()
}

// ApplyDelta adds delta to the balance, bumps the transaction counter and
// stamps the transaction time. A zero delta is ignored.
func (p *Party) ApplyDelta(delta decimal.Decimal, at time.Time) bool {
	if delta.IsZero() {
		return false
	}
	p.Balance = p.Balance.Add(delta)
	p.TotalTransactions++
	p.LastTransactionAt = &at
	p.UpdatedAt = at
	return true
}

// ResetBalance overwrites the balance after a full recompute.
// The counter and timestamp describe applied events, not state, and are kept.
func (p *Party) ResetBalance(balance decimal.Decimal) {
	p.Balance = balance
	p.Touch()
}

// Key returns the tenant-qualified identity of the party
func (p *Party) Key() PartyKey {
	return PartyKey{TenantID: p.TenantID, ID: p.ID}
}

package finance

import (
	"github.com/TaimoorByteNinja/CRM-sub004/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DocumentKind is the kind of financial document
type DocumentKind string

const (
	DocumentKindPurchase       DocumentKind = "purchase"
	DocumentKindPurchaseReturn DocumentKind = "purchaseReturn"
	DocumentKindExpense        DocumentKind = "expense"
)

// String returns the string representation of DocumentKind
func (k DocumentKind) String() string {
	return string(k)
}

// IsValid returns true if the document kind is valid
func (k DocumentKind) IsValid() bool {
	switch k {
	case DocumentKindPurchase, DocumentKindPurchaseReturn, DocumentKindExpense:
		return true
	}
	return false
}

// DocumentStatus is the lifecycle status of a financial document
type DocumentStatus string

const (
	// DocumentStatusDraft documents never contribute to a party balance
	DocumentStatusDraft DocumentStatus = "draft"
	// DocumentStatusActive documents contribute their effect to the referenced party
	DocumentStatusActive DocumentStatus = "active"
)

// String returns the string representation of DocumentStatus
func (s DocumentStatus) String() string {
	return string(s)
}

// IsValid returns true if the status is valid
func (s DocumentStatus) IsValid() bool {
	switch s {
	case DocumentStatusDraft, DocumentStatusActive:
		return true
	}
	return false
}

// ValidateTransition checks a status change. Every pair of known statuses is
// legal, including no-op transitions; unknown statuses are rejected.
func ValidateTransition(from, to DocumentStatus) error {
	if !from.IsValid() {
		return shared.NewValidationError("Invalid previous status: " + string(from))
	}
	if !to.IsValid() {
		return shared.NewValidationError("Invalid status: " + string(to))
	}
	return nil
}

// FinancialDocument is a purchase, purchase return or expense that may
// reference a party. Only Kind, Status and Amount determine its balance effect.
type FinancialDocument struct {
	shared.TenantAggregateRoot
	Kind      DocumentKind    `gorm:"type:varchar(30);not null;index"`
	PartyID   *uuid.UUID      `gorm:"type:uuid;index"`
	Amount    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Status    DocumentStatus  `gorm:"type:varchar(20);not null;default:'draft';index"`
	Reference string          `gorm:"type:varchar(100)"`
	Remark    string          `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (FinancialDocument) TableName() string {
	return "financial_documents"
}

// NewFinancialDocument creates a document in the given status
func NewFinancialDocument(
	tenantID shared.TenantID,
	kind DocumentKind,
	partyID *uuid.UUID,
	amount decimal.Decimal,
	status DocumentStatus,
) (*FinancialDocument, error) {
	if tenantID.IsZero() {
		return nil, shared.NewValidationError("Tenant key is required")
	}
	if !kind.IsValid() {
		return nil, shared.NewValidationError("Invalid document kind: " + string(kind))
	}
	if err := validateAmount(amount); err != nil {
		return nil, err
	}
	if !status.IsValid() {
		return nil, shared.NewValidationError("Invalid status: " + string(status))
	}
	if partyID != nil && *partyID == uuid.Nil {
		partyID = nil
	}

	return &FinancialDocument{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Kind:                kind,
		PartyID:             partyID,
		Amount:              amount,
		Status:              status,
	}, nil
}

// HasParty reports whether the document references a party
func (d *FinancialDocument) HasParty() bool {
	return d.PartyID != nil && *d.PartyID != uuid.Nil
}

// IsActive reports whether the document currently contributes to a balance
func (d *FinancialDocument) IsActive() bool {
	return d.Status == DocumentStatusActive
}

// ChangeStatus moves the document to a new status and returns the previous one
func (d *FinancialDocument) ChangeStatus(status DocumentStatus) (DocumentStatus, error) {
	previous := d.Status
	if err := ValidateTransition(previous, status); err != nil {
		return previous, err
	}
	d.Status = status
	d.Touch()
	return previous, nil
}

// SetAmount replaces the document amount
func (d *FinancialDocument) SetAmount(amount decimal.Decimal) error {
	if err := validateAmount(amount); err != nil {
		return err
	}
	d.Amount = amount
	d.Touch()
	return nil
}

// SetParty replaces the referenced party; nil clears it
func (d *FinancialDocument) SetParty(partyID *uuid.UUID) {
	if partyID != nil && *partyID == uuid.Nil {
		partyID = nil
	}
	d.PartyID = partyID
	d.Touch()
}

// WithStatus returns a copy of the document carrying a different status.
// The copy is used for effect computation only and is never persisted.
func (d FinancialDocument) WithStatus(status DocumentStatus) FinancialDocument {
	d.Status = status
	return d
}

// Snapshot returns a detached copy of the document
func (d *FinancialDocument) Snapshot() FinancialDocument {
	c := *d
	if d.PartyID != nil {
		id := *d.PartyID
		c.PartyID = &id
	}
	c.ClearDomainEvents()
	return c
}

func validateAmount(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return shared.NewValidationError("Amount cannot be negative")
	}
	return nil
}

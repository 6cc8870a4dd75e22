package trade

import (
	"strings"

	"github.com/TaimoorByteNinja/CRM-sub004/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentStatus is the payment state of a sale
type PaymentStatus string

const (
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusPartial PaymentStatus = "partial"
	PaymentStatusUnpaid  PaymentStatus = "unpaid"
)

// IsValid returns true if the payment status is valid
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusPaid, PaymentStatusPartial, PaymentStatusUnpaid:
		return true
	}
	return false
}

// SaleLine is the part of a line item the transaction summary needs
type SaleLine struct {
	ItemName string          `json:"item_name"`
	Quantity decimal.Decimal `json:"quantity"`
}

// SaleItem is a line item of a sale
type SaleItem struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"`
	SaleID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	LineNo    int             `gorm:"not null"`
	ItemName  string          `gorm:"type:varchar(200);not null"`
	Quantity  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (SaleItem) TableName() string {
	return "sale_items"
}

// Sale is a sales document with ordered line items
type Sale struct {
	shared.TenantAggregateRoot
	TotalAmount      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	PaymentStatus    PaymentStatus   `gorm:"type:varchar(20);not null"`
	CounterpartyName *string         `gorm:"type:varchar(200)"`
	PartyID          *uuid.UUID      `gorm:"type:uuid;index"`
	Items            []SaleItem      `gorm:"foreignKey:SaleID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (Sale) TableName() string {
	return "sales"
}

// NewSaleItem creates a line item
func NewSaleItem(itemName string, quantity, unitPrice decimal.Decimal) (SaleItem, error) {
	itemName = strings.TrimSpace(itemName)
	if itemName == "" {
		return SaleItem{}, shared.NewValidationError("Item name cannot be empty")
	}
	if !quantity.IsPositive() {
		return SaleItem{}, shared.NewValidationError("Item quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return SaleItem{}, shared.NewValidationError("Unit price cannot be negative")
	}
	return SaleItem{
		ID:        uuid.New(),
		ItemName:  itemName,
		Quantity:  quantity,
		UnitPrice: unitPrice,
	}, nil
}

// NewSale creates a sale and raises SaleCreatedEvent
func NewSale(
	tenantID shared.TenantID,
	totalAmount decimal.Decimal,
	paymentStatus PaymentStatus,
	counterpartyName *string,
	items []SaleItem,
) (*Sale, error) {
	if tenantID.IsZero() {
		return nil, shared.NewValidationError("Tenant key is required")
	}
	if totalAmount.IsNegative() {
		return nil, shared.NewValidationError("Total amount cannot be negative")
	}
	if !paymentStatus.IsValid() {
		return nil, shared.NewValidationError("Invalid payment status: " + string(paymentStatus))
	}
	if counterpartyName != nil {
		name := strings.TrimSpace(*counterpartyName)
		if name == "" {
			counterpartyName = nil
		} else {
			counterpartyName = &name
		}
	}

	sale := &Sale{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		TotalAmount:         totalAmount,
		PaymentStatus:       paymentStatus,
		CounterpartyName:    counterpartyName,
	}
	for i, item := range items {
		item.SaleID = sale.ID
		item.LineNo = i + 1
		if item.ID == uuid.Nil {
			item.ID = uuid.New()
		}
		sale.Items = append(sale.Items, item)
	}

	sale.AddDomainEvent(NewSaleCreatedEvent(sale))

	return sale, nil
}

// SetParty links the sale to a registered party
func (s *Sale) SetParty(partyID uuid.UUID) {
	s.PartyID = &partyID
}

// Lines returns the ordered line items in summary form
func (s *Sale) Lines() []SaleLine {
	lines := make([]SaleLine, 0, len(s.Items))
	for _, item := range s.Items {
		lines = append(lines, SaleLine{ItemName: item.ItemName, Quantity: item.Quantity})
	}
	return lines
}

package trade

import (
	"strings"
	"time"

	"github.com/TaimoorByteNinja/CRM-sub004/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SummaryTypeSale is the only summary type produced by the mirror
const SummaryTypeSale = "sale"

// Fallbacks used when a sale lacks a counterparty or line items
const (
	DefaultCounterpartyName = "Customer"
	DefaultItemName         = "Item"
)

// SummaryDefaults holds the placeholders written for missing sale fields
type SummaryDefaults struct {
	CounterpartyName string
	ItemName         string
}

// DefaultSummaryDefaults returns the standard placeholders
func DefaultSummaryDefaults() SummaryDefaults {
	return SummaryDefaults{
		CounterpartyName: DefaultCounterpartyName,
		ItemName:         DefaultItemName,
	}
}

// SalesTransactionSummary is the denormalized row dashboards read instead of
// joining sales with their line items. It is derived data, never authoritative.
type SalesTransactionSummary struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID         shared.TenantID `gorm:"type:varchar(32);not null;index" json:"tenant_id"`
	Type             string          `gorm:"type:varchar(20);not null;default:'sale'" json:"type"`
	TotalPrice       decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"total_price"`
	PaymentStatus    string          `gorm:"type:varchar(20);not null" json:"payment_status"`
	CounterpartyName string          `gorm:"type:varchar(200);not null" json:"counterparty_name"`
	ItemName         string          `gorm:"type:varchar(200);not null" json:"item_name"`
	Quantity         decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"quantity"`
	Timestamp        time.Time       `gorm:"not null;index" json:"timestamp"`
}

// TableName returns the table name for GORM
func (SalesTransactionSummary) TableName() string {
	return "sales_transaction_summaries"
}

// BuildSalesSummary derives a summary from a sale. Only the first line item is
// used; a sale without items gets the placeholder item with quantity 1.
// The summary gets a fresh ID unrelated to the sale's.
func BuildSalesSummary(
	tenantID shared.TenantID,
	totalAmount decimal.Decimal,
	paymentStatus PaymentStatus,
	counterpartyName *string,
	lines []SaleLine,
	defaults SummaryDefaults,
	at time.Time,
) *SalesTransactionSummary {
	counterparty := defaults.CounterpartyName
	if counterpartyName != nil && strings.TrimSpace(*counterpartyName) != "" {
		counterparty = *counterpartyName
	}

	itemName := defaults.ItemName
	quantity := decimal.NewFromInt(1)
	if len(lines) > 0 {
		itemName = lines[0].ItemName
		quantity = lines[0].Quantity
	}

	return &SalesTransactionSummary{
		ID:               uuid.New(),
		TenantID:         tenantID,
		Type:             SummaryTypeSale,
		TotalPrice:       totalAmount,
		PaymentStatus:    string(paymentStatus),
		CounterpartyName: counterparty,
		ItemName:         itemName,
		Quantity:         quantity,
		Timestamp:        at,
	}
}

package trade

import (
	"github.com/TaimoorByteNinja/CRM-sub004/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	// AggregateTypeSale is the aggregate type for sale events
	AggregateTypeSale = "Sale"

	// EventTypeSaleCreated is raised once per successfully persisted sale
	EventTypeSaleCreated = "SaleCreated"
)

// SaleCreatedEvent carries what the transaction mirror needs to build a summary
type SaleCreatedEvent struct {
	shared.BaseDomainEvent
	SaleID           uuid.UUID       `json:"sale_id"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
	PaymentStatus    PaymentStatus   `json:"payment_status"`
	CounterpartyName *string         `json:"counterparty_name,omitempty"`
	Lines            []SaleLine      `json:"lines"`
}

// NewSaleCreatedEvent creates a SaleCreatedEvent
func NewSaleCreatedEvent(sale *Sale) *SaleCreatedEvent {
	return &SaleCreatedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeSaleCreated, AggregateTypeSale, sale.ID, sale.TenantID),
		SaleID:           sale.ID,
		TotalAmount:      sale.TotalAmount,
		PaymentStatus:    sale.PaymentStatus,
		CounterpartyName: sale.CounterpartyName,
		Lines:            sale.Lines(),
	}
}

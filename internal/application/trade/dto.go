package trade

import (
	"time"

	"github.com/TaimoorByteNinja/CRM-sub004/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SaleItemInput represents a line item in a create-sale request
type SaleItemInput struct {
	ItemName  string          `json:"item_name" binding:"required,min=1,max=200"`
	Quantity  decimal.Decimal `json:"quantity" binding:"gt=0"`
	UnitPrice decimal.Decimal `json:"unit_price" binding:"gte=0"`
}

// CreateSaleRequest represents a request to record a sale
type CreateSaleRequest struct {
	TotalAmount      decimal.Decimal `json:"total_amount" binding:"gte=0"`
	PaymentStatus    string          `json:"payment_status" binding:"required,oneof=paid partial unpaid"`
	CounterpartyName *string         `json:"counterparty_name" binding:"omitempty,max=200"`
	PartyID          *uuid.UUID      `json:"party_id"`
	Items            []SaleItemInput `json:"items" binding:"dive"`
}

// ListSummariesRequest represents paging for transaction summaries
type ListSummariesRequest struct {
	Page     int `form:"page" binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// SaleItemResponse represents a sale line item in API responses
type SaleItemResponse struct {
	ID        uuid.UUID       `json:"id"`
	LineNo    int             `json:"line_no"`
	ItemName  string          `json:"item_name"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// SaleResponse represents a sale in API responses
type SaleResponse struct {
	ID               uuid.UUID          `json:"id"`
	TenantID         string             `json:"tenant_id"`
	TotalAmount      decimal.Decimal    `json:"total_amount"`
	PaymentStatus    string             `json:"payment_status"`
	CounterpartyName *string            `json:"counterparty_name"`
	PartyID          *uuid.UUID         `json:"party_id,omitempty"`
	Items            []SaleItemResponse `json:"items"`
	CreatedAt        time.Time          `json:"created_at"`
}

// SummaryResponse represents a sales transaction summary in API responses
type SummaryResponse struct {
	ID               uuid.UUID       `json:"id"`
	TenantID         string          `json:"tenantId"`
	Type             string          `json:"type"`
	TotalPrice       decimal.Decimal `json:"totalPrice"`
	PaymentStatus    string          `json:"paymentStatus"`
	CounterpartyName string          `json:"counterpartyName"`
	ItemName         string          `json:"itemName"`
	Quantity         decimal.Decimal `json:"quantity"`
	Timestamp        time.Time       `json:"timestamp"`
}

// ToSaleResponse converts a domain sale to a response
func ToSaleResponse(s *trade.Sale) SaleResponse {
	items := make([]SaleItemResponse, len(s.Items))
	for i, item := range s.Items {
		items[i] = SaleItemResponse{
			ID:        item.ID,
			LineNo:    item.LineNo,
			ItemName:  item.ItemName,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		}
	}
	return SaleResponse{
		ID:               s.ID,
		TenantID:         s.TenantID.String(),
		TotalAmount:      s.TotalAmount,
		PaymentStatus:    string(s.PaymentStatus),
		CounterpartyName: s.CounterpartyName,
		PartyID:          s.PartyID,
		Items:            items,
		CreatedAt:        s.CreatedAt,
	}
}

// ToSummaryResponse converts a domain summary to a response
func ToSummaryResponse(s *trade.SalesTransactionSummary) SummaryResponse {
	return SummaryResponse{
		ID:               s.ID,
		TenantID:         s.TenantID.String(),
		Type:             s.Type,
		TotalPrice:       s.TotalPrice,
		PaymentStatus:    s.PaymentStatus,
		CounterpartyName: s.CounterpartyName,
		ItemName:         s.ItemName,
		Quantity:         s.Quantity,
		Timestamp:        s.Timestamp,
	}
}

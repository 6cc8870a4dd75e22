package partner

import (
	"time"

	"github.com/TaimoorByteNinja/CRM-sub004/internal/application/ledger"
	"github.com/TaimoorByteNinja/CRM-sub004/internal/domain/partner"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreatePartyRequest represents a request to register a party
type CreatePartyRequest struct {
	Name  string `json:"name" binding:"required,min=1,max=200"`
	Type  string `json:"type" binding:"required,oneof=customer supplier"`
	Phone string `json:"phone" binding:"max=50"`
}

// ListPartiesRequest represents list filters for parties
type ListPartiesRequest struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	Type     string `form:"type" binding:"omitempty,oneof=customer supplier"`
	Search   string `form:"search" binding:"max=100"`
	OrderBy  string `form:"order_by" binding:"omitempty,oneof=name balance created_at last_transaction_at"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ListEntriesRequest represents paging for balance entries
type ListEntriesRequest struct {
	Page     int `form:"page" binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// PartyResponse represents a party in API responses
type PartyResponse struct {
	ID                uuid.UUID       `json:"id"`
	TenantID          string          `json:"tenant_id"`
	Name              string          `json:"name"`
	Type              string          `json:"type"`
	Phone             string          `json:"phone,omitempty"`
	Balance           decimal.Decimal `json:"balance"`
	TotalTransactions int64           `json:"total_transactions"`
	LastTransactionAt *time.Time      `json:"last_transaction_at"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// BalanceEntryResponse represents one balance change in API responses
type BalanceEntryResponse struct {
	ID            uuid.UUID       `json:"id"`
	DocumentID    *uuid.UUID      `json:"document_id,omitempty"`
	DocumentKind  string          `json:"document_kind,omitempty"`
	Reason        string          `json:"reason"`
	Delta         decimal.Decimal `json:"delta"`
	BalanceBefore decimal.Decimal `json:"balance_before"`
	BalanceAfter  decimal.Decimal `json:"balance_after"`
	OccurredAt    time.Time       `json:"occurred_at"`
}

// DriftResponse reports a balance verification or repair
type DriftResponse struct {
	PartyID         uuid.UUID       `json:"party_id"`
	Stored          decimal.Decimal `json:"stored"`
	Computed        decimal.Decimal `json:"computed"`
	Drift           decimal.Decimal `json:"drift"`
	InSync          bool            `json:"in_sync"`
	ActiveDocuments int             `json:"active_documents"`
	Repaired        bool            `json:"repaired"`
}

// ToPartyResponse converts a domain party to a response
func ToPartyResponse(p *partner.Party) PartyResponse {
	return PartyResponse{
		ID:                p.ID,
		TenantID:          p.TenantID.String(),
		Name:              p.Name,
		Type:              string(p.Type),
		Phone:             p.Phone,
		Balance:           p.Balance,
		TotalTransactions: p.TotalTransactions,
		LastTransactionAt: p.LastTransactionAt,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
}

// ToBalanceEntryResponse converts a domain balance entry to a response
func ToBalanceEntryResponse(e *partner.BalanceEntry) BalanceEntryResponse {
	return BalanceEntryResponse{
		ID:            e.ID,
		DocumentID:    e.DocumentID,
		DocumentKind:  e.DocumentKind,
		Reason:        string(e.Reason),
		Delta:         e.Delta,
		BalanceBefore: e.BalanceBefore(),
		BalanceAfter:  e.BalanceAfter,
		OccurredAt:    e.OccurredAt,
	}
}

// ToDriftResponse converts a ledger drift report to a response
func ToDriftResponse(r *ledger.DriftReport) DriftResponse {
	return DriftResponse{
		PartyID:         r.PartyID,
		Stored:          r.Stored,
		Computed:        r.Computed,
		Drift:           r.Drift,
		InSync:          r.InSync(),
		ActiveDocuments: r.ActiveDocuments,
		Repaired:        r.Repaired,
	}
}

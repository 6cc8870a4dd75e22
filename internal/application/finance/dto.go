package finance

import (
	"time"

	"github.com/TaimoorByteNinja/CRM-sub004/internal/application/ledger"
	"github.com/TaimoorByteNinja/CRM-sub004/internal/domain/finance"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateDocumentRequest represents a request to create a financial document
type CreateDocumentRequest struct {
	Kind      string          `json:"kind" binding:"required,oneof=purchase purchaseReturn expense"`
	PartyID   *uuid.UUID      `json:"party_id"`
	Amount    decimal.Decimal `json:"amount" binding:"gte=0"`
	Status    string          `json:"status" binding:"omitempty,oneof=draft active"`
	Reference string          `json:"reference" binding:"max=100"`
	Remark    string          `json:"remark"`
}

// UpdateDocumentRequest represents a request to edit a financial document.
// Status is changed through ChangeStatusRequest only.
type UpdateDocumentRequest struct {
	Amount     *decimal.Decimal `json:"amount" binding:"omitempty,gte=0"`
	PartyID    *uuid.UUID       `json:"party_id"`
	ClearParty bool             `json:"clear_party"`
	Reference  *string          `json:"reference" binding:"omitempty,max=100"`
	Remark     *string          `json:"remark"`
}

// ChangeStatusRequest represents a request to move a document between statuses
type ChangeStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// ListDocumentsRequest represents list filters for documents
type ListDocumentsRequest struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	Kind     string `form:"kind" binding:"omitempty,oneof=purchase purchaseReturn expense"`
	Status   string `form:"status" binding:"omitempty,oneof=draft active"`
	PartyID  string `form:"party_id" binding:"omitempty,uuid"`
	OrderBy  string `form:"order_by" binding:"omitempty,oneof=created_at updated_at amount kind status"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// DocumentResponse represents a financial document in API responses
type DocumentResponse struct {
	ID        uuid.UUID       `json:"id"`
	TenantID  string          `json:"tenant_id"`
	Kind      string          `json:"kind"`
	PartyID   *uuid.UUID      `json:"party_id,omitempty"`
	Amount    decimal.Decimal `json:"amount"`
	Status    string          `json:"status"`
	Effect    decimal.Decimal `json:"effect"`
	Reference string          `json:"reference,omitempty"`
	Remark    string          `json:"remark,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// ReconciliationResponse describes the balance change caused by an operation
type ReconciliationResponse struct {
	PartyID           *uuid.UUID      `json:"party_id,omitempty"`
	Reason            string          `json:"reason"`
	Delta             decimal.Decimal `json:"delta"`
	Applied           bool            `json:"applied"`
	Balance           decimal.Decimal `json:"balance"`
	TotalTransactions int64           `json:"total_transactions"`
}

// DocumentResult is returned by every document mutation
type DocumentResult struct {
	Document        *DocumentResponse        `json:"document,omitempty"`
	Reconciliations []ReconciliationResponse `json:"reconciliations,omitempty"`
	Warnings        []string                 `json:"warnings,omitempty"`
}

// HasWarnings reports whether reconciliation produced warnings
func (r *DocumentResult) HasWarnings() bool {
	return len(r.Warnings) > 0
}

// ToDocumentResponse converts a domain document to a response
func ToDocumentResponse(doc *finance.FinancialDocument, effects finance.EffectTable) DocumentResponse {
	return DocumentResponse{
		ID:        doc.ID,
		TenantID:  doc.TenantID.String(),
		Kind:      doc.Kind.String(),
		PartyID:   doc.PartyID,
		Amount:    doc.Amount,
		Status:    doc.Status.String(),
		Effect:    effects.Effect(*doc),
		Reference: doc.Reference,
		Remark:    doc.Remark,
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}
}

// ToReconciliationResponse converts a ledger outcome to a response
func ToReconciliationResponse(rec *ledger.Reconciliation) ReconciliationResponse {
	return ReconciliationResponse{
		PartyID:           rec.PartyID,
		Reason:            string(rec.Reason),
		Delta:             rec.Delta,
		Applied:           rec.Applied,
		Balance:           rec.Balance,
		TotalTransactions: rec.TotalTransactions,
	}
}

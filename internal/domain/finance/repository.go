package finance

import (
	"context"

	"github.com/TaimoorByteNinja/CRM-sub004/internal/domain/shared"
	"github.com/google/uuid"
)

// DocumentFilter contains filter options for listing documents
type DocumentFilter struct {
	shared.Filter
	Kind    *DocumentKind
	Status  *DocumentStatus
	PartyID *uuid.UUID
}

// DocumentRepository defines the interface for financial document persistence.
// Every method is scoped by tenant.
type DocumentRepository interface {
	// FindByIDForTenant finds a document by ID within a tenant
	FindByIDForTenant(ctx context.Context, tenantID shared.TenantID, id uuid.UUID) (*FinancialDocument, error)

	// FindAllForTenant lists documents of a tenant
	FindAllForTenant(ctx context.Context, tenantID shared.TenantID, filter DocumentFilter) ([]FinancialDocument, int64, error)

	// FindActiveByParty returns every active document referencing a party
	FindActiveByParty(ctx context.Context, tenantID shared.TenantID, partyID uuid.UUID) ([]FinancialDocument, error)

	// CountByParty counts documents of any status referencing a party
	CountByParty(ctx context.Context, tenantID shared.TenantID, partyID uuid.UUID) (int64, error)

	// Save creates a document
	Save(ctx context.Context, doc *FinancialDocument) error

	// SaveWithLock updates a document if its stored version still matches the
	// loaded one and advances the version. Returns ErrConcurrencyConflict otherwise.
	SaveWithLock(ctx context.Context, doc *FinancialDocument) error

	// DeleteWithLock deletes a document if its stored version still matches.
	// Returns ErrConcurrencyConflict otherwise.
	DeleteWithLock(ctx context.Context, doc *FinancialDocument) error
}

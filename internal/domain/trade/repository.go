package trade

import (
	"context"

	"github.com/TaimoorByteNinja/CRM-sub004/internal/domain/shared"
	"github.com/google/uuid"
)

// SaleRepository defines the interface for sale persistence
type SaleRepository interface {
	// FindByIDForTenant finds a sale with its items within a tenant
	FindByIDForTenant(ctx context.Context, tenantID shared.TenantID, id uuid.UUID) (*Sale, error)

	// Save creates a sale together with its line items
	Save(ctx context.Context, sale *Sale) error
}

// SalesSummaryRepository stores mirror rows for analytics reads
type SalesSummaryRepository interface {
	// Create inserts a new summary row
	Create(ctx context.Context, summary *SalesTransactionSummary) error

	// FindAllForTenant lists summaries of a tenant, newest first
	FindAllForTenant(ctx context.Context, tenantID shared.TenantID, filter shared.Filter) ([]SalesTransactionSummary, int64, error)
}

package persistence

import (
	"context"

	"github.com/TaimoorByteNinja/CRM-sub004/internal/domain/shared"
	"github.com/TaimoorByteNinja/CRM-sub004/internal/domain/trade"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSalesSummaryRepository implements SalesSummaryRepository using GORM
type GormSalesSummaryRepository struct {
	db *gorm.DB
}

// NewGormSalesSummaryRepository creates a new GormSalesSummaryRepository
func NewGormSalesSummaryRepository(db *gorm.DB) *GormSalesSummaryRepository {
	return &GormSalesSummaryRepository{db: db}
}

// Create inserts a summary row
func (r *GormSalesSummaryRepository) Create(ctx context.Context, summary *trade.SalesTransactionSummary) error {
	return r.db.WithContext(ctx).Create(summary).Error
}

// FindAllForTenant lists the summaries of a tenant, newest first
func (r *GormSalesSummaryRepository) FindAllForTenant(ctx context.Context, tenantID shared.TenantID, filter shared.Filter) ([]trade.SalesTransactionSummary, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&trade.SalesTransactionSummary{}).
		Scopes(tenantScope(tenantID))

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var summaries []trade.SalesTransactionSummary
	if err := query.
		Order(clause.OrderByColumn{Column: clause.Column{Name: "timestamp"}, Desc: true}).
		Scopes(paginate(filter)).
		Find(&summaries).Error; err != nil {
		return nil, 0, err
	}
	return summaries, total, nil
}

// Ensure GormSalesSummaryRepository implements SalesSummaryRepository
var _ trade.SalesSummaryRepository = (*GormSalesSummaryRepository)(nil)

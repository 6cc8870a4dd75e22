package persistence

import (
	"context"

	"github.com/TaimoorByteNinja/CRM-sub004/internal/domain/partner"
	"github.com/TaimoorByteNinja/CRM-sub004/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormBalanceEntryRepository implements BalanceEntryRepository using GORM
type GormBalanceEntryRepository struct {
	db *gorm.DB
}

// NewGormBalanceEntryRepository creates a new GormBalanceEntryRepository
func NewGormBalanceEntryRepository(db *gorm.DB) *GormBalanceEntryRepository {
	return &GormBalanceEntryRepository{db: db}
}

// Create appends a balance entry
func (r *GormBalanceEntryRepository) Create(ctx context.Context, entry *partner.BalanceEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// FindByParty lists the entries of a party, newest first
func (r *GormBalanceEntryRepository) FindByParty(ctx context.Context, tenantID shared.TenantID, partyID uuid.UUID, filter shared.Filter) ([]partner.BalanceEntry, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&partner.BalanceEntry{}).
		Scopes(tenantScope(tenantID)).
		Where("party_id = ?", partyID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entries []partner.BalanceEntry
	if err := query.
		Order("occurred_at DESC").
		Order("id DESC").
		Scopes(paginate(filter)).
		Find(&entries).Error; err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

// Ensure GormBalanceEntryRepository implements BalanceEntryRepository
var _ partner.BalanceEntryRepository = (*GormBalanceEntryRepository)(nil)

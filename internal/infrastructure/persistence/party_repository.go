package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/TaimoorByteNinja/CRM-sub004/internal/domain/partner"
	"github.com/TaimoorByteNinja/CRM-sub004/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormPartyRepository implements PartyRepository using GORM
type GormPartyRepository struct {
	db *gorm.DB
}

// NewGormPartyRepository creates a new GormPartyRepository
func NewGormPartyRepository(db *gorm.DB) *GormPartyRepository {
	return &GormPartyRepository{db: db}
}

// FindByIDForTenant finds a party by ID within a tenant
func (r *GormPartyRepository) FindByIDForTenant(ctx context.Context, tenantID shared.TenantID, id uuid.UUID) (*partner.Party, error) {
	var party partner.Party
	if err := r.db.WithContext(ctx).
		Scopes(tenantScope(tenantID)).
		Where("id = ?", id).
		First(&party).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &party, nil
}

// FindAllForTenant lists parties of a tenant with the total match count
func (r *GormPartyRepository) FindAllForTenant(ctx context.Context, tenantID shared.TenantID, filter partner.PartyFilter) ([]partner.Party, int64, error) {
	query := r.db.WithContext(ctx).Model(&partner.Party{}).Scopes(tenantScope(tenantID))
	if filter.Type != nil {
		query = query.Where("type = ?", *filter.Type)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR phone LIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var parties []partner.Party
	if err := query.
		Order(orderClause(filter.OrderBy, filter.OrderDir, PartySortFields, "created_at")).
		Scopes(paginate(filter.Filter)).
		Find(&parties).Error; err != nil {
		return nil, 0, err
	}
	return parties, total, nil
}

// Save creates or updates a party's descriptive fields. Balance, counter and
// last transaction time are owned by ApplyDelta and never overwritten here.
func (r *GormPartyRepository) Save(ctx context.Context, party *partner.Party) error {
	db := r.db.WithContext(ctx)

	result := db.Model(&partner.Party{}).
		Scopes(tenantScope(party.TenantID)).
		Where("id = ?", party.ID).
		Updates(map[string]any{
			"name":       party.Name,
			"type":       party.Type,
			"phone":      party.Phone,
			"updated_at": party.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}
	return db.Create(party).Error
}

// DeleteForTenant deletes a party within a tenant
func (r *GormPartyRepository) DeleteForTenant(ctx context.Context, tenantID shared.TenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Scopes(tenantScope(tenantID)).
		Where("id = ?", id).
		Delete(&partner.Party{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// ApplyDelta adds delta to the stored balance with a single UPDATE so
// concurrent writers never lose an increment, then reads the row back.
func (r *GormPartyRepository) ApplyDelta(ctx context.Context, tenantID shared.TenantID, id uuid.UUID, delta decimal.Decimal, at time.Time) (*partner.Party, error) {
	result := r.db.WithContext(ctx).
		Model(&partner.Party{}).
		Scopes(tenantScope(tenantID)).
		Where("id = ?", id).
		UpdateColumns(map[string]any{
			"balance":             gorm.Expr("balance + ?", delta),
			"total_transactions":  gorm.Expr("total_transactions + 1"),
			"last_transaction_at": at,
			"updated_at":          at,
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, shared.ErrNotFound
	}
	return r.FindByIDForTenant(ctx, tenantID, id)
}

// SetBalance overwrites the stored balance. Only balance repair uses it.
func (r *GormPartyRepository) SetBalance(ctx context.Context, tenantID shared.TenantID, id uuid.UUID, balance decimal.Decimal) (*partner.Party, error) {
	result := r.db.WithContext(ctx).
		Model(&partner.Party{}).
		Scopes(tenantScope(tenantID)).
		Where("id = ?", id).
		UpdateColumns(map[string]any{
			"balance":    balance,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, shared.ErrNotFound
	}
	return r.FindByIDForTenant(ctx, tenantID, id)
}

// ListKeys pages through every party of every tenant in id order, starting
// after the given id. Only the balance audit walks parties across tenants.
func (r *GormPartyRepository) ListKeys(ctx context.Context, after uuid.UUID, limit int) ([]partner.PartyKey, error) {
	if limit <= 0 {
		limit = 500
	}
	var rows []struct {
		TenantID shared.TenantID
		ID       uuid.UUID
	}
	if err := r.db.WithContext(ctx).
		Model(&partner.Party{}).
		Select("tenant_id", "id").
		Where("id > ?", after).
		Order("id ASC").
		Limit(limit).
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	keys := make([]partner.PartyKey, len(rows))
	for i, row := range rows {
		keys[i] = partner.PartyKey{TenantID: row.TenantID, ID: row.ID}
	}
	return keys, nil
}

// Ensure GormPartyRepository implements PartyRepository
var _ partner.PartyRepository = (*GormPartyRepository)(nil)

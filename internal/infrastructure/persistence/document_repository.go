package persistence

import (
	"context"
	"errors"

	"github.com/TaimoorByteNinja/CRM-sub004/internal/domain/finance"
	"github.com/TaimoorByteNinja/CRM-sub004/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormDocumentRepository implements DocumentRepository using GORM
type GormDocumentRepository struct {
	db *gorm.DB
}

// NewGormDocumentRepository creates a new GormDocumentRepository
func NewGormDocumentRepository(db *gorm.DB) *GormDocumentRepository {
	return &GormDocumentRepository{db: db}
}

// FindByIDForTenant finds a document by ID within a tenant
func (r *GormDocumentRepository) FindByIDForTenant(ctx context.Context, tenantID shared.TenantID, id uuid.UUID) (*finance.FinancialDocument, error) {
	var doc finance.FinancialDocument
	if err := r.db.WithContext(ctx).
		Scopes(tenantScope(tenantID)).
		Where("id = ?", id).
		First(&doc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &doc, nil
}

// FindAllForTenant lists documents of a tenant with the total match count
func (r *GormDocumentRepository) FindAllForTenant(ctx context.Context, tenantID shared.TenantID, filter finance.DocumentFilter) ([]finance.FinancialDocument, int64, error) {
	query := r.db.WithContext(ctx).Model(&finance.FinancialDocument{}).Scopes(tenantScope(tenantID))
	if filter.Kind != nil {
		query = query.Where("kind = ?", *filter.Kind)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.PartyID != nil {
		query = query.Where("party_id = ?", *filter.PartyID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var docs []finance.FinancialDocument
	if err := query.
		Order(orderClause(filter.OrderBy, filter.OrderDir, DocumentSortFields, "created_at")).
		Scopes(paginate(filter.Filter)).
		Find(&docs).Error; err != nil {
		return nil, 0, err
	}
	return docs, total, nil
}

// FindActiveByParty returns every active document referencing a party
func (r *GormDocumentRepository) FindActiveByParty(ctx context.Context, tenantID shared.TenantID, partyID uuid.UUID) ([]finance.FinancialDocument, error) {
	var docs []finance.FinancialDocument
	if err := r.db.WithContext(ctx).
		Scopes(tenantScope(tenantID)).
		Where("party_id = ? AND status = ?", partyID, finance.DocumentStatusActive).
		Order("created_at ASC").
		Find(&docs).Error; err != nil {
		return nil, err
	}
	return docs, nil
}

// CountByParty counts documents of any status referencing a party
func (r *GormDocumentRepository) CountByParty(ctx context.Context, tenantID shared.TenantID, partyID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&finance.FinancialDocument{}).
		Scopes(tenantScope(tenantID)).
		Where("party_id = ?", partyID).
		Count(&count).Error
	return count, err
}

// Save creates a document
func (r *GormDocumentRepository) Save(ctx context.Context, doc *finance.FinancialDocument) error {
	return r.db.WithContext(ctx).Create(doc).Error
}

// SaveWithLock saves the document with optimistic locking
func (r *GormDocumentRepository) SaveWithLock(ctx context.Context, doc *finance.FinancialDocument) error {
	expected := doc.GetVersion()
	doc.IncrementVersion()

	result := r.db.WithContext(ctx).
		Model(doc).
		Scopes(tenantScope(doc.TenantID)).
		Where("version = ?", expected).
		Select("*").
		Omit("id", "tenant_id", "created_at").
		Updates(doc)
	if result.Error != nil {
		doc.Version = expected
		return result.Error
	}
	if result.RowsAffected == 0 {
		doc.Version = expected
		return errDocumentModified
	}
	return nil
}

// DeleteWithLock deletes the document only if nobody changed it since it was loaded
func (r *GormDocumentRepository) DeleteWithLock(ctx context.Context, doc *finance.FinancialDocument) error {
	result := r.db.WithContext(ctx).
		Scopes(tenantScope(doc.TenantID)).
		Where("id = ? AND version = ?", doc.ID, doc.GetVersion()).
		Delete(&finance.FinancialDocument{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errDocumentModified
	}
	return nil
}

var errDocumentModified = shared.NewDomainError(shared.ErrConcurrencyConflict.Code,
	"Document has been modified or deleted by another request")

// Ensure GormDocumentRepository implements DocumentRepository
var _ finance.DocumentRepository = (*GormDocumentRepository)(nil)

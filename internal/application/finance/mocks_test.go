package finance

import (
	"context"
	"time"

	"github.com/TaimoorByteNinja/CRM-sub004/internal/application/ledger"
	"github.com/TaimoorByteNinja/CRM-sub004/internal/domain/finance"
	"github.com/TaimoorByteNinja/CRM-sub004/internal/domain/partner"
	"github.com/TaimoorByteNinja/CRM-sub004/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockDocumentRepository is a mock implementation of DocumentRepository
type MockDocumentRepository struct {
	mock.Mock
}

func (m *MockDocumentRepository) FindByIDForTenant(ctx context.Context, tenantID shared.TenantID, id uuid.UUID) (*finance.FinancialDocument, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*finance.FinancialDocument), args.Error(1)
}

func (m *MockDocumentRepository) FindAllForTenant(ctx context.Context, tenantID shared.TenantID, filter finance.DocumentFilter) ([]finance.FinancialDocument, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]finance.FinancialDocument), args.Get(1).(int64), args.Error(2)
}

func (m *MockDocumentRepository) FindActiveByParty(ctx context.Context, tenantID shared.TenantID, partyID uuid.UUID) ([]finance.FinancialDocument, error) {
	args := m.Called(ctx, tenantID, partyID)
	return args.Get(0).([]finance.FinancialDocument), args.Error(1)
}

func (m *MockDocumentRepository) CountByParty(ctx context.Context, tenantID shared.TenantID, partyID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tenantID, partyID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockDocumentRepository) Save(ctx context.Context, doc *finance.FinancialDocument) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

func (m *MockDocumentRepository) SaveWithLock(ctx context.Context, doc *finance.FinancialDocument) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

func (m *MockDocumentRepository) DeleteWithLock(ctx context.Context, doc *finance.FinancialDocument) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

var _ finance.DocumentRepository = (*MockDocumentRepository)(nil)

// MockPartyRepository is a mock implementation of PartyRepository
type MockPartyRepository struct {
	mock.Mock
}

func (m *MockPartyRepository) FindByIDForTenant(ctx context.Context, tenantID shared.TenantID, id uuid.UUID) (*partner.Party, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Party), args.Error(1)
}

func (m *MockPartyRepository) FindAllForTenant(ctx context.Context, tenantID shared.TenantID, filter partner.PartyFilter) ([]partner.Party, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]partner.Party), args.Get(1).(int64), args.Error(2)
}

func (m *MockPartyRepository) Save(ctx context.Context, party *partner.Party) error {
	args := m.Called(ctx, party)
	return args.Error(0)
}

func (m *MockPartyRepository) DeleteForTenant(ctx context.Context, tenantID shared.TenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func (m *MockPartyRepository) ApplyDelta(ctx context.Context, tenantID shared.TenantID, id uuid.UUID, delta decimal.Decimal, at time.Time) (*partner.Party, error) {
	args := m.Called(ctx, tenantID, id, delta, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Party), args.Error(1)
}

func (m *MockPartyRepository) SetBalance(ctx context.Context, tenantID shared.TenantID, id uuid.UUID, balance decimal.Decimal) (*partner.Party, error) {
	args := m.Called(ctx, tenantID, id, balance)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Party), args.Error(1)
}

var _ partner.PartyRepository = (*MockPartyRepository)(nil)

// MockReconciler is a mock implementation of Reconciler
type MockReconciler struct {
	mock.Mock
}

func (m *MockReconciler) OnCreate(ctx context.Context, doc *finance.FinancialDocument) (*ledger.Reconciliation, error) {
	args := m.Called(ctx, doc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Reconciliation), args.Error(1)
}

func (m *MockReconciler) OnStatusChange(ctx context.Context, doc *finance.FinancialDocument, prev, next finance.DocumentStatus) (*ledger.Reconciliation, error) {
	args := m.Called(ctx, doc, prev, next)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Reconciliation), args.Error(1)
}

func (m *MockReconciler) OnDelete(ctx context.Context, doc *finance.FinancialDocument) (*ledger.Reconciliation, error) {
	args := m.Called(ctx, doc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Reconciliation), args.Error(1)
}

func (m *MockReconciler) Effects() finance.EffectTable {
	return finance.DefaultEffectTable()
}

var _ Reconciler = (*MockReconciler)(nil)
var _ Reconciler = (*ledger.BalanceLedger)(nil)

package trade

import (
	"context"

	"github.com/TaimoorByteNinja/CRM-sub004/internal/domain/partner"
	"github.com/TaimoorByteNinja/CRM-sub004/internal/domain/shared"
	"github.com/TaimoorByteNinja/CRM-sub004/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockSaleRepository is a mock implementation of SaleRepository
type MockSaleRepository struct {
	mock.Mock
}

func (m *MockSaleRepository) FindByIDForTenant(ctx context.Context, tenantID shared.TenantID, id uuid.UUID) (*trade.Sale, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.Sale), args.Error(1)
}

func (m *MockSaleRepository) Save(ctx context.Context, sale *trade.Sale) error {
	args := m.Called(ctx, sale)
	return args.Error(0)
}

// MockSalesSummaryRepository is a mock implementation of SalesSummaryRepository
type MockSalesSummaryRepository struct {
	mock.Mock
}

func (m *MockSalesSummaryRepository) Create(ctx context.Context, summary *trade.SalesTransactionSummary) error {
	args := m.Called(ctx, summary)
	return args.Error(0)
}

func (m *MockSalesSummaryRepository) FindAllForTenant(ctx context.Context, tenantID shared.TenantID, filter shared.Filter) ([]trade.SalesTransactionSummary, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]trade.SalesTransactionSummary), args.Get(1).(int64), args.Error(2)
}

// MockPartyFinder is a mock PartyRepository; only FindByIDForTenant is used here
type MockPartyFinder struct {
	partner.PartyRepository
	mock.Mock
}

func (m *MockPartyFinder) FindByIDForTenant(ctx context.Context, tenantID shared.TenantID, id uuid.UUID) (*partner.Party, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Party), args.Error(1)
}

// syncPublisher dispatches events to handlers in-line, like the in-memory bus
type syncPublisher struct {
	handlers []shared.EventHandler
	err      error
}

func (p *syncPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	for _, event := range events {
		for _, h := range p.handlers {
			for _, t := range h.EventTypes() {
				if t == event.EventType() {
					_ = h.Handle(ctx, event)
				}
			}
		}
	}
	return p.err
}

var (
	_ trade.SaleRepository         = (*MockSaleRepository)(nil)
	_ trade.SalesSummaryRepository = (*MockSalesSummaryRepository)(nil)
	_ shared.EventPublisher        = (*syncPublisher)(nil)
)

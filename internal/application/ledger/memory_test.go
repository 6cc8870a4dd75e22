package ledger

import (
	"context"
	"sync"
	"time"

	"github.com/TaimoorByteNinja/CRM-sub004/internal/domain/finance"
	"github.com/TaimoorByteNinja/CRM-sub004/internal/domain/partner"
	"github.com/TaimoorByteNinja/CRM-sub004/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// memoryPartyRepository applies deltas under a mutex, matching the atomic
// single-statement update of the SQL repository.
type memoryPartyRepository struct {
	mu      sync.Mutex
	parties map[partner.PartyKey]*partner.Party
}

func newMemoryPartyRepository() *memoryPartyRepository {
	return &memoryPartyRepository{parties: make(map[partner.PartyKey]*partner.Party)}
}

func (r *memoryPartyRepository) add(p *partner.Party) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.parties[p.Key()] = p
}

func (r *memoryPartyRepository) get(tenantID shared.TenantID, id uuid.UUID) partner.Party {
	r.mu.Lock()
	defer r.mu.Unlock()
	return *r.parties[partner.PartyKey{TenantID: tenantID, ID: id}]
}

func (r *memoryPartyRepository) FindByIDForTenant(ctx context.Context, tenantID shared.TenantID, id uuid.UUID) (*partner.Party, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.parties[partner.PartyKey{TenantID: tenantID, ID: id}]
	if !ok {
		return nil, shared.ErrNotFound
	}
	c := *p
	return &c, nil
}

func (r *memoryPartyRepository) FindAllForTenant(ctx context.Context, tenantID shared.TenantID, filter partner.PartyFilter) ([]partner.Party, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []partner.Party
	for k, p := range r.parties {
		if k.TenantID == tenantID {
			out = append(out, *p)
		}
	}
	return out, int64(len(out)), nil
}

func (r *memoryPartyRepository) Save(ctx context.Context, party *partner.Party) error {
	r.add(party)
	return nil
}

func (r *memoryPartyRepository) DeleteForTenant(ctx context.Context, tenantID shared.TenantID, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.parties, partner.PartyKey{TenantID: tenantID, ID: id})
	return nil
}

func (r *memoryPartyRepository) ApplyDelta(ctx context.Context, tenantID shared.TenantID, id uuid.UUID, delta decimal.Decimal, at time.Time) (*partner.Party, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.parties[partner.PartyKey{TenantID: tenantID, ID: id}]
	if !ok {
		return nil, shared.ErrNotFound
	}
	p.ApplyDelta(delta, at)
	c := *p
	return &c, nil
}

func (r *memoryPartyRepository) SetBalance(ctx context.Context, tenantID shared.TenantID, id uuid.UUID, balance decimal.Decimal) (*partner.Party, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.parties[partner.PartyKey{TenantID: tenantID, ID: id}]
	if !ok {
		return nil, shared.ErrNotFound
	}
	p.ResetBalance(balance)
	c := *p
	return &c, nil
}

var _ partner.PartyRepository = (*memoryPartyRepository)(nil)

type memoryDocumentRepository struct {
	mu   sync.Mutex
	docs map[uuid.UUID]finance.FinancialDocument
}

func newMemoryDocumentRepository() *memoryDocumentRepository {
	return &memoryDocumentRepository{docs: make(map[uuid.UUID]finance.FinancialDocument)}
}

func (r *memoryDocumentRepository) FindByIDForTenant(ctx context.Context, tenantID shared.TenantID, id uuid.UUID) (*finance.FinancialDocument, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.docs[id]
	if !ok || d.TenantID != tenantID {
		return nil, shared.ErrNotFound
	}
	return &d, nil
}

func (r *memoryDocumentRepository) FindAllForTenant(ctx context.Context, tenantID shared.TenantID, filter finance.DocumentFilter) ([]finance.FinancialDocument, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []finance.FinancialDocument
	for _, d := range r.docs {
		if d.TenantID == tenantID {
			out = append(out, d)
		}
	}
	return out, int64(len(out)), nil
}

func (r *memoryDocumentRepository) FindActiveByParty(ctx context.Context, tenantID shared.TenantID, partyID uuid.UUID) ([]finance.FinancialDocument, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []finance.FinancialDocument
	for _, d := range r.docs {
		if d.TenantID == tenantID && d.HasParty() && *d.PartyID == partyID && d.IsActive() {
			out = append(out, d)
		}
	}
	return out, nil
}

func (r *memoryDocumentRepository) CountByParty(ctx context.Context, tenantID shared.TenantID, partyID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, d := range r.docs {
		if d.TenantID == tenantID && d.HasParty() && *d.PartyID == partyID {
			n++
		}
	}
	return n, nil
}

func (r *memoryDocumentRepository) Save(ctx context.Context, doc *finance.FinancialDocument) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.docs[doc.ID] = doc.Snapshot()
	return nil
}

func (r *memoryDocumentRepository) SaveWithLock(ctx context.Context, doc *finance.FinancialDocument) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.docs[doc.ID]
	if !ok || stored.Version != doc.Version {
		return shared.ErrConcurrencyConflict
	}
	doc.IncrementVersion()
	r.docs[doc.ID] = doc.Snapshot()
	return nil
}

func (r *memoryDocumentRepository) DeleteWithLock(ctx context.Context, doc *finance.FinancialDocument) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.docs[doc.ID]
	if !ok || stored.Version != doc.Version {
		return shared.ErrConcurrencyConflict
	}
	delete(r.docs, doc.ID)
	return nil
}

var _ finance.DocumentRepository = (*memoryDocumentRepository)(nil)

// MockBalanceEntryRepository is a mock implementation of BalanceEntryRepository
type MockBalanceEntryRepository struct {
	mock.Mock
}

func (m *MockBalanceEntryRepository) Create(ctx context.Context, entry *partner.BalanceEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockBalanceEntryRepository) FindByParty(ctx context.Context, tenantID shared.TenantID, partyID uuid.UUID, filter shared.Filter) ([]partner.BalanceEntry, int64, error) {
	args := m.Called(ctx, tenantID, partyID, filter)
	return args.Get(0).([]partner.BalanceEntry), args.Get(1).(int64), args.Error(2)
}

var _ partner.BalanceEntryRepository = (*MockBalanceEntryRepository)(nil)

// MockEventPublisher is a mock implementation of EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

// MockPartyLocker is a mock implementation of PartyLocker
type MockPartyLocker struct {
	mock.Mock
}

func (m *MockPartyLocker) Lock(ctx context.Context, tenantID shared.TenantID, partyID uuid.UUID) (func(), error) {
	args := m.Called(ctx, tenantID, partyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(func()), args.Error(1)
}

package trade

import (
	"context"
	"errors"
	"testing"

	"github.com/TaimoorByteNinja/CRM-sub004/internal/application/ledger"
	"github.com/TaimoorByteNinja/CRM-sub004/internal/domain/partner"
	"github.com/TaimoorByteNinja/CRM-sub004/internal/domain/shared"
	"github.com/TaimoorByteNinja/CRM-sub004/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type salesFixture struct {
	service   *SalesService
	sales     *MockSaleRepository
	summaries *MockSalesSummaryRepository
	parties   *MockPartyFinder
	publisher *syncPublisher
}

func newSalesFixture() *salesFixture {
	f := &salesFixture{
		sales:     new(MockSaleRepository),
		summaries: new(MockSalesSummaryRepository),
		parties:   new(MockPartyFinder),
	}
	f.publisher = &syncPublisher{
		handlers: []shared.EventHandler{NewTransactionMirror(f.summaries, trade.DefaultSummaryDefaults(), nil)},
	}
	f.service = NewSalesService(f.sales, f.summaries, f.parties, f.publisher, nil)
	return f
}

func TestSalesService_CreateSale(t *testing.T) {
	ctx := context.Background()

	t.Run("saves sale and mirrors it", func(t *testing.T) {
		f := newSalesFixture()
		f.sales.On("Save", mock.Anything, mock.AnythingOfType("*trade.Sale")).Return(nil).Once()
		f.summaries.On("Create", mock.Anything, mock.MatchedBy(func(s *trade.SalesTransactionSummary) bool {
			return s.ItemName == "Widget" && s.TotalPrice.Equal(decimal.NewFromInt(30))
		})).Return(nil).Once()

		resp, err := f.service.CreateSale(ctx, testTenant, CreateSaleRequest{
			TotalAmount:   decimal.NewFromInt(30),
			PaymentStatus: "paid",
			Items:         []SaleItemInput{{ItemName: "Widget", Quantity: decimal.NewFromInt(3), UnitPrice: decimal.NewFromInt(10)}},
		})
		require.NoError(t, err)
		assert.Len(t, resp.Items, 1)
		f.sales.AssertExpectations(t)
		f.summaries.AssertExpectations(t)
	})

	t.Run("mirror failure does not fail the sale", func(t *testing.T) {
		f := newSalesFixture()
		var saved *trade.Sale
		f.sales.On("Save", mock.Anything, mock.AnythingOfType("*trade.Sale")).
			Run(func(args mock.Arguments) { saved = args.Get(1).(*trade.Sale) }).Return(nil).Once()
		f.summaries.On("Create", mock.Anything, mock.Anything).Return(errors.New("summary table unavailable")).Once()
		f.publisher.err = errors.New("one handler failed")

		resp, err := f.service.CreateSale(ctx, testTenant, CreateSaleRequest{
			TotalAmount:   decimal.NewFromInt(250),
			PaymentStatus: "unpaid",
		})
		require.NoError(t, err)
		require.NotNil(t, saved)
		assert.Equal(t, saved.ID, resp.ID)
		assert.Empty(t, saved.GetDomainEvents())
		f.summaries.AssertNumberOfCalls(t, "Create", 1)
	})

	t.Run("sale save failure is returned and nothing is mirrored", func(t *testing.T) {
		f := newSalesFixture()
		f.sales.On("Save", mock.Anything, mock.Anything).Return(errors.New("deadlock")).Once()

		_, err := f.service.CreateSale(ctx, testTenant, CreateSaleRequest{TotalAmount: decimal.NewFromInt(5), PaymentStatus: "paid"})
		assert.Error(t, err)
		f.summaries.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("party name fills counterparty", func(t *testing.T) {
		f := newSalesFixture()
		party, err := partner.NewParty(testTenant, "Ravi Traders", partner.PartyTypeCustomer)
		require.NoError(t, err)
		f.parties.On("FindByIDForTenant", mock.Anything, testTenant, party.ID).Return(party, nil).Once()
		f.sales.On("Save", mock.Anything, mock.Anything).Return(nil).Once()
		f.summaries.On("Create", mock.Anything, mock.MatchedBy(func(s *trade.SalesTransactionSummary) bool {
			return s.CounterpartyName == "Ravi Traders"
		})).Return(nil).Once()

		partyID := party.ID
		resp, err := f.service.CreateSale(ctx, testTenant, CreateSaleRequest{
			TotalAmount: decimal.NewFromInt(5), PaymentStatus: "paid", PartyID: &partyID,
		})
		require.NoError(t, err)
		require.NotNil(t, resp.CounterpartyName)
		assert.Equal(t, "Ravi Traders", *resp.CounterpartyName)
		assert.Equal(t, &partyID, resp.PartyID)
	})

	t.Run("unknown party", func(t *testing.T) {
		f := newSalesFixture()
		id := uuid.New()
		f.parties.On("FindByIDForTenant", mock.Anything, testTenant, id).Return(nil, shared.ErrNotFound).Once()

		_, err := f.service.CreateSale(ctx, testTenant, CreateSaleRequest{
			TotalAmount: decimal.NewFromInt(5), PaymentStatus: "paid", PartyID: &id,
		})
		assert.ErrorIs(t, err, ledger.ErrPartyNotFound)
	})

	t.Run("invalid item", func(t *testing.T) {
		f := newSalesFixture()
		_, err := f.service.CreateSale(ctx, testTenant, CreateSaleRequest{
			TotalAmount:   decimal.NewFromInt(5),
			PaymentStatus: "paid",
			Items:         []SaleItemInput{{ItemName: "Widget", Quantity: decimal.Zero}},
		})
		assert.ErrorIs(t, err, shared.ErrValidation)
		f.sales.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestSalesService_ListSummaries(t *testing.T) {
	ctx := context.Background()
	f := newSalesFixture()
	summary := trade.BuildSalesSummary(testTenant, decimal.NewFromInt(9), trade.PaymentStatusPaid, nil, nil, trade.DefaultSummaryDefaults(), fixedTime)

	f.summaries.On("FindAllForTenant", mock.Anything, testTenant, shared.Filter{Page: 1, PageSize: 20}).
		Return([]trade.SalesTransactionSummary{*summary}, int64(1), nil).Once()

	list, total, err := f.service.ListSummaries(ctx, testTenant, ListSummariesRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, list, 1)
	assert.Equal(t, "Customer", list[0].CounterpartyName)
	assert.Equal(t, fixedTime, list[0].Timestamp)
}

package trade

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/TaimoorByteNinja/CRM-sub004/internal/domain/shared"
	"github.com/TaimoorByteNinja/CRM-sub004/internal/domain/trade"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testTenant = shared.TenantID("+14155552671")

var fixedTime = time.Date(2026, 4, 1, 9, 30, 0, 0, time.UTC)

func TestTransactionMirror_Mirror(t *testing.T) {
	ctx := context.Background()

	t.Run("empty sale gets placeholders", func(t *testing.T) {
		summaries := new(MockSalesSummaryRepository)
		mirror := NewTransactionMirror(summaries, trade.DefaultSummaryDefaults(), nil)
		sale, err := trade.NewSale(testTenant, decimal.NewFromInt(250), trade.PaymentStatusPaid, nil, nil)
		require.NoError(t, err)

		summaries.On("Create", mock.Anything, mock.AnythingOfType("*trade.SalesTransactionSummary")).Return(nil).Once()

		summary := mirror.Mirror(ctx, sale)
		require.NotNil(t, summary)
		assert.Equal(t, "sale", summary.Type)
		assert.Equal(t, trade.DefaultItemName, summary.ItemName)
		assert.True(t, summary.Quantity.Equal(decimal.NewFromInt(1)))
		assert.Equal(t, "Customer", summary.CounterpartyName)
		assert.True(t, summary.TotalPrice.Equal(decimal.NewFromInt(250)))
		assert.Equal(t, testTenant, summary.TenantID)
		assert.NotEqual(t, sale.ID, summary.ID)
		summaries.AssertExpectations(t)
	})

	t.Run("write failure is swallowed", func(t *testing.T) {
		summaries := new(MockSalesSummaryRepository)
		mirror := NewTransactionMirror(summaries, trade.SummaryDefaults{}, nil)
		sale, err := trade.NewSale(testTenant, decimal.NewFromInt(10), trade.PaymentStatusUnpaid, nil, nil)
		require.NoError(t, err)

		summaries.On("Create", mock.Anything, mock.Anything).Return(errors.New("table missing")).Once()

		assert.Nil(t, mirror.Mirror(ctx, sale))
		summaries.AssertNumberOfCalls(t, "Create", 1)
	})

	t.Run("panic is contained", func(t *testing.T) {
		summaries := new(MockSalesSummaryRepository)
		mirror := NewTransactionMirror(summaries, trade.SummaryDefaults{}, nil)
		sale, err := trade.NewSale(testTenant, decimal.NewFromInt(10), trade.PaymentStatusUnpaid, nil, nil)
		require.NoError(t, err)

		summaries.On("Create", mock.Anything, mock.Anything).Run(func(mock.Arguments) { panic("driver bug") }).Once()

		assert.NotPanics(t, func() {
			assert.Nil(t, mirror.Mirror(ctx, sale))
		})
	})
}

func TestTransactionMirror_Handle(t *testing.T) {
	ctx := context.Background()

	t.Run("uses first line item", func(t *testing.T) {
		summaries := new(MockSalesSummaryRepository)
		mirror := NewTransactionMirror(summaries, trade.DefaultSummaryDefaults(), nil)

		first, err := trade.NewSaleItem("Widget", decimal.NewFromInt(3), decimal.NewFromInt(10))
		require.NoError(t, err)
		second, err := trade.NewSaleItem("Gadget", decimal.NewFromInt(1), decimal.NewFromInt(5))
		require.NoError(t, err)
		name := "Ravi"
		sale, err := trade.NewSale(testTenant, decimal.NewFromInt(35), trade.PaymentStatusPartial, &name, []trade.SaleItem{first, second})
		require.NoError(t, err)

		summaries.On("Create", mock.Anything, mock.MatchedBy(func(s *trade.SalesTransactionSummary) bool {
			return s.ItemName == "Widget" && s.Quantity.Equal(decimal.NewFromInt(3)) &&
				s.CounterpartyName == "Ravi" && s.PaymentStatus == "partial"
		})).Return(nil).Once()

		require.NoError(t, mirror.Handle(ctx, sale.GetDomainEvents()[0]))
		summaries.AssertExpectations(t)
	})

	t.Run("failure returns nil", func(t *testing.T) {
		summaries := new(MockSalesSummaryRepository)
		mirror := NewTransactionMirror(summaries, trade.DefaultSummaryDefaults(), nil)
		sale, err := trade.NewSale(testTenant, decimal.NewFromInt(10), trade.PaymentStatusPaid, nil, nil)
		require.NoError(t, err)

		summaries.On("Create", mock.Anything, mock.Anything).Return(errors.New("timeout")).Once()

		assert.NoError(t, mirror.Handle(ctx, sale.GetDomainEvents()[0]))
	})

	t.Run("subscribes to SaleCreated only", func(t *testing.T) {
		mirror := NewTransactionMirror(new(MockSalesSummaryRepository), trade.SummaryDefaults{}, nil)
		assert.Equal(t, []string{trade.EventTypeSaleCreated}, mirror.EventTypes())
	})
}

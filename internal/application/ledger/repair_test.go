package ledger

import (
	"context"
	"testing"

	"github.com/TaimoorByteNinja/CRM-sub004/internal/domain/finance"
	"github.com/TaimoorByteNinja/CRM-sub004/internal/domain/partner"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func seedDocuments(t *testing.T, f *ledgerFixture) {
	t.Helper()
	ctx := context.Background()
	for _, doc := range []*finance.FinancialDocument{
		f.doc(t, finance.DocumentKindPurchase, 500, finance.DocumentStatusActive),
		f.doc(t, finance.DocumentKindPurchase, 70, finance.DocumentStatusDraft),
		f.doc(t, finance.DocumentKindPurchaseReturn, 200, finance.DocumentStatusActive),
		f.doc(t, finance.DocumentKindExpense, 30, finance.DocumentStatusActive),
	} {
		require.NoError(t, f.documents.Save(ctx, doc))
	}
}

func TestBalanceLedger_Verify(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, decimal.NewFromInt(-250))
	seedDocuments(t, f)

	report, err := f.ledger.Verify(ctx, testTenant, f.party.ID)
	require.NoError(t, err)

	assert.True(t, report.Stored.Equal(decimal.NewFromInt(-250)))
	assert.True(t, report.Computed.Equal(decimal.NewFromInt(-300)))
	assert.True(t, report.Drift.Equal(decimal.NewFromInt(-50)))
	assert.Equal(t, 3, report.ActiveDocuments)
	assert.False(t, report.InSync())
	assert.False(t, report.Repaired)
	assert.True(t, f.current().Balance.Equal(decimal.NewFromInt(-250)))
}

func TestBalanceLedger_Recompute(t *testing.T) {
	ctx := context.Background()

	t.Run("repairs drift and keeps counters", func(t *testing.T) {
		entries := new(MockBalanceEntryRepository)
		f := newFixture(t, decimal.NewFromInt(-250), WithEntryRepository(entries))
		seedDocuments(t, f)
		entries.On("Create", mock.Anything, mock.MatchedBy(func(e *partner.BalanceEntry) bool {
			return e.Reason == partner.EntryReasonRepair && e.Delta.Equal(decimal.NewFromInt(-50)) && e.DocumentID == nil
		})).Return(nil).Once()

		report, err := f.ledger.Recompute(ctx, testTenant, f.party.ID)
		require.NoError(t, err)

		assert.True(t, report.Repaired)
		party := f.current()
		assert.True(t, party.Balance.Equal(decimal.NewFromInt(-300)))
		assert.Equal(t, int64(0), party.TotalTransactions)
		assert.Nil(t, party.LastTransactionAt)
		entries.AssertExpectations(t)
	})

	t.Run("in sync is left alone", func(t *testing.T) {
		f := newFixture(t, decimal.NewFromInt(-300))
		seedDocuments(t, f)

		report, err := f.ledger.Recompute(ctx, testTenant, f.party.ID)
		require.NoError(t, err)
		assert.True(t, report.InSync())
		assert.False(t, report.Repaired)
	})

	t.Run("unknown party", func(t *testing.T) {
		f := newFixture(t, decimal.Zero)
		_, err := f.ledger.Recompute(ctx, testTenant, uuid.New())
		assert.ErrorIs(t, err, ErrPartyNotFound)
	})

	t.Run("requires tenant", func(t *testing.T) {
		f := newFixture(t, decimal.Zero)
		_, err := f.ledger.Recompute(ctx, "", f.party.ID)
		assert.Error(t, err)
	})
}

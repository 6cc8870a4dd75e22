package trade

import (
	"context"
	"fmt"
	"time"

	"github.com/TaimoorByteNinja/CRM-sub004/internal/domain/shared"
	"github.com/TaimoorByteNinja/CRM-sub004/internal/domain/trade"
	"github.com/TaimoorByteNinja/CRM-sub004/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// TransactionMirror writes one SalesTransactionSummary per created sale.
// The write is attempted once; failures are logged and never returned.
type TransactionMirror struct {
	summaries trade.SalesSummaryRepository
	defaults  trade.SummaryDefaults
	logger    *zap.Logger
	now       func() time.Time
}

// NewTransactionMirror creates a new transaction mirror
func NewTransactionMirror(
	summaries trade.SalesSummaryRepository,
	defaults trade.SummaryDefaults,
	logger *zap.Logger,
) *TransactionMirror {
	if logger == nil {
		logger = zap.NewNop()
	}
	if defaults.CounterpartyName == "" {
		defaults.CounterpartyName = trade.DefaultCounterpartyName
	}
	if defaults.ItemName == "" {
		defaults.ItemName = trade.DefaultItemName
	}
	return &TransactionMirror{
		summaries: summaries,
		defaults:  defaults,
		logger:    logger,
		now:       time.Now,
	}
}

// EventTypes returns the event types this handler is interested in
func (m *TransactionMirror) EventTypes() []string {
	return []string{trade.EventTypeSaleCreated}
}

// Handle mirrors a SaleCreatedEvent. It never returns an error.
func (m *TransactionMirror) Handle(ctx context.Context, event shared.DomainEvent) error {
	created, ok := event.(*trade.SaleCreatedEvent)
	if !ok {
		m.logger.Error("unexpected event type",
			zap.String("expected", trade.EventTypeSaleCreated),
			zap.String("actual", event.EventType()),
		)
		return nil
	}

	m.write(ctx, created.TenantID(), created.SaleID.String(), trade.BuildSalesSummary(
		created.TenantID(),
		created.TotalAmount,
		created.PaymentStatus,
		created.CounterpartyName,
		created.Lines,
		m.defaults,
		m.now(),
	))
	return nil
}

// Mirror derives and writes the summary of a persisted sale.
// It returns nil when the write failed.
func (m *TransactionMirror) Mirror(ctx context.Context, sale *trade.Sale) *trade.SalesTransactionSummary {
	summary := trade.BuildSalesSummary(
		sale.TenantID,
		sale.TotalAmount,
		sale.PaymentStatus,
		sale.CounterpartyName,
		sale.Lines(),
		m.defaults,
		m.now(),
	)
	if !m.write(ctx, sale.TenantID, sale.ID.String(), summary) {
		return nil
	}
	return summary
}

func (m *TransactionMirror) write(ctx context.Context, tenantID shared.TenantID, saleID string, summary *trade.SalesTransactionSummary) (ok bool) {
	ctx, span := telemetry.StartServiceSpan(ctx, "TransactionMirror", "write",
		telemetry.SpanAttrTenantID, tenantID.String(),
		telemetry.SpanAttrSaleID, saleID,
	)
	defer span.End()
	defer func() {
		if r := recover(); r != nil {
			telemetry.AddEvent(span, "panic", "value", fmt.Sprint(r))
			m.logger.Error("transaction mirror panicked",
				zap.String("tenant_id", tenantID.String()),
				zap.String("sale_id", saleID),
				zap.Any("panic", r),
			)
			ok = false
		}
	}()

	if err := m.summaries.Create(ctx, summary); err != nil {
		telemetry.RecordError(span, err)
		m.logger.Error("failed to write sales transaction summary",
			zap.String("tenant_id", tenantID.String()),
			zap.String("sale_id", saleID),
			zap.Error(err),
		)
		return false
	}

	m.logger.Debug("sales transaction summary written",
		zap.String("tenant_id", tenantID.String()),
		zap.String("sale_id", saleID),
		zap.String("summary_id", summary.ID.String()),
	)
	return true
}

var _ shared.EventHandler = (*TransactionMirror)(nil)

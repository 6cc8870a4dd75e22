package trade

import (
	"context"
	"errors"
	"fmt"

	"github.com/TaimoorByteNinja/CRM-sub004/internal/application/ledger"
	"github.com/TaimoorByteNinja/CRM-sub004/internal/domain/partner"
	"github.com/TaimoorByteNinja/CRM-sub004/internal/domain/shared"
	"github.com/TaimoorByteNinja/CRM-sub004/internal/domain/trade"
	"github.com/TaimoorByteNinja/CRM-sub004/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SalesService records sales and hands SaleCreated to subscribers
type SalesService struct {
	sales     trade.SaleRepository
	summaries trade.SalesSummaryRepository
	parties   partner.PartyRepository
	publisher shared.EventPublisher
	logger    *zap.Logger
}

// NewSalesService creates a new sales service
func NewSalesService(
	sales trade.SaleRepository,
	summaries trade.SalesSummaryRepository,
	parties partner.PartyRepository,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *SalesService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SalesService{
		sales:     sales,
		summaries: summaries,
		parties:   parties,
		publisher: publisher,
		logger:    logger,
	}
}

// CreateSale persists a sale with its items and publishes SaleCreated.
// The result depends only on the sale write.
func (s *SalesService) CreateSale(ctx context.Context, tenantID shared.TenantID, req CreateSaleRequest) (_ *SaleResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "SalesService", "create_sale",
		telemetry.SpanAttrTenantID, tenantID.String(),
	)
	defer func() {
		telemetry.RecordError(span, err)
		span.End()
	}()

	items := make([]trade.SaleItem, 0, len(req.Items))
	for _, input := range req.Items {
		item, err := trade.NewSaleItem(input.ItemName, input.Quantity, input.UnitPrice)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	counterparty := req.CounterpartyName
	if req.PartyID != nil {
		party, err := s.parties.FindByIDForTenant(ctx, tenantID, *req.PartyID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil, ledger.ErrPartyNotFound
			}
			return nil, fmt.Errorf("failed to load party: %w", err)
		}
		if counterparty == nil {
			name := party.Name
			counterparty = &name
		}
	}

	sale, err := trade.NewSale(tenantID, req.TotalAmount, trade.PaymentStatus(req.PaymentStatus), counterparty, items)
	if err != nil {
		return nil, err
	}
	if req.PartyID != nil {
		sale.SetParty(*req.PartyID)
	}

	if err := s.sales.Save(ctx, sale); err != nil {
		return nil, fmt.Errorf("failed to save sale: %w", err)
	}
	telemetry.SetAttributes(span, telemetry.SpanAttrSaleID, sale.ID.String())

	s.logger.Info("sale created",
		zap.String("tenant_id", tenantID.String()),
		zap.String("sale_id", sale.ID.String()),
		zap.String("total_amount", sale.TotalAmount.String()),
		zap.Int("items", len(sale.Items)),
	)

	s.publish(ctx, sale)

	resp := ToSaleResponse(sale)
	return &resp, nil
}

// GetByID returns a sale with its items
func (s *SalesService) GetByID(ctx context.Context, tenantID shared.TenantID, id uuid.UUID) (*SaleResponse, error) {
	sale, err := s.sales.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	resp := ToSaleResponse(sale)
	return &resp, nil
}

// ListSummaries returns mirrored sales summaries, newest first
func (s *SalesService) ListSummaries(ctx context.Context, tenantID shared.TenantID, req ListSummariesRequest) ([]SummaryResponse, int64, error) {
	filter := shared.Filter{Page: req.Page, PageSize: req.PageSize}.Normalize()
	summaries, total, err := s.summaries.FindAllForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, 0, err
	}
	responses := make([]SummaryResponse, len(summaries))
	for i := range summaries {
		responses[i] = ToSummaryResponse(&summaries[i])
	}
	return responses, total, nil
}

func (s *SalesService) publish(ctx context.Context, sale *trade.Sale) {
	events := sale.GetDomainEvents()
	sale.ClearDomainEvents()
	if s.publisher == nil || len(events) == 0 {
		return
	}
	if err := s.publisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish sale events",
			zap.String("sale_id", sale.ID.String()),
			zap.Error(err),
		)
	}
}

package partner

import (
	"context"
	"fmt"

	"github.com/TaimoorByteNinja/CRM-sub004/internal/application/ledger"
	"github.com/TaimoorByteNinja/CRM-sub004/internal/domain/finance"
	"github.com/TaimoorByteNinja/CRM-sub004/internal/domain/partner"
	"github.com/TaimoorByteNinja/CRM-sub004/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BalanceRepairer verifies and repairs party balances from documents
type BalanceRepairer interface {
	Verify(ctx context.Context, tenantID shared.TenantID, partyID uuid.UUID) (*ledger.DriftReport, error)
	Recompute(ctx context.Context, tenantID shared.TenantID, partyID uuid.UUID) (*ledger.DriftReport, error)
}

// PartyService handles party registration and balance inspection.
// Balances themselves are only changed by the ledger.
type PartyService struct {
	parties   partner.PartyRepository
	documents finance.DocumentRepository
	entries   partner.BalanceEntryRepository
	repairer  BalanceRepairer
	logger    *zap.Logger
}

// NewPartyService creates a new party service
func NewPartyService(
	parties partner.PartyRepository,
	documents finance.DocumentRepository,
	entries partner.BalanceEntryRepository,
	repairer BalanceRepairer,
	logger *zap.Logger,
) *PartyService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PartyService{
		parties:   parties,
		documents: documents,
		entries:   entries,
		repairer:  repairer,
		logger:    logger,
	}
}

// Register creates a party with a zero balance
func (s *PartyService) Register(ctx context.Context, tenantID shared.TenantID, req CreatePartyRequest) (*PartyResponse, error) {
	party, err := partner.NewParty(tenantID, req.Name, partner.PartyType(req.Type))
	if err != nil {
		return nil, err
	}
	if req.Phone != "" {
		party.SetPhone(req.Phone)
	}

	if err := s.parties.Save(ctx, party); err != nil {
		return nil, fmt.Errorf("failed to save party: %w", err)
	}

	s.logger.Info("party registered",
		zap.String("tenant_id", tenantID.String()),
		zap.String("party_id", party.ID.String()),
		zap.String("type", string(party.Type)),
	)

	resp := ToPartyResponse(party)
	return &resp, nil
}

// GetByID returns a party by ID
func (s *PartyService) GetByID(ctx context.Context, tenantID shared.TenantID, id uuid.UUID) (*PartyResponse, error) {
	party, err := s.parties.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	resp := ToPartyResponse(party)
	return &resp, nil
}

// List returns parties of a tenant
func (s *PartyService) List(ctx context.Context, tenantID shared.TenantID, req ListPartiesRequest) ([]PartyResponse, int64, error) {
	filter := partner.PartyFilter{
		Filter: shared.Filter{
			Page:     req.Page,
			PageSize: req.PageSize,
			OrderBy:  req.OrderBy,
			OrderDir: req.OrderDir,
		}.Normalize(),
		Search: req.Search,
	}
	if req.Type != "" {
		t := partner.PartyType(req.Type)
		filter.Type = &t
	}

	parties, total, err := s.parties.FindAllForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, 0, err
	}
	responses := make([]PartyResponse, len(parties))
	for i := range parties {
		responses[i] = ToPartyResponse(&parties[i])
	}
	return responses, total, nil
}

// Delete removes a party that no document references
func (s *PartyService) Delete(ctx context.Context, tenantID shared.TenantID, id uuid.UUID) error {
	if _, err := s.parties.FindByIDForTenant(ctx, tenantID, id); err != nil {
		return err
	}

	count, err := s.documents.CountByParty(ctx, tenantID, id)
	if err != nil {
		return fmt.Errorf("failed to count party documents: %w", err)
	}
	if count > 0 {
		return shared.NewDomainError(shared.ErrInvalidState.Code,
			fmt.Sprintf("Party is referenced by %d document(s)", count))
	}

	return s.parties.DeleteForTenant(ctx, tenantID, id)
}

// Verify compares the stored balance with the documents
func (s *PartyService) Verify(ctx context.Context, tenantID shared.TenantID, id uuid.UUID) (*DriftResponse, error) {
	report, err := s.repairer.Verify(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	resp := ToDriftResponse(report)
	return &resp, nil
}

// Recompute repairs the stored balance from the documents
func (s *PartyService) Recompute(ctx context.Context, tenantID shared.TenantID, id uuid.UUID) (*DriftResponse, error) {
	report, err := s.repairer.Recompute(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	resp := ToDriftResponse(report)
	return &resp, nil
}

// ListEntries returns the balance history of a party, newest first
func (s *PartyService) ListEntries(ctx context.Context, tenantID shared.TenantID, id uuid.UUID, req ListEntriesRequest) ([]BalanceEntryResponse, int64, error) {
	if _, err := s.parties.FindByIDForTenant(ctx, tenantID, id); err != nil {
		return nil, 0, err
	}

	filter := shared.Filter{Page: req.Page, PageSize: req.PageSize}.Normalize()
	entries, total, err := s.entries.FindByParty(ctx, tenantID, id, filter)
	if err != nil {
		return nil, 0, err
	}
	responses := make([]BalanceEntryResponse, len(entries))
	for i := range entries {
		responses[i] = ToBalanceEntryResponse(&entries[i])
	}
	return responses, total, nil
}

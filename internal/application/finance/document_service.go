package finance

import (
	"context"
	"errors"
	"fmt"

	"github.com/TaimoorByteNinja/CRM-sub004/internal/application/ledger"
	"github.com/TaimoorByteNinja/CRM-sub004/internal/domain/finance"
	"github.com/TaimoorByteNinja/CRM-sub004/internal/domain/partner"
	"github.com/TaimoorByteNinja/CRM-sub004/internal/domain/shared"
	"github.com/TaimoorByteNinja/CRM-sub004/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Reconciler applies document lifecycle events to party balances
type Reconciler interface {
	OnCreate(ctx context.Context, doc *finance.FinancialDocument) (*ledger.Reconciliation, error)
	OnStatusChange(ctx context.Context, doc *finance.FinancialDocument, prev, next finance.DocumentStatus) (*ledger.Reconciliation, error)
	OnDelete(ctx context.Context, doc *finance.FinancialDocument) (*ledger.Reconciliation, error)
	Effects() finance.EffectTable
}

// DocumentService persists financial documents and reconciles party balances.
//
// The document write always happens first and is never undone by a failed
// reconciliation. In strict mode a missing party is detected before the
// write and the operation is rejected instead.
type DocumentService struct {
	documents  finance.DocumentRepository
	parties    partner.PartyRepository
	reconciler Reconciler
	strict     bool
	logger     *zap.Logger
}

// NewDocumentService creates a new document service
func NewDocumentService(
	documents finance.DocumentRepository,
	parties partner.PartyRepository,
	reconciler Reconciler,
	strict bool,
	logger *zap.Logger,
) *DocumentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DocumentService{
		documents:  documents,
		parties:    parties,
		reconciler: reconciler,
		strict:     strict,
		logger:     logger,
	}
}

// Create creates a document and applies its effect
func (s *DocumentService) Create(ctx context.Context, tenantID shared.TenantID, req CreateDocumentRequest) (_ *DocumentResult, err error) {
	ctx, span := s.startSpan(ctx, "create", tenantID)
	defer endSpan(span, &err)

	status := finance.DocumentStatusDraft
	if req.Status != "" {
		status = finance.DocumentStatus(req.Status)
	}

	doc, err := finance.NewFinancialDocument(tenantID, finance.DocumentKind(req.Kind), req.PartyID, req.Amount, status)
	if err != nil {
		return nil, err
	}
	doc.Reference = req.Reference
	doc.Remark = req.Remark

	if err := s.requireParty(ctx, tenantID, doc.PartyID); err != nil {
		return nil, err
	}

	if err := s.documents.Save(ctx, doc); err != nil {
		return nil, fmt.Errorf("failed to save document: %w", err)
	}

	result := s.newResult(doc)
	s.collect(result, doc, func() (*ledger.Reconciliation, error) {
		return s.reconciler.OnCreate(ctx, doc)
	})
	return result, nil
}

// ChangeStatus moves a document to a new status and applies the difference
func (s *DocumentService) ChangeStatus(ctx context.Context, tenantID shared.TenantID, id uuid.UUID, req ChangeStatusRequest) (_ *DocumentResult, err error) {
	ctx, span := s.startSpan(ctx, "change_status", tenantID)
	defer endSpan(span, &err)
	telemetry.SetAttributes(span, telemetry.SpanAttrDocumentID, id.String())

	doc, err := s.documents.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	next := finance.DocumentStatus(req.Status)
	if err := finance.ValidateTransition(doc.Status, next); err != nil {
		return nil, err
	}
	if !s.reconciler.Effects().Transition(*doc, doc.Status, next).IsZero() {
		if err := s.requireParty(ctx, tenantID, doc.PartyID); err != nil {
			return nil, err
		}
	}

	prev, err := doc.ChangeStatus(next)
	if err != nil {
		return nil, err
	}
	if prev == next {
		return s.newResult(doc), nil
	}

	if err := s.saveWithLock(ctx, doc); err != nil {
		return nil, err
	}

	result := s.newResult(doc)
	s.collect(result, doc, func() (*ledger.Reconciliation, error) {
		return s.reconciler.OnStatusChange(ctx, doc, prev, next)
	})
	return result, nil
}

// Update edits a document. A change of amount or party on a document that
// contributes to a balance is reconciled as removing the old document and
// adding the new one.
func (s *DocumentService) Update(ctx context.Context, tenantID shared.TenantID, id uuid.UUID, req UpdateDocumentRequest) (_ *DocumentResult, err error) {
	ctx, span := s.startSpan(ctx, "update", tenantID)
	defer endSpan(span, &err)
	telemetry.SetAttributes(span, telemetry.SpanAttrDocumentID, id.String())

	doc, err := s.documents.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	before := doc.Snapshot()

	if req.Amount != nil {
		if err := doc.SetAmount(*req.Amount); err != nil {
			return nil, err
		}
	}
	if req.ClearParty {
		doc.SetParty(nil)
	} else if req.PartyID != nil {
		doc.SetParty(req.PartyID)
	}
	if req.Reference != nil {
		doc.Reference = *req.Reference
	}
	if req.Remark != nil {
		doc.Remark = *req.Remark
	}
	doc.Touch()

	if !samePartyID(before.PartyID, doc.PartyID) {
		if err := s.requireParty(ctx, tenantID, doc.PartyID); err != nil {
			return nil, err
		}
	}

	if err := s.saveWithLock(ctx, doc); err != nil {
		return nil, err
	}

	result := s.newResult(doc)
	if before.Amount.Equal(doc.Amount) && samePartyID(before.PartyID, doc.PartyID) {
		return result, nil
	}
	s.collect(result, &before, func() (*ledger.Reconciliation, error) {
		return s.reconciler.OnDelete(ctx, &before)
	})
	s.collect(result, doc, func() (*ledger.Reconciliation, error) {
		return s.reconciler.OnCreate(ctx, doc)
	})
	return result, nil
}

// Delete removes a document and reverses its effect
func (s *DocumentService) Delete(ctx context.Context, tenantID shared.TenantID, id uuid.UUID) (_ *DocumentResult, err error) {
	ctx, span := s.startSpan(ctx, "delete", tenantID)
	defer endSpan(span, &err)
	telemetry.SetAttributes(span, telemetry.SpanAttrDocumentID, id.String())

	doc, err := s.documents.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if !s.reconciler.Effects().Effect(*doc).IsZero() {
		if err := s.requireParty(ctx, tenantID, doc.PartyID); err != nil {
			return nil, err
		}
	}

	if err := s.documents.DeleteWithLock(ctx, doc); err != nil {
		if errors.Is(err, shared.ErrConcurrencyConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to delete document: %w", err)
	}

	result := &DocumentResult{}
	s.collect(result, doc, func() (*ledger.Reconciliation, error) {
		return s.reconciler.OnDelete(ctx, doc)
	})
	return result, nil
}

// GetByID returns a document by ID
func (s *DocumentService) GetByID(ctx context.Context, tenantID shared.TenantID, id uuid.UUID) (*DocumentResponse, error) {
	doc, err := s.documents.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	resp := ToDocumentResponse(doc, s.reconciler.Effects())
	return &resp, nil
}

// List returns documents of a tenant
func (s *DocumentService) List(ctx context.Context, tenantID shared.TenantID, req ListDocumentsRequest) ([]DocumentResponse, int64, error) {
	filter := finance.DocumentFilter{
		Filter: shared.Filter{
			Page:     req.Page,
			PageSize: req.PageSize,
			OrderBy:  req.OrderBy,
			OrderDir: req.OrderDir,
		}.Normalize(),
	}
	if req.PartyID != "" {
		partyID, err := uuid.Parse(req.PartyID)
		if err != nil {
			return nil, 0, shared.NewValidationError("Invalid party ID")
		}
		filter.PartyID = &partyID
	}
	if req.Kind != "" {
		kind := finance.DocumentKind(req.Kind)
		filter.Kind = &kind
	}
	if req.Status != "" {
		status := finance.DocumentStatus(req.Status)
		filter.Status = &status
	}

	docs, total, err := s.documents.FindAllForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, 0, err
	}

	effects := s.reconciler.Effects()
	responses := make([]DocumentResponse, len(docs))
	for i := range docs {
		responses[i] = ToDocumentResponse(&docs[i], effects)
	}
	return responses, total, nil
}

func (s *DocumentService) startSpan(ctx context.Context, method string, tenantID shared.TenantID) (context.Context, trace.Span) {
	return telemetry.StartServiceSpan(ctx, "DocumentService", method,
		telemetry.SpanAttrTenantID, tenantID.String(),
	)
}

func endSpan(span trace.Span, err *error) {
	telemetry.RecordError(span, *err)
	span.End()
}

func (s *DocumentService) newResult(doc *finance.FinancialDocument) *DocumentResult {
	resp := ToDocumentResponse(doc, s.reconciler.Effects())
	return &DocumentResult{Document: &resp}
}

// collect runs one reconciliation and turns its failure into a warning
func (s *DocumentService) collect(result *DocumentResult, doc *finance.FinancialDocument, run func() (*ledger.Reconciliation, error)) {
	rec, err := run()
	if rec != nil && (rec.Applied || rec.PartyID != nil) {
		result.Reconciliations = append(result.Reconciliations, ToReconciliationResponse(rec))
	}
	if err == nil {
		return
	}

	var warning string
	switch {
	case errors.Is(err, ledger.ErrPartyNotFound):
		warning = fmt.Sprintf("party %s not found; balance not reconciled", partyLabel(doc.PartyID))
	case errors.Is(err, shared.ErrConcurrencyConflict):
		warning = fmt.Sprintf("party %s is busy; balance not reconciled, run a recompute", partyLabel(doc.PartyID))
	default:
		warning = "balance not reconciled: " + err.Error()
	}

	s.logger.Warn("document saved without balance reconciliation",
		zap.String("tenant_id", doc.TenantID.String()),
		zap.String("document_id", doc.ID.String()),
		zap.String("party_id", partyLabel(doc.PartyID)),
		zap.Error(err),
	)
	result.Warnings = append(result.Warnings, warning)
}

// saveWithLock writes a loaded document back. A concurrent writer makes it
// fail with ErrConcurrencyConflict, and no reconciliation may follow.
func (s *DocumentService) saveWithLock(ctx context.Context, doc *finance.FinancialDocument) error {
	if err := s.documents.SaveWithLock(ctx, doc); err != nil {
		if errors.Is(err, shared.ErrConcurrencyConflict) {
			return err
		}
		return fmt.Errorf("failed to save document: %w", err)
	}
	return nil
}

// requireParty rejects references to unknown parties in strict mode
func (s *DocumentService) requireParty(ctx context.Context, tenantID shared.TenantID, partyID *uuid.UUID) error {
	if !s.strict || partyID == nil {
		return nil
	}
	if _, err := s.parties.FindByIDForTenant(ctx, tenantID, *partyID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return ledger.ErrPartyNotFound
		}
		return fmt.Errorf("failed to load party: %w", err)
	}
	return nil
}

func samePartyID(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func partyLabel(id *uuid.UUID) string {
	if id == nil {
		return "-"
	}
	return id.String()
}

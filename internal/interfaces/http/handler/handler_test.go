package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	financeapp "github.com/TaimoorByteNinja/CRM-sub004/internal/application/finance"
	"github.com/TaimoorByteNinja/CRM-sub004/internal/application/ledger"
	partnerapp "github.com/TaimoorByteNinja/CRM-sub004/internal/application/partner"
	tradeapp "github.com/TaimoorByteNinja/CRM-sub004/internal/application/trade"
	"github.com/TaimoorByteNinja/CRM-sub004/internal/domain/trade"
	"github.com/TaimoorByteNinja/CRM-sub004/internal/infrastructure/event"
	"github.com/TaimoorByteNinja/CRM-sub004/internal/infrastructure/lock"
	"github.com/TaimoorByteNinja/CRM-sub004/internal/infrastructure/persistence"
	"github.com/TaimoorByteNinja/CRM-sub004/internal/interfaces/http/dto"
	"github.com/TaimoorByteNinja/CRM-sub004/internal/interfaces/http/middleware"
	"github.com/TaimoorByteNinja/CRM-sub004/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const (
	tenantHeader = "+1 415 555 2671"
	otherTenant  = "+91 98765 43210"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *dto.ErrorInfo  `json:"error"`
	Meta    *dto.Meta       `json:"meta"`
}

type apiTest struct {
	t      *testing.T
	engine *gin.Engine
}

// newAPITest wires the full ledger stack over an in-memory sqlite database
func newAPITest(t *testing.T, strict bool) *apiTest {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	database := persistence.NewDatabaseFromGorm(db)
	require.NoError(t, database.AutoMigrate())

	parties := persistence.NewGormPartyRepository(db)
	documents := persistence.NewGormDocumentRepository(db)
	entries := persistence.NewGormBalanceEntryRepository(db)
	sales := persistence.NewGormSaleRepository(db)
	summaries := persistence.NewGormSalesSummaryRepository(db)

	log := zap.NewNop()
	bus := event.NewInMemoryEventBus(log)
	bus.Subscribe(tradeapp.NewTransactionMirror(summaries, trade.DefaultSummaryDefaults(), log))

	balanceLedger := ledger.NewBalanceLedger(parties, documents,
		ledger.WithEntryRepository(entries),
		ledger.WithLocker(lock.NewKeyedMutexLocker(0)),
		ledger.WithPublisher(bus),
		ledger.WithLogger(log),
	)

	documentHandler := NewDocumentHandler(financeapp.NewDocumentService(documents, parties, balanceLedger, strict, log))
	partyHandler := NewPartyHandler(partnerapp.NewPartyService(parties, documents, entries, balanceLedger, log))
	saleHandler := NewSaleHandler(tradeapp.NewSalesService(sales, summaries, parties, bus, log))

	engine := gin.New()
	engine.Use(middleware.RequestID())
	r := router.NewRouter(engine).Use(middleware.TenantMiddlewareWithConfig(middleware.DefaultTenantConfig()))
	r.Register(DocumentRoutes(documentHandler))
	r.Register(PartyRoutes(partyHandler))
	r.Register(SaleRoutes(saleHandler))
	r.Setup()

	return &apiTest{t: t, engine: engine}
}

func (a *apiTest) do(method, path, tenant string, body any) (*httptest.ResponseRecorder, envelope) {
	a.t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if tenant != "" {
		req.Header.Set(middleware.TenantHeaderKey, tenant)
	}

	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

func (a *apiTest) createParty(name string) partnerapp.PartyResponse {
	a.t.Helper()
	w, env := a.do(http.MethodPost, "/api/v1/parties", tenantHeader, gin.H{"name": name, "type": "supplier"})
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())

	var party partnerapp.PartyResponse
	require.NoError(a.t, json.Unmarshal(env.Data, &party))
	return party
}

func (a *apiTest) getParty(id string) partnerapp.PartyResponse {
	a.t.Helper()
	w, env := a.do(http.MethodGet, "/api/v1/parties/"+id, tenantHeader, nil)
	require.Equal(a.t, http.StatusOK, w.Code, w.Body.String())

	var party partnerapp.PartyResponse
	require.NoError(a.t, json.Unmarshal(env.Data, &party))
	return party
}

func decodeResult(t *testing.T, env envelope) financeapp.DocumentResult {
	t.Helper()
	var result financeapp.DocumentResult
	require.NoError(t, json.Unmarshal(env.Data, &result))
	return result
}

func TestDocumentLifecycle(t *testing.T) {
	api := newAPITest(t, false)
	party := api.createParty("Acme Supplies")

	w, env := api.do(http.MethodPost, "/api/v1/documents", tenantHeader, gin.H{
		"kind":     "purchase",
		"party_id": party.ID,
		"amount":   "250.00",
		"status":   "active",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decodeResult(t, env)
	require.NotNil(t, created.Document)
	require.Len(t, created.Reconciliations, 1)
	assert.True(t, created.Reconciliations[0].Applied)
	assert.True(t, decimal.NewFromInt(-250).Equal(created.Reconciliations[0].Delta))
	assert.Empty(t, created.Warnings)

	got := api.getParty(party.ID.String())
	assert.True(t, decimal.NewFromInt(-250).Equal(got.Balance), got.Balance.String())
	assert.Equal(t, int64(1), got.TotalTransactions)

	docPath := "/api/v1/documents/" + created.Document.ID.String()

	t.Run("edit amount reconciles difference", func(t *testing.T) {
		w, _ := api.do(http.MethodPut, docPath, tenantHeader, gin.H{"amount": "100"})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		got := api.getParty(party.ID.String())
		assert.True(t, decimal.NewFromInt(-100).Equal(got.Balance), got.Balance.String())
	})

	t.Run("back to draft removes effect", func(t *testing.T) {
		w, env := api.do(http.MethodPatch, docPath+"/status", tenantHeader, gin.H{"status": "draft"})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, "draft", decodeResult(t, env).Document.Status)

		got := api.getParty(party.ID.String())
		assert.True(t, got.Balance.IsZero(), got.Balance.String())
	})

	t.Run("party with documents cannot be deleted", func(t *testing.T) {
		w, env := api.do(http.MethodDelete, "/api/v1/parties/"+party.ID.String(), tenantHeader, nil)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, dto.ErrCodeInvalidState, env.Error.Code)
	})

	t.Run("list filters by party", func(t *testing.T) {
		w, env := api.do(http.MethodGet, "/api/v1/documents?party_id="+party.ID.String(), tenantHeader, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		require.NotNil(t, env.Meta)
		assert.Equal(t, int64(1), env.Meta.Total)
		assert.Equal(t, 20, env.Meta.PageSize)
	})

	t.Run("delete document then party", func(t *testing.T) {
		w, _ := api.do(http.MethodDelete, docPath, tenantHeader, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		w, _ = api.do(http.MethodGet, docPath, tenantHeader, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)

		w, _ = api.do(http.MethodDelete, "/api/v1/parties/"+party.ID.String(), tenantHeader, nil)
		assert.Equal(t, http.StatusNoContent, w.Code)
	})
}

func TestDocumentUnknownParty(t *testing.T) {
	body := gin.H{
		"kind":     "purchase",
		"party_id": "6f1d8a52-3b8e-4d0a-9c57-2f6a1f0e9b11",
		"amount":   "10",
		"status":   "active",
	}

	t.Run("lenient mode persists with warning", func(t *testing.T) {
		api := newAPITest(t, false)
		w, env := api.do(http.MethodPost, "/api/v1/documents", tenantHeader, body)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		result := decodeResult(t, env)
		require.NotNil(t, result.Document)
		require.Len(t, result.Warnings, 1)
		assert.Contains(t, result.Warnings[0], "not found")
	})

	t.Run("strict mode rejects", func(t *testing.T) {
		api := newAPITest(t, true)
		w, env := api.do(http.MethodPost, "/api/v1/documents", tenantHeader, body)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, dto.ErrCodePartyNotFound, env.Error.Code)

		w, env = api.do(http.MethodGet, "/api/v1/documents", tenantHeader, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, int64(0), env.Meta.Total)
	})
}

func TestDocumentRequestErrors(t *testing.T) {
	api := newAPITest(t, false)

	t.Run("missing tenant", func(t *testing.T) {
		w, env := api.do(http.MethodGet, "/api/v1/documents", "", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeTenantRequired, env.Error.Code)
	})

	t.Run("negative amount", func(t *testing.T) {
		w, env := api.do(http.MethodPost, "/api/v1/documents", tenantHeader, gin.H{
			"kind":   "expense",
			"amount": "-5",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeValidation, env.Error.Code)
		require.NotEmpty(t, env.Error.Details)
		assert.Equal(t, "amount", env.Error.Details[0].Field)
	})

	t.Run("unknown kind", func(t *testing.T) {
		w, env := api.do(http.MethodPost, "/api/v1/documents", tenantHeader, gin.H{
			"kind":   "invoice",
			"amount": "5",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeValidation, env.Error.Code)
	})

	t.Run("malformed id", func(t *testing.T) {
		w, env := api.do(http.MethodGet, "/api/v1/documents/not-a-uuid", tenantHeader, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeBadRequest, env.Error.Code)
	})

	t.Run("invalid status", func(t *testing.T) {
		w, env := api.do(http.MethodPost, "/api/v1/documents", tenantHeader, gin.H{"kind": "expense", "amount": "5"})
		require.Equal(t, http.StatusCreated, w.Code)
		id := decodeResult(t, env).Document.ID.String()

		w, env = api.do(http.MethodPatch, "/api/v1/documents/"+id+"/status", tenantHeader, gin.H{"status": "archived"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeValidation, env.Error.Code)
	})
}

func TestPartyTenantIsolation(t *testing.T) {
	api := newAPITest(t, false)
	party := api.createParty("Acme Supplies")

	w, env := api.do(http.MethodGet, "/api/v1/parties/"+party.ID.String(), otherTenant, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, dto.ErrCodeNotFound, env.Error.Code)

	w, env = api.do(http.MethodGet, "/api/v1/parties", otherTenant, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(0), env.Meta.Total)

	w, env = api.do(http.MethodGet, "/api/v1/parties?search=acme", tenantHeader, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(1), env.Meta.Total)
}

func TestPartyBalanceEndpoints(t *testing.T) {
	api := newAPITest(t, false)
	party := api.createParty("Acme Supplies")

	for _, doc := range []gin.H{
		{"kind": "purchase", "party_id": party.ID, "amount": "300", "status": "active"},
		{"kind": "purchaseReturn", "party_id": party.ID, "amount": "50", "status": "active"},
	} {
		w, _ := api.do(http.MethodPost, "/api/v1/documents", tenantHeader, doc)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	base := "/api/v1/parties/" + party.ID.String()

	w, env := api.do(http.MethodGet, base+"/verify", tenantHeader, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var report partnerapp.DriftResponse
	require.NoError(t, json.Unmarshal(env.Data, &report))
	assert.True(t, report.InSync)
	assert.True(t, decimal.NewFromInt(-250).Equal(report.Computed))
	assert.Equal(t, 2, report.ActiveDocuments)

	w, env = api.do(http.MethodPost, base+"/recompute", tenantHeader, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &report))
	assert.False(t, report.Repaired)

	w, env = api.do(http.MethodGet, base+"/entries", tenantHeader, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var entries []partnerapp.BalanceEntryResponse
	require.NoError(t, json.Unmarshal(env.Data, &entries))
	require.Len(t, entries, 2)
	assert.True(t, decimal.NewFromInt(-250).Equal(entries[0].BalanceAfter), "newest entry first")
}

func TestSales(t *testing.T) {
	api := newAPITest(t, false)
	party := api.createParty("Walk-in Wholesale")

	w, env := api.do(http.MethodPost, "/api/v1/sales", tenantHeader, gin.H{
		"total_amount":   "120",
		"payment_status": "paid",
		"party_id":       party.ID,
		"items": []gin.H{
			{"item_name": "Rice 5kg", "quantity": "2", "unit_price": "60"},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var sale tradeapp.SaleResponse
	require.NoError(t, json.Unmarshal(env.Data, &sale))
	require.Len(t, sale.Items, 1)

	w, _ = api.do(http.MethodGet, "/api/v1/sales/"+sale.ID.String(), tenantHeader, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, env = api.do(http.MethodGet, "/api/v1/sales/summaries", tenantHeader, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var summaries []tradeapp.SummaryResponse
	require.NoError(t, json.Unmarshal(env.Data, &summaries))
	require.Len(t, summaries, 1)
	assert.Equal(t, "Walk-in Wholesale", summaries[0].CounterpartyName)
	assert.Equal(t, "Rice 5kg", summaries[0].ItemName)
	assert.Equal(t, "sale", summaries[0].Type)

	t.Run("unknown party", func(t *testing.T) {
		w, env := api.do(http.MethodPost, "/api/v1/sales", tenantHeader, gin.H{
			"total_amount":   "10",
			"payment_status": "unpaid",
			"party_id":       "6f1d8a52-3b8e-4d0a-9c57-2f6a1f0e9b11",
		})
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, dto.ErrCodePartyNotFound, env.Error.Code)
	})

	t.Run("zero quantity rejected", func(t *testing.T) {
		w, env := api.do(http.MethodPost, "/api/v1/sales", tenantHeader, gin.H{
			"total_amount":   "10",
			"payment_status": "paid",
			"items":          []gin.H{{"item_name": "Tea", "quantity": "0"}},
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeValidation, env.Error.Code)
	})
}

func TestHandleErrorHidesInternalErrors(t *testing.T) {
	h := &BaseHandler{}
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Set(middleware.RequestIDKey, "req-9")

	h.HandleError(c, errors.New("pq: connection refused"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.Equal(t, dto.ErrCodeInternal, env.Error.Code)
	assert.Equal(t, "req-9", env.Error.RequestID)
	assert.NotContains(t, env.Error.Message, "pq")
}

func TestHealthHandler(t *testing.T) {
	engine := gin.New()
	healthy := NewHealthHandler(map[string]HealthCheck{
		"database": func(context.Context) error { return nil },
	})
	failing := NewHealthHandler(map[string]HealthCheck{
		"database": func(context.Context) error { return nil },
		"redis":    func(context.Context) error { return errors.New("dial tcp: refused") },
	})
	engine.GET("/health", healthy.Check)
	engine.GET("/health/failing", failing.Check)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"database":"ok"`)

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health/failing", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), `"redis":"error"`)
	assert.Contains(t, w.Body.String(), `"status":"unhealthy"`)
}

package handler

import (
	tradeapp "github.com/TaimoorByteNinja/CRM-sub004/internal/application/trade"
	"github.com/TaimoorByteNinja/CRM-sub004/internal/domain/shared"
	"github.com/TaimoorByteNinja/CRM-sub004/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
)

// SaleHandler handles sales and their mirrored transaction summaries
type SaleHandler struct {
	BaseHandler
	salesService *tradeapp.SalesService
}

// NewSaleHandler creates a new SaleHandler
func NewSaleHandler(salesService *tradeapp.SalesService) *SaleHandler {
	return &SaleHandler{salesService: salesService}
}

// SaleRoutes creates the route group for sales
func SaleRoutes(h *SaleHandler) *router.DomainGroup {
	group := router.NewDomainGroup("sales", "/sales")
	group.POST("", h.Create)
	group.GET("/summaries", h.ListSummaries)
	group.GET("/:id", h.GetByID)
	return group
}

// Create handles POST /sales. The response does not depend on the
// transaction summary write.
func (h *SaleHandler) Create(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}

	var req tradeapp.CreateSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	sale, err := h.salesService.CreateSale(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, sale)
}

// GetByID handles GET /sales/:id
func (h *SaleHandler) GetByID(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "sale")
	if !ok {
		return
	}

	sale, err := h.salesService.GetByID(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, sale)
}

// ListSummaries handles GET /sales/summaries, newest first
func (h *SaleHandler) ListSummaries(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}

	var req tradeapp.ListSummariesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindError(c, err)
		return
	}

	summaries, total, err := h.salesService.ListSummaries(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, summaries, total, shared.Filter{Page: req.Page, PageSize: req.PageSize}.Normalize())
}

package handler

import (
	partnerapp "github.com/TaimoorByteNinja/CRM-sub004/internal/application/partner"
	"github.com/TaimoorByteNinja/CRM-sub004/internal/domain/shared"
	"github.com/TaimoorByteNinja/CRM-sub004/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
)

// PartyHandler handles party endpoints
type PartyHandler struct {
	BaseHandler
	partyService *partnerapp.PartyService
}

// NewPartyHandler creates a new PartyHandler
func NewPartyHandler(partyService *partnerapp.PartyService) *PartyHandler {
	return &PartyHandler{partyService: partyService}
}

// PartyRoutes creates the route group for parties
func PartyRoutes(h *PartyHandler) *router.DomainGroup {
	group := router.NewDomainGroup("parties", "/parties")
	group.POST("", h.Create)
	group.GET("", h.List)
	group.GET("/:id", h.GetByID)
	group.DELETE("/:id", h.Delete)

	// Balance inspection and repair
	balance := group.Group("balance", "/:id")
	balance.GET("/entries", h.ListEntries)
	balance.GET("/verify", h.Verify)
	balance.POST("/recompute", h.Recompute)
	return group
}

// Create handles POST /parties
func (h *PartyHandler) Create(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}

	var req partnerapp.CreatePartyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	party, err := h.partyService.Register(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, party)
}

// List handles GET /parties
func (h *PartyHandler) List(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}

	var req partnerapp.ListPartiesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindError(c, err)
		return
	}

	parties, total, err := h.partyService.List(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, parties, total, shared.Filter{Page: req.Page, PageSize: req.PageSize}.Normalize())
}

// GetByID handles GET /parties/:id
func (h *PartyHandler) GetByID(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "party")
	if !ok {
		return
	}

	party, err := h.partyService.GetByID(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, party)
}

// Delete handles DELETE /parties/:id.
// Parties still referenced by documents cannot be deleted.
func (h *PartyHandler) Delete(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "party")
	if !ok {
		return
	}

	if err := h.partyService.Delete(c.Request.Context(), tenantID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ListEntries handles GET /parties/:id/entries
func (h *PartyHandler) ListEntries(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "party")
	if !ok {
		return
	}

	var req partnerapp.ListEntriesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindError(c, err)
		return
	}

	entries, total, err := h.partyService.ListEntries(c.Request.Context(), tenantID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, entries, total, shared.Filter{Page: req.Page, PageSize: req.PageSize}.Normalize())
}

// Verify handles GET /parties/:id/verify
func (h *PartyHandler) Verify(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "party")
	if !ok {
		return
	}

	report, err := h.partyService.Verify(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, report)
}

// Recompute handles POST /parties/:id/recompute
func (h *PartyHandler) Recompute(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "party")
	if !ok {
		return
	}

	report, err := h.partyService.Recompute(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, report)
}

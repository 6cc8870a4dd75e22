package handler

import (
	financeapp "github.com/TaimoorByteNinja/CRM-sub004/internal/application/finance"
	"github.com/TaimoorByteNinja/CRM-sub004/internal/domain/shared"
	"github.com/TaimoorByteNinja/CRM-sub004/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
)

// DocumentHandler exposes financial documents. Every mutation answers with
// the document, the balance changes it caused and any reconciliation
// warnings; a warning never turns a persisted write into an error.
type DocumentHandler struct {
	BaseHandler
	documentService *financeapp.DocumentService
}

// NewDocumentHandler creates a new DocumentHandler
func NewDocumentHandler(documentService *financeapp.DocumentService) *DocumentHandler {
	return &DocumentHandler{documentService: documentService}
}

// DocumentRoutes creates the route group for financial documents
func DocumentRoutes(h *DocumentHandler) *router.DomainGroup {
	group := router.NewDomainGroup("documents", "/documents")
	group.POST("", h.Create)
	group.GET("", h.List)
	group.GET("/:id", h.GetByID)
	group.PUT("/:id", h.Update)
	group.PATCH("/:id/status", h.ChangeStatus)
	group.DELETE("/:id", h.Delete)
	return group
}

// Create handles POST /documents
func (h *DocumentHandler) Create(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}

	var req financeapp.CreateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	result, err := h.documentService.Create(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// List handles GET /documents
func (h *DocumentHandler) List(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}

	var req financeapp.ListDocumentsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindError(c, err)
		return
	}

	docs, total, err := h.documentService.List(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, docs, total, shared.Filter{Page: req.Page, PageSize: req.PageSize}.Normalize())
}

// GetByID handles GET /documents/:id
func (h *DocumentHandler) GetByID(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "document")
	if !ok {
		return
	}

	doc, err := h.documentService.GetByID(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, doc)
}

// Update handles PUT /documents/:id
func (h *DocumentHandler) Update(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "document")
	if !ok {
		return
	}

	var req financeapp.UpdateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	result, err := h.documentService.Update(c.Request.Context(), tenantID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// ChangeStatus handles PATCH /documents/:id/status
func (h *DocumentHandler) ChangeStatus(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "document")
	if !ok {
		return
	}

	var req financeapp.ChangeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	result, err := h.documentService.ChangeStatus(c.Request.Context(), tenantID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Delete handles DELETE /documents/:id. The body carries the reversal.
func (h *DocumentHandler) Delete(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "document")
	if !ok {
		return
	}

	result, err := h.documentService.Delete(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

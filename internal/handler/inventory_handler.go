package handler

import (
	"net/http"

	"stockwise/internal/middleware"
	"stockwise/internal/service"
	"stockwise/pkg/pagination"
	"stockwise/pkg/response"

	"github.com/gin-gonic/gin"
)

// InventoryHandler serves variant detail and stock level endpoints
type InventoryHandler struct {
	variantService   service.VariantService
	inventoryService service.InventoryService
}

func NewInventoryHandler(variantService service.VariantService, inventoryService service.InventoryService) *InventoryHandler {
	return &InventoryHandler{variantService: variantService, inventoryService: inventoryService}
}

func (h *InventoryHandler) RegisterRoutes(router *gin.RouterGroup, authMW *middleware.Auth) {
	api := router.Group("/api")
	api.Use(authMW.RequireRole())
	{
		api.GET("/variants/:id", h.GetVariant)
		api.PUT("/variants/:id", h.UpdateVariant)
		api.DELETE("/variants/:id", h.DeleteVariant)
		api.PUT("/variants/:id/inventory", h.AdjustInventory)
		api.GET("/variants/:id/inventory/history", h.GetInventoryHistory)
		api.GET("/inventory/low-stock", h.ListLowStock)
	}
}

// GetVariant returns a variant with its product, inventory and latest history
// @Summary      Get variant
// @Tags         variants
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Variant ID"
// @Success      200  {object}  response.Response{data=service.VariantDetail}
// @Failure      404  {object}  response.Response
// @Router       /api/variants/{id} [get]
func (h *InventoryHandler) GetVariant(c *gin.Context) {
	variant, err := h.variantService.GetVariant(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(variant))
}

// UpdateVariant changes a variant's SKU and/or attributes
// @Summary      Update variant
// @Tags         variants
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                        true  "Variant ID"
// @Param        payload  body      service.UpdateVariantRequest  true  "Update Variant Payload"
// @Success      200      {object}  response.Response{data=model.ProductVariant}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Failure      422      {object}  response.Response
// @Router       /api/variants/{id} [put]
func (h *InventoryHandler) UpdateVariant(c *gin.Context) {
	var req service.UpdateVariantRequest
	if !bindJSON(c, &req) {
		return
	}

	variant, err := h.variantService.UpdateVariant(c.Request.Context(), middleware.UserID(c), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(variant))
}

// DeleteVariant removes a variant together with its inventory and history
// @Summary      Delete variant
// @Tags         variants
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Variant ID"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/variants/{id} [delete]
func (h *InventoryHandler) DeleteVariant(c *gin.Context) {
	if err := h.variantService.DeleteVariant(c.Request.Context(), middleware.UserID(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Message("Variant deleted successfully"))
}

// AdjustInventory sets the absolute stock level of a variant
// @Summary      Adjust inventory
// @Description  Sets quantity (and optionally the low-stock threshold). A history row records the difference.
// @Tags         inventory
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                          true  "Variant ID"
// @Param        payload  body      service.AdjustInventoryRequest  true  "Adjustment Payload"
// @Success      200      {object}  response.Response{data=service.AdjustInventoryResponse}
// @Failure      404      {object}  response.Response
// @Failure      422      {object}  response.Response
// @Router       /api/variants/{id}/inventory [put]
func (h *InventoryHandler) AdjustInventory(c *gin.Context) {
	var req service.AdjustInventoryRequest
	if !bindJSON(c, &req) {
		return
	}

	res, err := h.inventoryService.AdjustInventory(c.Request.Context(), middleware.UserID(c), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(res))
}

// GetInventoryHistory pages through a variant's stock movements, newest first
// @Summary      Inventory history
// @Tags         inventory
// @Security     BearerAuth
// @Produce      json
// @Param        id     path      string  true   "Variant ID"
// @Param        page   query     int     false  "Page number (default 1)"
// @Param        limit  query     int     false  "Number of items per page (default 20)"
// @Success      200    {object}  response.Response{data=[]service.HistoryEntry}
// @Failure      404    {object}  response.Response
// @Router       /api/variants/{id}/inventory/history [get]
func (h *InventoryHandler) GetInventoryHistory(c *gin.Context) {
	p := pagination.Parse(c)

	entries, total, err := h.inventoryService.GetInventoryHistory(c.Request.Context(), c.Param("id"), p.Page, p.Limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.SuccessWithPagination(entries, p.Page, p.Limit, total))
}

// ListLowStock returns variants at or under their threshold
// @Summary      Low stock variants
// @Tags         inventory
// @Security     BearerAuth
// @Produce      json
// @Param        page   query     int  false  "Page number (default 1)"
// @Param        limit  query     int  false  "Number of items per page (default 20)"
// @Success      200    {object}  response.Response{data=[]model.LowStockItem}
// @Router       /api/inventory/low-stock [get]
func (h *InventoryHandler) ListLowStock(c *gin.Context) {
	p := pagination.Parse(c)

	items, total, err := h.inventoryService.ListLowStock(c.Request.Context(), p.Page, p.Limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.SuccessWithPagination(items, p.Page, p.Limit, total))
}

package handler

import (
	inventoryapp "github.com/erp/inventory/internal/application/inventory"
	"github.com/erp/inventory/internal/domain/shared"
	"github.com/erp/inventory/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// LedgerHandler handles stock level, reservation and movement endpoints
type LedgerHandler struct {
	BaseHandler
	ledger *inventoryapp.LedgerService
}

// NewLedgerHandler creates a new LedgerHandler
func NewLedgerHandler(ledger *inventoryapp.LedgerService) *LedgerHandler {
	return &LedgerHandler{ledger: ledger}
}

// RegisterRoutes registers ledger routes on the given group
func (h *LedgerHandler) RegisterRoutes(rg *gin.RouterGroup) {
	stock := rg.Group("/stock")
	{
		stock.GET("/levels", h.GetStockLevel)
		stock.POST("/levels/bulk", h.GetStockLevels)
		stock.GET("/low", h.ListLowStock)
		stock.GET("/movements", h.ListMovements)
		stock.PUT("/reorder-rule", h.SetReorderRule)
		stock.POST("/lots", h.ReceiveLot)
	}

	reservations := rg.Group("/reservations")
	{
		reservations.POST("", h.Reserve)
		reservations.POST("/:id/release", h.Release)
		reservations.POST("/:id/allocate", h.Allocate)
	}
}

// Reserve places a hold on available stock
func (h *LedgerHandler) Reserve(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	actor, err := getUserID(c)
	if err != nil {
		h.BadRequest(c, "Invalid or missing user ID")
		return
	}

	var req inventoryapp.ReserveStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	reservation, err := h.ledger.Reserve(c.Request.Context(), tenantID, &req, actor)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, reservation)
}

// Release returns reserved stock to the available pool
func (h *LedgerHandler) Release(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	actor, err := getUserID(c)
	if err != nil {
		h.BadRequest(c, "Invalid or missing user ID")
		return
	}

	reservationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid reservation ID format")
		return
	}

	result, err := h.ledger.Release(c.Request.Context(), tenantID, reservationID, actor)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}

// Allocate converts a reservation into a fulfilled hold
func (h *LedgerHandler) Allocate(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	reservationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid reservation ID format")
		return
	}

	reservation, err := h.ledger.Allocate(c.Request.Context(), tenantID, reservationID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, reservation)
}

// ReceiveLot receives stock into a tracked lot
func (h *LedgerHandler) ReceiveLot(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	actor, err := getUserID(c)
	if err != nil {
		h.BadRequest(c, "Invalid or missing user ID")
		return
	}

	var req inventoryapp.ReceiveLotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	lot, err := h.ledger.ReceiveLot(c.Request.Context(), tenantID, &req, actor)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, lot)
}

// GetStockLevel returns the stock level for a product at a location
func (h *LedgerHandler) GetStockLevel(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	productID, err := uuid.Parse(c.Query("product_id"))
	if err != nil {
		h.BadRequest(c, "Invalid product ID format")
		return
	}

	locationID, err := uuid.Parse(c.Query("location_id"))
	if err != nil {
		h.BadRequest(c, "Invalid location ID format")
		return
	}

	variantID, ok := h.optionalUUID(c, "variant_id")
	if !ok {
		return
	}

	level, err := h.ledger.GetStockLevel(c.Request.Context(), tenantID, productID, variantID, locationID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, level)
}

// GetStockLevels returns stock levels for a batch of products in one call
func (h *LedgerHandler) GetStockLevels(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req inventoryapp.BulkStockLevelsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	levels, err := h.ledger.GetStockLevels(c.Request.Context(), tenantID, &req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, levels)
}

// ListLowStock lists records at or below their reorder point
func (h *LedgerHandler) ListLowStock(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	locationID, ok := h.optionalUUID(c, "location_id")
	if !ok {
		return
	}

	levels, err := h.ledger.ListLowStock(c.Request.Context(), tenantID, locationID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, levels)
}

// ListMovements returns the movement ledger for a product at a location
func (h *LedgerHandler) ListMovements(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	productID, err := uuid.Parse(c.Query("product_id"))
	if err != nil {
		h.BadRequest(c, "Invalid product ID format")
		return
	}

	locationID, err := uuid.Parse(c.Query("location_id"))
	if err != nil {
		h.BadRequest(c, "Invalid location ID format")
		return
	}

	variantID, ok := h.optionalUUID(c, "variant_id")
	if !ok {
		return
	}

	var listReq dto.ListRequest
	if err := c.ShouldBindQuery(&listReq); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	if listReq.Page <= 0 {
		listReq.Page = 1
	}
	if listReq.PageSize <= 0 {
		listReq.PageSize = 20
	}

	filter := shared.Filter{
		Page:     listReq.Page,
		PageSize: listReq.PageSize,
		OrderBy:  listReq.OrderBy,
		OrderDir: listReq.OrderDir,
	}

	movements, err := h.ledger.ListMovements(c.Request.Context(), tenantID, productID, variantID, locationID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, movements)
}

// SetReorderRule configures the reorder point and quantity for a record
func (h *LedgerHandler) SetReorderRule(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req inventoryapp.SetReorderRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	level, err := h.ledger.SetReorderRule(c.Request.Context(), tenantID, &req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, level)
}

// optionalUUID parses an optional query UUID, responding with 400 on bad input
func (h *LedgerHandler) optionalUUID(c *gin.Context, name string) (*uuid.UUID, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		h.BadRequest(c, "Invalid "+name+" format")
		return nil, false
	}
	return &id, true
}

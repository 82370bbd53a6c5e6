package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/shopkeeper/internal/service/stock"
)

// StockHandler exposes the stock ledger over HTTP.
type StockHandler struct {
	svc    *stock.Service
	logger *zap.Logger
}

// NewStockHandler constructs the stock handler adapter.
func NewStockHandler(svc *stock.Service, logger *zap.Logger) *StockHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StockHandler{svc: svc, logger: logger}
}

// Create adds a stock item.
func (h *StockHandler) Create(c *gin.Context) {
	var input stock.AddItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid stock item payload"})
		return
	}

	item, err := h.svc.AddItem(c.Request.Context(), currentUserID(c), input)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

// List returns the owner's stock, filtered by the optional q parameter.
func (h *StockHandler) List(c *gin.Context) {
	items, err := h.svc.ListItems(c.Request.Context(), currentUserID(c), c.Query("q"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

type adjustQuantityRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

// AdjustQuantity overwrites an item's quantity.
func (h *StockHandler) AdjustQuantity(c *gin.Context) {
	var req adjustQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "quantity is required"})
		return
	}

	item, err := h.svc.AdjustQuantity(c.Request.Context(), currentUserID(c), c.Param("id"), *req.Quantity)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// Retire deletes an item, booking a loss first when the reason warrants one.
func (h *StockHandler) Retire(c *gin.Context) {
	if err := h.svc.RetireItem(c.Request.Context(), currentUserID(c), c.Param("id"), c.Query("reason")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Sweep retires every expired item and reports the count.
func (h *StockHandler) Sweep(c *gin.Context) {
	retired, err := h.svc.SweepExpired(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"retired": retired})
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/shopkeeper/internal/service/dues"
)

// DuesHandler exposes the dues ledger over HTTP.
type DuesHandler struct {
	svc    *dues.Service
	logger *zap.Logger
}

// NewDuesHandler constructs the dues handler adapter.
func NewDuesHandler(svc *dues.Service, logger *zap.Logger) *DuesHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DuesHandler{svc: svc, logger: logger}
}

// Create records a pending due.
func (h *DuesHandler) Create(c *gin.Context) {
	var input dues.RecordDueInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid due payload"})
		return
	}

	due, err := h.svc.RecordDue(c.Request.Context(), currentUserID(c), input)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, due)
}

// List returns the owner's dues in creation order.
func (h *DuesHandler) List(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// Grouped returns pending dues grouped by customer key.
func (h *DuesHandler) Grouped(c *gin.Context) {
	grouped, err := h.svc.GroupByCustomer(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, grouped)
}

type paymentRequest struct {
	Amount float64 `json:"amount" binding:"required"`
}

// Pay applies a payment to one due.
func (h *DuesHandler) Pay(c *gin.Context) {
	var req paymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount is required"})
		return
	}

	due, err := h.svc.ApplyPayment(c.Request.Context(), currentUserID(c), c.Param("id"), req.Amount)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, due)
}

// MarkPaid forces a due to paid regardless of its remaining balance.
func (h *DuesHandler) MarkPaid(c *gin.Context) {
	due, err := h.svc.MarkFullyPaid(c.Request.Context(), currentUserID(c), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, due)
}

type settlementRequest struct {
	CustomerKey string  `json:"customerKey" binding:"required"`
	Amount      float64 `json:"amount" binding:"required"`
}

// Settle applies one payment across all of a customer's pending dues.
func (h *DuesHandler) Settle(c *gin.Context) {
	var req settlementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "customerKey and amount are required"})
		return
	}

	updated, err := h.svc.SettleCustomerBalance(c.Request.Context(), currentUserID(c), req.CustomerKey, req.Amount)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// Delete removes a due permanently.
func (h *DuesHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), currentUserID(c), c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mamadbah2/shopkeeper/internal/domain/models"
	"github.com/mamadbah2/shopkeeper/internal/service/sales"
)

// SalesHandler exposes the sale processor over HTTP.
type SalesHandler struct {
	svc    *sales.Processor
	logger *zap.Logger
}

// NewSalesHandler constructs the sales handler adapter.
func NewSalesHandler(svc *sales.Processor, logger *zap.Logger) *SalesHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SalesHandler{svc: svc, logger: logger}
}

// Create processes a sale. A request id is issued when the client did not send one,
// so the response carries the key needed to retry safely.
func (h *SalesHandler) Create(c *gin.Context) {
	var req models.SaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid sale payload"})
		return
	}
	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}

	result, err := h.svc.ProcessSale(c.Request.Context(), currentUserID(c), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	status := http.StatusCreated
	if result.Replayed {
		status = http.StatusOK
	}
	c.JSON(status, result)
}

// ListTransactions returns the owner's transactions, newest first.
func (h *SalesHandler) ListTransactions(c *gin.Context) {
	txns, err := h.svc.ListTransactions(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, txns)
}

// Reconcile recreates dues lost to a partially failed sale write.
func (h *SalesHandler) Reconcile(c *gin.Context) {
	created, err := h.svc.Reconcile(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"duesCreated": created})
}

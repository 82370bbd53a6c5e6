package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/shopkeeper/internal/domain/models"
	"github.com/mamadbah2/shopkeeper/internal/service/dues"
	"github.com/mamadbah2/shopkeeper/internal/service/sales"
	"github.com/mamadbah2/shopkeeper/internal/service/stock"
)

// respondError maps ledger errors to HTTP statuses. Validation failures keep their
// message so the caller can show something actionable.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrInsufficientStock):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrOverpayment),
		errors.Is(err, models.ErrInvalidPaymentAmount),
		errors.Is(err, models.ErrInvalidQuantity),
		errors.Is(err, sales.ErrInvalidSale),
		errors.Is(err, stock.ErrInvalidItem),
		errors.Is(err, dues.ErrInvalidDue):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		if logger != nil {
			logger.Error("request failed", zap.Error(err))
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

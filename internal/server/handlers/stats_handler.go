package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/shopkeeper/internal/service/stats"
)

// StatsHandler exposes the stats aggregator over HTTP.
type StatsHandler struct {
	svc    *stats.Service
	logger *zap.Logger
}

// NewStatsHandler constructs the stats handler adapter.
func NewStatsHandler(svc *stats.Service, logger *zap.Logger) *StatsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatsHandler{svc: svc, logger: logger}
}

// Summary returns the owner's dashboard metrics.
func (h *StatsHandler) Summary(c *gin.Context) {
	summary, err := h.svc.Summary(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// Snapshot records a stats snapshot on demand.
func (h *StatsHandler) Snapshot(c *gin.Context) {
	snapshot, err := h.svc.Snapshot(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, snapshot)
}

// Package stats derives read-only summary metrics from the transaction, stock and
// dues ledgers for one owner.
package stats

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/shopkeeper/internal/domain/models"
	"github.com/mamadbah2/shopkeeper/internal/repository"
	"github.com/mamadbah2/shopkeeper/internal/repository/sheets"
)

// Service aggregates ledger data into summary metrics and daily snapshots.
type Service struct {
	store    repository.Store
	exporter sheets.Exporter
	logger   *zap.Logger
	now      func() time.Time
}

// NewService wires a stats aggregator. exporter may be nil; snapshots then stay in
// the document store only.
func NewService(store repository.Store, exporter sheets.Exporter, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, exporter: exporter, logger: logger, now: time.Now}
}

// Summary scans the owner's ledgers and derives the dashboard metrics. Transactions
// with zero profit count as neither profitable nor loss deals. Expiry counts cover
// the stock ledger and any transaction still carrying an expiry date.
func (s *Service) Summary(ctx context.Context, userID string) (models.Stats, error) {
	now := s.now().UTC()

	txns, err := s.store.ListTransactions(ctx, userID)
	if err != nil {
		return models.Stats{}, fmt.Errorf("stats summary: %w", err)
	}

	items, err := s.store.ListStock(ctx, userID)
	if err != nil {
		return models.Stats{}, fmt.Errorf("stats summary: %w", err)
	}

	dues, err := s.store.ListDues(ctx, userID)
	if err != nil {
		return models.Stats{}, fmt.Errorf("stats summary: %w", err)
	}

	var stats models.Stats

	for _, txn := range txns {
		stats.TotalProfit += txn.Profit
		switch {
		case txn.Profit > 0:
			stats.ProfitableDeals++
		case txn.Profit < 0:
			stats.LossDeals++
		}
		countExpiry(&stats, txn.ExpiryDate, now)
	}

	for _, item := range items {
		countExpiry(&stats, item.ExpiryDate, now)
	}

	for _, due := range dues {
		if due.Status != models.DuePending {
			continue
		}
		stats.TotalPendingDues += due.Remaining()
		if due.DueDate.Before(now) {
			stats.OverdueDues++
		}
	}

	return stats, nil
}

// Snapshot computes the owner's summary, stores it as a snapshot document and, when
// an exporter is configured, appends it to the bookkeeping spreadsheet.
func (s *Service) Snapshot(ctx context.Context, userID string) (models.StatsSnapshot, error) {
	summary, err := s.Summary(ctx, userID)
	if err != nil {
		return models.StatsSnapshot{}, err
	}

	now := s.now().UTC()
	snapshot := models.StatsSnapshot{
		UserID:    userID,
		Date:      now.Truncate(24 * time.Hour),
		Stats:     summary,
		CreatedAt: now,
	}

	if err := s.store.SaveStatsSnapshot(ctx, snapshot); err != nil {
		return models.StatsSnapshot{}, fmt.Errorf("save stats snapshot: %w", err)
	}

	if s.exporter != nil {
		if err := s.exporter.AppendSnapshot(ctx, snapshot); err != nil {
			// The snapshot document is the source of truth; a failed sheet append
			// only loses the convenience copy.
			s.logger.Warn("failed to export stats snapshot", zap.String("user_id", userID), zap.Error(err))
		}
	}

	s.logger.Info("stats snapshot recorded",
		zap.String("user_id", userID),
		zap.Float64("total_profit", summary.TotalProfit),
		zap.Float64("pending_dues", summary.TotalPendingDues))
	return snapshot, nil
}

func countExpiry(stats *models.Stats, expiry *time.Time, now time.Time) {
	if expiry == nil {
		return
	}
	item := models.StockItem{ExpiryDate: expiry}
	switch models.ClassifyExpiry(item, now) {
	case models.ExpiryExpired:
		stats.ExpiredItems++
	case models.ExpiryNear:
		stats.NearExpiryItems++
	}
}

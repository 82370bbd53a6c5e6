package stats

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mamadbah2/shopkeeper/internal/domain/models"
	"github.com/mamadbah2/shopkeeper/internal/repository/memory"
)

const testUser = "user-1"

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

type fakeExporter struct {
	snapshots []models.StatsSnapshot
	err       error
}

func (f *fakeExporter) AppendSnapshot(_ context.Context, snapshot models.StatsSnapshot) error {
	if f.err != nil {
		return f.err
	}
	f.snapshots = append(f.snapshots, snapshot)
	return nil
}

func newTestService(t *testing.T) (*Service, *memory.Store, *fakeExporter) {
	t.Helper()
	store := memory.NewStore()
	exporter := &fakeExporter{}
	s := NewService(store, exporter, zap.NewNop())
	s.now = func() time.Time { return testNow }
	return s, store, exporter
}

func insertTxn(t *testing.T, store *memory.Store, userID string, profit float64, expiry *time.Time) {
	t.Helper()
	_, err := store.InsertTransaction(context.Background(), models.Transaction{
		UserID:          userID,
		ItemName:        "item",
		Profit:          profit,
		PaymentStatus:   models.PaymentPaid,
		TransactionDate: testNow,
		ExpiryDate:      expiry,
		CreatedAt:       testNow,
	})
	require.NoError(t, err)
}

func insertDue(t *testing.T, store *memory.Store, userID string, amount float64, remaining *float64, status models.DueStatus, dueDate time.Time) {
	t.Helper()
	_, err := store.InsertDue(context.Background(), models.Due{
		UserID:          userID,
		CustomerName:    "customer",
		Amount:          amount,
		RemainingAmount: remaining,
		Status:          status,
		DueDate:         dueDate,
		CreatedAt:       testNow,
	})
	require.NoError(t, err)
}

func ptr(v float64) *float64 { return &v }

func dateFromNow(d int) *time.Time {
	ts := testNow.AddDate(0, 0, d)
	return &ts
}

func TestSummaryProfitBuckets(t *testing.T) {
	s, store, _ := newTestService(t)
	insertTxn(t, store, testUser, 10, nil)
	insertTxn(t, store, testUser, -4, nil)
	insertTxn(t, store, testUser, 0, nil) // break-even, counts in neither bucket
	insertTxn(t, store, testUser, 2.5, nil)

	stats, err := s.Summary(context.Background(), testUser)
	require.NoError(t, err)

	assert.Equal(t, 8.5, stats.TotalProfit)
	assert.Equal(t, 2, stats.ProfitableDeals)
	assert.Equal(t, 1, stats.LossDeals)
}

func TestSummaryExpiryCountsSpanStockAndTransactions(t *testing.T) {
	s, store, _ := newTestService(t)

	seed := func(name string, expiry *time.Time) {
		_, err := store.InsertStockItem(context.Background(), models.StockItem{
			UserID: testUser, ItemName: name, Quantity: 1, ExpiryDate: expiry, CreatedAt: testNow,
		})
		require.NoError(t, err)
	}
	seed("expired item", dateFromNow(-1))
	seed("near item", dateFromNow(3))
	seed("good item", dateFromNow(60))
	seed("no expiry", nil)

	insertTxn(t, store, testUser, 5, dateFromNow(-2)) // expired batch sold earlier
	insertTxn(t, store, testUser, 5, dateFromNow(5))  // near-expiry batch
	insertTxn(t, store, testUser, 5, nil)

	stats, err := s.Summary(context.Background(), testUser)
	require.NoError(t, err)

	assert.Equal(t, 2, stats.ExpiredItems)
	assert.Equal(t, 2, stats.NearExpiryItems)
}

func TestSummaryPendingAndOverdueDues(t *testing.T) {
	s, store, _ := newTestService(t)

	insertDue(t, store, testUser, 100, ptr(40), models.DuePending, testNow.AddDate(0, 0, 7))
	insertDue(t, store, testUser, 80, nil, models.DuePending, testNow.AddDate(0, 0, -3)) // overdue, no remaining written yet
	insertDue(t, store, testUser, 50, ptr(0), models.DuePaid, testNow.AddDate(0, 0, -30))

	stats, err := s.Summary(context.Background(), testUser)
	require.NoError(t, err)

	// 40 tracked remaining + 80 falling back to the full amount; the paid due
	// contributes nothing.
	assert.Equal(t, 120.0, stats.TotalPendingDues)
	assert.Equal(t, 1, stats.OverdueDues)
}

func TestSummaryScopedToOwner(t *testing.T) {
	s, store, _ := newTestService(t)
	insertTxn(t, store, testUser, 10, nil)
	insertTxn(t, store, "user-2", 999, dateFromNow(-1))
	insertDue(t, store, "user-2", 500, nil, models.DuePending, testNow.AddDate(0, 0, -1))

	stats, err := s.Summary(context.Background(), testUser)
	require.NoError(t, err)

	assert.Equal(t, 10.0, stats.TotalProfit)
	assert.Equal(t, 1, stats.ProfitableDeals)
	assert.Zero(t, stats.ExpiredItems)
	assert.Zero(t, stats.TotalPendingDues)
	assert.Zero(t, stats.OverdueDues)
}

func TestSnapshotStoresAndExports(t *testing.T) {
	s, store, exporter := newTestService(t)
	insertTxn(t, store, testUser, 10, nil)

	snapshot, err := s.Snapshot(context.Background(), testUser)
	require.NoError(t, err)

	assert.Equal(t, testUser, snapshot.UserID)
	assert.Equal(t, testNow.Truncate(24*time.Hour), snapshot.Date)
	assert.Equal(t, 10.0, snapshot.Stats.TotalProfit)

	saved := store.Snapshots()
	require.Len(t, saved, 1)
	assert.Equal(t, snapshot.Stats, saved[0].Stats)

	require.Len(t, exporter.snapshots, 1)
	assert.Equal(t, snapshot.Stats, exporter.snapshots[0].Stats)
}

func TestSnapshotSurvivesExporterFailure(t *testing.T) {
	s, store, exporter := newTestService(t)
	exporter.err = errors.New("sheet unavailable")

	snapshot, err := s.Snapshot(context.Background(), testUser)
	require.NoError(t, err)
	assert.Equal(t, testUser, snapshot.UserID)

	saved := store.Snapshots()
	assert.Len(t, saved, 1)
}

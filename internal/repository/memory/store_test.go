package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/shopkeeper/internal/domain/models"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func seedStock(t *testing.T, store *Store, userID string, qty int) models.StockItem {
	t.Helper()
	item, err := store.InsertStockItem(context.Background(), models.StockItem{
		UserID:    userID,
		ItemName:  "Rice 5kg",
		CostPrice: 10,
		Quantity:  qty,
		CreatedAt: testNow,
	})
	require.NoError(t, err)
	return item
}

func TestDecrementStockConditional(t *testing.T) {
	store := NewStore()
	item := seedStock(t, store, "u1", 5)

	updated, err := store.DecrementStock(context.Background(), "u1", item.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, 2, updated.Quantity)

	// More than on hand never goes below zero.
	_, err = store.DecrementStock(context.Background(), "u1", item.ID, 3)
	require.ErrorIs(t, err, models.ErrInsufficientStock)

	unchanged, err := store.GetStockItem(context.Background(), "u1", item.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, unchanged.Quantity)

	_, err = store.DecrementStock(context.Background(), "u1", "missing", 1)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestOwnerScoping(t *testing.T) {
	store := NewStore()
	mine := seedStock(t, store, "u1", 5)
	seedStock(t, store, "u2", 9)

	_, err := store.GetStockItem(context.Background(), "u2", mine.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = store.DecrementStock(context.Background(), "u2", mine.ID, 1)
	assert.ErrorIs(t, err, models.ErrNotFound)

	items, err := store.ListStock(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, mine.ID, items[0].ID)

	owners, err := store.ListOwners(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"u1", "u2"}, owners)
}

func TestWithTransactionRollsBackOnError(t *testing.T) {
	store := NewStore()
	item := seedStock(t, store, "u1", 5)

	boom := errors.New("boom")
	err := store.WithTransaction(context.Background(), func(ctx context.Context) error {
		if _, err := store.DecrementStock(ctx, "u1", item.ID, 2); err != nil {
			return err
		}
		if _, err := store.InsertTransaction(ctx, models.Transaction{UserID: "u1", ItemName: "Rice 5kg"}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	restored, err := store.GetStockItem(context.Background(), "u1", item.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, restored.Quantity)

	txns, err := store.ListTransactions(context.Background(), "u1")
	require.NoError(t, err)
	assert.Empty(t, txns)
}

func TestWithTransactionRollsBackSnapshots(t *testing.T) {
	store := NewStore()

	boom := errors.New("boom")
	err := store.WithTransaction(context.Background(), func(ctx context.Context) error {
		if err := store.SaveStatsSnapshot(ctx, models.StatsSnapshot{UserID: "u1", Date: testNow}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	assert.Empty(t, store.Snapshots())
}

func TestWithTransactionCommits(t *testing.T) {
	store := NewStore()
	item := seedStock(t, store, "u1", 5)

	err := store.WithTransaction(context.Background(), func(ctx context.Context) error {
		_, err := store.DecrementStock(ctx, "u1", item.ID, 2)
		return err
	})
	require.NoError(t, err)

	committed, err := store.GetStockItem(context.Background(), "u1", item.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, committed.Quantity)
}

func TestListTransactionsNewestFirst(t *testing.T) {
	store := NewStore()
	for i := 0; i < 3; i++ {
		_, err := store.InsertTransaction(context.Background(), models.Transaction{
			UserID:          "u1",
			ItemName:        "item",
			TransactionDate: testNow.Add(time.Duration(i) * time.Hour),
		})
		require.NoError(t, err)
	}

	txns, err := store.ListTransactions(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, txns, 3)
	assert.True(t, txns[0].TransactionDate.After(txns[1].TransactionDate))
	assert.True(t, txns[1].TransactionDate.After(txns[2].TransactionDate))
}

func TestListDuesCreationOrder(t *testing.T) {
	store := NewStore()
	var ids []string
	for i := 0; i < 3; i++ {
		// Same createdAt on purpose: id-based tiebreak keeps insertion order.
		due, err := store.InsertDue(context.Background(), models.Due{
			UserID:       "u1",
			CustomerName: "customer",
			Amount:       10,
			Status:       models.DuePending,
			CreatedAt:    testNow,
		})
		require.NoError(t, err)
		ids = append(ids, due.ID)
	}

	dues, err := store.ListDues(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, dues, 3)
	for i, due := range dues {
		assert.Equal(t, ids[i], due.ID)
	}
}

func TestUpdateDuePartialFields(t *testing.T) {
	store := NewStore()
	due, err := store.InsertDue(context.Background(), models.Due{
		UserID:       "u1",
		CustomerName: "customer",
		Amount:       100,
		Status:       models.DuePending,
		CreatedAt:    testNow,
	})
	require.NoError(t, err)

	remaining := 60.0
	updated, err := store.UpdateDue(context.Background(), "u1", due.ID, models.DueUpdate{
		RemainingAmount: &remaining,
	})
	require.NoError(t, err)
	assert.Equal(t, 60.0, updated.Remaining())
	assert.Equal(t, models.DuePending, updated.Status)
	assert.Equal(t, 100.0, updated.Amount)

	_, err = store.UpdateDue(context.Background(), "u2", due.ID, models.DueUpdate{RemainingAmount: &remaining})
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestStoreHandsOutCopies(t *testing.T) {
	store := NewStore()
	expiry := testNow.AddDate(0, 0, 3)
	item, err := store.InsertStockItem(context.Background(), models.StockItem{
		UserID:     "u1",
		ItemName:   "Milk 1L",
		Quantity:   2,
		ExpiryDate: &expiry,
		CreatedAt:  testNow,
	})
	require.NoError(t, err)

	// Mutating a returned document must not reach the stored one.
	*item.ExpiryDate = testNow.AddDate(0, 0, -10)
	item.Quantity = 99

	stored, err := store.GetStockItem(context.Background(), "u1", item.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.Quantity)
	require.NotNil(t, stored.ExpiryDate)
	assert.Equal(t, expiry, *stored.ExpiryDate)
}

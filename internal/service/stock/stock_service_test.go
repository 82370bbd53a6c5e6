package stock

import (
	"context"
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

func newTestService(t *testing.T) (*Service, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	s := NewService(store, zap.NewNop())
	s.now = func() time.Time { return testNow }
	return s, store
}

func addItem(t *testing.T, s *Service, name string, cost float64, qty int, expiry *time.Time) models.StockItem {
	t.Helper()
	item, err := s.AddItem(context.Background(), testUser, AddItemInput{
		ItemName:   name,
		CostPrice:  cost,
		Quantity:   qty,
		ExpiryDate: expiry,
	})
	require.NoError(t, err)
	return item
}

func daysFromNow(d int) *time.Time {
	ts := testNow.AddDate(0, 0, d)
	return &ts
}

func TestAddItemValidation(t *testing.T) {
	s, _ := newTestService(t)

	_, err := s.AddItem(context.Background(), testUser, AddItemInput{ItemName: "  ", Quantity: 1})
	assert.ErrorIs(t, err, ErrInvalidItem)

	_, err = s.AddItem(context.Background(), testUser, AddItemInput{ItemName: "Rice", CostPrice: -1})
	assert.ErrorIs(t, err, ErrInvalidItem)

	_, err = s.AddItem(context.Background(), testUser, AddItemInput{ItemName: "Rice", Quantity: -1})
	assert.ErrorIs(t, err, models.ErrInvalidQuantity)

	item, err := s.AddItem(context.Background(), testUser, AddItemInput{ItemName: " Rice 5kg ", CostPrice: 10, Quantity: 5})
	require.NoError(t, err)
	assert.Equal(t, "Rice 5kg", item.ItemName)
	assert.NotEmpty(t, item.ID)
}

func TestListItemsSearch(t *testing.T) {
	s, _ := newTestService(t)
	addItem(t, s, "Rice 5kg", 10, 5, nil)
	addItem(t, s, "Brown Rice 1kg", 4, 3, nil)
	addItem(t, s, "Sugar 1kg", 2, 8, nil)

	all, err := s.ListItems(context.Background(), testUser, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	rice, err := s.ListItems(context.Background(), testUser, "  rIcE ")
	require.NoError(t, err)
	require.Len(t, rice, 2)
	for _, item := range rice {
		assert.Contains(t, item.ItemName, "Rice")
	}

	none, err := s.ListItems(context.Background(), testUser, "flour")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestAdjustQuantity(t *testing.T) {
	s, store := newTestService(t)
	item := addItem(t, s, "Rice 5kg", 10, 5, nil)

	updated, err := s.AdjustQuantity(context.Background(), testUser, item.ID, 12)
	require.NoError(t, err)
	assert.Equal(t, 12, updated.Quantity)

	_, err = s.AdjustQuantity(context.Background(), testUser, item.ID, -1)
	assert.ErrorIs(t, err, models.ErrInvalidQuantity)

	_, err = s.AdjustQuantity(context.Background(), testUser, "missing", 3)
	assert.ErrorIs(t, err, models.ErrNotFound)

	// Zero keeps the item on the shelf; removal is a separate decision.
	updated, err = s.AdjustQuantity(context.Background(), testUser, item.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, updated.Quantity)

	still, err := store.GetStockItem(context.Background(), testUser, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, still.Quantity)
}

func TestClassifyExpiry(t *testing.T) {
	cases := []struct {
		name   string
		expiry *time.Time
		want   models.ExpiryStatus
	}{
		{"no expiry", nil, models.ExpiryGood},
		{"already expired", daysFromNow(-1), models.ExpiryExpired},
		{"expires tomorrow", daysFromNow(1), models.ExpiryNear},
		{"boundary of the near window", daysFromNow(7), models.ExpiryNear},
		{"beyond the near window", daysFromNow(8), models.ExpiryGood},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			item := models.StockItem{ItemName: "x", ExpiryDate: tc.expiry}
			assert.Equal(t, tc.want, models.ClassifyExpiry(item, testNow))
		})
	}
}

func TestRetireItemSpoilageBooksLoss(t *testing.T) {
	s, store := newTestService(t)
	item := addItem(t, s, "Milk 1L", 2, 4, daysFromNow(-2))

	require.NoError(t, s.RetireItem(context.Background(), testUser, item.ID, "Spoiled in storage"))

	_, err := store.GetStockItem(context.Background(), testUser, item.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)

	txns, err := store.ListTransactions(context.Background(), testUser)
	require.NoError(t, err)
	require.Len(t, txns, 1)
	loss := txns[0]
	assert.Equal(t, "Milk 1L", loss.ItemName)
	assert.Equal(t, 0.0, loss.SellingPrice)
	assert.Equal(t, -8.0, loss.Profit)
	assert.Equal(t, 4, loss.Quantity)
	assert.Equal(t, "Spoiled in storage", loss.Reason)
}

func TestRetireItemNonLossReasonJustDeletes(t *testing.T) {
	s, store := newTestService(t)
	item := addItem(t, s, "Rice 5kg", 10, 2, nil)

	require.NoError(t, s.RetireItem(context.Background(), testUser, item.ID, "Sold offline"))

	txns, err := store.ListTransactions(context.Background(), testUser)
	require.NoError(t, err)
	assert.Empty(t, txns)

	err = s.RetireItem(context.Background(), testUser, item.ID, "Sold offline")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestSweepExpired(t *testing.T) {
	s, store := newTestService(t)
	expired1 := addItem(t, s, "Milk 1L", 2, 4, daysFromNow(-1))
	expired2 := addItem(t, s, "Yogurt", 1, 10, daysFromNow(-30))
	near := addItem(t, s, "Bread", 0.5, 6, daysFromNow(2))
	good := addItem(t, s, "Rice 5kg", 10, 5, nil)

	retired, err := s.SweepExpired(context.Background(), testUser)
	require.NoError(t, err)
	assert.Equal(t, 2, retired)

	for _, id := range []string{expired1.ID, expired2.ID} {
		_, err := store.GetStockItem(context.Background(), testUser, id)
		assert.ErrorIs(t, err, models.ErrNotFound)
	}
	for _, id := range []string{near.ID, good.ID} {
		_, err := store.GetStockItem(context.Background(), testUser, id)
		assert.NoError(t, err)
	}

	// Each retired item leaves a loss transaction behind.
	txns, err := store.ListTransactions(context.Background(), testUser)
	require.NoError(t, err)
	require.Len(t, txns, 2)
	for _, txn := range txns {
		assert.Equal(t, "Expired", txn.Reason)
		assert.Negative(t, txn.Profit)
	}

	// Nothing left to retire on the next run.
	retired, err = s.SweepExpired(context.Background(), testUser)
	require.NoError(t, err)
	assert.Zero(t, retired)
}

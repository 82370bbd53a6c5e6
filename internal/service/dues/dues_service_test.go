package dues

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

func recordDue(t *testing.T, s *Service, name, email string, amount float64) models.Due {
	t.Helper()
	due, err := s.RecordDue(context.Background(), testUser, RecordDueInput{
		CustomerName:  name,
		CustomerEmail: email,
		Amount:        amount,
		DueDate:       testNow.AddDate(0, 0, 14),
	})
	require.NoError(t, err)
	return due
}

func TestRecordDueValidation(t *testing.T) {
	s, _ := newTestService(t)

	_, err := s.RecordDue(context.Background(), testUser, RecordDueInput{Amount: 50})
	assert.ErrorIs(t, err, ErrInvalidDue)

	_, err = s.RecordDue(context.Background(), testUser, RecordDueInput{CustomerName: "Aissatou", Amount: 0})
	assert.ErrorIs(t, err, ErrInvalidDue)

	_, err = s.RecordDue(context.Background(), testUser, RecordDueInput{CustomerName: "Aissatou", Amount: -3})
	assert.ErrorIs(t, err, ErrInvalidDue)
}

func TestRecordDueStartsPendingWithFullBalance(t *testing.T) {
	s, _ := newTestService(t)

	due := recordDue(t, s, "Aissatou", "", 100)
	assert.Equal(t, models.DuePending, due.Status)
	assert.Equal(t, 100.0, due.Amount)
	assert.Equal(t, 100.0, due.Remaining())
	assert.Nil(t, due.PaidAt)
}

func TestApplyPaymentPartial(t *testing.T) {
	s, _ := newTestService(t)
	due := recordDue(t, s, "Aissatou", "", 100)

	updated, err := s.ApplyPayment(context.Background(), testUser, due.ID, 60)
	require.NoError(t, err)

	assert.Equal(t, models.DuePending, updated.Status)
	assert.Equal(t, 40.0, updated.Remaining())
	assert.Equal(t, 60.0, updated.LastPayment)
	require.NotNil(t, updated.LastPaymentDate)
	assert.Equal(t, testNow, *updated.LastPaymentDate)
	assert.Nil(t, updated.PaidAt)
}

func TestApplyPaymentSettlesExactBalance(t *testing.T) {
	s, _ := newTestService(t)
	due := recordDue(t, s, "Aissatou", "", 100)

	_, err := s.ApplyPayment(context.Background(), testUser, due.ID, 60)
	require.NoError(t, err)

	updated, err := s.ApplyPayment(context.Background(), testUser, due.ID, 40)
	require.NoError(t, err)

	assert.Equal(t, models.DuePaid, updated.Status)
	assert.Equal(t, 0.0, updated.Remaining())
	require.NotNil(t, updated.PaidAt)
	assert.Equal(t, testNow, *updated.PaidAt)

	// A paid due takes no further payments.
	_, err = s.ApplyPayment(context.Background(), testUser, due.ID, 1)
	assert.ErrorIs(t, err, models.ErrInvalidPaymentAmount)
}

func TestApplyPaymentRejectsInvalidAmounts(t *testing.T) {
	s, _ := newTestService(t)
	due := recordDue(t, s, "Aissatou", "", 100)

	for _, amount := range []float64{0, -10, 100.01, 500} {
		_, err := s.ApplyPayment(context.Background(), testUser, due.ID, amount)
		assert.ErrorIs(t, err, models.ErrInvalidPaymentAmount, "amount %v", amount)
	}

	_, err := s.ApplyPayment(context.Background(), testUser, "missing", 10)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestApplyPaymentFallsBackToAmountWhenRemainingUnset(t *testing.T) {
	s, store := newTestService(t)

	// Dues written before remaining balances were tracked carry no
	// remainingAmount; the full amount is still owed.
	legacy, err := store.InsertDue(context.Background(), models.Due{
		UserID:       testUser,
		CustomerName: "Mamadou",
		Amount:       80,
		Status:       models.DuePending,
		DueDate:      testNow,
		CreatedAt:    testNow,
	})
	require.NoError(t, err)
	assert.Equal(t, 80.0, legacy.Remaining())

	updated, err := s.ApplyPayment(context.Background(), testUser, legacy.ID, 30)
	require.NoError(t, err)
	assert.Equal(t, 50.0, updated.Remaining())
}

func TestMarkFullyPaid(t *testing.T) {
	s, _ := newTestService(t)
	due := recordDue(t, s, "Aissatou", "", 100)

	updated, err := s.MarkFullyPaid(context.Background(), testUser, due.ID)
	require.NoError(t, err)

	assert.Equal(t, models.DuePaid, updated.Status)
	assert.Equal(t, 0.0, updated.Remaining())
	require.NotNil(t, updated.PaidAt)

	_, err = s.MarkFullyPaid(context.Background(), testUser, "missing")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestSettleCustomerBalanceOldestFirst(t *testing.T) {
	s, _ := newTestService(t)
	first := recordDue(t, s, "Aissatou", "aissatou@example.com", 50)
	second := recordDue(t, s, "Aissatou", "aissatou@example.com", 30)
	third := recordDue(t, s, "Aissatou", "aissatou@example.com", 20)
	recordDue(t, s, "Mamadou", "", 500) // other customer, untouched

	updated, err := s.SettleCustomerBalance(context.Background(), testUser, "aissatou@example.com", 60)
	require.NoError(t, err)
	require.Len(t, updated, 2)

	assert.Equal(t, first.ID, updated[0].ID)
	assert.Equal(t, models.DuePaid, updated[0].Status)

	assert.Equal(t, second.ID, updated[1].ID)
	assert.Equal(t, models.DuePending, updated[1].Status)
	assert.Equal(t, 20.0, updated[1].Remaining())

	// The newest due was never reached.
	untouched, err := s.store.GetDue(context.Background(), testUser, third.ID)
	require.NoError(t, err)
	assert.Equal(t, 20.0, untouched.Remaining())
	assert.Equal(t, models.DuePending, untouched.Status)
}

func TestSettleCustomerBalanceExactTotalClearsAll(t *testing.T) {
	s, _ := newTestService(t)
	recordDue(t, s, "Aissatou", "aissatou@example.com", 50)
	recordDue(t, s, "Aissatou", "aissatou@example.com", 30)

	updated, err := s.SettleCustomerBalance(context.Background(), testUser, "aissatou@example.com", 80)
	require.NoError(t, err)
	require.Len(t, updated, 2)
	for _, due := range updated {
		assert.Equal(t, models.DuePaid, due.Status)
		assert.Equal(t, 0.0, due.Remaining())
	}

	grouped, err := s.GroupByCustomer(context.Background(), testUser)
	require.NoError(t, err)
	assert.NotContains(t, grouped, "aissatou@example.com")
}

func TestSettleCustomerBalanceRejectsExcessPayment(t *testing.T) {
	s, _ := newTestService(t)
	due := recordDue(t, s, "Aissatou", "aissatou@example.com", 50)

	_, err := s.SettleCustomerBalance(context.Background(), testUser, "aissatou@example.com", 51)
	assert.ErrorIs(t, err, models.ErrInvalidPaymentAmount)

	_, err = s.SettleCustomerBalance(context.Background(), testUser, "aissatou@example.com", 0)
	assert.ErrorIs(t, err, models.ErrInvalidPaymentAmount)

	unchanged, err := s.store.GetDue(context.Background(), testUser, due.ID)
	require.NoError(t, err)
	assert.Equal(t, 50.0, unchanged.Remaining())
}

func TestGroupByCustomerKeysAndPendingFilter(t *testing.T) {
	s, _ := newTestService(t)

	byEmail := recordDue(t, s, "Aissatou", "Aissatou@Example.com", 50)
	byName := recordDue(t, s, "Mamadou", "", 30)
	paid := recordDue(t, s, "Mamadou", "", 10)
	_, err := s.MarkFullyPaid(context.Background(), testUser, paid.ID)
	require.NoError(t, err)

	grouped, err := s.GroupByCustomer(context.Background(), testUser)
	require.NoError(t, err)

	// Email keys are normalised to lower case; a due without email falls
	// back to the customer name.
	require.Contains(t, grouped, "aissatou@example.com")
	require.Contains(t, grouped, "Mamadou")
	assert.Equal(t, byEmail.ID, grouped["aissatou@example.com"][0].ID)
	require.Len(t, grouped["Mamadou"], 1)
	assert.Equal(t, byName.ID, grouped["Mamadou"][0].ID)
}

func TestDeleteDue(t *testing.T) {
	s, _ := newTestService(t)
	due := recordDue(t, s, "Aissatou", "", 50)

	require.NoError(t, s.Delete(context.Background(), testUser, due.ID))

	_, err := s.store.GetDue(context.Background(), testUser, due.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)

	err = s.Delete(context.Background(), testUser, due.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

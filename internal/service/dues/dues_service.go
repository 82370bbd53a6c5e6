// Package dues implements the dues ledger: recording, paying and settling
// outstanding customer balances.
package dues

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/shopkeeper/internal/domain/models"
	"github.com/mamadbah2/shopkeeper/internal/repository"
)

// ErrInvalidDue indicates a due payload that cannot enter the ledger.
var ErrInvalidDue = errors.New("invalid due")

// Service implements the dues ledger operations.
type Service struct {
	store  repository.Store
	logger *zap.Logger
	now    func() time.Time
}

// NewService wires a dues ledger instance.
func NewService(store repository.Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, logger: logger, now: time.Now}
}

// RecordDueInput is the payload for a manually recorded due.
type RecordDueInput struct {
	CustomerName  string    `json:"customerName" binding:"required"`
	CustomerEmail string    `json:"customerEmail"`
	Amount        float64   `json:"amount" binding:"required"`
	Description   string    `json:"description"`
	DueDate       time.Time `json:"dueDate" binding:"required"`
}

// RecordDue creates a pending due for the owner.
func (s *Service) RecordDue(ctx context.Context, userID string, input RecordDueInput) (models.Due, error) {
	if strings.TrimSpace(input.CustomerName) == "" && strings.TrimSpace(input.CustomerEmail) == "" {
		return models.Due{}, fmt.Errorf("customer identity is required: %w", ErrInvalidDue)
	}
	if input.Amount <= 0 {
		return models.Due{}, fmt.Errorf("due amount %.2f: %w", input.Amount, ErrInvalidDue)
	}

	remaining := input.Amount
	due := models.Due{
		UserID:          userID,
		CustomerName:    strings.TrimSpace(input.CustomerName),
		CustomerEmail:   strings.TrimSpace(input.CustomerEmail),
		Description:     input.Description,
		Amount:          input.Amount,
		RemainingAmount: &remaining,
		Status:          models.DuePending,
		DueDate:         input.DueDate,
		CreatedAt:       s.now().UTC(),
	}
	return s.store.InsertDue(ctx, due)
}

// List returns the owner's dues in creation order.
func (s *Service) List(ctx context.Context, userID string) ([]models.Due, error) {
	return s.store.ListDues(ctx, userID)
}

// ApplyPayment subtracts a payment from the due's remaining balance. The new balance
// is computed from the document's current remaining amount and written absolutely,
// so a client retrying after an ambiguous failure cannot subtract twice.
func (s *Service) ApplyPayment(ctx context.Context, userID, dueID string, amount float64) (models.Due, error) {
	due, err := s.store.GetDue(ctx, userID, dueID)
	if err != nil {
		return models.Due{}, err
	}

	remaining := due.Remaining()
	if due.Status != models.DuePending || remaining <= 0 {
		return models.Due{}, fmt.Errorf("due %s already settled: %w", dueID, models.ErrInvalidPaymentAmount)
	}
	if amount <= 0 || amount > remaining {
		return models.Due{}, fmt.Errorf("payment %.2f against remaining %.2f: %w", amount, remaining, models.ErrInvalidPaymentAmount)
	}

	now := s.now().UTC()
	newRemaining := remaining - amount

	update := models.DueUpdate{
		RemainingAmount: &newRemaining,
		LastPayment:     &amount,
		LastPaymentDate: &now,
	}
	if newRemaining == 0 {
		paid := models.DuePaid
		update.Status = &paid
		update.PaidAt = &now
	}

	updated, err := s.store.UpdateDue(ctx, userID, dueID, update)
	if err != nil {
		return models.Due{}, err
	}

	s.logger.Debug("payment applied",
		zap.String("user_id", userID),
		zap.String("due_id", dueID),
		zap.Float64("amount", amount),
		zap.Float64("remaining", newRemaining))
	return updated, nil
}

// MarkFullyPaid forces a due to paid regardless of its remaining balance.
func (s *Service) MarkFullyPaid(ctx context.Context, userID, dueID string) (models.Due, error) {
	if _, err := s.store.GetDue(ctx, userID, dueID); err != nil {
		return models.Due{}, err
	}

	now := s.now().UTC()
	zero := 0.0
	paid := models.DuePaid
	return s.store.UpdateDue(ctx, userID, dueID, models.DueUpdate{
		Status:          &paid,
		RemainingAmount: &zero,
		PaidAt:          &now,
	})
}

// SettleCustomerBalance applies one payment across all of a customer's pending dues,
// oldest first, consuming each remaining balance before moving to the next. The
// payment must be positive and no larger than the customer's total open balance.
func (s *Service) SettleCustomerBalance(ctx context.Context, userID, customerKey string, totalPayment float64) ([]models.Due, error) {
	pending, err := s.pendingForCustomer(ctx, userID, customerKey)
	if err != nil {
		return nil, err
	}

	var totalRemaining float64
	for _, due := range pending {
		totalRemaining += due.Remaining()
	}
	if totalPayment <= 0 || totalPayment > totalRemaining {
		return nil, fmt.Errorf("settlement %.2f against balance %.2f for %s: %w",
			totalPayment, totalRemaining, customerKey, models.ErrInvalidPaymentAmount)
	}

	var updated []models.Due
	err = s.store.WithTransaction(ctx, func(ctx context.Context) error {
		updated = updated[:0]
		left := totalPayment
		for _, due := range pending {
			if left <= 0 {
				break
			}
			payment := due.Remaining()
			if payment > left {
				payment = left
			}
			paidDue, err := s.ApplyPayment(ctx, userID, due.ID, payment)
			if err != nil {
				return err
			}
			updated = append(updated, paidDue)
			left -= payment
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("settle balance for %s: %w", customerKey, err)
	}

	s.logger.Info("customer balance settled",
		zap.String("user_id", userID),
		zap.String("customer", customerKey),
		zap.Float64("payment", totalPayment),
		zap.Int("dues_touched", len(updated)))
	return updated, nil
}

// GroupByCustomer maps each customer key to that customer's pending dues in creation
// order. Read-only; drives display and per-customer totals.
func (s *Service) GroupByCustomer(ctx context.Context, userID string) (map[string][]models.Due, error) {
	dues, err := s.store.ListDues(ctx, userID)
	if err != nil {
		return nil, err
	}

	grouped := make(map[string][]models.Due)
	for _, due := range dues {
		if due.Status != models.DuePending {
			continue
		}
		key := due.CustomerKey()
		grouped[key] = append(grouped[key], due)
	}
	return grouped, nil
}

// Delete removes a due permanently.
func (s *Service) Delete(ctx context.Context, userID, dueID string) error {
	return s.store.DeleteDue(ctx, userID, dueID)
}

func (s *Service) pendingForCustomer(ctx context.Context, userID, customerKey string) ([]models.Due, error) {
	dues, err := s.store.ListDues(ctx, userID)
	if err != nil {
		return nil, err
	}

	var pending []models.Due
	for _, due := range dues {
		if due.Status == models.DuePending && due.CustomerKey() == customerKey {
			pending = append(pending, due)
		}
	}
	return pending, nil
}

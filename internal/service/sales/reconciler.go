package sales

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mamadbah2/shopkeeper/internal/domain/models"
)

// Reconcile repairs the one divergence the sequential write fallback can leave
// behind: a partial-payment transaction whose due was never written. It recreates
// the missing dues from the transaction records and returns how many it created.
// Safe to run repeatedly; an existing due for a transaction is never duplicated.
func (p *Processor) Reconcile(ctx context.Context, userID string) (int, error) {
	txns, err := p.store.ListTransactions(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("reconcile: %w", err)
	}

	dues, err := p.store.ListDues(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("reconcile: %w", err)
	}

	covered := make(map[string]struct{}, len(dues))
	for _, due := range dues {
		if due.TransactionID != "" {
			covered[due.TransactionID] = struct{}{}
		}
	}

	created := 0
	for _, txn := range txns {
		if txn.DueAmount <= 0 {
			continue
		}
		if _, ok := covered[txn.ID]; ok {
			continue
		}

		remaining := txn.DueAmount
		due := models.Due{
			UserID:          userID,
			TransactionID:   txn.ID,
			CustomerName:    txn.CustomerName,
			CustomerEmail:   txn.CustomerEmail,
			Description:     saleDueDescription(txn),
			Amount:          txn.DueAmount,
			RemainingAmount: &remaining,
			Status:          models.DuePending,
			DueDate:         txn.TransactionDate.Add(dueGracePeriod),
			CreatedAt:       p.now().UTC(),
		}
		if _, err := p.store.InsertDue(ctx, due); err != nil {
			return created, fmt.Errorf("reconcile due for transaction %s: %w", txn.ID, err)
		}

		p.logger.Warn("recreated missing due during reconciliation",
			zap.String("user_id", userID),
			zap.String("transaction_id", txn.ID),
			zap.Float64("amount", txn.DueAmount))
		created++
	}

	return created, nil
}

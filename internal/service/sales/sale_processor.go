// Package sales implements the sale processor: it validates a sale against the
// stock ledger, computes profit, decrements stock, books the transaction and opens
// a due for any payment shortfall.
package sales

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

// ErrInvalidSale indicates a sale request that fails validation before any write.
var ErrInvalidSale = errors.New("invalid sale request")

// dueGracePeriod is the default payment window granted on a sale shortfall when the
// request does not name a due date.
const dueGracePeriod = 30 * 24 * time.Hour

// Processor validates and executes sales.
type Processor struct {
	store  repository.Store
	logger *zap.Logger
	now    func() time.Time
}

// NewProcessor wires a sale processor instance.
func NewProcessor(store repository.Store, logger *zap.Logger) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Processor{store: store, logger: logger, now: time.Now}
}

// resolvedLine is a sale line joined with its stock item.
type resolvedLine struct {
	item models.StockItem
	line models.SaleLine
}

// ProcessSale runs the full sale: validation first (no writes on failure), then the
// stock decrements, transaction record and optional due as one atomic unit. When the
// store cannot provide a transaction the steps run in compensating order: stock is
// decremented first and re-incremented if booking the transaction fails, and a due
// lost after the transaction was written is recreated by Reconcile.
func (p *Processor) ProcessSale(ctx context.Context, userID string, req models.SaleRequest) (models.SaleResult, error) {
	if req.RequestID != "" {
		txn, err := p.store.FindTransactionByRequestID(ctx, userID, req.RequestID)
		switch {
		case err == nil:
			return p.replayResult(ctx, userID, txn)
		case !errors.Is(err, models.ErrNotFound):
			// Without a definite answer the sale cannot safely run as new: the
			// request id may already be booked.
			return models.SaleResult{}, fmt.Errorf("check request id %s: %w", req.RequestID, err)
		}
	}

	resolved, totals, err := p.validate(ctx, userID, req)
	if err != nil {
		return models.SaleResult{}, err
	}

	now := p.now().UTC()
	txn := p.buildTransaction(userID, req, resolved, totals, now)

	var result models.SaleResult
	err = p.store.WithTransaction(ctx, func(ctx context.Context) error {
		result = models.SaleResult{}

		applied, err := p.decrementAll(ctx, userID, resolved)
		if err != nil {
			return err
		}
		result.Stock = applied

		created, err := p.store.InsertTransaction(ctx, txn)
		if err != nil {
			p.compensateDecrements(ctx, userID, resolved)
			return err
		}
		result.Transaction = created

		if totals.dueAmount > 0 {
			due, err := p.store.InsertDue(ctx, p.buildDue(userID, req, created, now))
			if err != nil {
				return err
			}
			result.Due = &due
		}
		return nil
	})
	if err != nil {
		return models.SaleResult{}, fmt.Errorf("process sale: %w", err)
	}

	p.logger.Info("sale processed",
		zap.String("user_id", userID),
		zap.String("transaction_id", result.Transaction.ID),
		zap.Float64("total", totals.totalAmount),
		zap.Float64("profit", totals.totalProfit),
		zap.Float64("due", totals.dueAmount))
	return result, nil
}

// ListTransactions returns the owner's transactions, newest first.
func (p *Processor) ListTransactions(ctx context.Context, userID string) ([]models.Transaction, error) {
	return p.store.ListTransactions(ctx, userID)
}

type saleTotals struct {
	totalAmount float64
	totalProfit float64
	dueAmount   float64
}

// validate resolves every line against stock and checks all invariants before any
// write. Quantities are accumulated per item so that two lines selling the same
// item cannot jointly oversell it.
func (p *Processor) validate(ctx context.Context, userID string, req models.SaleRequest) ([]resolvedLine, saleTotals, error) {
	if len(req.Lines) == 0 {
		return nil, saleTotals{}, fmt.Errorf("sale has no lines: %w", ErrInvalidSale)
	}
	if req.AmountPaid < 0 {
		return nil, saleTotals{}, fmt.Errorf("amount paid must not be negative: %w", ErrInvalidSale)
	}

	resolved := make([]resolvedLine, 0, len(req.Lines))
	needed := make(map[string]int)
	var totals saleTotals

	for _, line := range req.Lines {
		if line.Quantity <= 0 {
			return nil, saleTotals{}, fmt.Errorf("line %q quantity %d: %w", line.ItemName, line.Quantity, models.ErrInvalidQuantity)
		}
		if line.SellingPrice < 0 {
			return nil, saleTotals{}, fmt.Errorf("line %q selling price must not be negative: %w", line.ItemName, ErrInvalidSale)
		}

		item, err := p.store.FindStockByName(ctx, userID, strings.TrimSpace(line.ItemName))
		if err != nil {
			return nil, saleTotals{}, err
		}

		needed[item.ID] += line.Quantity
		if needed[item.ID] > item.Quantity {
			return nil, saleTotals{}, fmt.Errorf("item %q has %d, requested %d: %w",
				item.ItemName, item.Quantity, needed[item.ID], models.ErrInsufficientStock)
		}

		totals.totalAmount += line.SellingPrice * float64(line.Quantity)
		totals.totalProfit += (line.SellingPrice - item.CostPrice) * float64(line.Quantity)
		resolved = append(resolved, resolvedLine{item: item, line: line})
	}

	if req.AmountPaid > totals.totalAmount {
		return nil, saleTotals{}, fmt.Errorf("paid %.2f exceeds total %.2f: %w",
			req.AmountPaid, totals.totalAmount, models.ErrOverpayment)
	}
	totals.dueAmount = totals.totalAmount - req.AmountPaid
	return resolved, totals, nil
}

func (p *Processor) buildTransaction(userID string, req models.SaleRequest, resolved []resolvedLine, totals saleTotals, now time.Time) models.Transaction {
	status := models.PaymentPaid
	if totals.dueAmount > 0 {
		status = models.PaymentPartial
	}

	txn := models.Transaction{
		UserID:          userID,
		RequestID:       req.RequestID,
		Profit:          totals.totalProfit,
		TotalAmount:     totals.totalAmount,
		AmountPaid:      req.AmountPaid,
		DueAmount:       totals.dueAmount,
		PaymentStatus:   status,
		TransactionDate: now,
		CustomerName:    strings.TrimSpace(req.CustomerName),
		CustomerEmail:   strings.TrimSpace(req.CustomerEmail),
		CreatedAt:       now,
	}

	if len(resolved) == 1 {
		only := resolved[0]
		txn.ItemName = only.item.ItemName
		txn.CostPrice = only.item.CostPrice
		txn.SellingPrice = only.line.SellingPrice
		txn.Quantity = only.line.Quantity
		txn.ExpiryDate = only.item.ExpiryDate
		return txn
	}

	for _, r := range resolved {
		txn.Quantity += r.line.Quantity
		txn.Items = append(txn.Items, models.TransactionItem{
			ItemName:     r.item.ItemName,
			CostPrice:    r.item.CostPrice,
			SellingPrice: r.line.SellingPrice,
			Quantity:     r.line.Quantity,
			Profit:       (r.line.SellingPrice - r.item.CostPrice) * float64(r.line.Quantity),
		})
	}
	return txn
}

func (p *Processor) buildDue(userID string, req models.SaleRequest, txn models.Transaction, now time.Time) models.Due {
	remaining := txn.DueAmount
	dueDate := now.Add(dueGracePeriod)
	if req.DueDate != nil {
		dueDate = *req.DueDate
	}

	return models.Due{
		UserID:          userID,
		TransactionID:   txn.ID,
		CustomerName:    txn.CustomerName,
		CustomerEmail:   txn.CustomerEmail,
		Description:     saleDueDescription(txn),
		Amount:          txn.DueAmount,
		RemainingAmount: &remaining,
		Status:          models.DuePending,
		DueDate:         dueDate,
		CreatedAt:       now,
	}
}

func (p *Processor) decrementAll(ctx context.Context, userID string, resolved []resolvedLine) ([]models.StockItem, error) {
	applied := make([]models.StockItem, 0, len(resolved))
	for i, r := range resolved {
		updated, err := p.store.DecrementStock(ctx, userID, r.item.ID, r.line.Quantity)
		if err != nil {
			p.compensateDecrements(ctx, userID, resolved[:i])
			return nil, err
		}
		applied = append(applied, updated)
	}
	return applied, nil
}

// compensateDecrements re-increments lines whose decrement already landed. Inside a
// store transaction the abort makes this a no-op; in the sequential fallback it is
// what keeps a failed sale from leaking stock.
func (p *Processor) compensateDecrements(ctx context.Context, userID string, resolved []resolvedLine) {
	for _, r := range resolved {
		if _, err := p.store.IncrementStock(ctx, userID, r.item.ID, r.line.Quantity); err != nil {
			p.logger.Error("failed to compensate stock decrement",
				zap.String("user_id", userID),
				zap.String("item", r.item.ItemName),
				zap.Int("quantity", r.line.Quantity),
				zap.Error(err))
		}
	}
}

// replayResult rebuilds the response for a sale that already went through, so a
// client retry with the same request id observes the original outcome.
func (p *Processor) replayResult(ctx context.Context, userID string, txn models.Transaction) (models.SaleResult, error) {
	result := models.SaleResult{Transaction: txn, Replayed: true}

	if txn.DueAmount > 0 {
		dues, err := p.store.ListDues(ctx, userID)
		if err != nil {
			return models.SaleResult{}, err
		}
		for i := range dues {
			if dues[i].TransactionID == txn.ID {
				result.Due = &dues[i]
				break
			}
		}
	}

	p.logger.Info("sale replayed from request id",
		zap.String("user_id", userID),
		zap.String("transaction_id", txn.ID),
		zap.String("request_id", txn.RequestID))
	return result, nil
}

func saleDueDescription(txn models.Transaction) string {
	name := txn.ItemName
	if name == "" && len(txn.Items) > 0 {
		name = fmt.Sprintf("%s and %d more", txn.Items[0].ItemName, len(txn.Items)-1)
	}
	return fmt.Sprintf("Balance for sale of %s on %s", name, txn.TransactionDate.Format("2006-01-02"))
}

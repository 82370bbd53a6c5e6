// Package stock implements the stock ledger: quantity adjustments, retirement with
// loss accounting, and expiry classification.
package stock

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

// ErrInvalidItem indicates an item payload that cannot enter the ledger.
var ErrInvalidItem = errors.New("invalid stock item")

// Service implements the stock ledger operations.
type Service struct {
	store  repository.Store
	logger *zap.Logger
	now    func() time.Time
}

// NewService wires a stock ledger instance.
func NewService(store repository.Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, logger: logger, now: time.Now}
}

// AddItemInput is the payload for a new stock item.
type AddItemInput struct {
	ItemName   string     `json:"itemName" binding:"required"`
	CostPrice  float64    `json:"costPrice"`
	Quantity   int        `json:"quantity"`
	ExpiryDate *time.Time `json:"expiryDate,omitempty"`
}

// AddItem validates and stores a new stock item for the owner.
func (s *Service) AddItem(ctx context.Context, userID string, input AddItemInput) (models.StockItem, error) {
	name := strings.TrimSpace(input.ItemName)
	if name == "" {
		return models.StockItem{}, fmt.Errorf("item name is required: %w", ErrInvalidItem)
	}
	if input.CostPrice < 0 {
		return models.StockItem{}, fmt.Errorf("cost price must not be negative: %w", ErrInvalidItem)
	}
	if input.Quantity < 0 {
		return models.StockItem{}, fmt.Errorf("quantity must not be negative: %w", models.ErrInvalidQuantity)
	}

	item := models.StockItem{
		UserID:     userID,
		ItemName:   name,
		CostPrice:  input.CostPrice,
		Quantity:   input.Quantity,
		ExpiryDate: input.ExpiryDate,
		CreatedAt:  s.now().UTC(),
	}
	return s.store.InsertStockItem(ctx, item)
}

// ListItems returns the owner's stock, optionally filtered by a case-insensitive
// item name substring.
func (s *Service) ListItems(ctx context.Context, userID, search string) ([]models.StockItem, error) {
	items, err := s.store.ListStock(ctx, userID)
	if err != nil {
		return nil, err
	}

	search = strings.TrimSpace(strings.ToLower(search))
	if search == "" {
		return items, nil
	}

	filtered := items[:0]
	for _, item := range items {
		if strings.Contains(strings.ToLower(item.ItemName), search) {
			filtered = append(filtered, item)
		}
	}
	return filtered, nil
}

// AdjustQuantity overwrites an item's quantity. A zero result is left in place as a
// signal to the caller; removal stays an explicit decision.
func (s *Service) AdjustQuantity(ctx context.Context, userID, itemID string, newQuantity int) (models.StockItem, error) {
	if newQuantity < 0 {
		return models.StockItem{}, fmt.Errorf("quantity %d: %w", newQuantity, models.ErrInvalidQuantity)
	}

	item, err := s.store.SetStockQuantity(ctx, userID, itemID, newQuantity)
	if err != nil {
		return models.StockItem{}, err
	}

	if item.Quantity == 0 {
		s.logger.Info("stock item reached zero quantity",
			zap.String("user_id", userID),
			zap.String("item", item.ItemName))
	}
	return item, nil
}

// RetireItem deletes a stock item. When the reason indicates spoilage or damage the
// remaining units are first booked as a loss transaction (sellingPrice 0, profit
// -costPrice*quantity), so the write-off shows up in the profit figures.
func (s *Service) RetireItem(ctx context.Context, userID, itemID, reason string) error {
	item, err := s.store.GetStockItem(ctx, userID, itemID)
	if err != nil {
		return err
	}

	if !isLossReason(reason) {
		return s.store.DeleteStockItem(ctx, userID, itemID)
	}

	loss := models.Transaction{
		UserID:          userID,
		ItemName:        item.ItemName,
		CostPrice:       item.CostPrice,
		SellingPrice:    0,
		Quantity:        item.Quantity,
		Profit:          -item.CostPrice * float64(item.Quantity),
		PaymentStatus:   models.PaymentPaid,
		TransactionDate: s.now().UTC(),
		ExpiryDate:      item.ExpiryDate,
		Reason:          reason,
		CreatedAt:       s.now().UTC(),
	}

	err = s.store.WithTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.store.InsertTransaction(ctx, loss); err != nil {
			return err
		}
		return s.store.DeleteStockItem(ctx, userID, itemID)
	})
	if err != nil {
		return fmt.Errorf("retire item %s: %w", itemID, err)
	}

	s.logger.Info("stock item retired as loss",
		zap.String("user_id", userID),
		zap.String("item", item.ItemName),
		zap.String("reason", reason),
		zap.Float64("loss", loss.Profit))
	return nil
}

// SweepExpired retires every expired item and returns the count retired. The sweep
// works off the stock list taken at invocation; items added mid-sweep wait for the
// next run.
func (s *Service) SweepExpired(ctx context.Context, userID string) (int, error) {
	items, err := s.store.ListStock(ctx, userID)
	if err != nil {
		return 0, err
	}

	now := s.now().UTC()
	retired := 0
	for _, item := range items {
		if models.ClassifyExpiry(item, now) != models.ExpiryExpired {
			continue
		}
		if err := s.RetireItem(ctx, userID, item.ID, "Expired"); err != nil {
			if errors.Is(err, models.ErrNotFound) {
				continue
			}
			return retired, fmt.Errorf("sweep expired: %w", err)
		}
		retired++
	}
	return retired, nil
}

func isLossReason(reason string) bool {
	reason = strings.ToLower(reason)
	for _, marker := range []string{"expire", "spoil", "damag", "broke"} {
		if strings.Contains(reason, marker) {
			return true
		}
	}
	return false
}

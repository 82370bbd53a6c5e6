package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/mamadbah2/shopkeeper/internal/domain/models"
)

func (s *Store) InsertStockItem(_ context.Context, item models.StockItem) (models.StockItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if item.ID == "" {
		item.ID = s.nextID()
	}
	s.stock[item.ID] = copyStockItem(item)
	return item, nil
}

func (s *Store) GetStockItem(_ context.Context, userID, itemID string) (models.StockItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.stock[itemID]
	if !ok || item.UserID != userID {
		return models.StockItem{}, fmt.Errorf("stock item %s: %w", itemID, models.ErrNotFound)
	}
	return copyStockItem(item), nil
}

func (s *Store) FindStockByName(_ context.Context, userID, itemName string) (models.StockItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, item := range s.stock {
		if item.UserID == userID && item.ItemName == itemName {
			return copyStockItem(item), nil
		}
	}
	return models.StockItem{}, fmt.Errorf("stock item %q: %w", itemName, models.ErrNotFound)
}

func (s *Store) ListStock(_ context.Context, userID string) ([]models.StockItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]models.StockItem, 0)
	for _, item := range s.stock {
		if item.UserID == userID {
			items = append(items, copyStockItem(item))
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ItemName < items[j].ItemName })
	return items, nil
}

func (s *Store) SetStockQuantity(_ context.Context, userID, itemID string, quantity int) (models.StockItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.stock[itemID]
	if !ok || item.UserID != userID {
		return models.StockItem{}, fmt.Errorf("stock item %s: %w", itemID, models.ErrNotFound)
	}
	item.Quantity = quantity
	s.stock[itemID] = item
	return copyStockItem(item), nil
}

func (s *Store) DecrementStock(_ context.Context, userID, itemID string, quantity int) (models.StockItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.stock[itemID]
	if !ok || item.UserID != userID {
		return models.StockItem{}, fmt.Errorf("stock item %s: %w", itemID, models.ErrNotFound)
	}
	if item.Quantity < quantity {
		return models.StockItem{}, fmt.Errorf("stock item %s: %w", itemID, models.ErrInsufficientStock)
	}
	item.Quantity -= quantity
	s.stock[itemID] = item
	return copyStockItem(item), nil
}

func (s *Store) IncrementStock(_ context.Context, userID, itemID string, quantity int) (models.StockItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.stock[itemID]
	if !ok || item.UserID != userID {
		return models.StockItem{}, fmt.Errorf("stock item %s: %w", itemID, models.ErrNotFound)
	}
	item.Quantity += quantity
	s.stock[itemID] = item
	return copyStockItem(item), nil
}

func (s *Store) DeleteStockItem(_ context.Context, userID, itemID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.stock[itemID]
	if !ok || item.UserID != userID {
		return fmt.Errorf("stock item %s: %w", itemID, models.ErrNotFound)
	}
	delete(s.stock, itemID)
	return nil
}

func (s *Store) InsertTransaction(_ context.Context, txn models.Transaction) (models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if txn.ID == "" {
		txn.ID = s.nextID()
	}
	s.txns[txn.ID] = copyTransaction(txn)
	return txn, nil
}

func (s *Store) ListTransactions(_ context.Context, userID string) ([]models.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	txns := make([]models.Transaction, 0)
	for _, txn := range s.txns {
		if txn.UserID == userID {
			txns = append(txns, copyTransaction(txn))
		}
	}
	sort.Slice(txns, func(i, j int) bool {
		if !txns[i].TransactionDate.Equal(txns[j].TransactionDate) {
			return txns[i].TransactionDate.After(txns[j].TransactionDate)
		}
		return txns[i].ID > txns[j].ID
	})
	return txns, nil
}

func (s *Store) FindTransactionByRequestID(_ context.Context, userID, requestID string) (models.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, txn := range s.txns {
		if txn.UserID == userID && txn.RequestID == requestID {
			return copyTransaction(txn), nil
		}
	}
	return models.Transaction{}, fmt.Errorf("transaction for request %s: %w", requestID, models.ErrNotFound)
}

func (s *Store) InsertDue(_ context.Context, due models.Due) (models.Due, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if due.ID == "" {
		due.ID = s.nextID()
	}
	s.dues[due.ID] = copyDue(due)
	return due, nil
}

func (s *Store) GetDue(_ context.Context, userID, dueID string) (models.Due, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	due, ok := s.dues[dueID]
	if !ok || due.UserID != userID {
		return models.Due{}, fmt.Errorf("due %s: %w", dueID, models.ErrNotFound)
	}
	return copyDue(due), nil
}

func (s *Store) ListDues(_ context.Context, userID string) ([]models.Due, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	dues := make([]models.Due, 0)
	for _, due := range s.dues {
		if due.UserID == userID {
			dues = append(dues, copyDue(due))
		}
	}
	sort.Slice(dues, func(i, j int) bool {
		if !dues[i].CreatedAt.Equal(dues[j].CreatedAt) {
			return dues[i].CreatedAt.Before(dues[j].CreatedAt)
		}
		return dues[i].ID < dues[j].ID
	})
	return dues, nil
}

func (s *Store) UpdateDue(_ context.Context, userID, dueID string, update models.DueUpdate) (models.Due, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	due, ok := s.dues[dueID]
	if !ok || due.UserID != userID {
		return models.Due{}, fmt.Errorf("due %s: %w", dueID, models.ErrNotFound)
	}

	if update.Status != nil {
		due.Status = *update.Status
	}
	if update.RemainingAmount != nil {
		remaining := *update.RemainingAmount
		due.RemainingAmount = &remaining
	}
	if update.PaidAt != nil {
		paidAt := *update.PaidAt
		due.PaidAt = &paidAt
	}
	if update.LastPayment != nil {
		due.LastPayment = *update.LastPayment
	}
	if update.LastPaymentDate != nil {
		last := *update.LastPaymentDate
		due.LastPaymentDate = &last
	}

	s.dues[dueID] = copyDue(due)
	return due, nil
}

func (s *Store) DeleteDue(_ context.Context, userID, dueID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	due, ok := s.dues[dueID]
	if !ok || due.UserID != userID {
		return fmt.Errorf("due %s: %w", dueID, models.ErrNotFound)
	}
	delete(s.dues, dueID)
	return nil
}

// Package memory is an in-memory implementation of repository.Store. It backs the
// service tests and the dev mode without a running mongod, with the same owner
// scoping and conditional-decrement behavior as the MongoDB store.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/mamadbah2/shopkeeper/internal/domain/models"
	"github.com/mamadbah2/shopkeeper/internal/repository"
)

// Store holds all documents in maps keyed by document id.
type Store struct {
	mu        sync.RWMutex
	txMu      sync.Mutex
	stock     map[string]models.StockItem
	txns      map[string]models.Transaction
	dues      map[string]models.Due
	snapshots []models.StatsSnapshot
	seq       int
}

var _ repository.Store = (*Store)(nil)

// NewStore returns an empty in-memory store.
func NewStore() *Store {
	return &Store{
		stock: make(map[string]models.StockItem),
		txns:  make(map[string]models.Transaction),
		dues:  make(map[string]models.Due),
	}
}

// WithTransaction snapshots the whole store, runs fn, and restores the snapshot if
// fn fails. Calls are serialized, matching the single-session model the service
// layer assumes.
func (s *Store) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	stock := copyStockMap(s.stock)
	txns := copyTxnMap(s.txns)
	dues := copyDueMap(s.dues)
	snapshots := make([]models.StatsSnapshot, len(s.snapshots))
	copy(snapshots, s.snapshots)
	s.mu.Unlock()

	if err := fn(ctx); err != nil {
		s.mu.Lock()
		s.stock = stock
		s.txns = txns
		s.dues = dues
		s.snapshots = snapshots
		s.mu.Unlock()
		return err
	}
	return nil
}

// ListOwners returns every user id holding documents.
func (s *Store) ListOwners(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{})
	for _, item := range s.stock {
		seen[item.UserID] = struct{}{}
	}
	for _, txn := range s.txns {
		seen[txn.UserID] = struct{}{}
	}
	for _, due := range s.dues {
		seen[due.UserID] = struct{}{}
	}

	owners := make([]string, 0, len(seen))
	for id := range seen {
		owners = append(owners, id)
	}
	sort.Strings(owners)
	return owners, nil
}

// SaveStatsSnapshot appends a daily stats snapshot.
func (s *Store) SaveStatsSnapshot(_ context.Context, snapshot models.StatsSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots = append(s.snapshots, snapshot)
	return nil
}

// Snapshots returns the stored snapshots; test helper.
func (s *Store) Snapshots() []models.StatsSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.StatsSnapshot, len(s.snapshots))
	copy(out, s.snapshots)
	return out
}

// nextID issues ids that sort in insertion order, so list ordering stays stable
// even when documents share a createdAt timestamp.
func (s *Store) nextID() string {
	s.seq++
	return fmt.Sprintf("%08d-%s", s.seq, uuid.NewString()[:8])
}

func copyStockMap(in map[string]models.StockItem) map[string]models.StockItem {
	out := make(map[string]models.StockItem, len(in))
	for k, v := range in {
		out[k] = copyStockItem(v)
	}
	return out
}

func copyTxnMap(in map[string]models.Transaction) map[string]models.Transaction {
	out := make(map[string]models.Transaction, len(in))
	for k, v := range in {
		out[k] = copyTransaction(v)
	}
	return out
}

func copyDueMap(in map[string]models.Due) map[string]models.Due {
	out := make(map[string]models.Due, len(in))
	for k, v := range in {
		out[k] = copyDue(v)
	}
	return out
}

func copyStockItem(item models.StockItem) models.StockItem {
	if item.ExpiryDate != nil {
		expiry := *item.ExpiryDate
		item.ExpiryDate = &expiry
	}
	return item
}

func copyTransaction(txn models.Transaction) models.Transaction {
	if txn.ExpiryDate != nil {
		expiry := *txn.ExpiryDate
		txn.ExpiryDate = &expiry
	}
	if txn.Items != nil {
		items := make([]models.TransactionItem, len(txn.Items))
		copy(items, txn.Items)
		txn.Items = items
	}
	return txn
}

func copyDue(due models.Due) models.Due {
	if due.RemainingAmount != nil {
		remaining := *due.RemainingAmount
		due.RemainingAmount = &remaining
	}
	if due.PaidAt != nil {
		paidAt := *due.PaidAt
		due.PaidAt = &paidAt
	}
	if due.LastPaymentDate != nil {
		last := *due.LastPaymentDate
		due.LastPaymentDate = &last
	}
	return due
}

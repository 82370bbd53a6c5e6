// Package repository declares the document-store operations the ledgers depend on.
// Every method is scoped to one owner: implementations must filter and stamp the
// userId field on each read and write.
package repository

import (
	"context"

	"github.com/mamadbah2/shopkeeper/internal/domain/models"
)

// StockStore persists stock items.
type StockStore interface {
	InsertStockItem(ctx context.Context, item models.StockItem) (models.StockItem, error)
	GetStockItem(ctx context.Context, userID, itemID string) (models.StockItem, error)
	FindStockByName(ctx context.Context, userID, itemName string) (models.StockItem, error)
	ListStock(ctx context.Context, userID string) ([]models.StockItem, error)
	SetStockQuantity(ctx context.Context, userID, itemID string, quantity int) (models.StockItem, error)
	// DecrementStock subtracts quantity from the item as one conditional update:
	// it fails with models.ErrInsufficientStock instead of letting the count go
	// negative, even under concurrent sales.
	DecrementStock(ctx context.Context, userID, itemID string, quantity int) (models.StockItem, error)
	// IncrementStock adds quantity back; the sale processor uses it to compensate
	// already-applied decrements when a later step of the sale fails outside a
	// store transaction.
	IncrementStock(ctx context.Context, userID, itemID string, quantity int) (models.StockItem, error)
	DeleteStockItem(ctx context.Context, userID, itemID string) error
}

// TransactionStore persists immutable sale and loss records.
type TransactionStore interface {
	InsertTransaction(ctx context.Context, txn models.Transaction) (models.Transaction, error)
	// ListTransactions returns the owner's transactions, newest first.
	ListTransactions(ctx context.Context, userID string) ([]models.Transaction, error)
	FindTransactionByRequestID(ctx context.Context, userID, requestID string) (models.Transaction, error)
}

// DueStore persists outstanding customer balances.
type DueStore interface {
	InsertDue(ctx context.Context, due models.Due) (models.Due, error)
	GetDue(ctx context.Context, userID, dueID string) (models.Due, error)
	// ListDues returns the owner's dues in creation order.
	ListDues(ctx context.Context, userID string) ([]models.Due, error)
	UpdateDue(ctx context.Context, userID, dueID string, update models.DueUpdate) (models.Due, error)
	DeleteDue(ctx context.Context, userID, dueID string) error
}

// SnapshotStore persists daily stats snapshots.
type SnapshotStore interface {
	SaveStatsSnapshot(ctx context.Context, snapshot models.StatsSnapshot) error
}

// Store is the full document-store surface.
type Store interface {
	StockStore
	TransactionStore
	DueStore
	SnapshotStore

	// WithTransaction runs fn so that either all of its writes land or none do.
	// The mongodb implementation uses a session transaction when the deployment
	// supports one and falls back to ordered sequential writes otherwise; the
	// sale reconciler repairs any divergence the fallback can leave behind.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// ListOwners returns every user id holding documents, for scheduled jobs.
	ListOwners(ctx context.Context) ([]string, error)
}

package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mamadbah2/shopkeeper/internal/domain/models"
)

// InsertTransaction stores a sale or loss record.
func (s *Store) InsertTransaction(ctx context.Context, txn models.Transaction) (models.Transaction, error) {
	if txn.ID == "" {
		txn.ID = primitive.NewObjectID().Hex()
	}

	if _, err := s.collection(transactionsCollection).InsertOne(ctx, txn); err != nil {
		return models.Transaction{}, persistence("insert transaction", err)
	}
	return txn, nil
}

// ListTransactions returns the owner's transactions, newest first.
func (s *Store) ListTransactions(ctx context.Context, userID string) ([]models.Transaction, error) {
	cursor, err := s.collection(transactionsCollection).Find(ctx, ownerFilter(userID, nil),
		options.Find().SetSort(bson.D{{Key: "transactionDate", Value: -1}}))
	if err != nil {
		return nil, persistence("list transactions", err)
	}

	var txns []models.Transaction
	if err := cursor.All(ctx, &txns); err != nil {
		return nil, persistence("decode transaction list", err)
	}
	return txns, nil
}

// FindTransactionByRequestID looks up a sale by its client idempotency key.
func (s *Store) FindTransactionByRequestID(ctx context.Context, userID, requestID string) (models.Transaction, error) {
	var txn models.Transaction
	err := s.collection(transactionsCollection).
		FindOne(ctx, ownerFilter(userID, bson.M{"requestId": requestID})).
		Decode(&txn)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Transaction{}, fmt.Errorf("transaction for request %s: %w", requestID, models.ErrNotFound)
	}
	if err != nil {
		return models.Transaction{}, persistence("find transaction by request id", err)
	}
	return txn, nil
}

// InsertDue stores a new due, assigning an id when missing.
func (s *Store) InsertDue(ctx context.Context, due models.Due) (models.Due, error) {
	if due.ID == "" {
		due.ID = primitive.NewObjectID().Hex()
	}

	if _, err := s.collection(duesCollection).InsertOne(ctx, due); err != nil {
		return models.Due{}, persistence("insert due", err)
	}
	return due, nil
}

// GetDue fetches one due owned by userID.
func (s *Store) GetDue(ctx context.Context, userID, dueID string) (models.Due, error) {
	var due models.Due
	err := s.collection(duesCollection).
		FindOne(ctx, ownerFilter(userID, bson.M{"_id": dueID})).
		Decode(&due)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Due{}, fmt.Errorf("due %s: %w", dueID, models.ErrNotFound)
	}
	if err != nil {
		return models.Due{}, persistence("get due", err)
	}
	return due, nil
}

// ListDues returns the owner's dues in creation order, which is the order
// settlement consumes them in.
func (s *Store) ListDues(ctx context.Context, userID string) ([]models.Due, error) {
	cursor, err := s.collection(duesCollection).Find(ctx, ownerFilter(userID, nil),
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, persistence("list dues", err)
	}

	var dues []models.Due
	if err := cursor.All(ctx, &dues); err != nil {
		return nil, persistence("decode due list", err)
	}
	return dues, nil
}

// UpdateDue applies a partial-field update and returns the updated document.
func (s *Store) UpdateDue(ctx context.Context, userID, dueID string, update models.DueUpdate) (models.Due, error) {
	set := bson.M{}
	if update.Status != nil {
		set["status"] = *update.Status
	}
	if update.RemainingAmount != nil {
		set["remainingAmount"] = *update.RemainingAmount
	}
	if update.PaidAt != nil {
		set["paidAt"] = *update.PaidAt
	}
	if update.LastPayment != nil {
		set["lastPayment"] = *update.LastPayment
	}
	if update.LastPaymentDate != nil {
		set["lastPaymentDate"] = *update.LastPaymentDate
	}
	if len(set) == 0 {
		return s.GetDue(ctx, userID, dueID)
	}

	var due models.Due
	err := s.collection(duesCollection).FindOneAndUpdate(ctx,
		ownerFilter(userID, bson.M{"_id": dueID}),
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&due)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Due{}, fmt.Errorf("due %s: %w", dueID, models.ErrNotFound)
	}
	if err != nil {
		return models.Due{}, persistence("update due", err)
	}
	return due, nil
}

// DeleteDue removes a due permanently.
func (s *Store) DeleteDue(ctx context.Context, userID, dueID string) error {
	res, err := s.collection(duesCollection).DeleteOne(ctx, ownerFilter(userID, bson.M{"_id": dueID}))
	if err != nil {
		return persistence("delete due", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("due %s: %w", dueID, models.ErrNotFound)
	}
	return nil
}

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

// InsertStockItem stores a new stock item, assigning an id when missing.
func (s *Store) InsertStockItem(ctx context.Context, item models.StockItem) (models.StockItem, error) {
	if item.ID == "" {
		item.ID = primitive.NewObjectID().Hex()
	}

	if _, err := s.collection(stockCollection).InsertOne(ctx, item); err != nil {
		return models.StockItem{}, persistence("insert stock item", err)
	}
	return item, nil
}

// GetStockItem fetches one stock item owned by userID.
func (s *Store) GetStockItem(ctx context.Context, userID, itemID string) (models.StockItem, error) {
	var item models.StockItem
	err := s.collection(stockCollection).
		FindOne(ctx, ownerFilter(userID, bson.M{"_id": itemID})).
		Decode(&item)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.StockItem{}, fmt.Errorf("stock item %s: %w", itemID, models.ErrNotFound)
	}
	if err != nil {
		return models.StockItem{}, persistence("get stock item", err)
	}
	return item, nil
}

// FindStockByName resolves a sale line's item name to the owner's stock item.
func (s *Store) FindStockByName(ctx context.Context, userID, itemName string) (models.StockItem, error) {
	var item models.StockItem
	err := s.collection(stockCollection).
		FindOne(ctx, ownerFilter(userID, bson.M{"itemName": itemName})).
		Decode(&item)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.StockItem{}, fmt.Errorf("stock item %q: %w", itemName, models.ErrNotFound)
	}
	if err != nil {
		return models.StockItem{}, persistence("find stock by name", err)
	}
	return item, nil
}

// ListStock returns the owner's stock sorted by item name.
func (s *Store) ListStock(ctx context.Context, userID string) ([]models.StockItem, error) {
	cursor, err := s.collection(stockCollection).Find(ctx, ownerFilter(userID, nil),
		options.Find().SetSort(bson.D{{Key: "itemName", Value: 1}}))
	if err != nil {
		return nil, persistence("list stock", err)
	}

	var items []models.StockItem
	if err := cursor.All(ctx, &items); err != nil {
		return nil, persistence("decode stock list", err)
	}
	return items, nil
}

// SetStockQuantity overwrites an item's quantity and returns the updated document.
func (s *Store) SetStockQuantity(ctx context.Context, userID, itemID string, quantity int) (models.StockItem, error) {
	var item models.StockItem
	err := s.collection(stockCollection).FindOneAndUpdate(ctx,
		ownerFilter(userID, bson.M{"_id": itemID}),
		bson.M{"$set": bson.M{"quantity": quantity}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&item)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.StockItem{}, fmt.Errorf("stock item %s: %w", itemID, models.ErrNotFound)
	}
	if err != nil {
		return models.StockItem{}, persistence("set stock quantity", err)
	}
	return item, nil
}

// DecrementStock subtracts quantity as a single conditional update. The filter
// requires the current count to cover the decrement, so two concurrent sales can
// never drive the quantity negative.
func (s *Store) DecrementStock(ctx context.Context, userID, itemID string, quantity int) (models.StockItem, error) {
	var item models.StockItem
	err := s.collection(stockCollection).FindOneAndUpdate(ctx,
		ownerFilter(userID, bson.M{"_id": itemID, "quantity": bson.M{"$gte": quantity}}),
		bson.M{"$inc": bson.M{"quantity": -quantity}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&item)
	if errors.Is(err, mongo.ErrNoDocuments) {
		// No match means the item is gone or the count is too low.
		if _, getErr := s.GetStockItem(ctx, userID, itemID); getErr != nil {
			return models.StockItem{}, getErr
		}
		return models.StockItem{}, fmt.Errorf("stock item %s: %w", itemID, models.ErrInsufficientStock)
	}
	if err != nil {
		return models.StockItem{}, persistence("decrement stock", err)
	}
	return item, nil
}

// IncrementStock adds quantity back to an item, compensating a sale that failed
// after its decrements were applied.
func (s *Store) IncrementStock(ctx context.Context, userID, itemID string, quantity int) (models.StockItem, error) {
	var item models.StockItem
	err := s.collection(stockCollection).FindOneAndUpdate(ctx,
		ownerFilter(userID, bson.M{"_id": itemID}),
		bson.M{"$inc": bson.M{"quantity": quantity}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&item)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.StockItem{}, fmt.Errorf("stock item %s: %w", itemID, models.ErrNotFound)
	}
	if err != nil {
		return models.StockItem{}, persistence("increment stock", err)
	}
	return item, nil
}

// DeleteStockItem removes a stock item permanently.
func (s *Store) DeleteStockItem(ctx context.Context, userID, itemID string) error {
	res, err := s.collection(stockCollection).DeleteOne(ctx, ownerFilter(userID, bson.M{"_id": itemID}))
	if err != nil {
		return persistence("delete stock item", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("stock item %s: %w", itemID, models.ErrNotFound)
	}
	return nil
}

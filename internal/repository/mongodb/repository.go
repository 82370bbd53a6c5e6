// Package mongodb implements the document store on MongoDB. All documents carry a
// userId field and every query filters on it.
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/mamadbah2/shopkeeper/internal/domain/models"
	"github.com/mamadbah2/shopkeeper/internal/repository"
)

const (
	stockCollection        = "stock"
	transactionsCollection = "transactions"
	duesCollection         = "dues"
	snapshotsCollection    = "stats_snapshots"
)

// Store is the MongoDB-backed implementation of repository.Store.
type Store struct {
	client *mongo.Client
	dbName string
	logger *zap.Logger

	txFallback sync.Once
}

var _ repository.Store = (*Store)(nil)

// NewStore connects to MongoDB and verifies the connection with a ping.
func NewStore(ctx context.Context, uri, dbName string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &Store{client: client, dbName: dbName, logger: logger}, nil
}

// Close closes the MongoDB connection.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *Store) collection(name string) *mongo.Collection {
	return s.client.Database(s.dbName).Collection(name)
}

// WithTransaction runs fn inside a session transaction. Standalone deployments
// cannot run transactions; for those fn is re-run with plain ordered writes and
// the sale reconciler covers partial failures.
func (s *Store) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := s.client.StartSession()
	if err != nil {
		return persistence("start session", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	if err == nil {
		return nil
	}

	if transactionsUnsupported(err) {
		s.txFallback.Do(func() {
			s.logger.Warn("mongodb deployment does not support transactions, using sequential writes", zap.Error(err))
		})
		return fn(ctx)
	}

	return err
}

func transactionsUnsupported(err error) bool {
	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) && cmdErr.Code == 20 {
		return true
	}
	return strings.Contains(err.Error(), "Transaction numbers are only allowed")
}

// ListOwners returns the distinct user ids present across the ledger collections.
func (s *Store) ListOwners(ctx context.Context) ([]string, error) {
	seen := make(map[string]struct{})
	for _, coll := range []string{stockCollection, transactionsCollection, duesCollection} {
		values, err := s.collection(coll).Distinct(ctx, "userId", bson.M{})
		if err != nil {
			return nil, persistence("distinct owners in "+coll, err)
		}
		for _, v := range values {
			if id, ok := v.(string); ok && id != "" {
				seen[id] = struct{}{}
			}
		}
	}

	owners := make([]string, 0, len(seen))
	for id := range seen {
		owners = append(owners, id)
	}
	return owners, nil
}

// SaveStatsSnapshot stores a daily stats snapshot document.
func (s *Store) SaveStatsSnapshot(ctx context.Context, snapshot models.StatsSnapshot) error {
	if _, err := s.collection(snapshotsCollection).InsertOne(ctx, snapshot); err != nil {
		return persistence("insert stats snapshot", err)
	}
	return nil
}

func ownerFilter(userID string, extra bson.M) bson.M {
	filter := bson.M{"userId": userID}
	for k, v := range extra {
		filter[k] = v
	}
	return filter
}

func persistence(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, models.ErrPersistence, err)
}

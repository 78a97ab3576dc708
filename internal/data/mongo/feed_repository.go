// Package mongo provides the MongoDB-backed transaction feed read model.
// The feed is what the dashboard's transaction list renders; it is projected
// from committed admissions and refreshed asynchronously.
package mongo

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/novaapay/banking-core/internal/domain/transaction"
)

const (
	// FeedCollectionName is the name of the transaction feed collection
	FeedCollectionName = "transaction_feed"
)

// FeedRepository implements the transaction.FeedRepository interface for MongoDB
type FeedRepository struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewFeedRepository creates a new MongoDB feed repository
func NewFeedRepository(logger *slog.Logger, db *mongo.Database) transaction.FeedRepository {
	return &FeedRepository{
		db:     db,
		logger: logger,
	}
}

// Upsert writes a projected transaction into the feed. Replaying the same
// event twice leaves a single document, keeping projection idempotent.
func (r *FeedRepository) Upsert(ctx context.Context, txn *transaction.Transaction) error {
	collection := r.db.Collection(FeedCollectionName)

	filter := bson.M{"transaction_id": txn.ID}
	update := bson.M{"$set": txn}
	opts := options.Update().SetUpsert(true)

	_, err := collection.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		r.logger.Error("Failed to upsert feed entry",
			"transaction_id", txn.ID.String(),
			"error", err)
		return fmt.Errorf("failed to upsert feed entry: %w", err)
	}

	return nil
}

// GetByAccountID retrieves the feed for an account, newest first
func (r *FeedRepository) GetByAccountID(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]*transaction.Transaction, error) {
	collection := r.db.Collection(FeedCollectionName)

	filter := bson.M{"account_id": accountID}
	findOptions := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(int64(offset))

	cursor, err := collection.Find(ctx, filter, findOptions)
	if err != nil {
		r.logger.Error("Failed to query transaction feed",
			"account_id", accountID.String(),
			"error", err)
		return nil, fmt.Errorf("failed to query transaction feed: %w", err)
	}
	defer cursor.Close(ctx)

	var entries []*transaction.Transaction
	if err := cursor.All(ctx, &entries); err != nil {
		r.logger.Error("Failed to decode transaction feed entries",
			"account_id", accountID.String(),
			"error", err)
		return nil, fmt.Errorf("failed to decode transaction feed entries: %w", err)
	}

	return entries, nil
}

// CountByAccountID returns the total number of feed entries for an account
func (r *FeedRepository) CountByAccountID(ctx context.Context, accountID uuid.UUID) (int64, error) {
	collection := r.db.Collection(FeedCollectionName)

	count, err := collection.CountDocuments(ctx, bson.M{"account_id": accountID})
	if err != nil {
		r.logger.Error("Failed to count transaction feed entries",
			"account_id", accountID.String(),
			"error", err)
		return 0, fmt.Errorf("failed to count transaction feed entries: %w", err)
	}

	return count, nil
}

package ordersRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the necessary indexes on the orders collection.
func (r *mongoOrderRepo) EnsureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_id"),
		},
		{
			Keys:    bson.D{{Key: "threadId", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("thread_created_idx"),
		},
		// Sweeps for stale locks filter on status + lockedUntil.
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "lockedUntil", Value: 1}},
			Options: options.Index().SetName("status_locked_until_idx"),
		},
	}

	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create order indexes: %w", err)
	}
	return nil
}

package checkpointRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"wanderly/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (r *mongoCheckpointRepo) Get(ctx context.Context, threadID string) (*models.TravelState, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var st models.TravelState
	err := r.coll.FindOne(ctx, bson.M{"threadId": threadID}).Decode(&st)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrCheckpointNotFound
	}
	if err != nil {
		return nil, err
	}
	return &st, nil
}

// Upsert replaces the thread's checkpoint document, creating it when absent.
func (r *mongoCheckpointRepo) Upsert(ctx context.Context, st *models.TravelState) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.coll.ReplaceOne(ctx,
		bson.M{"threadId": st.ThreadID},
		st,
		options.Replace().SetUpsert(true),
	)
	return err
}

func (r *mongoCheckpointRepo) Delete(ctx context.Context, threadID string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.coll.DeleteOne(ctx, bson.M{"threadId": threadID})
	return err
}

func (r *mongoCheckpointRepo) EnsureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "threadId", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("unique_thread"),
	})
	if err != nil {
		return fmt.Errorf("failed to create checkpoint indexes: %w", err)
	}
	return nil
}

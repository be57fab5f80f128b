package checkpointRepo

import (
	"context"
	"errors"

	"wanderly/models"

	"go.mongodb.org/mongo-driver/mongo"
)

var ErrCheckpointNotFound = errors.New("checkpoint not found")

// CheckpointRepository stores one document per conversation thread.
type CheckpointRepository interface {
	Get(ctx context.Context, threadID string) (*models.TravelState, error)
	Upsert(ctx context.Context, st *models.TravelState) error
	Delete(ctx context.Context, threadID string) error
	EnsureIndexes() error
}

type mongoCheckpointRepo struct {
	coll *mongo.Collection
}

func NewMongoCheckpointRepo(db *mongo.Database) CheckpointRepository {
	return &mongoCheckpointRepo{coll: db.Collection("checkpoints")}
}

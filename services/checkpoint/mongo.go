package checkpoint

import (
	"context"
	"errors"

	checkpointRepo "wanderly/database/repository/checkpoint"
	"wanderly/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// MongoStore is the durable backend; checkpoints survive Redis eviction and restarts.
type MongoStore struct {
	repo checkpointRepo.CheckpointRepository
}

func NewMongoStore(db *mongo.Database) (*MongoStore, error) {
	repo := checkpointRepo.NewMongoCheckpointRepo(db)
	if err := repo.EnsureIndexes(); err != nil {
		return nil, err
	}
	return newMongoStore(repo), nil
}

func newMongoStore(repo checkpointRepo.CheckpointRepository) *MongoStore {
	return &MongoStore{repo: repo}
}

func (s *MongoStore) Get(ctx context.Context, threadID string) (*models.TravelState, error) {
	st, err := s.repo.Get(ctx, threadID)
	if errors.Is(err, checkpointRepo.ErrCheckpointNotFound) {
		return nil, ErrNotFound
	}
	return st, err
}

func (s *MongoStore) Put(ctx context.Context, st *models.TravelState) error {
	return s.repo.Upsert(ctx, st)
}

func (s *MongoStore) Delete(ctx context.Context, threadID string) error {
	return s.repo.Delete(ctx, threadID)
}

package ordersRepo

import (
	"context"
	"time"

	"wanderly/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// OrderRepository persists flight and hotel orders locked by conversations.
type OrderRepository interface {
	Create(ctx context.Context, order models.Order) (string, error)
	GetByID(ctx context.Context, id string) (*models.Order, error)
	GetByThreadID(ctx context.Context, threadID string) ([]models.Order, error)
	// TransitionStatus moves an order from one status to another and reports
	// whether a document in the expected status was found.
	TransitionStatus(ctx context.Context, id, from, to string) (bool, error)
	FindExpiredLocks(ctx context.Context, before time.Time, limit int64) ([]models.Order, error)
	EnsureIndexes() error
}

type mongoOrderRepo struct {
	coll *mongo.Collection
}

// NewMongoOrderRepo returns a new OrderRepository instance using MongoDB.
func NewMongoOrderRepo(db *mongo.Database) OrderRepository {
	return &mongoOrderRepo{
		coll: db.Collection("orders"),
	}
}

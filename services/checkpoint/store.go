package checkpoint

import (
	"context"
	"errors"
	"fmt"
	"time"

	"wanderly/models"

	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/mongo"
)

// ErrNotFound is returned by Get when a thread has no checkpoint.
var ErrNotFound = errors.New("checkpoint not found")

// Store persists conversation state between turns.
type Store interface {
	Get(ctx context.Context, threadID string) (*models.TravelState, error)
	Put(ctx context.Context, st *models.TravelState) error
	Delete(ctx context.Context, threadID string) error
}

const (
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
	BackendMemory = "memory"
)

// Deps carries the clients a backend may need; unused ones may be nil.
type Deps struct {
	Redis *redis.Client
	Mongo *mongo.Database
	TTL   time.Duration
}

// New builds the Store for the configured backend.
func New(backend string, deps Deps) (Store, error) {
	switch backend {
	case BackendRedis, "":
		if deps.Redis == nil {
			return nil, errors.New("redis checkpoint backend needs a redis client")
		}
		return NewRedisStore(deps.Redis, deps.TTL), nil
	case BackendMongo:
		if deps.Mongo == nil {
			return nil, errors.New("mongo checkpoint backend needs a database")
		}
		return NewMongoStore(deps.Mongo)
	case BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown checkpoint backend %q", backend)
	}
}

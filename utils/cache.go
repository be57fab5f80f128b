// File: utils/cache.go
package utils

import (
	"context"
	"log"
	"time"

	"wanderly/config"

	"github.com/go-redis/redis/v8"
)

var (
	// CheckpointClient holds conversation checkpoints.
	CheckpointClient *redis.Client
	// QueueClient points at the DB the asynq queue lives in; used for health checks.
	QueueClient *redis.Client
)

func newRedisClient(db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       db,
	})
}

func pingRedis(client *redis.Client, name string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to connect to Redis (%s): %v", name, err)
	}
}

// InitRedis initializes every Redis client the service uses.
func InitRedis() {
	GetCheckpointCacheClient()
	GetQueueCacheClient()
}

// GetCheckpointCacheClient returns the Redis client for conversation checkpoints.
func GetCheckpointCacheClient() *redis.Client {
	if CheckpointClient == nil {
		CheckpointClient = newRedisClient(config.AppConfig.RedisCheckpointDB)
		pingRedis(CheckpointClient, "Checkpoint")
	}
	return CheckpointClient
}

// GetQueueCacheClient returns the Redis client for the background job queue DB.
func GetQueueCacheClient() *redis.Client {
	if QueueClient == nil {
		QueueClient = newRedisClient(config.AppConfig.RedisQueueDB)
		pingRedis(QueueClient, "Queue")
	}
	return QueueClient
}

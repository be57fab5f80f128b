package utils

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/mongo"
)

// HealthStatus represents current status of external services.
type HealthStatus struct {
	Mongo     bool            `json:"mongo"`
	Redis     map[string]bool `json:"redis"`
	CheckedAt time.Time       `json:"checkedAt"`
}

// Healthy reports whether every dependency answered the last check.
func (h HealthStatus) Healthy() bool {
	if !h.Mongo {
		return false
	}
	for _, ok := range h.Redis {
		if !ok {
			return false
		}
	}
	return true
}

var (
	currentHealth HealthStatus
	mu            sync.RWMutex
)

// GetHealthStatus returns latest stored health snapshot.
func GetHealthStatus() HealthStatus {
	mu.RLock()
	defer mu.RUnlock()
	return currentHealth
}

func checkDependencies(ctx context.Context, redisClients map[string]*redis.Client, mongoClient *mongo.Client) HealthStatus {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	redisHealth := make(map[string]bool, len(redisClients))
	for name, client := range redisClients {
		redisHealth[name] = client.Ping(ctx).Err() == nil
	}

	mongoHealthy := mongoClient != nil && mongoClient.Ping(ctx, nil) == nil

	return HealthStatus{
		Mongo:     mongoHealthy,
		Redis:     redisHealth,
		CheckedAt: time.Now(),
	}
}

// StartHealthMonitor performs periodic health checks and updates in-memory state
// until ctx is cancelled. The first check runs immediately.
func StartHealthMonitor(ctx context.Context, interval time.Duration, redisClients map[string]*redis.Client, mongoClient *mongo.Client) {
	update := func() {
		status := checkDependencies(ctx, redisClients, mongoClient)
		mu.Lock()
		currentHealth = status
		mu.Unlock()
	}
	update()

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				update()
			}
		}
	}()
}

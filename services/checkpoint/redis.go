package checkpoint

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"wanderly/models"
	"wanderly/utils"

	"github.com/go-redis/redis/v8"
)

// redisKV is the slice of the go-redis client the store uses; *redis.Client satisfies it.
type redisKV interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisStore keeps each thread's state as a JSON blob that expires after ttl of inactivity.
type RedisStore struct {
	client redisKV
	ttl    time.Duration
}

func NewRedisStore(client redisKV, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Get(ctx context.Context, threadID string) (*models.TravelState, error) {
	data, err := s.client.Get(ctx, utils.CheckpointPrefix+threadID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var st models.TravelState
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

func (s *RedisStore) Put(ctx context.Context, st *models.TravelState) error {
	b, err := json.Marshal(st)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, utils.CheckpointPrefix+st.ThreadID, b, s.ttl).Err()
}

func (s *RedisStore) Delete(ctx context.Context, threadID string) error {
	return s.client.Del(ctx, utils.CheckpointPrefix+threadID).Err()
}

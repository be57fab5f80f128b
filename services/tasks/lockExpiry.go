package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"wanderly/models"

	"github.com/hibiken/asynq"
)

const TypeLockExpire = "booking:lock_expire"

func NewLockExpiryTask(payload models.LockExpiryPayload, after time.Duration) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeLockExpire, b)
	opts := []asynq.Option{
		asynq.ProcessIn(after),
		asynq.MaxRetry(5),
	}
	return task, opts, nil
}

// Scheduler enqueues lock expiry tasks on the asynq queue.
type Scheduler struct {
	client *asynq.Client
}

func NewScheduler(opt asynq.RedisClientOpt) *Scheduler {
	return &Scheduler{client: asynq.NewClient(opt)}
}

func (s *Scheduler) ScheduleLockExpiry(ctx context.Context, payload models.LockExpiryPayload, after time.Duration) error {
	task, opts, err := NewLockExpiryTask(payload, after)
	if err != nil {
		return err
	}
	if _, err := s.client.EnqueueContext(ctx, task, opts...); err != nil {
		return fmt.Errorf("failed to enqueue lock expiry for %s: %w", payload.ThreadID, err)
	}
	return nil
}

func (s *Scheduler) Close() error {
	return s.client.Close()
}

package cron

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"wanderly/config"
	"wanderly/models"
	"wanderly/services/tasks"

	"github.com/hibiken/asynq"
)

// LockExpirer is the part of the order service the worker needs.
type LockExpirer interface {
	Expire(ctx context.Context, id string) (bool, error)
	ExpireStale(ctx context.Context) (int, error)
}

// QueueRedisOpt is the asynq connection shared by the worker and the scheduler.
func QueueRedisOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}
}

// InitLockExpiryWorker runs the async worker in background and returns it for shutdown.
func InitLockExpiryWorker(orders LockExpirer) *asynq.Server {
	srv := asynq.NewServer(
		QueueRedisOpt(),
		asynq.Config{
			Concurrency: config.AppConfig.WorkerConcurrency,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeLockExpire, handleLockExpiryTask(orders))

	go func() {
		log.Println("[LockExpiryWorker] Starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[LockExpiryWorker] Attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[LockExpiryWorker] Max retry attempts reached. Exiting.")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second)
			} else {
				break
			}
		}
	}()
	return srv
}

func handleLockExpiryTask(orders LockExpirer) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p models.LockExpiryPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			log.Printf("[LockExpiryHandler] Invalid payload: %v", err)
			// Retrying cannot fix a malformed payload.
			return asynq.SkipRetry
		}

		for _, id := range p.OrderIDs {
			expired, err := orders.Expire(ctx, id)
			if err != nil {
				log.Printf("[LockExpiryHandler] Failed to expire order %s: %v", id, err)
				return err
			}
			if expired {
				log.Printf("[LockExpiryHandler] Lock on order %s for thread %s expired", id, p.ThreadID)
			}
		}
		return nil
	}
}

// StartLockSweeper periodically expires overdue locks whose queued task was lost.
func StartLockSweeper(ctx context.Context, orders LockExpirer, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				n, err := orders.ExpireStale(ctx)
				if err != nil {
					log.Printf("[LockSweeper] Sweep failed: %v", err)
					continue
				}
				if n > 0 {
					log.Printf("[LockSweeper] Expired %d stale locks", n)
				}
			}
		}
	}()
}

package booking

import (
	"context"
	"sort"
	"sync"
	"time"

	ordersRepo "wanderly/database/repository/orders"
	"wanderly/models"

	"github.com/google/uuid"
)

type memOrderRepo struct {
	mu     sync.Mutex
	orders map[string]models.Order
}

func newMemOrderRepo() *memOrderRepo {
	return &memOrderRepo{orders: make(map[string]models.Order)}
}

func (r *memOrderRepo) Create(_ context.Context, o models.Order) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o.ID = uuid.New().String()
	o.CreatedAt = time.Now()
	r.orders[o.ID] = o
	return o.ID, nil
}

func (r *memOrderRepo) GetByID(_ context.Context, id string) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, ordersRepo.ErrOrderNotFound
	}
	return &o, nil
}

func (r *memOrderRepo) GetByThreadID(_ context.Context, threadID string) ([]models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Order
	for _, o := range r.orders {
		if o.ThreadID == threadID {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *memOrderRepo) TransitionStatus(_ context.Context, id, from, to string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok || o.Status != from {
		return false, nil
	}
	o.Status = to
	r.orders[id] = o
	return true, nil
}

func (r *memOrderRepo) FindExpiredLocks(_ context.Context, before time.Time, _ int64) ([]models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Order
	for _, o := range r.orders {
		if o.Status == models.OrderLocked && o.LockedUntil.Before(before) {
			out = append(out, o)
		}
	}
	return out, nil
}

func (r *memOrderRepo) EnsureIndexes() error { return nil }

func (r *memOrderRepo) status(id string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.orders[id].Status
}

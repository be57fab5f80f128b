package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	ordersRepo "wanderly/database/repository/orders"
	"wanderly/models"
	"wanderly/utils"

	"go.uber.org/zap"
)

// OrderService locks flights and hotels for a conversation and moves the
// orders through locked -> confirmed | released | expired.
type OrderService struct {
	repo    ordersRepo.OrderRepository
	lockTTL time.Duration
	now     func() time.Time
}

func NewOrderService(repo ordersRepo.OrderRepository, lockTTL time.Duration) *OrderService {
	return &OrderService{repo: repo, lockTTL: lockTTL, now: time.Now}
}

func (s *OrderService) LockTTL() time.Duration {
	return s.lockTTL
}

func (s *OrderService) LockFlight(ctx context.Context, threadID, userID string, f models.FlightOption) (*models.Order, error) {
	flight := f
	return s.lock(ctx, models.Order{
		Kind:     models.OrderKindFlight,
		ThreadID: threadID,
		UserID:   userID,
		Flight:   &flight,
		Amount:   f.Price,
		Currency: f.Currency,
	})
}

func (s *OrderService) LockHotel(ctx context.Context, threadID, userID string, h models.HotelOption) (*models.Order, error) {
	hotel := h
	return s.lock(ctx, models.Order{
		Kind:     models.OrderKindHotel,
		ThreadID: threadID,
		UserID:   userID,
		Hotel:    &hotel,
		Amount:   h.TotalPrice,
		Currency: h.Currency,
	})
}

func (s *OrderService) lock(ctx context.Context, order models.Order) (*models.Order, error) {
	if order.ThreadID == "" {
		return nil, errors.New("order needs a thread id")
	}
	order.Status = models.OrderLocked
	order.LockedUntil = s.now().Add(s.lockTTL)

	id, err := s.repo.Create(ctx, order)
	if err != nil {
		return nil, fmt.Errorf("failed to lock %s: %w", order.Kind, err)
	}
	order.ID = id
	utils.GetLogger().Info("Order locked",
		zap.String("thread", order.ThreadID),
		zap.String("order", id),
		zap.String("kind", order.Kind),
		zap.Time("lockedUntil", order.LockedUntil),
	)
	return &order, nil
}

// Verify reports ErrLockLost unless the order is still held. A lock past its
// deadline is expired on the spot.
func (s *OrderService) Verify(ctx context.Context, id string) error {
	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if order.Status != models.OrderLocked {
		return fmt.Errorf("%w: order %s is %s", ErrLockLost, id, order.Status)
	}
	if s.now().After(order.LockedUntil) {
		if _, err := s.Expire(ctx, id); err != nil {
			return err
		}
		return fmt.Errorf("%w: order %s expired", ErrLockLost, id)
	}
	return nil
}

// Confirm turns a still-held lock into a confirmed order.
func (s *OrderService) Confirm(ctx context.Context, id string) error {
	if err := s.Verify(ctx, id); err != nil {
		return err
	}
	ok, err := s.repo.TransitionStatus(ctx, id, models.OrderLocked, models.OrderConfirmed)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: order %s changed while confirming", ErrLockLost, id)
	}
	utils.GetLogger().Info("Order confirmed", zap.String("order", id))
	return nil
}

// Release frees a locked order. Orders no longer locked are left alone.
func (s *OrderService) Release(ctx context.Context, id string) error {
	ok, err := s.repo.TransitionStatus(ctx, id, models.OrderLocked, models.OrderReleased)
	if err != nil {
		return err
	}
	if ok {
		utils.GetLogger().Info("Order released", zap.String("order", id))
	}
	return nil
}

// Revert puts a confirmed order back on hold when the rest of its booking
// could not be confirmed. Orders that are not confirmed are left alone.
func (s *OrderService) Revert(ctx context.Context, id string) error {
	ok, err := s.repo.TransitionStatus(ctx, id, models.OrderConfirmed, models.OrderLocked)
	if err != nil {
		return err
	}
	if ok {
		utils.GetLogger().Warn("Order confirmation reverted", zap.String("order", id))
	}
	return nil
}

// Expire marks a locked order expired and reports whether it was still locked.
func (s *OrderService) Expire(ctx context.Context, id string) (bool, error) {
	ok, err := s.repo.TransitionStatus(ctx, id, models.OrderLocked, models.OrderExpired)
	if err != nil {
		return false, err
	}
	if ok {
		utils.GetLogger().Info("Order lock expired", zap.String("order", id))
	}
	return ok, nil
}

// ExpireStale expires every lock past its deadline; it backs up the queued expiry tasks.
func (s *OrderService) ExpireStale(ctx context.Context) (int, error) {
	orders, err := s.repo.FindExpiredLocks(ctx, s.now(), 100)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, o := range orders {
		ok, err := s.Expire(ctx, o.ID)
		if err != nil {
			return n, err
		}
		if ok {
			n++
		}
	}
	return n, nil
}

func (s *OrderService) ThreadOrders(ctx context.Context, threadID string) ([]models.Order, error) {
	return s.repo.GetByThreadID(ctx, threadID)
}

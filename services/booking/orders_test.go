package booking

import (
	"context"
	"testing"
	"time"

	"wanderly/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOrderService(now *time.Time) (*OrderService, *memOrderRepo) {
	repo := newMemOrderRepo()
	svc := NewOrderService(repo, 15*time.Minute)
	svc.now = func() time.Time { return *now }
	return svc, repo
}

func TestLockAndConfirm(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	svc, repo := newTestOrderService(&now)

	flight, err := svc.LockFlight(ctx, "t1", "u1", models.FlightOption{ID: "f1", Price: 200, Currency: "EUR"})
	require.NoError(t, err)
	assert.Equal(t, models.OrderLocked, flight.Status)
	assert.Equal(t, now.Add(15*time.Minute), flight.LockedUntil)
	assert.Equal(t, 200.0, flight.Amount)

	hotel, err := svc.LockHotel(ctx, "t1", "u1", models.HotelOption{ID: "h1", TotalPrice: 300, Currency: "EUR"})
	require.NoError(t, err)
	assert.Equal(t, 300.0, hotel.Amount)

	require.NoError(t, svc.Confirm(ctx, flight.ID))
	assert.Equal(t, models.OrderConfirmed, repo.status(flight.ID))

	// A confirmed order cannot be confirmed again or released.
	assert.ErrorIs(t, svc.Confirm(ctx, flight.ID), ErrLockLost)
	require.NoError(t, svc.Release(ctx, flight.ID))
	assert.Equal(t, models.OrderConfirmed, repo.status(flight.ID))

	orders, err := svc.ThreadOrders(ctx, "t1")
	require.NoError(t, err)
	assert.Len(t, orders, 2)
}

func TestConfirmAfterDeadlineExpires(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	svc, repo := newTestOrderService(&now)

	o, err := svc.LockFlight(ctx, "t1", "", models.FlightOption{Price: 100, Currency: "USD"})
	require.NoError(t, err)

	now = now.Add(20 * time.Minute)
	assert.ErrorIs(t, svc.Confirm(ctx, o.ID), ErrLockLost)
	assert.Equal(t, models.OrderExpired, repo.status(o.ID))
}

func TestReleaseAndExpire(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	svc, repo := newTestOrderService(&now)

	a, _ := svc.LockFlight(ctx, "t1", "", models.FlightOption{Price: 100, Currency: "USD"})
	b, _ := svc.LockHotel(ctx, "t1", "", models.HotelOption{TotalPrice: 100, Currency: "USD"})

	require.NoError(t, svc.Release(ctx, a.ID))
	assert.Equal(t, models.OrderReleased, repo.status(a.ID))

	ok, err := svc.Expire(ctx, a.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	now = now.Add(time.Hour)
	n, err := svc.ExpireStale(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, models.OrderExpired, repo.status(b.ID))
}

func TestLockRequiresThread(t *testing.T) {
	now := time.Now()
	svc, _ := newTestOrderService(&now)
	_, err := svc.LockFlight(context.Background(), "", "", models.FlightOption{})
	assert.Error(t, err)
}

func TestVerifyAndRevert(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	svc, repo := newTestOrderService(&now)

	flight, _ := svc.LockFlight(ctx, "t1", "", models.FlightOption{Price: 100, Currency: "USD"})
	hotel, _ := svc.LockHotel(ctx, "t1", "", models.HotelOption{TotalPrice: 100, Currency: "USD"})

	require.NoError(t, svc.Verify(ctx, flight.ID))
	assert.Equal(t, models.OrderLocked, repo.status(flight.ID), "verify does not change a held lock")

	require.NoError(t, svc.Release(ctx, hotel.ID))
	assert.ErrorIs(t, svc.Verify(ctx, hotel.ID), ErrLockLost)

	// Revert only touches confirmed orders.
	require.NoError(t, svc.Revert(ctx, hotel.ID))
	assert.Equal(t, models.OrderReleased, repo.status(hotel.ID))
	require.NoError(t, svc.Confirm(ctx, flight.ID))
	require.NoError(t, svc.Revert(ctx, flight.ID))
	assert.Equal(t, models.OrderLocked, repo.status(flight.ID))
	require.NoError(t, svc.Release(ctx, flight.ID))
	assert.Equal(t, models.OrderReleased, repo.status(flight.ID))
}

func TestVerifyExpiresPastDeadline(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	svc, repo := newTestOrderService(&now)

	o, _ := svc.LockHotel(ctx, "t1", "", models.HotelOption{TotalPrice: 100, Currency: "USD"})
	now = now.Add(16 * time.Minute)
	assert.ErrorIs(t, svc.Verify(ctx, o.ID), ErrLockLost)
	assert.Equal(t, models.OrderExpired, repo.status(o.ID))
}

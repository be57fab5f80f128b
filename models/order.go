package models

import "time"

const (
	OrderKindFlight = "flight"
	OrderKindHotel  = "hotel"
)

// Order lifecycle: locked -> confirmed, or locked -> released/expired.
const (
	OrderLocked    = "locked"
	OrderConfirmed = "confirmed"
	OrderReleased  = "released"
	OrderExpired   = "expired"
)

// Order is a flight or hotel reservation held for a conversation thread.
type Order struct {
	ID          string        `bson:"id" json:"id"`
	Kind        string        `bson:"kind" json:"kind"`
	ThreadID    string        `bson:"threadId" json:"thread_id"`
	UserID      string        `bson:"lockedByUserId,omitempty" json:"locked_by_user_id,omitempty"`
	Status      string        `bson:"status" json:"status"`
	Flight      *FlightOption `bson:"flight,omitempty" json:"flight,omitempty"`
	Hotel       *HotelOption  `bson:"hotel,omitempty" json:"hotel,omitempty"`
	Amount      float64       `bson:"amount" json:"amount"`
	Currency    string        `bson:"currency" json:"currency"`
	LockedUntil time.Time     `bson:"lockedUntil" json:"locked_until"`
	CreatedAt   time.Time     `bson:"createdAt" json:"created_at"`
	UpdatedAt   time.Time     `bson:"updatedAt" json:"updated_at"`
}

// LockExpiryPayload is queued when orders are locked and fires after the lock TTL.
type LockExpiryPayload struct {
	ThreadID string   `json:"threadId"`
	OrderIDs []string `json:"orderIds"`
}

package booking

import (
	"errors"
	"fmt"
)

var (
	// ErrLockLost means the order is no longer held: it expired or was released.
	ErrLockLost = errors.New("order lock lost")
	// ErrInvalidPayment is wrapped by gateway request validation failures.
	ErrInvalidPayment = errors.New("invalid payment request")
)

// RuleViolation is returned when a booking rule blocks an action.
type RuleViolation struct {
	Rule   string
	Reason string
}

func (e *RuleViolation) Error() string {
	return fmt.Sprintf("%s: %s", e.Rule, e.Reason)
}

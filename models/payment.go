package models

// --- PaymentRequest & PaymentEvent ---
type PaymentRequest struct {
	ThreadID    string
	UserID      string
	Amount      float64
	Currency    string
	Idempotency string
	Metadata    map[string]string
	Description string
}

const (
	PaymentSucceeded = "succeeded"
	PaymentFailed    = "failed"
)

// Where a payment event came from. Only the signed Stripe webhook may settle
// a Stripe payment.
const (
	PaymentSourceCallback = "callback"
	PaymentSourceStripe   = "stripe_webhook"
)

// PaymentEvent is the callback that resumes a conversation paused for payment.
type PaymentEvent struct {
	ThreadID  string `bson:"threadId" json:"thread_id"`
	PaymentID string `bson:"paymentId" json:"payment_id"`
	Status    string `bson:"status" json:"status"`
	Reason    string `bson:"reason,omitempty" json:"reason,omitempty"`
	Source    string `bson:"source,omitempty" json:"source,omitempty"`
}

func (e PaymentEvent) Succeeded() bool {
	return e.Status == PaymentSucceeded
}

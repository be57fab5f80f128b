package models

import "time"

const (
	InvoicePending   = "pending"
	InvoicePaid      = "paid"
	InvoiceFailed    = "failed"
	InvoiceCancelled = "cancelled"
)

// Invoice represents a payment created for a locked flight+hotel booking.
type Invoice struct {
	InvoiceID    string    `bson:"invoice_id" json:"invoice_id"`     // Unique invoice identifier.
	ThreadID     string    `bson:"thread_id" json:"thread_id"`       // Conversation that created it.
	Amount       float64   `bson:"amount" json:"amount"`             // The amount charged.
	Currency     string    `bson:"currency" json:"currency"`         // ISO currency, lower or upper case.
	Status       string    `bson:"status" json:"status"`             // pending, paid, failed.
	Provider     string    `bson:"provider" json:"provider"`         // stripe or simulated.
	PaymentID    string    `bson:"payment_id" json:"payment_id"`     // Gateway reference (PaymentIntent id).
	ClientSecret string    `bson:"client_secret" json:"-"`           // Handed to the payer only.
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`     // Timestamp of invoice creation.
	UpdatedAt    time.Time `bson:"updated_at" json:"updated_at"`
}

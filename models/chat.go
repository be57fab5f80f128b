package models

// ChatRequest is the payload of POST /api/agent/chat and /api/agent/stream.
type ChatRequest struct {
	ThreadID string `json:"thread_id" binding:"required"`
	Message  string `json:"message" binding:"required"`
}

// ChatResponse is what a turn returns to the client.
type ChatResponse struct {
	ThreadID    string         `json:"thread_id"`
	Replies     []Message      `json:"replies"`
	Step        Step           `json:"step"`
	Interrupted bool           `json:"interrupted"`
	Next        string         `json:"next,omitempty"` // node waiting to run after an interrupt
	Booking     *BookingResult `json:"booking,omitempty"`
}

// PaymentCallbackRequest is posted by the cashier (or the CLI) once payment settles.
type PaymentCallbackRequest struct {
	ThreadID  string `json:"thread_id" binding:"required"`
	PaymentID string `json:"payment_id"`
	Status    string `json:"status" binding:"required,oneof=succeeded failed"`
	Reason    string `json:"reason"`
}

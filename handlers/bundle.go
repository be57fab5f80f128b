package handlers

import (
	"github.com/gin-gonic/gin"
)

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	// Agent endpoints
	ChatHandler       gin.HandlerFunc
	StreamHandler     gin.HandlerFunc
	GetStateHandler   gin.HandlerFunc
	ResetStateHandler gin.HandlerFunc
	GraphHandler      gin.HandlerFunc
	OrdersHandler     gin.HandlerFunc

	// Payment endpoints. PaymentCallbackHandler is nil when a real gateway is configured.
	PaymentCallbackHandler gin.HandlerFunc
	StripeWebhookHandler   gin.HandlerFunc

	HealthHandler gin.HandlerFunc
}

// NewHandlerBundle assembles the bundle from the agent and payment handlers.
func NewHandlerBundle(agentHandler *AgentHandler, paymentHandler *PaymentHandler) *HandlerBundle {
	return &HandlerBundle{
		ChatHandler:       agentHandler.ChatHandler,
		StreamHandler:     agentHandler.StreamHandler,
		GetStateHandler:   agentHandler.GetStateHandler,
		ResetStateHandler: agentHandler.ResetStateHandler,
		GraphHandler:      agentHandler.GraphHandler,
		OrdersHandler:     agentHandler.OrdersHandler,

		PaymentCallbackHandler: paymentHandler.CallbackHandler,
		StripeWebhookHandler:   paymentHandler.StripeWebhookHandler,

		HealthHandler: HealthHandler,
	}
}

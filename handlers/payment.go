package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"wanderly/models"
	"wanderly/services/agent"
	"wanderly/utils"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"
	"go.uber.org/zap"
)

const maxWebhookBody = 65536

type PaymentHandler struct {
	Agent         TravelAgent
	WebhookSecret string
}

func NewPaymentHandler(a TravelAgent, webhookSecret string) *PaymentHandler {
	return &PaymentHandler{Agent: a, WebhookSecret: webhookSecret}
}

// CallbackHandler resumes a conversation paused for a simulated payment. Used by
// the cashier page and the CLI; Stripe payments are only settled by the webhook.
func (h *PaymentHandler) CallbackHandler(c *gin.Context) {
	var req models.PaymentCallbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid payment callback", err.Error())
		return
	}

	ev := models.PaymentEvent{
		ThreadID:  scopedThread(c, req.ThreadID),
		PaymentID: req.PaymentID,
		Status:    req.Status,
		Reason:    req.Reason,
		Source:    models.PaymentSourceCallback,
	}
	res, err := h.Agent.Resume(c.Request.Context(), ev, nil)
	if err != nil {
		utils.JSONError(c, agentErrorStatus(err), "Payment callback rejected", err.Error())
		return
	}
	c.JSON(http.StatusOK, toChatResponse(res))
}

// StripeWebhookHandler verifies a Stripe event and resumes the thread named in the
// payment intent's metadata. Events we do not act on are acknowledged with 200.
func (h *PaymentHandler) StripeWebhookHandler(c *gin.Context) {
	logger := getLogger(c)

	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		utils.JSONError(c, http.StatusServiceUnavailable, "Could not read webhook body", err.Error())
		return
	}

	event, err := webhook.ConstructEventWithOptions(payload, c.GetHeader("Stripe-Signature"), h.WebhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid webhook signature", err.Error())
		return
	}

	var status string
	switch event.Type {
	case "payment_intent.succeeded":
		status = models.PaymentSucceeded
	case "payment_intent.payment_failed":
		status = models.PaymentFailed
	default:
		logger.Debug("Ignoring Stripe event", zap.String("type", string(event.Type)))
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	var intent stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Malformed payment intent", err.Error())
		return
	}
	threadID := intent.Metadata["thread_id"]
	if threadID == "" {
		logger.Warn("Payment intent without thread id", zap.String("payment", intent.ID))
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	ev := models.PaymentEvent{ThreadID: threadID, PaymentID: intent.ID, Status: status, Source: models.PaymentSourceStripe}
	if intent.LastPaymentError != nil {
		ev.Reason = intent.LastPaymentError.Msg
	}
	res, err := h.Agent.Resume(c.Request.Context(), ev, nil)
	if errors.Is(err, agent.ErrNotInterrupted) {
		// A redelivered event for a booking that was already settled.
		logger.Info("Stripe event for a settled conversation", zap.String("thread", threadID), zap.String("payment", intent.ID))
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}
	if err != nil {
		utils.JSONError(c, agentErrorStatus(err), "Could not resume conversation", err.Error())
		return
	}
	logger.Info("Stripe payment applied",
		zap.String("thread", threadID),
		zap.String("payment", intent.ID),
		zap.String("status", status),
	)
	c.JSON(http.StatusOK, gin.H{"received": true, "step": res.Step})
}

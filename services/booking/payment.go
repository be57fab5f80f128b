package booking

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"wanderly/models"
	"wanderly/utils"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
	"go.uber.org/zap"
)

const (
	ProviderStripe    = "stripe"
	ProviderSimulated = "simulated"
)

// PaymentGateway starts a payment for a booking. Completion arrives later
// through the payment callback or the Stripe webhook.
type PaymentGateway interface {
	CreatePayment(ctx context.Context, req models.PaymentRequest) (*models.Invoice, error)
}

func validateRequest(req models.PaymentRequest) error {
	if req.Amount <= 0 {
		return fmt.Errorf("%w: amount must be positive", ErrInvalidPayment)
	}
	if req.ThreadID == "" {
		return fmt.Errorf("%w: missing thread ID", ErrInvalidPayment)
	}
	if strings.TrimSpace(req.Currency) == "" {
		return fmt.Errorf("%w: missing currency", ErrInvalidPayment)
	}
	return nil
}

func newInvoice(req models.PaymentRequest, provider string) *models.Invoice {
	now := time.Now()
	return &models.Invoice{
		InvoiceID: uuid.New().String(),
		ThreadID:  req.ThreadID,
		Amount:    req.Amount,
		Currency:  strings.ToUpper(req.Currency),
		Status:    models.InvoicePending,
		Provider:  provider,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// StripeGateway creates a PaymentIntent. stripe.Key must be set at startup.
type StripeGateway struct {
	newIntent func(*stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
}

func NewStripeGateway() *StripeGateway {
	return &StripeGateway{newIntent: paymentintent.New}
}

func (g *StripeGateway) CreatePayment(ctx context.Context, req models.PaymentRequest) (*models.Invoice, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	inv := newInvoice(req, ProviderStripe)

	params := &stripe.PaymentIntentParams{
		Amount:      stripe.Int64(int64(math.Round(req.Amount * 100))),
		Currency:    stripe.String(strings.ToLower(req.Currency)),
		Description: stripe.String(req.Description),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	params.AddMetadata("thread_id", req.ThreadID)
	params.AddMetadata("invoice_id", inv.InvoiceID)
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}
	if req.Idempotency != "" {
		params.SetIdempotencyKey(req.Idempotency)
	}

	pi, err := g.newIntent(params)
	if err != nil {
		return nil, fmt.Errorf("stripe payment intent failed: %w", err)
	}
	inv.PaymentID = pi.ID
	inv.ClientSecret = pi.ClientSecret

	utils.GetLogger().Info("Stripe payment intent created",
		zap.String("thread", req.ThreadID),
		zap.String("invoice", inv.InvoiceID),
		zap.String("paymentIntent", pi.ID),
	)
	return inv, nil
}

// SimulatedGateway issues a pending invoice without talking to a processor.
// The payment is completed by POST /api/payments/callback.
type SimulatedGateway struct{}

func (SimulatedGateway) CreatePayment(_ context.Context, req models.PaymentRequest) (*models.Invoice, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	inv := newInvoice(req, ProviderSimulated)
	inv.PaymentID = "pi_sim_" + strings.ReplaceAll(uuid.New().String(), "-", "")
	utils.GetLogger().Info("Simulated payment created",
		zap.String("thread", req.ThreadID),
		zap.String("invoice", inv.InvoiceID),
		zap.String("payment", inv.PaymentID),
	)
	return inv, nil
}

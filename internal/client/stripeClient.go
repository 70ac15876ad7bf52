package client

import (
	"context"
	"fmt"

	"crystalenergy-backend/internal/config"
	"crystalenergy-backend/internal/errs"

	"github.com/stripe/stripe-go/v83"
	stripeclient "github.com/stripe/stripe-go/v83/client"
	"github.com/stripe/stripe-go/v83/webhook"
)

type StripeClient interface {
	CreatePaymentIntent(ctx context.Context, params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
	GetPaymentIntent(ctx context.Context, intentID string) (*stripe.PaymentIntent, error)

	// VerifyWebhook checks the Stripe-Signature header against the configured
	// endpoint secret and returns the parsed event.
	VerifyWebhook(payload []byte, sigHeader string) (stripe.Event, error)
}

type stripeClientImpl struct {
	api           *stripeclient.API
	webhookSecret string
}

// NewStripeClient builds an explicitly constructed API client. The secret key
// is held by this client alone; nothing touches the package-global key.
func NewStripeClient(cfg *config.Stripe) StripeClient {
	return &stripeClientImpl{
		api:           stripeclient.New(cfg.SecretKey, nil),
		webhookSecret: cfg.WebhookSecret,
	}
}

func (c *stripeClientImpl) CreatePaymentIntent(ctx context.Context, params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error) {
	params.Context = ctx
	intent, err := c.api.PaymentIntents.New(params)
	if err != nil {
		return nil, fmt.Errorf("%w: stripe create payment intent: %v", errs.ErrProviderUnavailable, err)
	}
	return intent, nil
}

func (c *stripeClientImpl) GetPaymentIntent(ctx context.Context, intentID string) (*stripe.PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx
	intent, err := c.api.PaymentIntents.Get(intentID, params)
	if err != nil {
		return nil, fmt.Errorf("%w: stripe get payment intent %s: %v", errs.ErrProviderUnavailable, intentID, err)
	}
	return intent, nil
}

func (c *stripeClientImpl) VerifyWebhook(payload []byte, sigHeader string) (stripe.Event, error) {
	event, err := webhook.ConstructEvent(payload, sigHeader, c.webhookSecret)
	if err != nil {
		return stripe.Event{}, fmt.Errorf("%w: stripe signature: %v", errs.ErrVerificationFailed, err)
	}
	return event, nil
}

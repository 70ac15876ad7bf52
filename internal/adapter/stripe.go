// Package adapter translates provider-specific webhook payloads into the
// canonical payment events the reconciliation engine consumes. Each adapter
// verifies authenticity first; an unverified payload never reaches the engine.
package adapter

import (
	"encoding/json"
	"fmt"

	"crystalenergy-backend/internal/client"
	"crystalenergy-backend/internal/payment"

	"github.com/stripe/stripe-go/v83"
)

type StripeAdapter struct {
	client client.StripeClient
}

func NewStripeAdapter(c client.StripeClient) *StripeAdapter {
	return &StripeAdapter{client: c}
}

// Normalize verifies the Stripe-Signature header and reduces the event to a
// canonical tuple. A nil event with nil error means the event type carries no
// payment outcome and should only be logged.
func (a *StripeAdapter) Normalize(payload []byte, sigHeader string) (*payment.Event, error) {
	event, err := a.client.VerifyWebhook(payload, sigHeader)
	if err != nil {
		return nil, err
	}
	return NormalizeStripeEvent(event)
}

// NormalizeStripeEvent is the pure mapping half, split out so it can be
// exercised without a signature.
func NormalizeStripeEvent(event stripe.Event) (*payment.Event, error) {
	base := payment.Event{
		Provider:        payment.ProviderStripe,
		ProviderEventID: event.ID,
		EventType:       string(event.Type),
		Raw:             json.RawMessage(event.Data.Raw),
	}

	switch event.Type {
	case "payment_intent.succeeded", "payment_intent.payment_failed",
		"payment_intent.canceled", "payment_intent.processing":
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			return nil, fmt.Errorf("decode payment intent: %w", err)
		}
		base.ProviderRef = pi.ID
		base.CorrelationID = pi.Metadata["orderId"]

		switch event.Type {
		case "payment_intent.succeeded":
			base.Outcome = payment.OutcomeSucceeded
		case "payment_intent.payment_failed":
			base.Outcome = payment.OutcomeFailed
		case "payment_intent.canceled":
			base.Outcome = payment.OutcomeCanceled
		case "payment_intent.processing":
			base.Outcome = payment.OutcomeProcessing
		}
		return &base, nil

	case "charge.dispute.created":
		var dispute stripe.Dispute
		if err := json.Unmarshal(event.Data.Raw, &dispute); err != nil {
			return nil, fmt.Errorf("decode dispute: %w", err)
		}
		base.Outcome = payment.OutcomeDisputed
		if dispute.PaymentIntent != nil {
			base.ProviderRef = dispute.PaymentIntent.ID
		}
		return &base, nil
	}

	// Everything else (invoices, subscriptions, ...) has no bearing on order
	// state and is only recorded.
	return nil, nil
}

package adapter

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v83"

	"crystalenergy-backend/internal/payment"
)

func stripeEvent(t *testing.T, eventType string, raw string) stripe.Event {
	t.Helper()
	return stripe.Event{
		ID:   "evt_123",
		Type: stripe.EventType(eventType),
		Data: &stripe.EventData{Raw: json.RawMessage(raw)},
	}
}

func TestNormalizeStripeEvent_PaymentIntentOutcomes(t *testing.T) {
	tests := []struct {
		eventType string
		want      payment.Outcome
	}{
		{"payment_intent.succeeded", payment.OutcomeSucceeded},
		{"payment_intent.payment_failed", payment.OutcomeFailed},
		{"payment_intent.canceled", payment.OutcomeCanceled},
		{"payment_intent.processing", payment.OutcomeProcessing},
	}

	raw := `{"id":"pi_123","metadata":{"orderId":"order-1"}}`
	for _, tt := range tests {
		t.Run(tt.eventType, func(t *testing.T) {
			ev, err := NormalizeStripeEvent(stripeEvent(t, tt.eventType, raw))
			require.NoError(t, err)
			require.NotNil(t, ev)

			assert.Equal(t, payment.ProviderStripe, ev.Provider)
			assert.Equal(t, tt.want, ev.Outcome)
			assert.Equal(t, "pi_123", ev.ProviderRef)
			assert.Equal(t, "order-1", ev.CorrelationID)
			assert.Equal(t, "evt_123", ev.ProviderEventID)
			assert.Equal(t, tt.eventType, ev.EventType)
		})
	}
}

func TestNormalizeStripeEvent_Dispute(t *testing.T) {
	raw := `{"id":"dp_123","payment_intent":{"id":"pi_123"}}`
	ev, err := NormalizeStripeEvent(stripeEvent(t, "charge.dispute.created", raw))
	require.NoError(t, err)
	require.NotNil(t, ev)

	assert.Equal(t, payment.OutcomeDisputed, ev.Outcome)
	assert.Equal(t, "pi_123", ev.ProviderRef)
}

func TestNormalizeStripeEvent_UnhandledTypeIsLogOnly(t *testing.T) {
	ev, err := NormalizeStripeEvent(stripeEvent(t, "invoice.paid", `{}`))
	require.NoError(t, err)
	assert.Nil(t, ev)
}

func TestNormalizeStripeEvent_MalformedPayload(t *testing.T) {
	_, err := NormalizeStripeEvent(stripeEvent(t, "payment_intent.succeeded", `{not json`))
	assert.Error(t, err)
}

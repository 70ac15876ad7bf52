package adapter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crystalenergy-backend/internal/payment"
)

func TestNormalizePaypalEvent_CaptureCompleted(t *testing.T) {
	body := []byte(`{
		"id": "WH-1",
		"event_type": "PAYMENT.CAPTURE.COMPLETED",
		"resource": {
			"id": "cap_1",
			"status": "COMPLETED",
			"custom_id": "order-1",
			"supplementary_data": {"related_ids": {"order_id": "PP-ORDER-1"}}
		}
	}`)

	ev, err := NormalizePaypalEvent(body)
	require.NoError(t, err)
	require.NotNil(t, ev)

	assert.Equal(t, payment.ProviderPaypal, ev.Provider)
	assert.Equal(t, payment.OutcomeSucceeded, ev.Outcome)
	assert.Equal(t, "PP-ORDER-1", ev.ProviderRef)
	assert.Equal(t, "order-1", ev.CorrelationID)
	assert.Equal(t, "WH-1", ev.ProviderEventID)
}

func TestNormalizePaypalEvent_CaptureDenied(t *testing.T) {
	body := []byte(`{
		"id": "WH-2",
		"event_type": "PAYMENT.CAPTURE.DENIED",
		"resource": {
			"supplementary_data": {"related_ids": {"order_id": "PP-ORDER-1"}}
		}
	}`)

	ev, err := NormalizePaypalEvent(body)
	require.NoError(t, err)
	require.NotNil(t, ev)
	assert.Equal(t, payment.OutcomeFailed, ev.Outcome)
	assert.Equal(t, "PP-ORDER-1", ev.ProviderRef)
}

func TestNormalizePaypalEvent_OrderApproved(t *testing.T) {
	body := []byte(`{
		"id": "WH-3",
		"event_type": "CHECKOUT.ORDER.APPROVED",
		"resource": {"id": "PP-ORDER-1", "status": "APPROVED"}
	}`)

	ev, err := NormalizePaypalEvent(body)
	require.NoError(t, err)
	require.NotNil(t, ev)
	assert.Equal(t, payment.OutcomeProcessing, ev.Outcome)
	assert.Equal(t, "PP-ORDER-1", ev.ProviderRef)
}

func TestNormalizePaypalEvent_UnhandledTypeIsLogOnly(t *testing.T) {
	body := []byte(`{"id": "WH-4", "event_type": "BILLING.SUBSCRIPTION.CREATED", "resource": {}}`)

	ev, err := NormalizePaypalEvent(body)
	require.NoError(t, err)
	assert.Nil(t, ev)
}

func TestNormalizePaypalEvent_MalformedPayload(t *testing.T) {
	_, err := NormalizePaypalEvent([]byte(`{not json`))
	assert.Error(t, err)
}

package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"crystalenergy-backend/internal/client"
	"crystalenergy-backend/internal/payment"
)

// PaypalWebhookEvent mirrors the subset of PayPal's webhook envelope we read.
type PaypalWebhookEvent struct {
	ID        string         `json:"id"`
	EventType string         `json:"event_type"`
	Resource  PaypalResource `json:"resource"`
}

type PaypalResource struct {
	ID                string `json:"id"`
	Status            string `json:"status"`
	CustomID          string `json:"custom_id"`
	SupplementaryData struct {
		RelatedIDs struct {
			OrderID string `json:"order_id"`
		} `json:"related_ids"`
	} `json:"supplementary_data"`
}

type PaypalAdapter struct {
	client client.PaypalClient
}

func NewPaypalAdapter(c client.PaypalClient) *PaypalAdapter {
	return &PaypalAdapter{client: c}
}

// Normalize verifies transmission headers against PayPal's verification API,
// then reduces the event. Nil event, nil error means log-only.
func (a *PaypalAdapter) Normalize(ctx context.Context, headers http.Header, body []byte) (*payment.Event, error) {
	if err := a.client.VerifyWebhookSignature(ctx, headers, body); err != nil {
		return nil, fmt.Errorf("verify webhook signature: %w", err)
	}
	return NormalizePaypalEvent(body)
}

func NormalizePaypalEvent(body []byte) (*payment.Event, error) {
	var event PaypalWebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, fmt.Errorf("decode webhook payload: %w", err)
	}

	base := payment.Event{
		Provider:        payment.ProviderPaypal,
		ProviderEventID: event.ID,
		EventType:       event.EventType,
		CorrelationID:   event.Resource.CustomID,
		Raw:             json.RawMessage(body),
	}

	switch event.EventType {
	case "PAYMENT.CAPTURE.COMPLETED":
		base.Outcome = payment.OutcomeSucceeded
		// Capture resources carry the checkout order id alongside, not as
		// their own id.
		base.ProviderRef = event.Resource.SupplementaryData.RelatedIDs.OrderID
	case "PAYMENT.CAPTURE.DENIED":
		base.Outcome = payment.OutcomeFailed
		base.ProviderRef = event.Resource.SupplementaryData.RelatedIDs.OrderID
	case "PAYMENT.CAPTURE.PENDING":
		base.Outcome = payment.OutcomeProcessing
		base.ProviderRef = event.Resource.SupplementaryData.RelatedIDs.OrderID
	case "CHECKOUT.ORDER.APPROVED":
		// Buyer approved the redirect flow; capture has not settled yet.
		base.Outcome = payment.OutcomeProcessing
		base.ProviderRef = event.Resource.ID
	default:
		return nil, nil
	}

	return &base, nil
}

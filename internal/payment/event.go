// Package payment defines the canonical payment event consumed by the
// reconciliation engine. Provider adapters reduce webhook payloads and polled
// resource states to this shape; the engine never sees provider vocabulary.
package payment

import "encoding/json"

type Outcome string

const (
	OutcomeSucceeded  Outcome = "succeeded"
	OutcomeProcessing Outcome = "processing"
	OutcomeFailed     Outcome = "failed"
	OutcomeCanceled   Outcome = "canceled"
	OutcomeDisputed   Outcome = "disputed"
)

type Provider string

const (
	ProviderStripe Provider = "stripe"
	ProviderPaypal Provider = "paypal"
)

type Event struct {
	Provider Provider
	Outcome  Outcome

	// ProviderRef is the provider's own transaction id (payment intent id or
	// PayPal order id). CorrelationID is our order id threaded through the
	// payment-creation call; either may resolve the order.
	ProviderRef   string
	CorrelationID string

	// ProviderEventID identifies the delivery for audit purposes. EventType
	// keeps the provider's original event name in the log.
	ProviderEventID string
	EventType       string

	Raw json.RawMessage
}

package errs

import "errors"

// Error taxonomy shared across handlers, services and the reconciliation
// engine. Callers classify with errors.Is and wrap with fmt.Errorf("...: %w").
var (
	// ErrValidation rejects malformed input before any state change.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound means a referenced order/consultation/customer is absent.
	ErrNotFound = errors.New("not found")

	// ErrVerificationFailed means an inbound webhook failed signature or
	// shared-secret verification. Always rejected, never processed.
	ErrVerificationFailed = errors.New("webhook verification failed")

	// ErrProviderUnavailable covers network errors and timeouts talking to a
	// payment processor or the LLM. Retryable from the caller's side.
	ErrProviderUnavailable = errors.New("provider unavailable")

	// ErrPersistence means a store write failed. Surfaced so that webhook
	// deliveries are retried rather than acknowledged half-applied.
	ErrPersistence = errors.New("persistence failure")
)

package provider

import (
	"encoding/json"
	"time"
)

// WebhookVerifier authenticates raw webhook deliveries from a payment provider.
type WebhookVerifier interface {
	// VerifyWebhook checks the signature of payload and parses the event.
	VerifyWebhook(payload []byte, signature string) (*WebhookEvent, error)

	// GetProviderName returns the provider name
	GetProviderName() string
}

// WebhookEvent is a verified provider event.
type WebhookEvent struct {
	EventID    string          `json:"event_id"`
	EventType  string          `json:"event_type"`
	APIVersion string          `json:"api_version,omitempty"`
	Object     json.RawMessage `json:"object"`
	CreatedAt  time.Time       `json:"created_at"`
}

// ProviderType represents the type of payment provider
type ProviderType string

const (
	ProviderTypeStripe ProviderType = "stripe"
)

// Error codes returned by providers.
const (
	ErrCodeInvalidSignature = "invalid_signature"
	ErrCodeInvalidPayload   = "invalid_payload"
)

// ProviderError describes a provider-side failure.
type ProviderError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func (e *ProviderError) Error() string {
	if e.Details != "" {
		return e.Message + ": " + e.Details
	}
	return e.Message
}

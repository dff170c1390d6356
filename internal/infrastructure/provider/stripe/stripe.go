package stripe

import (
	"time"

	"github.com/acdc-digital/solopro-sub000/internal/domain/provider"
	"github.com/stripe/stripe-go/v79/webhook"
	"go.uber.org/zap"
)

// StripeProvider verifies Stripe webhook deliveries.
type StripeProvider struct {
	webhookSecret string
	logger        *zap.Logger
}

// NewStripeProvider creates a new Stripe provider
func NewStripeProvider(webhookSecret string, logger *zap.Logger) *StripeProvider {
	return &StripeProvider{
		webhookSecret: webhookSecret,
		logger:        logger,
	}
}

// GetProviderName returns the provider name
func (s *StripeProvider) GetProviderName() string {
	return string(provider.ProviderTypeStripe)
}

// VerifyWebhook checks the Stripe-Signature header against the endpoint
// secret and returns the parsed event.
func (s *StripeProvider) VerifyWebhook(payload []byte, signature string) (*provider.WebhookEvent, error) {
	if s.webhookSecret == "" {
		return nil, &provider.ProviderError{
			Code:    provider.ErrCodeInvalidSignature,
			Message: "webhook secret is not configured",
		}
	}

	event, err := webhook.ConstructEventWithOptions(
		payload,
		signature,
		s.webhookSecret,
		webhook.ConstructEventOptions{
			IgnoreAPIVersionMismatch: true,
		},
	)
	if err != nil {
		s.logger.Warn("Webhook signature verification failed", zap.Error(err))
		return nil, &provider.ProviderError{
			Code:    provider.ErrCodeInvalidSignature,
			Message: "webhook signature verification failed",
			Details: err.Error(),
		}
	}

	if event.Data == nil || len(event.Data.Raw) == 0 {
		return nil, &provider.ProviderError{
			Code:    provider.ErrCodeInvalidPayload,
			Message: "webhook event has no data object",
		}
	}

	return &provider.WebhookEvent{
		EventID:    event.ID,
		EventType:  string(event.Type),
		APIVersion: event.APIVersion,
		Object:     event.Data.Raw,
		CreatedAt:  time.Unix(event.Created, 0).UTC(),
	}, nil
}

package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/acdc-digital/solopro-sub000/internal/domain/model"
)

// WebhookEventInput is a verified event as it arrives from the provider.
type WebhookEventInput struct {
	EventID    string
	EventType  string
	APIVersion string
	Data       json.RawMessage
	CreatedAt  *time.Time
}

// WebhookRepository handles webhook event storage and processing
type WebhookRepository interface {
	// SaveEvent logs an event and reports whether it was new.
	SaveEvent(ctx context.Context, input WebhookEventInput) (bool, error)
	GetEvent(ctx context.Context, eventID string) (*model.StripeWebhookEvent, error)
	MarkProcessing(ctx context.Context, eventID string) error
	MarkProcessed(ctx context.Context, eventID string) error
	MarkFailed(ctx context.Context, eventID string, err error) error
	// GetPendingEvents returns due pending and failed events, plus
	// processing events whose lease has expired.
	GetPendingEvents(ctx context.Context, limit int) ([]*model.StripeWebhookEvent, error)
}

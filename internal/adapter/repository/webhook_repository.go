package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/acdc-digital/solopro-sub000/internal/domain/model"
	"github.com/acdc-digital/solopro-sub000/internal/domain/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const maxRetryMinutes = 1440

// processingLease is how long a processing event may stay claimed before a
// replay treats its dispatch as lost.
const processingLease = 15 * time.Minute

type webhookRepository struct {
	db     *gorm.DB
	logger *zap.Logger
	now    func() time.Time
}

// NewWebhookRepository creates a new webhook repository
func NewWebhookRepository(db *gorm.DB, logger *zap.Logger) repository.WebhookRepository {
	return &webhookRepository{
		db:     db,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// SaveEvent saves a new webhook event. Data is the event object.
func (r *webhookRepository) SaveEvent(ctx context.Context, input repository.WebhookEventInput) (bool, error) {
	eventID, eventType := input.EventID, input.EventType

	var eventData map[string]interface{}
	if len(input.Data) > 0 {
		if err := json.Unmarshal(input.Data, &eventData); err != nil {
			r.logger.Warn("Failed to parse event data",
				zap.String("event_id", eventID),
				zap.Error(err))
		}
	}

	event := &model.StripeWebhookEvent{
		StripeEventID:   eventID,
		EventType:       eventType,
		Status:          model.WebhookStatusPending,
		Data:            model.JSONB(eventData),
		CreatedAt:       r.now(),
		StripeCreatedAt: input.CreatedAt,
	}
	if input.APIVersion != "" {
		apiVersion := input.APIVersion
		event.APIVersion = &apiVersion
	}

	// Use ON CONFLICT to handle duplicate events
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "stripe_event_id"}},
			DoNothing: true,
		}).
		Create(event)

	if result.Error != nil {
		r.logger.Error("Failed to save webhook event",
			zap.String("event_id", eventID),
			zap.String("event_type", eventType),
			zap.Error(result.Error))
		return false, fmt.Errorf("failed to save webhook event: %w", result.Error)
	}

	return result.RowsAffected > 0, nil
}

// GetEvent retrieves a webhook event by ID
func (r *webhookRepository) GetEvent(ctx context.Context, eventID string) (*model.StripeWebhookEvent, error) {
	var event model.StripeWebhookEvent

	err := r.db.WithContext(ctx).
		Where("stripe_event_id = ?", eventID).
		First(&event).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Error("Failed to get webhook event",
			zap.String("event_id", eventID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get webhook event: %w", err)
	}

	return &event, nil
}

// MarkProcessing marks a webhook event as being dispatched. next_retry_at
// holds the lease expiry while the event is processing.
func (r *webhookRepository) MarkProcessing(ctx context.Context, eventID string) error {
	leaseUntil := r.now().Add(processingLease)
	return r.setStatus(ctx, eventID, map[string]interface{}{
		"status":        model.WebhookStatusProcessing,
		"next_retry_at": &leaseUntil,
	})
}

// MarkProcessed marks a webhook event as processed
func (r *webhookRepository) MarkProcessed(ctx context.Context, eventID string) error {
	now := r.now()
	return r.setStatus(ctx, eventID, map[string]interface{}{
		"status":       model.WebhookStatusCompleted,
		"processed_at": &now,
		"last_error":   nil,
	})
}

func (r *webhookRepository) setStatus(ctx context.Context, eventID string, updates map[string]interface{}) error {
	result := r.db.WithContext(ctx).
		Model(&model.StripeWebhookEvent{}).
		Where("stripe_event_id = ?", eventID).
		Updates(updates)

	if result.Error != nil {
		r.logger.Error("Failed to update webhook status",
			zap.String("event_id", eventID),
			zap.Any("status", updates["status"]),
			zap.Error(result.Error))
		return fmt.Errorf("failed to update webhook status: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("webhook event not found: %s", eventID)
	}

	return nil
}

// MarkFailed records a failed attempt and schedules the next retry with
// exponential backoff: 10, 20, 40 minutes and so on, capped at 24 hours.
func (r *webhookRepository) MarkFailed(ctx context.Context, eventID string, err error) error {
	var event model.StripeWebhookEvent
	if dbErr := r.db.WithContext(ctx).
		Where("stripe_event_id = ?", eventID).
		First(&event).Error; dbErr != nil {
		r.logger.Error("Failed to get webhook event for failure update",
			zap.String("event_id", eventID),
			zap.Error(dbErr))
		return fmt.Errorf("failed to get webhook event: %w", dbErr)
	}

	attempts := event.ProcessingAttempts + 1
	nextRetry := r.now().Add(retryDelay(attempts))
	errorMsg := err.Error()

	result := r.db.WithContext(ctx).
		Model(&model.StripeWebhookEvent{}).
		Where("stripe_event_id = ?", eventID).
		Updates(map[string]interface{}{
			"status":              model.WebhookStatusFailed,
			"processing_attempts": attempts,
			"last_error":          &errorMsg,
			"next_retry_at":       &nextRetry,
		})

	if result.Error != nil {
		r.logger.Error("Failed to mark webhook as failed",
			zap.String("event_id", eventID),
			zap.Error(result.Error))
		return fmt.Errorf("failed to mark webhook as failed: %w", result.Error)
	}

	return nil
}

func retryDelay(attempts int) time.Duration {
	if attempts > 8 {
		return maxRetryMinutes * time.Minute
	}
	minutes := 5 * (1 << attempts)
	if minutes > maxRetryMinutes {
		minutes = maxRetryMinutes
	}
	return time.Duration(minutes) * time.Minute
}

// GetPendingEvents retrieves pending or failed events that are due for
// processing, and processing events left behind by a crashed dispatch.
func (r *webhookRepository) GetPendingEvents(ctx context.Context, limit int) ([]*model.StripeWebhookEvent, error) {
	var events []*model.StripeWebhookEvent

	query := r.db.WithContext(ctx).
		Where("status IN (?, ?, ?) AND (next_retry_at IS NULL OR next_retry_at <= ?)",
			model.WebhookStatusPending,
			model.WebhookStatusFailed,
			model.WebhookStatusProcessing,
			r.now()).
		Order("created_at ASC")

	if limit > 0 {
		query = query.Limit(limit)
	}

	err := query.Find(&events).Error
	if err != nil {
		r.logger.Error("Failed to get pending webhook events",
			zap.Error(err))
		return nil, fmt.Errorf("failed to get pending webhook events: %w", err)
	}

	return events, nil
}

package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/acdc-digital/solopro-sub000/internal/domain/entity"
	"github.com/acdc-digital/solopro-sub000/internal/domain/model"
	"github.com/acdc-digital/solopro-sub000/internal/domain/provider"
	"github.com/acdc-digital/solopro-sub000/internal/domain/repository"
	"go.uber.org/zap"
)

// WebhookOutcome is the result of handling one webhook delivery.
type WebhookOutcome struct {
	EventID   string
	EventType string
	Duplicate bool
	Result    entity.Result
}

// ReplaySummary counts the events handled by one replay run.
type ReplaySummary struct {
	Processed int
	Failed    int
}

// WebhookProcessor logs verified provider events and dispatches them.
type WebhookProcessor struct {
	verifier   provider.WebhookVerifier
	events     repository.WebhookRepository
	dispatcher EventDispatcher
	logger     *zap.Logger
}

// NewWebhookProcessor creates a webhook processor. verifier may be nil for
// replay-only use.
func NewWebhookProcessor(
	verifier provider.WebhookVerifier,
	events repository.WebhookRepository,
	dispatcher EventDispatcher,
	logger *zap.Logger,
) *WebhookProcessor {
	return &WebhookProcessor{
		verifier:   verifier,
		events:     events,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// HandleDelivery verifies payload, stores it in the event log and dispatches
// it. The returned error is a *provider.ProviderError when verification
// fails and a storage error otherwise.
func (p *WebhookProcessor) HandleDelivery(ctx context.Context, payload []byte, signature string) (*WebhookOutcome, error) {
	if p.verifier == nil {
		return nil, &provider.ProviderError{
			Code:    provider.ErrCodeInvalidSignature,
			Message: "webhook verification is not configured",
		}
	}

	verified, err := p.verifier.VerifyWebhook(payload, signature)
	if err != nil {
		return nil, err
	}

	p.logger.Info("Webhook event received",
		zap.String("event_id", verified.EventID),
		zap.String("event_type", verified.EventType),
		zap.Time("created", verified.CreatedAt))

	createdAt := verified.CreatedAt
	isNew, err := p.events.SaveEvent(ctx, repository.WebhookEventInput{
		EventID:    verified.EventID,
		EventType:  verified.EventType,
		APIVersion: verified.APIVersion,
		Data:       verified.Object,
		CreatedAt:  &createdAt,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to log webhook event: %w", err)
	}

	outcome := &WebhookOutcome{EventID: verified.EventID, EventType: verified.EventType}
	if !isNew {
		existing, err := p.events.GetEvent(ctx, verified.EventID)
		if err != nil {
			return nil, fmt.Errorf("failed to load webhook event: %w", err)
		}
		if existing != nil && existing.Status == model.WebhookStatusCompleted {
			p.logger.Info("Duplicate webhook event skipped",
				zap.String("event_id", verified.EventID))
			outcome.Duplicate = true
			outcome.Result = entity.Result{Success: true}
			return outcome, nil
		}
	}

	outcome.Result = p.process(ctx, entity.Event{
		ID:   verified.EventID,
		Type: verified.EventType,
		Data: verified.Object,
	})
	return outcome, nil
}

// ReplayPending re-dispatches logged events that are pending, whose retry
// time has come, or whose processing lease expired.
func (p *WebhookProcessor) ReplayPending(ctx context.Context, limit int) (*ReplaySummary, error) {
	events, err := p.events.GetPendingEvents(ctx, limit)
	if err != nil {
		return nil, err
	}

	summary := &ReplaySummary{}
	for _, logged := range events {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		data, err := json.Marshal(logged.Data)
		if err != nil {
			p.logger.Error("Failed to encode logged event data",
				zap.String("event_id", logged.StripeEventID),
				zap.Error(err))
			summary.Failed++
			continue
		}

		result := p.process(ctx, entity.Event{
			ID:   logged.StripeEventID,
			Type: logged.EventType,
			Data: data,
		})
		if result.Success {
			summary.Processed++
		} else {
			summary.Failed++
		}
	}

	p.logger.Info("Webhook replay finished",
		zap.Int("processed", summary.Processed),
		zap.Int("failed", summary.Failed))
	return summary, nil
}

func (p *WebhookProcessor) process(ctx context.Context, event entity.Event) entity.Result {
	if err := p.events.MarkProcessing(ctx, event.ID); err != nil {
		p.logger.Warn("Failed to mark webhook event as processing",
			zap.String("event_id", event.ID),
			zap.Error(err))
	}

	result := p.dispatcher.Dispatch(ctx, event)

	if result.Success {
		if err := p.events.MarkProcessed(ctx, event.ID); err != nil {
			p.logger.Warn("Failed to mark webhook event as processed",
				zap.String("event_id", event.ID),
				zap.Error(err))
		}
		return result
	}

	if err := p.events.MarkFailed(ctx, event.ID, errors.New(result.Error)); err != nil {
		p.logger.Warn("Failed to mark webhook event as failed",
			zap.String("event_id", event.ID),
			zap.Error(err))
	}
	return result
}

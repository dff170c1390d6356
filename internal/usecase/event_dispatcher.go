package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/acdc-digital/solopro-sub000/internal/domain/entity"
	domainErrors "github.com/acdc-digital/solopro-sub000/internal/domain/errors"
	"github.com/acdc-digital/solopro-sub000/internal/domain/repository"
	"github.com/acdc-digital/solopro-sub000/internal/metrics"
	"github.com/stripe/stripe-go/v79"
	"go.uber.org/zap"
)

// eventTypePaymentIntentFailed is the short form some senders use for
// payment_intent.payment_failed.
const eventTypePaymentIntentFailed = "payment_intent.failed"

// EventDispatcher routes provider events to the recorder and the upserter.
// Dispatch never returns an error: failures come back as Success=false.
type EventDispatcher interface {
	Dispatch(ctx context.Context, event entity.Event) entity.Result
}

type eventDispatcher struct {
	recorder PaymentRecorder
	upserter SubscriptionUpserter
	mappings repository.CustomerMappingRepository
	metrics  metrics.BillingMetrics
	logger   *zap.Logger
}

// NewEventDispatcher creates an event dispatcher. A nil metrics records nothing.
func NewEventDispatcher(
	recorder PaymentRecorder,
	upserter SubscriptionUpserter,
	mappings repository.CustomerMappingRepository,
	m metrics.BillingMetrics,
	logger *zap.Logger,
) EventDispatcher {
	if m == nil {
		m = metrics.NewNoopMetrics()
	}
	return &eventDispatcher{
		recorder: recorder,
		upserter: upserter,
		mappings: mappings,
		metrics:  m,
		logger:   logger,
	}
}

func (d *eventDispatcher) Dispatch(ctx context.Context, event entity.Event) (result entity.Result) {
	start := time.Now()
	defer func() {
		if rec := recover(); rec != nil {
			d.logger.Error("Panic while dispatching event",
				zap.String("event_type", event.Type),
				zap.String("event_id", event.ID),
				zap.Any("panic", rec))
			result = entity.Result{Success: false, Error: fmt.Sprintf("internal error: %v", rec)}
		}
		d.metrics.ObserveDispatch(event.Type, outcomeOf(result), time.Since(start))
	}()

	switch stripe.EventType(event.Type) {
	case stripe.EventTypeCheckoutSessionCompleted:
		return d.handleCheckoutCompleted(ctx, event)
	case stripe.EventTypeCustomerSubscriptionCreated, stripe.EventTypeCustomerSubscriptionUpdated:
		return d.handleSubscriptionChanged(ctx, event)
	case stripe.EventTypeCustomerSubscriptionDeleted:
		return d.handleSubscriptionDeleted(ctx, event)
	case stripe.EventTypeCheckoutSessionAsyncPaymentSucceeded:
		return d.handleAsyncPayment(ctx, event, entity.PaymentStatusComplete)
	case stripe.EventTypeCheckoutSessionAsyncPaymentFailed:
		return d.handleAsyncPayment(ctx, event, entity.PaymentStatusFailed)
	case stripe.EventTypePaymentIntentSucceeded, stripe.EventTypePaymentIntentPaymentFailed, eventTypePaymentIntentFailed:
		d.logger.Info("Payment intent event acknowledged",
			zap.String("event_type", event.Type),
			zap.String("event_id", event.ID))
		return entity.Result{Success: true, Acknowledged: true}
	default:
		d.logger.Info("Unhandled event type acknowledged",
			zap.String("event_type", event.Type),
			zap.String("event_id", event.ID))
		return entity.Result{Success: true, Acknowledged: true}
	}
}

func (d *eventDispatcher) handleCheckoutCompleted(ctx context.Context, event entity.Event) entity.Result {
	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data, &session); err != nil {
		return d.fail(event, entity.Result{}, fmt.Errorf("invalid checkout session payload: %w", err))
	}

	idOrEmail := session.ClientReferenceID
	if idOrEmail == "" {
		idOrEmail = session.Metadata["userId"]
	}

	customerID := ""
	if session.Customer != nil {
		customerID = session.Customer.ID
	}
	subscriptionID := ""
	if session.Subscription != nil {
		subscriptionID = session.Subscription.ID
	}
	email := checkoutEmail(&session)

	result := entity.Result{SessionID: session.ID}
	recorded, err := d.recorder.Record(ctx, entity.CheckoutCompleted{
		ExternalSessionID: session.ID,
		IDOrEmail:         idOrEmail,
		ProductName:       productName(&session),
		PaymentMode:       entity.PaymentMode(session.Mode),
		Amount:            session.AmountTotal,
		Currency:          string(session.Currency),
		CustomerID:        optional(customerID),
		CustomerEmail:     optional(email),
		SubscriptionID:    optional(subscriptionID),
	})
	if err != nil {
		return d.fail(event, result, err)
	}

	result.Success = true
	result.PaymentID = recorded.PaymentID
	if recorded.Created {
		d.metrics.ObservePaymentAmount(
			entity.ToMajorUnits(session.AmountTotal, string(session.Currency)).InexactFloat64(),
			strings.ToLower(string(session.Currency)))
	}

	if session.Mode != stripe.CheckoutSessionModeSubscription || subscriptionID == "" {
		return result
	}

	change := entity.SubscriptionChange{
		IDOrEmail:              recorded.UserID,
		ExternalSubscriptionID: subscriptionID,
		Status:                 entity.SubscriptionStatusActive,
		CustomerEmail:          optional(email),
		CustomerID:             optional(customerID),
	}
	if expanded := session.Subscription; expanded.Status != "" {
		change.Status = string(expanded.Status)
		change.CurrentPeriodEnd = optionalUnix(expanded.CurrentPeriodEnd)
	}

	sub, err := d.upserter.Upsert(ctx, change)
	if err != nil {
		return d.fail(event, result, err)
	}
	result.SubscriptionID = sub.ID
	return result
}

func (d *eventDispatcher) handleSubscriptionChanged(ctx context.Context, event entity.Event) entity.Result {
	var sub stripe.Subscription
	if err := json.Unmarshal(event.Data, &sub); err != nil {
		return d.fail(event, entity.Result{}, fmt.Errorf("invalid subscription payload: %w", err))
	}

	idOrEmail := sub.Metadata["userId"]
	customerID, email := "", ""
	if sub.Customer != nil {
		customerID = sub.Customer.ID
		email = sub.Customer.Email
	}

	if idOrEmail == "" && customerID != "" {
		mapping, err := d.mappings.GetByProviderCustomerID(ctx, customerID)
		if err != nil {
			return d.fail(event, entity.Result{}, domainErrors.NewPersistenceError("get customer mapping", err))
		}
		if mapping != nil {
			idOrEmail = mapping.UserID
			if email == "" {
				email = mapping.Email
			}
		}
	}

	updated, err := d.upserter.Upsert(ctx, entity.SubscriptionChange{
		IDOrEmail:              idOrEmail,
		ExternalSubscriptionID: sub.ID,
		Status:                 string(sub.Status),
		CurrentPeriodEnd:       optionalUnix(sub.CurrentPeriodEnd),
		CustomerEmail:          optional(email),
		CustomerID:             optional(customerID),
	})
	if err != nil {
		return d.fail(event, entity.Result{}, err)
	}
	return entity.Result{Success: true, SubscriptionID: updated.ID}
}

func (d *eventDispatcher) handleSubscriptionDeleted(ctx context.Context, event entity.Event) entity.Result {
	var sub stripe.Subscription
	if err := json.Unmarshal(event.Data, &sub); err != nil {
		return d.fail(event, entity.Result{}, fmt.Errorf("invalid subscription payload: %w", err))
	}

	canceled, err := d.upserter.Cancel(ctx, entity.SubscriptionCanceled{
		ExternalSubscriptionID: sub.ID,
		CurrentPeriodEnd:       optionalUnix(sub.CurrentPeriodEnd),
	})
	if err != nil {
		return d.fail(event, entity.Result{}, err)
	}
	return entity.Result{Success: true, SubscriptionID: canceled.ID}
}

func (d *eventDispatcher) handleAsyncPayment(ctx context.Context, event entity.Event, status entity.PaymentStatus) entity.Result {
	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data, &session); err != nil {
		return d.fail(event, entity.Result{}, fmt.Errorf("invalid checkout session payload: %w", err))
	}

	result := entity.Result{SessionID: session.ID}
	err := d.recorder.UpdateStatus(ctx, session.ID, status)
	if errors.Is(err, domainErrors.ErrPaymentNotFound) {
		d.logger.Warn("Async payment result for unknown session acknowledged",
			zap.String("session_id", session.ID),
			zap.String("status", string(status)))
		result.Success = true
		result.Acknowledged = true
		return result
	}
	if err != nil {
		return d.fail(event, result, err)
	}

	result.Success = true
	return result
}

// fail converts err into a failed result and logs it.
func (d *eventDispatcher) fail(event entity.Event, result entity.Result, err error) entity.Result {
	level := d.logger.Error
	if errors.Is(err, domainErrors.ErrUserNotFound) || errors.Is(err, domainErrors.ErrSubscriptionNotFound) {
		level = d.logger.Warn
	}
	level("Event dispatch failed",
		zap.String("event_type", event.Type),
		zap.String("event_id", event.ID),
		zap.String("session_id", result.SessionID),
		zap.Error(err))

	result.Success = false
	result.Error = err.Error()
	result.PaymentID = ""
	result.SubscriptionID = ""
	return result
}

func outcomeOf(result entity.Result) string {
	switch {
	case !result.Success:
		return metrics.OutcomeFailed
	case result.Acknowledged:
		return metrics.OutcomeAcknowledged
	default:
		return metrics.OutcomeProcessed
	}
}

func checkoutEmail(session *stripe.CheckoutSession) string {
	if session.CustomerDetails != nil && session.CustomerDetails.Email != "" {
		return session.CustomerDetails.Email
	}
	return session.CustomerEmail
}

// productName prefers explicit metadata, then the first line item.
func productName(session *stripe.CheckoutSession) string {
	for _, key := range []string{"productName", "product_name"} {
		if name := session.Metadata[key]; name != "" {
			return name
		}
	}
	if session.LineItems != nil && len(session.LineItems.Data) > 0 {
		return session.LineItems.Data[0].Description
	}
	return ""
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func optionalUnix(ts int64) *int64 {
	if ts <= 0 {
		return nil
	}
	return &ts
}

package usecase

import (
	"context"
	"time"

	"github.com/acdc-digital/solopro-sub000/internal/domain/entity"
	domainErrors "github.com/acdc-digital/solopro-sub000/internal/domain/errors"
	"github.com/acdc-digital/solopro-sub000/internal/domain/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SubscriptionUpserter keeps one subscription row per user in step with
// provider lifecycle events.
type SubscriptionUpserter interface {
	Upsert(ctx context.Context, cmd entity.SubscriptionChange) (*entity.Subscription, error)
	Cancel(ctx context.Context, cmd entity.SubscriptionCanceled) (*entity.Subscription, error)
}

type subscriptionUpserter struct {
	resolver      IdentityResolver
	subscriptions repository.SubscriptionRepository
	notifier      SubscriptionNotifier
	clock         Clock
	logger        *zap.Logger
}

// NewSubscriptionUpserter creates a subscription upserter. A nil clock
// means SystemClock and a nil notifier publishes nothing.
func NewSubscriptionUpserter(
	resolver IdentityResolver,
	subscriptions repository.SubscriptionRepository,
	notifier SubscriptionNotifier,
	clock Clock,
	logger *zap.Logger,
) SubscriptionUpserter {
	if clock == nil {
		clock = SystemClock
	}
	if notifier == nil {
		notifier = NewSubscriptionNotifier(nil, "", logger)
	}
	return &subscriptionUpserter{
		resolver:      resolver,
		subscriptions: subscriptions,
		notifier:      notifier,
		clock:         clock,
		logger:        logger,
	}
}

// Upsert patches the user's subscription or creates it. Lookup is by user,
// so a new provider subscription id overwrites the old one in place.
func (u *subscriptionUpserter) Upsert(ctx context.Context, cmd entity.SubscriptionChange) (*entity.Subscription, error) {
	if err := validateCommand(cmd); err != nil {
		return nil, err
	}

	userID, err := u.resolver.Resolve(ctx, entity.ResolveRequest{
		IDOrEmail:     cmd.IDOrEmail,
		FallbackEmail: derefString(cmd.CustomerEmail),
	})
	if err != nil {
		return nil, err
	}

	existing, err := u.subscriptions.GetByUserID(ctx, userID)
	if err != nil {
		return nil, domainErrors.NewPersistenceError("get subscription by user id", err)
	}

	if existing == nil {
		now := u.clock()
		sub := &entity.Subscription{
			ID:                     uuid.NewString(),
			UserID:                 userID,
			ExternalSubscriptionID: cmd.ExternalSubscriptionID,
			CustomerID:             nonEmpty(cmd.CustomerID),
			Status:                 cmd.Status,
			CurrentPeriodEnd:       cmd.CurrentPeriodEnd,
			CreatedAt:              now,
			UpdatedAt:              now,
		}

		created, err := u.subscriptions.CreateIfAbsent(ctx, sub)
		if err != nil {
			return nil, domainErrors.NewPersistenceError("insert subscription", err)
		}
		if created {
			u.logger.Info("Subscription created",
				zap.String("user_id", userID),
				zap.String("external_subscription_id", sub.ExternalSubscriptionID),
				zap.String("status", sub.Status))
			u.notifier.SubscriptionChanged(ctx, sub)
			return sub, nil
		}

		// A concurrent delivery inserted the row first.
		existing, err = u.subscriptions.GetByUserID(ctx, userID)
		if err != nil {
			return nil, domainErrors.NewPersistenceError("get subscription by user id", err)
		}
		if existing == nil {
			return nil, domainErrors.NewPersistenceError("get subscription by user id", domainErrors.ErrSubscriptionNotFound)
		}
		u.logger.Info("Subscription insert lost a race, patching instead",
			zap.String("user_id", userID))
	}

	if existing.Status == entity.SubscriptionStatusCanceled && cmd.Status != entity.SubscriptionStatusCanceled {
		u.logger.Warn("Reactivating canceled subscription",
			zap.String("user_id", userID),
			zap.String("external_subscription_id", cmd.ExternalSubscriptionID),
			zap.String("status", cmd.Status))
	}

	existing.ExternalSubscriptionID = cmd.ExternalSubscriptionID
	existing.Status = cmd.Status
	if cmd.CurrentPeriodEnd != nil {
		existing.CurrentPeriodEnd = cmd.CurrentPeriodEnd
	}
	if id := nonEmpty(cmd.CustomerID); id != nil {
		existing.CustomerID = id
	}
	existing.UpdatedAt = u.nextUpdatedAt(existing.UpdatedAt)

	if err := u.subscriptions.Update(ctx, existing); err != nil {
		return nil, domainErrors.NewPersistenceError("update subscription", err)
	}

	u.logger.Info("Subscription updated",
		zap.String("user_id", userID),
		zap.String("external_subscription_id", existing.ExternalSubscriptionID),
		zap.String("status", existing.Status))
	u.notifier.SubscriptionChanged(ctx, existing)
	return existing, nil
}

// Cancel marks the subscription with the provider id as canceled.
func (u *subscriptionUpserter) Cancel(ctx context.Context, cmd entity.SubscriptionCanceled) (*entity.Subscription, error) {
	if err := validateCommand(cmd); err != nil {
		return nil, err
	}

	existing, err := u.subscriptions.GetByExternalID(ctx, cmd.ExternalSubscriptionID)
	if err != nil {
		return nil, domainErrors.NewPersistenceError("get subscription by external id", err)
	}
	if existing == nil {
		return nil, domainErrors.ErrSubscriptionNotFound
	}

	existing.Status = entity.SubscriptionStatusCanceled
	if cmd.CurrentPeriodEnd != nil {
		existing.CurrentPeriodEnd = cmd.CurrentPeriodEnd
	}
	existing.UpdatedAt = u.nextUpdatedAt(existing.UpdatedAt)

	if err := u.subscriptions.Update(ctx, existing); err != nil {
		return nil, domainErrors.NewPersistenceError("cancel subscription", err)
	}

	u.logger.Info("Subscription canceled",
		zap.String("user_id", existing.UserID),
		zap.String("external_subscription_id", existing.ExternalSubscriptionID))
	u.notifier.SubscriptionChanged(ctx, existing)
	return existing, nil
}

// nextUpdatedAt returns now, or one microsecond past previous when the
// clock has not moved beyond it, so updated_at strictly increases.
func (u *subscriptionUpserter) nextUpdatedAt(previous time.Time) time.Time {
	now := u.clock()
	if !now.After(previous) {
		return previous.Add(time.Microsecond)
	}
	return now
}

package usecase

import (
	"context"
	"time"

	"github.com/acdc-digital/solopro-sub000/internal/domain/entity"
	"github.com/acdc-digital/solopro-sub000/pkg/messaging"
	"go.uber.org/zap"
)

// SubscriptionChangedMessage is published after every subscription write.
type SubscriptionChangedMessage struct {
	UserID                 string    `json:"user_id"`
	SubscriptionID         string    `json:"subscription_id"`
	ExternalSubscriptionID string    `json:"external_subscription_id"`
	Status                 string    `json:"status"`
	CurrentPeriodEnd       *int64    `json:"current_period_end,omitempty"`
	Active                 bool      `json:"active"`
	UpdatedAt              time.Time `json:"updated_at"`
}

// SubscriptionNotifier tells listeners that a subscription changed.
type SubscriptionNotifier interface {
	SubscriptionChanged(ctx context.Context, sub *entity.Subscription)
}

type subscriptionNotifier struct {
	publisher messaging.Publisher
	channel   string
	logger    *zap.Logger
}

// NewSubscriptionNotifier publishes on channel and on channel:<userID>.
func NewSubscriptionNotifier(publisher messaging.Publisher, channel string, logger *zap.Logger) SubscriptionNotifier {
	if publisher == nil {
		publisher = messaging.NewNoopPublisher()
	}
	return &subscriptionNotifier{
		publisher: publisher,
		channel:   channel,
		logger:    logger,
	}
}

func (n *subscriptionNotifier) SubscriptionChanged(ctx context.Context, sub *entity.Subscription) {
	msg := SubscriptionChangedMessage{
		UserID:                 sub.UserID,
		SubscriptionID:         sub.ID,
		ExternalSubscriptionID: sub.ExternalSubscriptionID,
		Status:                 sub.Status,
		CurrentPeriodEnd:       sub.CurrentPeriodEnd,
		Active:                 sub.IsActive(sub.UpdatedAt),
		UpdatedAt:              sub.UpdatedAt,
	}

	for _, channel := range []string{n.channel, n.channel + ":" + sub.UserID} {
		if err := n.publisher.Publish(ctx, channel, msg); err != nil {
			n.logger.Warn("Failed to publish subscription change",
				zap.String("channel", channel),
				zap.String("user_id", sub.UserID),
				zap.Error(err))
		}
	}
}

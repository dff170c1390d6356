package repository

import (
	"context"

	"github.com/acdc-digital/solopro-sub000/internal/domain/entity"
)

type SubscriptionRepository interface {
	// CreateIfAbsent inserts sub unless the user already has a subscription.
	CreateIfAbsent(ctx context.Context, sub *entity.Subscription) (bool, error)
	GetByUserID(ctx context.Context, userID string) (*entity.Subscription, error)
	GetByExternalID(ctx context.Context, externalSubscriptionID string) (*entity.Subscription, error)
	// Update writes the mutable columns of sub, matched by id.
	Update(ctx context.Context, sub *entity.Subscription) error
}

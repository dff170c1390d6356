package repository

import (
	"context"

	"github.com/acdc-digital/solopro-sub000/internal/domain/entity"
)

type CustomerMappingRepository interface {
	// Create stores mapping; an existing mapping for the same provider
	// customer id is left untouched.
	Create(ctx context.Context, mapping *entity.CustomerMapping) error
	GetByProviderCustomerID(ctx context.Context, providerCustomerID string) (*entity.CustomerMapping, error)
	GetByUserID(ctx context.Context, userID string) (*entity.CustomerMapping, error)
}

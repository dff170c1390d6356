package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/acdc-digital/solopro-sub000/internal/domain/entity"
	domainErrors "github.com/acdc-digital/solopro-sub000/internal/domain/errors"
	"github.com/acdc-digital/solopro-sub000/internal/domain/model"
	"github.com/acdc-digital/solopro-sub000/internal/domain/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type subscriptionRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewSubscriptionRepository creates a new subscription repository
func NewSubscriptionRepository(db *gorm.DB, logger *zap.Logger) repository.SubscriptionRepository {
	return &subscriptionRepository{
		db:     db,
		logger: logger,
	}
}

func (r *subscriptionRepository) modelToEntity(m *model.Subscription) *entity.Subscription {
	return &entity.Subscription{
		ID:                     m.ID,
		UserID:                 m.UserID,
		ExternalSubscriptionID: m.ExternalSubscriptionID,
		CustomerID:             m.CustomerID,
		Status:                 m.Status,
		CurrentPeriodEnd:       m.CurrentPeriodEnd,
		CreatedAt:              m.CreatedAt,
		UpdatedAt:              m.UpdatedAt,
	}
}

func (r *subscriptionRepository) CreateIfAbsent(ctx context.Context, sub *entity.Subscription) (bool, error) {
	m := &model.Subscription{
		ID:                     sub.ID,
		UserID:                 sub.UserID,
		ExternalSubscriptionID: sub.ExternalSubscriptionID,
		CustomerID:             sub.CustomerID,
		Status:                 sub.Status,
		CurrentPeriodEnd:       sub.CurrentPeriodEnd,
		CreatedAt:              sub.CreatedAt,
		UpdatedAt:              sub.UpdatedAt,
	}

	var omit []string
	if m.CustomerID == nil {
		omit = append(omit, "customer_id")
	}
	if m.CurrentPeriodEnd == nil {
		omit = append(omit, "current_period_end")
	}

	query := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoNothing: true,
		})
	if len(omit) > 0 {
		query = query.Omit(omit...)
	}

	result := query.Create(m)
	if result.Error != nil {
		r.logger.Error("Failed to insert subscription",
			zap.String("user_id", sub.UserID),
			zap.String("external_subscription_id", sub.ExternalSubscriptionID),
			zap.Error(result.Error))
		return false, fmt.Errorf("failed to insert subscription: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *subscriptionRepository) GetByUserID(ctx context.Context, userID string) (*entity.Subscription, error) {
	var sub model.Subscription
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&sub).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get subscription by user id: %w", err)
	}
	return r.modelToEntity(&sub), nil
}

func (r *subscriptionRepository) GetByExternalID(ctx context.Context, externalSubscriptionID string) (*entity.Subscription, error) {
	var sub model.Subscription
	err := r.db.WithContext(ctx).
		Where("external_subscription_id = ?", externalSubscriptionID).
		Order("updated_at DESC").
		First(&sub).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get subscription by external id: %w", err)
	}
	return r.modelToEntity(&sub), nil
}

func (r *subscriptionRepository) Update(ctx context.Context, sub *entity.Subscription) error {
	result := r.db.WithContext(ctx).
		Model(&model.Subscription{}).
		Where("id = ?", sub.ID).
		Updates(map[string]interface{}{
			"external_subscription_id": sub.ExternalSubscriptionID,
			"status":                   sub.Status,
			"current_period_end":       sub.CurrentPeriodEnd,
			"customer_id":              sub.CustomerID,
			"updated_at":               sub.UpdatedAt,
		})
	if result.Error != nil {
		r.logger.Error("Failed to update subscription",
			zap.String("subscription_id", sub.ID),
			zap.Error(result.Error))
		return fmt.Errorf("failed to update subscription: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domainErrors.ErrSubscriptionNotFound
	}
	return nil
}

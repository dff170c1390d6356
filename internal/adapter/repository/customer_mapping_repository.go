package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/acdc-digital/solopro-sub000/internal/domain/entity"
	"github.com/acdc-digital/solopro-sub000/internal/domain/model"
	"github.com/acdc-digital/solopro-sub000/internal/domain/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type customerMappingRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewCustomerMappingRepository(db *gorm.DB, logger *zap.Logger) repository.CustomerMappingRepository {
	return &customerMappingRepository{
		db:     db,
		logger: logger,
	}
}

// modelToEntity converts a model.CustomerMapping to entity.CustomerMapping
func (r *customerMappingRepository) modelToEntity(m *model.CustomerMapping) *entity.CustomerMapping {
	if m == nil {
		return nil
	}
	return &entity.CustomerMapping{
		ID:                 m.ID,
		ProviderCustomerID: m.ProviderCustomerID,
		UserID:             m.UserID,
		Email:              m.CustomerEmail,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
}

// entityToModel converts an entity.CustomerMapping to model.CustomerMapping
func (r *customerMappingRepository) entityToModel(e *entity.CustomerMapping) *model.CustomerMapping {
	return &model.CustomerMapping{
		ID:                 e.ID,
		ProviderCustomerID: e.ProviderCustomerID,
		UserID:             e.UserID,
		CustomerEmail:      e.Email,
		CreatedAt:          e.CreatedAt,
		UpdatedAt:          e.UpdatedAt,
	}
}

func (r *customerMappingRepository) Create(ctx context.Context, mapping *entity.CustomerMapping) error {
	if mapping.CreatedAt.IsZero() {
		mapping.CreatedAt = time.Now().UTC()
	}
	if mapping.UpdatedAt.IsZero() {
		mapping.UpdatedAt = mapping.CreatedAt
	}

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "provider_customer_id"}},
			DoNothing: true,
		}).
		Create(r.entityToModel(mapping)).Error
	if err != nil {
		r.logger.Error("Failed to create customer mapping",
			zap.String("customer_id", mapping.ProviderCustomerID),
			zap.String("user_id", mapping.UserID),
			zap.Error(err))
		return fmt.Errorf("failed to create customer mapping: %w", err)
	}
	return nil
}

func (r *customerMappingRepository) GetByProviderCustomerID(ctx context.Context, providerCustomerID string) (*entity.CustomerMapping, error) {
	var mapping model.CustomerMapping
	err := r.db.WithContext(ctx).Where("provider_customer_id = ?", providerCustomerID).First(&mapping).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get customer mapping: %w", err)
	}
	return r.modelToEntity(&mapping), nil
}

func (r *customerMappingRepository) GetByUserID(ctx context.Context, userID string) (*entity.CustomerMapping, error) {
	var mapping model.CustomerMapping
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		First(&mapping).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get customer mapping: %w", err)
	}
	return r.modelToEntity(&mapping), nil
}

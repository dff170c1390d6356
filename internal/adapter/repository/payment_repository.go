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

type paymentRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewPaymentRepository creates a new payment repository
func NewPaymentRepository(db *gorm.DB, logger *zap.Logger) repository.PaymentRepository {
	return &paymentRepository{
		db:     db,
		logger: logger,
	}
}

func (r *paymentRepository) modelToEntity(m *model.Payment) *entity.Payment {
	return &entity.Payment{
		ID:                m.ID,
		UserID:            m.UserID,
		ExternalSessionID: m.ExternalSessionID,
		Status:            entity.PaymentStatus(m.Status),
		Amount:            m.Amount,
		Currency:          m.Currency,
		ProductName:       m.ProductName,
		PaymentMode:       entity.PaymentMode(m.PaymentMode),
		CustomerID:        m.CustomerID,
		SubscriptionID:    m.SubscriptionID,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}

func (r *paymentRepository) entityToModel(e *entity.Payment) *model.Payment {
	return &model.Payment{
		ID:                e.ID,
		UserID:            e.UserID,
		ExternalSessionID: e.ExternalSessionID,
		Status:            string(e.Status),
		Amount:            e.Amount,
		Currency:          e.Currency,
		ProductName:       e.ProductName,
		PaymentMode:       string(e.PaymentMode),
		CustomerID:        e.CustomerID,
		SubscriptionID:    e.SubscriptionID,
		CreatedAt:         e.CreatedAt,
		UpdatedAt:         e.UpdatedAt,
	}
}

// absentColumns lists the optional columns payment leaves unset, so the
// insert falls back to the column defaults.
func absentColumns(p *model.Payment) []string {
	var omit []string
	if p.CustomerID == nil {
		omit = append(omit, "customer_id")
	}
	if p.SubscriptionID == nil {
		omit = append(omit, "subscription_id")
	}
	if p.Currency == "" {
		omit = append(omit, "currency")
	}
	if p.ProductName == "" {
		omit = append(omit, "product_name")
	}
	if p.PaymentMode == "" {
		omit = append(omit, "payment_mode")
	}
	return omit
}

func (r *paymentRepository) CreateIfAbsent(ctx context.Context, payment *entity.Payment) (bool, error) {
	m := r.entityToModel(payment)

	query := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "external_session_id"}},
			DoNothing: true,
		})
	if omit := absentColumns(m); len(omit) > 0 {
		query = query.Omit(omit...)
	}

	result := query.Create(m)
	if result.Error != nil {
		r.logger.Error("Failed to insert payment",
			zap.String("session_id", payment.ExternalSessionID),
			zap.Error(result.Error))
		return false, fmt.Errorf("failed to insert payment: %w", result.Error)
	}

	return result.RowsAffected > 0, nil
}

func (r *paymentRepository) GetByExternalSessionID(ctx context.Context, sessionID string) (*entity.Payment, error) {
	var payment model.Payment
	err := r.db.WithContext(ctx).
		Where("external_session_id = ?", sessionID).
		First(&payment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get payment by session id: %w", err)
	}
	return r.modelToEntity(&payment), nil
}

func (r *paymentRepository) UpdateStatus(ctx context.Context, sessionID string, status entity.PaymentStatus, updatedAt time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&model.Payment{}).
		Where("external_session_id = ?", sessionID).
		Updates(map[string]interface{}{
			"status":     string(status),
			"updated_at": updatedAt,
		})
	if result.Error != nil {
		r.logger.Error("Failed to update payment status",
			zap.String("session_id", sessionID),
			zap.String("status", string(status)),
			zap.Error(result.Error))
		return false, fmt.Errorf("failed to update payment status: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *paymentRepository) ListByUserID(ctx context.Context, userID string, offset, limit int) ([]*entity.Payment, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).
		Model(&model.Payment{}).
		Where("user_id = ?", userID).
		Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count payments: %w", err)
	}

	var rows []*model.Payment
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Offset(offset).
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list payments: %w", err)
	}

	payments := make([]*entity.Payment, 0, len(rows))
	for _, row := range rows {
		payments = append(payments, r.modelToEntity(row))
	}
	return payments, total, nil
}

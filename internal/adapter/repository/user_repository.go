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
)

type userRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB, logger *zap.Logger) repository.UserRepository {
	return &userRepository{
		db:     db,
		logger: logger,
	}
}

func (r *userRepository) modelToEntity(m *model.User) *entity.User {
	return &entity.User{
		ID:        m.ID,
		Email:     m.Email,
		AuthID:    m.AuthID,
		Name:      m.Name,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func (r *userRepository) Create(ctx context.Context, user *entity.User) error {
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	if user.UpdatedAt.IsZero() {
		user.UpdatedAt = user.CreatedAt
	}

	m := &model.User{
		ID:        user.ID,
		Email:     user.Email,
		AuthID:    user.AuthID,
		Name:      user.Name,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		r.logger.Error("Failed to create user",
			zap.String("user_id", user.ID),
			zap.Error(err))
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}
	return r.modelToEntity(&user), nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	normalized := entity.NormalizeEmail(email)
	if normalized == "" {
		return nil, nil
	}

	var user model.User
	err := r.db.WithContext(ctx).
		Where("LOWER(email) = ?", normalized).
		Order("created_at ASC").
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return r.modelToEntity(&user), nil
}

func (r *userRepository) GetFirst(ctx context.Context) (*entity.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).Order("created_at ASC, id ASC").First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get first user: %w", err)
	}
	return r.modelToEntity(&user), nil
}

func (r *userRepository) LinkEmail(ctx context.Context, id, email string) (bool, error) {
	email = entity.NormalizeEmail(email)
	if email == "" {
		return false, nil
	}

	result := r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ? AND (email IS NULL OR email = '')", id).
		Updates(map[string]interface{}{
			"email":      email,
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		r.logger.Error("Failed to link email to user",
			zap.String("user_id", id),
			zap.Error(result.Error))
		return false, fmt.Errorf("failed to link email: %w", result.Error)
	}

	return result.RowsAffected > 0, nil
}

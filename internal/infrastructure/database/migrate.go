package database

import (
	"fmt"

	"github.com/acdc-digital/solopro-sub000/internal/domain/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Models lists every table owned by the billing service.
func Models() []interface{} {
	return []interface{}{
		&model.User{},
		&model.Payment{},
		&model.Subscription{},
		&model.CustomerMapping{},
		&model.StripeWebhookEvent{},
	}
}

// Migrate runs database migrations
func Migrate(db *gorm.DB, logger *zap.Logger) error {
	logger.Info("Running database migrations...",
		zap.String("dialect", db.Dialector.Name()))

	if err := db.AutoMigrate(Models()...); err != nil {
		logger.Error("Failed to run migrations", zap.Error(err))
		return fmt.Errorf("failed to auto-migrate: %w", err)
	}

	if err := createCustomIndexes(db); err != nil {
		logger.Error("Failed to create custom indexes", zap.Error(err))
		return fmt.Errorf("failed to create custom indexes: %w", err)
	}

	logger.Info("Database migrations completed successfully")
	return nil
}

// createCustomIndexes creates indexes that GORM tags cannot express.
// Both statements are valid on PostgreSQL and SQLite.
func createCustomIndexes(db *gorm.DB) error {
	statements := []string{
		`CREATE INDEX IF NOT EXISTS idx_users_email_lower ON users (LOWER(email))`,
		`CREATE INDEX IF NOT EXISTS idx_webhook_events_unprocessed ON stripe_webhook_events (created_at) WHERE status IN ('pending', 'failed')`,
	}

	for _, stmt := range statements {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}

package database

import (
	"github.com/acdc-digital/solopro-sub000/internal/adapter/repository"
	domainRepo "github.com/acdc-digital/solopro-sub000/internal/domain/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Repositories holds all repository instances
type Repositories struct {
	User            domainRepo.UserRepository
	Payment         domainRepo.PaymentRepository
	Subscription    domainRepo.SubscriptionRepository
	CustomerMapping domainRepo.CustomerMappingRepository
	Webhook         domainRepo.WebhookRepository
}

// NewRepositories creates new repository instances with database connection
func NewRepositories(db *gorm.DB, logger *zap.Logger) *Repositories {
	return &Repositories{
		User:            repository.NewUserRepository(db, logger),
		Payment:         repository.NewPaymentRepository(db, logger),
		Subscription:    repository.NewSubscriptionRepository(db, logger),
		CustomerMapping: repository.NewCustomerMappingRepository(db, logger),
		Webhook:         repository.NewWebhookRepository(db, logger),
	}
}

// Package app wires configuration, storage and usecases into the billing
// service shared by the server and replay commands.
package app

import (
	"fmt"

	"github.com/acdc-digital/solopro-sub000/internal/config"
	"github.com/acdc-digital/solopro-sub000/internal/infrastructure/database"
	"github.com/acdc-digital/solopro-sub000/internal/infrastructure/provider/stripe"
	"github.com/acdc-digital/solopro-sub000/internal/metrics"
	"github.com/acdc-digital/solopro-sub000/internal/usecase"
	"github.com/acdc-digital/solopro-sub000/pkg/messaging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// App holds the wired billing service.
type App struct {
	Repos      *database.Repositories
	Registry   *prometheus.Registry
	Publisher  messaging.Publisher
	Dispatcher usecase.EventDispatcher
	Webhooks   *usecase.WebhookProcessor
	Billing    *usecase.BillingService
}

// New builds the usecases on top of db. A failing Redis connection falls
// back to a publisher that drops notifications.
func New(cfg *config.Config, db *gorm.DB, logger *zap.Logger) (*App, error) {
	if cfg.Service.IsProduction() && cfg.Service.StripeWebhookSecret == "" {
		return nil, fmt.Errorf("stripe_webhook_secret is required in production")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	publisher := messaging.NewNoopPublisher()
	if cfg.Redis.Addr != "" {
		redisPublisher, err := messaging.NewRedisPublisher(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			logger.Warn("Redis unavailable, subscription notifications disabled",
				zap.String("addr", cfg.Redis.Addr),
				zap.Error(err))
		} else {
			publisher = redisPublisher
		}
	}

	repos := database.NewRepositories(db, logger)
	clock := usecase.SystemClock

	resolver := usecase.NewIdentityResolver(repos.User, usecase.UnresolvedPolicy(cfg.Service.Identity.UnresolvedPolicy), logger)
	recorder := usecase.NewPaymentRecorder(resolver, repos.Payment, repos.User, repos.CustomerMapping, clock, logger)
	notifier := usecase.NewSubscriptionNotifier(publisher, cfg.Redis.Channel, logger)
	upserter := usecase.NewSubscriptionUpserter(resolver, repos.Subscription, notifier, clock, logger)
	dispatcher := usecase.NewEventDispatcher(recorder, upserter, repos.CustomerMapping, metrics.NewBillingMetrics(registry), logger)

	verifier := stripe.NewStripeProvider(cfg.Service.StripeWebhookSecret, logger)

	return &App{
		Repos:      repos,
		Registry:   registry,
		Publisher:  publisher,
		Dispatcher: dispatcher,
		Webhooks:   usecase.NewWebhookProcessor(verifier, repos.Webhook, dispatcher, logger),
		Billing:    usecase.NewBillingService(repos.Payment, repos.Subscription, clock, logger),
	}, nil
}

// Close releases the publisher connection.
func (a *App) Close() error {
	return a.Publisher.Close()
}

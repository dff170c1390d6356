package http

import (
	"context"
	"errors"
	"net/http"

	handlers "github.com/acdc-digital/solopro-sub000/internal/adapter/handler/http"
	"github.com/acdc-digital/solopro-sub000/internal/config"
	"github.com/acdc-digital/solopro-sub000/internal/middleware/auth"
	"github.com/acdc-digital/solopro-sub000/internal/usecase"
	"github.com/acdc-digital/solopro-sub000/pkg/logger"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Dependencies are the usecases the HTTP surface exposes.
type Dependencies struct {
	Webhooks   handlers.WebhookProcessor
	Dispatcher usecase.EventDispatcher
	Billing    handlers.BillingReader
	Registry   *prometheus.Registry
}

type Server struct {
	config *config.Config
	logger *zap.Logger
	echo   *echo.Echo
	deps   Dependencies
}

func NewServer(cfg *config.Config, log *zap.Logger, deps Dependencies) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	logger.WithEchoLogger(e, log)
	e.Use(middleware.Recover())
	e.Use(logger.NewEchoRequestLogger(log))
	if cfg.Service.ClientURL != "" {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: []string{cfg.Service.ClientURL},
			AllowMethods: []string{echo.GET, echo.POST},
		}))
	}

	s := &Server{
		config: cfg,
		logger: log,
		echo:   e,
		deps:   deps,
	}
	s.setupRoutes()
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) Start() error {
	addr := s.config.Server.HTTP.Addr()
	s.logger.Info("Starting HTTP server", zap.String("address", addr))

	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) setupRoutes() {
	s.echo.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "healthy",
			"service": s.config.Service.Name,
		})
	})

	if s.deps.Registry != nil {
		s.echo.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(s.deps.Registry, promhttp.HandlerOpts{})))
	}

	webhookHandler := handlers.NewWebhookHandler(s.deps.Webhooks, s.logger)
	paymentHandler := handlers.NewPaymentHandler(s.deps.Billing, s.logger)
	subscriptionHandler := handlers.NewSubscriptionHandler(s.deps.Billing, s.logger)

	// Webhook route (outside API versioning)
	s.echo.POST("/webhook", webhookHandler.HandleWebhook)

	v1 := s.echo.Group("/api/v1")

	// Attached per route: group middleware would also catch unmatched
	// /api/v1 paths and answer 401 instead of 404.
	requireJWT := auth.JWTMiddleware(auth.JWTConfig{
		Secret: s.config.JWT.Secret,
		Logger: s.logger,
	})
	v1.GET("/payments", paymentHandler.GetUserPayments, requireJWT)
	v1.GET("/subscriptions/current", subscriptionHandler.GetCurrentSubscription, requireJWT)

	if s.config.Service.EnableTestEndpoints {
		s.logger.Warn("Test endpoints enabled", zap.String("environment", s.config.Service.Environment))
		eventsHandler := handlers.NewEventsHandler(s.deps.Dispatcher, s.logger)
		v1.POST("/internal/events", eventsHandler.DispatchEvent)
	}
}

package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/acdc-digital/solopro-sub000/internal/app"
	"github.com/acdc-digital/solopro-sub000/internal/config"
	"github.com/acdc-digital/solopro-sub000/internal/infrastructure/database"
	grpcServer "github.com/acdc-digital/solopro-sub000/internal/infrastructure/grpc"
	httpServer "github.com/acdc-digital/solopro-sub000/internal/infrastructure/http"
	"github.com/acdc-digital/solopro-sub000/pkg/logger"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// .env is optional outside local development
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Failed to load .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zapLogger, err := logger.NewZapLogger(logger.Config{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		Output:      cfg.Log.Output,
		FilePath:    cfg.Log.FilePath,
		Development: cfg.Log.Development,
	})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("Starting billing service",
		zap.String("environment", cfg.Service.Environment),
		zap.String("version", cfg.Service.Version),
		zap.String("unresolved_policy", cfg.Service.Identity.UnresolvedPolicy))

	db, err := database.NewConnection(&cfg.Database, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := database.Close(db, zapLogger); err != nil {
			zapLogger.Error("Failed to close database connection", zap.Error(err))
		}
	}()

	if err := database.Migrate(db, zapLogger); err != nil {
		zapLogger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	billing, err := app.New(cfg, db, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to initialize billing service", zap.Error(err))
	}
	defer billing.Close()

	grpcSrv := grpcServer.NewServer(cfg, zapLogger)
	httpSrv := httpServer.NewServer(cfg, zapLogger, httpServer.Dependencies{
		Webhooks:   billing.Webhooks,
		Dispatcher: billing.Dispatcher,
		Billing:    billing.Billing,
		Registry:   billing.Registry,
	})

	errChan := make(chan error, 2)
	go func() {
		if err := grpcSrv.Start(); err != nil {
			errChan <- err
		}
	}()
	go func() {
		if err := httpSrv.Start(); err != nil {
			errChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		zapLogger.Info("Received signal", zap.String("signal", sig.String()))
	case err := <-errChan:
		zapLogger.Error("Server stopped unexpectedly", zap.Error(err))
	}

	zapLogger.Info("Shutting down servers...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	grpcSrv.SetServing(false)
	if err := httpSrv.Shutdown(ctx); err != nil {
		zapLogger.Error("Failed to shutdown HTTP server", zap.Error(err))
	}
	if err := grpcSrv.Shutdown(ctx); err != nil {
		zapLogger.Error("Failed to shutdown gRPC server", zap.Error(err))
	}

	zapLogger.Info("Servers shut down successfully")
}

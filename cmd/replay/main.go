// Command replay re-dispatches logged webhook events that are pending or
// due for retry.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/acdc-digital/solopro-sub000/internal/app"
	"github.com/acdc-digital/solopro-sub000/internal/config"
	"github.com/acdc-digital/solopro-sub000/internal/infrastructure/database"
	"github.com/acdc-digital/solopro-sub000/pkg/logger"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	limit := flag.Int("limit", 0, "maximum number of events to replay (default: replay.batch_size)")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Failed to load .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zapLogger, err := logger.NewZapLogger(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()

	db, err := database.NewConnection(&cfg.Database, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close(db, zapLogger)

	billing, err := app.New(cfg, db, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to initialize billing service", zap.Error(err))
	}
	defer billing.Close()

	batch := cfg.Replay.BatchSize
	if *limit > 0 {
		batch = *limit
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	summary, err := billing.Webhooks.ReplayPending(ctx, batch)
	if err != nil {
		zapLogger.Error("Replay interrupted", zap.Error(err))
		return
	}

	zapLogger.Info("Replay complete",
		zap.Int("processed", summary.Processed),
		zap.Int("failed", summary.Failed))
}

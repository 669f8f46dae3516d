// Command app serves the sprint planner HTTP API. Configuration comes from
// the environment and an optional .env file; see internal/config.
package main

import (
	"context"
	"log"

	"github.com/bubelovv/sprint-planner/internal/app"
	"github.com/bubelovv/sprint-planner/internal/config"
	"github.com/bubelovv/sprint-planner/internal/logger"
	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	zapLogger, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer zapLogger.Sync()

	application, err := app.New(ctx, cfg, zapLogger)
	if err != nil {
		zapLogger.Fatal("init app failed", zap.Error(err))
	}

	if err := application.Run(ctx); err != nil {
		zapLogger.Fatal("app stopped", zap.Error(err))
	}
}

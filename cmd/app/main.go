package main

import (
	"context"
	"go.uber.org/zap"
	"log"
	"ytcatalog-backend/internal/app"
	"ytcatalog-backend/internal/config"
	"ytcatalog-backend/internal/logger"
)

func main() {
	initialLogger, err := logger.NewLogger("production", "info")
	if err != nil {
		log.Fatal("failed to initialize logger:", err)
	}
	defer func() { _ = initialLogger.Sync() }()

	cfg, err := config.Load(initialLogger)
	if err != nil {
		initialLogger.Fatal("invalid configuration", zap.Error(err))
	}

	appLogger, err := logger.NewLogger(cfg.Env, cfg.Log.Level)
	if err != nil {
		initialLogger.Fatal("failed to create application logger", zap.Error(err))
	}
	defer func() { _ = appLogger.Sync() }()

	application, err := app.NewApp(context.Background(), cfg, appLogger)
	if err != nil {
		appLogger.Fatal("failed to initialize application", zap.Error(err))
	}

	if err := application.Run(); err != nil {
		appLogger.Fatal("server stopped with error", zap.Error(err))
	}
}

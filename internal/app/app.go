package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"ytcatalog-backend/internal/auth"
	"ytcatalog-backend/internal/config"
	"ytcatalog-backend/internal/controllers"
	"ytcatalog-backend/internal/repository"
	"ytcatalog-backend/internal/routes"
	"ytcatalog-backend/internal/schema"
	"ytcatalog-backend/internal/telemetry"
)

// App represents the API server process
type App struct {
	config *config.Config
	logger *zap.Logger
	server *fiber.App
	closer func() error
}

func NewApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	db, err := repository.Connect(ctx, cfg.DB, logger)
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	// Create missing tables; never drops data.
	if err := schema.New().EnsureSchema(ctx, db, false); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	tel, err := telemetry.NewTelemetry(logger)
	if err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	tokens := auth.NewTokens(cfg.TokenSecret(), cfg.JWT.TTL)
	handlers := controllers.NewController(repository.New(db), tokens, logger)

	return &App{
		config: cfg,
		logger: logger,
		server: routes.New(cfg.Server, handlers, tel, logger),
		closer: sqlDB.Close,
	}, nil
}

func (app *App) start() {
	app.logger.Info("starting server", zap.String("port", app.config.Server.Port))

	go func() {
		if err := app.server.Listen(":"+app.config.Server.Port, fiber.ListenConfig{DisableStartupMessage: true}); err != nil {
			app.logger.Fatal("server failed to start", zap.Error(err))
		}
	}()
}

func (app *App) stop() error {
	app.logger.Info("shutting down server...")

	timeout := app.config.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := app.server.ShutdownWithContext(shutdownCtx); err != nil {
		app.logger.Error("server forced to shutdown", zap.Error(err))
		return err
	}
	if err := app.closer(); err != nil {
		app.logger.Warn("closing database", zap.Error(err))
	}

	app.logger.Info("server exited gracefully")
	return nil
}

// Run starts the server and blocks until SIGINT or SIGTERM.
func (app *App) Run() error {
	app.start()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	return app.stop()
}

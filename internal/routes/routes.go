package routes

import (
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"time"
	"ytcatalog-backend/internal/config"
	"ytcatalog-backend/internal/controllers"
	"ytcatalog-backend/internal/telemetry"
)

// New builds the fiber app with middleware and every route mounted.
func New(cfg config.ServerConfig, h *controllers.Controller, tel *telemetry.Telemetry, log *zap.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "ytcatalog",
		BodyLimit:    cfg.BodyLimit,
		ErrorHandler: controllers.ErrorHandler(log),
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowCredentials: true,
	}))
	app.Use(tel.Middleware())
	app.Use(requestLogger(log.Named("access")))

	app.Get("/health", h.Health)
	app.Get("/metrics", tel.Handler())

	Setup(app, h)
	return app
}

func Setup(app *fiber.App, h *controllers.Controller) {
	api := app.Group("/api")

	api.Get("/llista", h.GetLlistes)
	api.Post("/llista/createLlista", h.CreateLlista)
	api.Post("/llista/addVideo", h.AddVideo)

	api.Post("/usuaris", h.CreateUsuari)
	api.Post("/usuaris/login", h.Login)
	api.Get("/usuaris/me", h.RequireAuth, h.Me)
	api.Get("/usuaris/comentaris/:id_usuari", h.GetComentaris)

	api.Get("/youtubers", h.GetYoutubers)
	api.Get("/youtubers/:id", h.GetYoutuber)
	api.Get("/videos", h.GetVideos)
	api.Get("/videos/:id", h.GetVideo)
	api.Get("/categories", h.GetCategories)
}

// requestLogger tags each request with an id, hands errors to the app's
// error handler and logs one line per request.
func requestLogger(log *zap.Logger) fiber.Handler {
	return func(c fiber.Ctx) error {
		start := time.Now()

		id := c.Get(fiber.HeaderXRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(fiber.HeaderXRequestID, id)
		c.Locals("requestId", id)

		if err := c.Next(); err != nil {
			if herr := c.App().Config().ErrorHandler(c, err); herr != nil {
				return herr
			}
		}

		log.Info("request",
			zap.String("request_id", id),
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", c.Response().StatusCode()),
			zap.Duration("latency", time.Since(start)),
		)
		return nil
	}
}

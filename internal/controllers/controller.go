package controllers

import (
	"encoding/json"
	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"
	"strconv"
	"ytcatalog-backend/internal/apperrors"
	"ytcatalog-backend/internal/auth"
	"ytcatalog-backend/internal/repository"
)

const msgBadRequest = "Format de petició invàlid"

// Controller holds the HTTP handlers. It is safe for concurrent use.
type Controller struct {
	repo   *repository.Repository
	tokens *auth.Tokens
	log    *zap.Logger
}

func NewController(repo *repository.Repository, tokens *auth.Tokens, log *zap.Logger) *Controller {
	return &Controller{repo: repo, tokens: tokens, log: log.Named("controllers")}
}

// decodeBody reads a JSON body into dst. An empty body leaves dst untouched
// so that field validation reports what is missing.
func decodeBody(c fiber.Ctx, dst any) error {
	body := c.Body()
	if len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return apperrors.NewValidation(msgBadRequest)
	}
	return nil
}

func paramID(c fiber.Ctx, name, msg string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || id == 0 {
		return 0, apperrors.NewValidation(msg)
	}
	return uint(id), nil
}

func (h *Controller) Health(c fiber.Ctx) error {
	if err := h.repo.Ping(c.Context()); err != nil {
		h.log.Warn("health check failed", zap.Error(err))
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable"})
	}
	return c.JSON(fiber.Map{"status": "ok"})
}

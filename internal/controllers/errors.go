package controllers

import (
	"errors"
	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"
	"ytcatalog-backend/internal/apperrors"
)

const msgInternal = "Error intern. Intenta-ho més tard"

// ErrorHandler renders handler errors as the failure envelope. Client errors
// are logged at info level, everything else at error level.
func ErrorHandler(log *zap.Logger) fiber.ErrorHandler {
	log = log.Named("http")

	return func(c fiber.Ctx, err error) error {
		status, body := renderError(err)

		fields := []zap.Field{
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", status),
			zap.Error(err),
		}
		if id, ok := c.Locals("requestId").(string); ok {
			fields = append(fields, zap.String("request_id", id))
		}
		if status >= fiber.StatusInternalServerError {
			log.Error("request failed", fields...)
		} else {
			log.Info("request rejected", fields...)
		}

		return c.Status(status).JSON(body)
	}
}

func renderError(err error) (int, Envelope) {
	var (
		validation   *apperrors.ValidationError
		duplicate    *apperrors.DuplicateError
		notFound     *apperrors.NotFoundError
		unauthorized *apperrors.UnauthorizedError
		fiberErr     *fiber.Error
	)

	switch {
	case errors.As(err, &validation):
		return fiber.StatusBadRequest, Envelope{Missatge: validation.Message, Detalls: validation.Details}
	case errors.As(err, &duplicate):
		return fiber.StatusConflict, Envelope{Missatge: duplicate.Message, Detalls: duplicate.Details}
	case errors.As(err, &notFound):
		return fiber.StatusNotFound, Envelope{Missatge: notFound.Error()}
	case errors.As(err, &unauthorized):
		return fiber.StatusUnauthorized, Envelope{Missatge: unauthorized.Message}
	case errors.As(err, &fiberErr):
		if fiberErr.Code >= fiber.StatusInternalServerError {
			return fiberErr.Code, Envelope{Missatge: msgInternal}
		}
		return fiberErr.Code, Envelope{Missatge: fiberErr.Message}
	default:
		return fiber.StatusInternalServerError, Envelope{Missatge: msgInternal}
	}
}

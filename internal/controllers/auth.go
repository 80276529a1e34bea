package controllers

import (
	"errors"
	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"
	"strings"
	"ytcatalog-backend/internal/apperrors"
)

const (
	cookieName     = "jwt"
	localsUsuariID = "usuariId"
)

func (h *Controller) Login(c fiber.Ctx) error {
	var req LoginRequest
	if err := decodeBody(c, &req); err != nil {
		return err
	}

	if req.Username == "" || req.Password == "" {
		return apperrors.NewValidation("Falten dades obligatòries: username i password")
	}

	usuari, err := h.repo.Authenticate(c.Context(), req.Username, req.Password)
	if err != nil {
		return err
	}

	token, expires, err := h.tokens.Issue(usuari.Id)
	if err != nil {
		return err
	}

	c.Cookie(&fiber.Cookie{
		Name:     cookieName,
		Value:    token,
		Expires:  expires,
		HTTPOnly: true,
	})

	h.log.Info("login", zap.Uint("usuari", usuari.Id))
	return c.Status(fiber.StatusOK).JSON(success("Sessió iniciada amb èxit", LoginResponse{
		Token:   token,
		Expires: expires,
		Usuari:  newUsuariResponse(usuari),
	}))
}

// RequireAuth accepts a bearer token or the session cookie and stores the
// caller's user id in the request locals.
func (h *Controller) RequireAuth(c fiber.Ctx) error {
	token := c.Cookies(cookieName)
	if header := c.Get(fiber.HeaderAuthorization); strings.HasPrefix(header, "Bearer ") {
		token = strings.TrimPrefix(header, "Bearer ")
	}
	if token == "" {
		return &apperrors.UnauthorizedError{Message: "No autenticat"}
	}

	id, err := h.tokens.Parse(token)
	if err != nil {
		return &apperrors.UnauthorizedError{Message: "Sessió invàlida o caducada"}
	}

	c.Locals(localsUsuariID, id)
	return c.Next()
}

func (h *Controller) Me(c fiber.Ctx) error {
	id, ok := c.Locals(localsUsuariID).(uint)
	if !ok {
		return &apperrors.UnauthorizedError{Message: "No autenticat"}
	}

	usuari, err := h.repo.FindUsuari(c.Context(), id)
	if err != nil {
		var nf *apperrors.NotFoundError
		if errors.As(err, &nf) {
			return &apperrors.UnauthorizedError{Message: "Sessió invàlida o caducada"}
		}
		return err
	}

	return c.Status(fiber.StatusOK).JSON(success("Usuari autenticat", newUsuariResponse(usuari)))
}

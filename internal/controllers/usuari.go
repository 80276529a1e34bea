package controllers

import (
	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"
	"ytcatalog-backend/internal/apperrors"
	"ytcatalog-backend/internal/repository"
)

func (h *Controller) CreateUsuari(c fiber.Ctx) error {
	var req CreateUsuariRequest
	if err := decodeBody(c, &req); err != nil {
		return err
	}
	h.log.Info("Petició per crear un usuari", zap.String("username", req.Username), zap.String("email", req.Email))

	usuari, err := h.repo.CreateUsuari(c.Context(), repository.NewUsuari{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Nom:      req.Nom,
		Idioma:   req.Idioma,
	})
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(success("Usuari creat amb èxit", newUsuariResponse(usuari)))
}

func (h *Controller) GetComentaris(c fiber.Ctx) error {
	id, err := paramID(c, "id_usuari", "ID d'usuari invàlid")
	if err != nil {
		return err
	}
	h.log.Info("Petició per obtenir els comentaris d'un usuari", zap.Uint("usuari", id))

	comentaris, err := h.repo.ComentarisByUsuari(c.Context(), id)
	if err != nil {
		return err
	}
	if len(comentaris) == 0 {
		return apperrors.NewNotFound("comentari", "No s'han trobat comentaris per aquest usuari")
	}

	out := make([]ComentariResponse, 0, len(comentaris))
	for _, com := range comentaris {
		out = append(out, newComentariResponse(com))
	}

	return c.Status(fiber.StatusOK).JSON(success("Comentaris de l'usuari obtinguts amb èxit", out))
}

package controllers

import (
	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"
	"ytcatalog-backend/internal/apperrors"
	"ytcatalog-backend/internal/repository"
)

func (h *Controller) GetLlistes(c fiber.Ctx) error {
	h.log.Info("Petició per obtenir totes les llistes")

	llistes, err := h.repo.AllLlistes(c.Context())
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(success("Llistes obtingudes amb èxit", llistes))
}

func (h *Controller) CreateLlista(c fiber.Ctx) error {
	var req CreateLlistaRequest
	if err := decodeBody(c, &req); err != nil {
		return err
	}
	h.log.Info("Petició per crear una nova llista", zap.String("nom", req.Nom))

	llista, err := h.repo.CreateLlista(c.Context(), repository.NewLlista{Nom: req.Nom, Descripcio: req.Descripcio})
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(success("Llista creada amb èxit", llista))
}

func (h *Controller) AddVideo(c fiber.Ctx) error {
	var req AddVideoRequest
	if err := decodeBody(c, &req); err != nil {
		return err
	}
	h.log.Info("Petició per afegir un vídeo a una llista",
		zap.Uint("llistaId", uint(req.LlistaId)),
		zap.Uint("videoId", uint(req.VideoId)),
	)

	if req.LlistaId == 0 || req.VideoId == 0 {
		return apperrors.NewValidation("Falten dades obligatòries: llistaId i videoId")
	}

	llista, err := h.repo.AddVideoToLlista(c.Context(), uint(req.LlistaId), uint(req.VideoId))
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(success("Vídeo afegit a la llista amb èxit", llista))
}

package controllers

import (
	"github.com/gofiber/fiber/v3"
)

func (h *Controller) GetYoutubers(c fiber.Ctx) error {
	youtubers, err := h.repo.AllYoutubers(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(success("Youtubers obtinguts amb èxit", youtubers))
}

func (h *Controller) GetYoutuber(c fiber.Ctx) error {
	id, err := paramID(c, "id", "ID de youtuber invàlid")
	if err != nil {
		return err
	}

	youtuber, err := h.repo.FindYoutuber(c.Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(success("Youtuber obtingut amb èxit", youtuber))
}

func (h *Controller) GetVideos(c fiber.Ctx) error {
	videos, err := h.repo.AllVideos(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(success("Vídeos obtinguts amb èxit", videos))
}

func (h *Controller) GetVideo(c fiber.Ctx) error {
	id, err := paramID(c, "id", "ID de vídeo invàlid")
	if err != nil {
		return err
	}

	video, err := h.repo.FindVideo(c.Context(), id)
	if err != nil {
		return err
	}
	categories, err := h.repo.CategoriesOfVideo(c.Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(success("Vídeo obtingut amb èxit", VideoResponse{Video: *video, Categories: categories}))
}

func (h *Controller) GetCategories(c fiber.Ctx) error {
	categories, err := h.repo.AllCategories(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(success("Categories obtingudes amb èxit", categories))
}

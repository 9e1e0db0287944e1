package handlers

import (
	"github.com/dash-ai/backend/internal/http/dto"
	"github.com/dash-ai/backend/internal/models"
	"github.com/gofiber/fiber/v2"
)

type MetaHandler struct{}

func NewMetaHandler() *MetaHandler {
	return &MetaHandler{}
}

func (h *MetaHandler) GetPlatforms(c *fiber.Ctx) error {
	platforms := models.KnownPlatforms()
	values := make([]string, len(platforms))
	for i, p := range platforms {
		values[i] = string(p)
	}
	return c.JSON(dto.MetaResponse{Values: values})
}

func (h *MetaHandler) GetFormats(c *fiber.Ctx) error {
	formats := models.KnownFormats()
	values := make([]string, len(formats))
	for i, f := range formats {
		values[i] = string(f)
	}
	return c.JSON(dto.MetaResponse{Values: values})
}

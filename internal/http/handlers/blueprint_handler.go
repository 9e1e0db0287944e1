package handlers

import (
	"errors"

	"github.com/dash-ai/backend/internal/http/dto"
	"github.com/dash-ai/backend/internal/middleware"
	"github.com/dash-ai/backend/internal/models"
	"github.com/dash-ai/backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type BlueprintHandler struct {
	blueprints *services.BlueprintService
	log        *zap.Logger
}

func NewBlueprintHandler(blueprints *services.BlueprintService, log *zap.Logger) *BlueprintHandler {
	return &BlueprintHandler{blueprints: blueprints, log: log}
}

func (h *BlueprintHandler) Submit(c *fiber.Ctx) error {
	var req dto.BlueprintRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request body"})
	}

	platforms := make(models.PlatformSet)
	for _, raw := range req.Platforms {
		p, err := models.ParsePlatform(raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: err.Error(), Field: "platforms"})
		}
		platforms[p] = struct{}{}
	}

	in := models.BlueprintInput{
		CampaignName:  req.CampaignName,
		ContentIdea:   req.ContentIdea,
		ReferenceFile: req.ReferenceFile,
		Platforms:     platforms,
		Format:        models.Format(req.Format),
	}

	draft, err := h.blueprints.Submit(c.Context(), middleware.GetSession(c), in)
	if err != nil {
		var vErr *models.ValidationError
		if errors.As(err, &vErr) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: vErr.Reason, Field: vErr.Field})
		}
		h.log.Error("blueprint submit failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal server error"})
	}

	return c.Status(fiber.StatusCreated).JSON(dto.BlueprintResponse{
		Draft:      draft,
		ReviewPath: "/content-review?draftId=" + draft.ID.String(),
	})
}

package handlers

import (
	"errors"

	"github.com/dash-ai/backend/internal/http/dto"
	"github.com/dash-ai/backend/internal/models"
	"github.com/dash-ai/backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const blueprintPath = "/content-blueprint"

type ReviewHandler struct {
	reviews *services.ReviewService
	log     *zap.Logger
}

func NewReviewHandler(reviews *services.ReviewService, log *zap.Logger) *ReviewHandler {
	return &ReviewHandler{reviews: reviews, log: log}
}

// View renders the review state for a draft. A missing or unknown draftId
// yields the empty state with only the composer link, never an error page.
func (h *ReviewHandler) View(c *fiber.Ctx) error {
	draftID, err := uuid.Parse(c.Query("draftId"))
	if err != nil {
		return c.JSON(dto.SuccessResponse{OK: true, Data: services.ReviewView{
			State:     models.ReviewStateClosed,
			Decidable: false,
		}})
	}

	return c.JSON(dto.SuccessResponse{OK: true, Data: h.reviews.View(draftID)})
}

func (h *ReviewHandler) Approve(c *fiber.Ctx) error {
	var req dto.ApproveRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request body"})
	}

	draftID, err := uuid.Parse(req.DraftID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid draft id"})
	}

	if err := h.reviews.Approve(c.Context(), draftID); err != nil {
		return h.decisionError(c, err)
	}

	return c.JSON(dto.DecisionResponse{OK: true, Redirect: blueprintPath})
}

func (h *ReviewHandler) Reject(c *fiber.Ctx) error {
	var req dto.RejectRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request body"})
	}

	draftID, err := uuid.Parse(req.DraftID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid draft id"})
	}

	if err := h.reviews.Reject(draftID); err != nil {
		return h.decisionError(c, err)
	}

	return c.JSON(dto.DecisionResponse{OK: true, Redirect: blueprintPath})
}

func (h *ReviewHandler) decisionError(c *fiber.Ctx, err error) error {
	var netErr *services.NetworkError
	switch {
	case errors.Is(err, services.ErrNothingToReview):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: err.Error(), Redirect: blueprintPath})
	case errors.Is(err, services.ErrApprovalInFlight):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Error: err.Error()})
	case errors.As(err, &netErr):
		return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{Error: "Failed to approve content. Please try again."})
	default:
		h.log.Error("review decision failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal server error"})
	}
}

package handlers

import (
	"errors"

	"github.com/dash-ai/backend/internal/http/dto"
	"github.com/dash-ai/backend/internal/middleware"
	"github.com/dash-ai/backend/internal/session"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type AuthHandler struct {
	store *session.Store
	log   *zap.Logger
}

func NewAuthHandler(store *session.Store, log *zap.Logger) *AuthHandler {
	return &AuthHandler{store: store, log: log}
}

func (h *AuthHandler) SignIn(c *fiber.Ctx) error {
	var req dto.SignInRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request body"})
	}

	sess, token, err := h.store.SignIn(c.Context(), req.Email, req.Password)
	if err != nil {
		var authErr *session.AuthError
		if errors.As(err, &authErr) {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: authErr.Message})
		}
		h.log.Error("sign-in failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal server error"})
	}

	return c.JSON(dto.AuthResponse{Token: token, Session: sess})
}

func (h *AuthHandler) SignUp(c *fiber.Ctx) error {
	var req dto.SignUpRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request body"})
	}

	sess, token, err := h.store.SignUp(c.Context(), req.Email, req.Password, session.SignUpAttributes{
		DisplayName: req.DisplayName,
	})
	if err != nil {
		var authErr *session.AuthError
		if errors.As(err, &authErr) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: authErr.Message})
		}
		h.log.Error("sign-up failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal server error"})
	}

	return c.Status(fiber.StatusCreated).JSON(dto.AuthResponse{Token: token, Session: sess})
}

// SignOut is fire-and-forget: the store logs failures and the client
// navigates away regardless.
func (h *AuthHandler) SignOut(c *fiber.Ctx) error {
	h.store.SignOut(c.Context(), middleware.GetBearerToken(c))
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	return c.JSON(dto.SuccessResponse{OK: true, Data: middleware.GetSession(c)})
}

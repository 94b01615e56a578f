package handler

import (
	"context"

	"github.com/gofiber/fiber/v3"

	"github.com/kayceejenz/mtop/internal/middleware"
	"github.com/kayceejenz/mtop/internal/model"
)

type PromptService interface {
	Today(ctx context.Context) (*model.Prompt, error)
	Get(ctx context.Context, id string) (*model.Prompt, error)
}

type PromptHandler struct {
	svc PromptService
}

func NewPromptHandler(svc PromptService) *PromptHandler {
	return &PromptHandler{svc: svc}
}

// Today handles GET /api/prompts/today
func (h *PromptHandler) Today(c fiber.Ctx) error {
	p, err := h.svc.Today(c.Context())
	if err != nil {
		return handleError(c, err, "fetch today's prompt")
	}
	return c.JSON(p)
}

// Get handles GET /api/prompts/:promptId
func (h *PromptHandler) Get(c fiber.Ctx) error {
	id, errMsg := middleware.ValidateUUID("promptId", c.Params("promptId"))
	if errMsg != "" {
		return badRequest(c, errMsg)
	}

	p, err := h.svc.Get(c.Context(), id)
	if err != nil {
		return handleError(c, err, "fetch prompt")
	}
	return c.JSON(p)
}

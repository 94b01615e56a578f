package handler

import (
	"context"

	"github.com/gofiber/fiber/v3"

	"github.com/kayceejenz/mtop/internal/middleware"
	"github.com/kayceejenz/mtop/internal/model"
)

type CommentService interface {
	Add(ctx context.Context, memeID, accountID, text string) (*model.Comment, error)
	List(ctx context.Context, memeID string) ([]model.Comment, error)
}

type CommentHandler struct {
	svc CommentService
}

func NewCommentHandler(svc CommentService) *CommentHandler {
	return &CommentHandler{svc: svc}
}

// Add handles POST /api/memes/:memeId/comments
func (h *CommentHandler) Add(c fiber.Ctx) error {
	memeID, errMsg := middleware.ValidateUUID("memeId", c.Params("memeId"))
	if errMsg != "" {
		return badRequest(c, errMsg)
	}
	var req model.CommentRequest
	if err := c.Bind().JSON(&req); err != nil {
		return invalidBody(c)
	}

	cm, err := h.svc.Add(c.Context(), memeID, middleware.AccountID(c), req.Text)
	if err != nil {
		return handleError(c, err, "add comment")
	}
	return c.Status(fiber.StatusCreated).JSON(cm)
}

// List handles GET /api/memes/:memeId/comments
func (h *CommentHandler) List(c fiber.Ctx) error {
	memeID, errMsg := middleware.ValidateUUID("memeId", c.Params("memeId"))
	if errMsg != "" {
		return badRequest(c, errMsg)
	}

	comments, err := h.svc.List(c.Context(), memeID)
	if err != nil {
		return handleError(c, err, "list comments")
	}
	return c.JSON(comments)
}

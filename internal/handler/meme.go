package handler

import (
	"context"
	"io"

	"github.com/gofiber/fiber/v3"

	"github.com/kayceejenz/mtop/internal/middleware"
	"github.com/kayceejenz/mtop/internal/model"
)

type MemeService interface {
	Submit(ctx context.Context, in model.SubmitMemeInput) (*model.Meme, error)
	List(ctx context.Context, q model.ListMemesQuery) ([]model.Meme, error)
	Get(ctx context.Context, id string) (*model.Meme, error)
}

type MemeHandler struct {
	svc           MemeService
	maxImageBytes int64
}

func NewMemeHandler(svc MemeService, maxImageBytes int) *MemeHandler {
	return &MemeHandler{svc: svc, maxImageBytes: int64(maxImageBytes)}
}

// Submit handles POST /api/memes (multipart: promptId, caption, image)
func (h *MemeHandler) Submit(c fiber.Ctx) error {
	promptID, errMsg := middleware.ValidateUUID("promptId", c.FormValue("promptId"))
	if errMsg != "" {
		countOutcome(Metrics.SubmissionsTotal, outcomeInvalid)
		return badRequest(c, errMsg)
	}

	fh, err := c.FormFile("image")
	if err != nil {
		countOutcome(Metrics.SubmissionsTotal, outcomeInvalid)
		return badRequest(c, "image file is required")
	}
	if fh.Size > h.maxImageBytes {
		countOutcome(Metrics.SubmissionsTotal, outcomeInvalid)
		return middleware.ErrorResponse(c, fiber.StatusRequestEntityTooLarge, "IMAGE_TOO_LARGE", "Image exceeds the size limit")
	}
	f, err := fh.Open()
	if err != nil {
		countOutcome(Metrics.SubmissionsTotal, outcomeInvalid)
		return badRequest(c, "image file is unreadable")
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, h.maxImageBytes+1))
	if err != nil {
		countOutcome(Metrics.SubmissionsTotal, outcomeInvalid)
		return badRequest(c, "image file is unreadable")
	}

	m, err := h.svc.Submit(c.Context(), model.SubmitMemeInput{
		PromptID:  promptID,
		CreatorID: middleware.AccountID(c),
		Caption:   c.FormValue("caption"),
		Filename:  fh.Filename,
		Image:     data,
	})
	countOutcome(Metrics.SubmissionsTotal, outcomeOf(err))
	if err != nil {
		return handleError(c, err, "submit meme")
	}
	return c.Status(fiber.StatusCreated).JSON(m)
}

// List handles GET /api/memes?promptId=&order=top|recent&limit=&offset=
func (h *MemeHandler) List(c fiber.Ctx) error {
	promptID, errMsg := middleware.ValidateUUID("promptId", fiber.Query[string](c, "promptId"))
	if errMsg != "" {
		return badRequest(c, errMsg)
	}
	order, errMsg := middleware.ValidateOrder(fiber.Query[string](c, "order"))
	if errMsg != "" {
		return badRequest(c, errMsg)
	}
	limit, offset, errMsg := middleware.ValidatePage(fiber.Query[string](c, "limit"), fiber.Query[string](c, "offset"))
	if errMsg != "" {
		return badRequest(c, errMsg)
	}

	memes, err := h.svc.List(c.Context(), model.ListMemesQuery{
		PromptID: promptID,
		Order:    order,
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		return handleError(c, err, "list memes")
	}
	return c.JSON(memes)
}

// Get handles GET /api/memes/:memeId
func (h *MemeHandler) Get(c fiber.Ctx) error {
	id, errMsg := middleware.ValidateUUID("memeId", c.Params("memeId"))
	if errMsg != "" {
		return badRequest(c, errMsg)
	}

	m, err := h.svc.Get(c.Context(), id)
	if err != nil {
		return handleError(c, err, "fetch meme")
	}
	return c.JSON(m)
}

package handler

import (
	"context"

	"github.com/gofiber/fiber/v3"

	"github.com/kayceejenz/mtop/internal/middleware"
	"github.com/kayceejenz/mtop/internal/model"
)

type VoteService interface {
	Cast(ctx context.Context, memeID, voterID string) (*model.VoteResult, error)
	HasVoted(ctx context.Context, memeID, voterID string) (bool, error)
}

type VoteHandler struct {
	svc VoteService
}

func NewVoteHandler(svc VoteService) *VoteHandler {
	return &VoteHandler{svc: svc}
}

// Cast handles POST /api/votes
func (h *VoteHandler) Cast(c fiber.Ctx) error {
	var req model.VoteRequest
	if err := c.Bind().JSON(&req); err != nil {
		countOutcome(Metrics.VotesTotal, outcomeInvalid)
		return invalidBody(c)
	}
	memeID, errMsg := middleware.ValidateUUID("memeId", req.MemeID)
	if errMsg != "" {
		countOutcome(Metrics.VotesTotal, outcomeInvalid)
		return badRequest(c, errMsg)
	}

	res, err := h.svc.Cast(c.Context(), memeID, middleware.AccountID(c))
	countOutcome(Metrics.VotesTotal, outcomeOf(err))
	if err != nil {
		return handleError(c, err, "cast vote")
	}
	return c.JSON(res)
}

// Status handles GET /api/memes/:memeId/vote
func (h *VoteHandler) Status(c fiber.Ctx) error {
	memeID, errMsg := middleware.ValidateUUID("memeId", c.Params("memeId"))
	if errMsg != "" {
		return badRequest(c, errMsg)
	}

	voted, err := h.svc.HasVoted(c.Context(), memeID, middleware.AccountID(c))
	if err != nil {
		return handleError(c, err, "fetch vote status")
	}
	return c.JSON(fiber.Map{"voted": voted})
}

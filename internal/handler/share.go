package handler

import (
	"context"

	"github.com/gofiber/fiber/v3"

	"github.com/kayceejenz/mtop/internal/middleware"
	"github.com/kayceejenz/mtop/internal/model"
)

type ShareService interface {
	Reward(ctx context.Context, memeID, accountID string) (*model.ShareResult, error)
}

type ShareHandler struct {
	svc ShareService
}

func NewShareHandler(svc ShareService) *ShareHandler {
	return &ShareHandler{svc: svc}
}

// Claim handles POST /api/shares. Repeated claims for the same meme succeed
// with rewarded=false.
func (h *ShareHandler) Claim(c fiber.Ctx) error {
	var req model.ShareRequest
	if err := c.Bind().JSON(&req); err != nil {
		countOutcome(Metrics.SharesTotal, outcomeInvalid)
		return invalidBody(c)
	}
	memeID, errMsg := middleware.ValidateUUID("memeId", req.MemeID)
	if errMsg != "" {
		countOutcome(Metrics.SharesTotal, outcomeInvalid)
		return badRequest(c, errMsg)
	}

	res, err := h.svc.Reward(c.Context(), memeID, middleware.AccountID(c))
	outcome := outcomeOf(err)
	if err == nil && !res.Rewarded {
		outcome = outcomeDuplicate
	}
	countOutcome(Metrics.SharesTotal, outcome)
	if err != nil {
		return handleError(c, err, "claim share reward")
	}
	return c.JSON(res)
}

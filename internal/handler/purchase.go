package handler

import (
	"context"

	"github.com/gofiber/fiber/v3"

	"github.com/kayceejenz/mtop/internal/middleware"
	"github.com/kayceejenz/mtop/internal/model"
)

type PurchaseService interface {
	Confirm(ctx context.Context, accountID, txRef string, likeAmount int) (*model.PurchaseResult, error)
	Status(ctx context.Context, accountID, txRef string) (*model.Purchase, error)
	Bundles() []model.Bundle
}

type PurchaseHandler struct {
	svc PurchaseService
}

func NewPurchaseHandler(svc PurchaseService) *PurchaseHandler {
	return &PurchaseHandler{svc: svc}
}

// Bundles handles GET /api/purchases/bundles
func (h *PurchaseHandler) Bundles(c fiber.Ctx) error {
	return c.JSON(h.svc.Bundles())
}

// Status handles GET /api/purchases/:txRef. Only the purchasing account can
// see a reference.
func (h *PurchaseHandler) Status(c fiber.Ctx) error {
	p, err := h.svc.Status(c.Context(), middleware.AccountID(c), c.Params("txRef"))
	if err != nil {
		return handleError(c, err, "get purchase")
	}
	return c.JSON(p)
}

// Confirm handles POST /api/purchases/confirm. Re-confirming a reference the
// caller already claimed returns the current balance with duplicate=true.
func (h *PurchaseHandler) Confirm(c fiber.Ctx) error {
	var req model.PurchaseRequest
	if err := c.Bind().JSON(&req); err != nil {
		countOutcome(Metrics.PurchasesTotal, "api", outcomeInvalid)
		return invalidBody(c)
	}

	res, err := h.svc.Confirm(c.Context(), middleware.AccountID(c), req.TxRef, req.LikeAmount)
	outcome := outcomeOf(err)
	if err == nil && res.Duplicate {
		outcome = outcomeDuplicate
	}
	countOutcome(Metrics.PurchasesTotal, "api", outcome)
	if err != nil {
		return handleError(c, err, "confirm purchase")
	}
	return c.JSON(res)
}

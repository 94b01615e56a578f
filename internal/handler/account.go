package handler

import (
	"context"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog/log"

	"github.com/kayceejenz/mtop/internal/middleware"
	"github.com/kayceejenz/mtop/internal/model"
)

// AccountService is the account surface the handlers need.
type AccountService interface {
	Resolve(ctx context.Context, ident model.Identity) (*model.Account, bool, error)
	Get(ctx context.Context, id string) (*model.Account, error)
	LinkWallet(ctx context.Context, id, address string) (*model.Account, error)
	GetStats(ctx context.Context) (*model.StatsResponse, error)
}

// TokenIssuer signs session tokens.
type TokenIssuer interface {
	Issue(accountID string, fid int64) (string, error)
}

type AccountHandler struct {
	svc    AccountService
	tokens TokenIssuer
}

func NewAccountHandler(svc AccountService, tokens TokenIssuer) *AccountHandler {
	return &AccountHandler{svc: svc, tokens: tokens}
}

// Session handles POST /api/session. The body is the identity asserted by the
// mini-app host; the first session for a fid creates its account.
func (h *AccountHandler) Session(c fiber.Ctx) error {
	var ident model.Identity
	if err := c.Bind().JSON(&ident); err != nil {
		return invalidBody(c)
	}

	acc, created, err := h.svc.Resolve(c.Context(), ident)
	if err != nil {
		return handleError(c, err, "resolve account")
	}

	token, err := h.tokens.Issue(acc.ID, acc.FID)
	if err != nil {
		log.Error().Err(err).Str("component", "api").Msg("issue session token")
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to issue session")
	}

	status := fiber.StatusOK
	if created {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(model.SessionResponse{Token: token, Account: acc, Created: created})
}

// Me handles GET /api/accounts/me
func (h *AccountHandler) Me(c fiber.Ctx) error {
	acc, err := h.svc.Get(c.Context(), middleware.AccountID(c))
	if err != nil {
		return handleError(c, err, "fetch account")
	}
	return c.JSON(acc)
}

// LinkWallet handles PUT /api/accounts/me/wallet
func (h *AccountHandler) LinkWallet(c fiber.Ctx) error {
	var req struct {
		WalletAddress string `json:"walletAddress"`
	}
	if err := c.Bind().JSON(&req); err != nil {
		return invalidBody(c)
	}

	acc, err := h.svc.LinkWallet(c.Context(), middleware.AccountID(c), req.WalletAddress)
	if err != nil {
		return handleError(c, err, "link wallet")
	}
	return c.JSON(acc)
}

// Stats handles GET /api/stats
func (h *AccountHandler) Stats(c fiber.Ctx) error {
	stats, err := h.svc.GetStats(c.Context())
	if err != nil {
		return handleError(c, err, "fetch statistics")
	}
	return c.JSON(stats)
}

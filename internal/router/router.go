package router

import (
	"github.com/gofiber/fiber/v3"
	recoverer "github.com/gofiber/fiber/v3/middleware/recover"

	"github.com/kayceejenz/mtop/internal/auth"
	"github.com/kayceejenz/mtop/internal/handler"
	"github.com/kayceejenz/mtop/internal/middleware"
)

// Handlers holds all handler instances needed by the router.
type Handlers struct {
	Account  *handler.AccountHandler
	Prompt   *handler.PromptHandler
	Meme     *handler.MemeHandler
	Vote     *handler.VoteHandler
	Share    *handler.ShareHandler
	Comment  *handler.CommentHandler
	Purchase *handler.PurchaseHandler
	Sync     *handler.SyncHandler
	Health   *handler.HealthHandler
}

// Setup configures the middleware stack and all API routes on the given Fiber app.
func Setup(app *fiber.App, h *Handlers, issuer *auth.Issuer, corsOrigins string) {
	// Middleware stack (order matters)
	app.Use(recoverer.New())
	app.Use(middleware.NewRequestLogger())
	app.Use(handler.MetricsMiddleware())
	app.Use(middleware.NewCORS(corsOrigins))

	app.Get("/health/live", h.Health.Live)
	app.Get("/health/ready", h.Health.Ready)
	app.Get("/metrics", handler.MetricsHandler())

	authed := middleware.RequireAuth(issuer)
	read := middleware.NewReadRateLimiter().Handler()
	session := middleware.NewSessionRateLimiter().Handler()
	votes := middleware.NewVoteRateLimiter().Handler()
	submissions := middleware.NewSubmissionRateLimiter().Handler()
	comments := middleware.NewCommentRateLimiter().Handler()
	purchases := middleware.NewPurchaseRateLimiter().Handler()
	sync := middleware.NewSyncRateLimiter().Handler()

	api := app.Group("/api")

	// Session and account routes
	api.Post("/session", session, h.Account.Session)
	api.Get("/accounts/me", authed, h.Account.Me)
	api.Put("/accounts/me/wallet", authed, purchases, h.Account.LinkWallet)

	// Prompt routes
	api.Get("/prompts/today", read, h.Prompt.Today)
	api.Get("/prompts/:promptId", read, h.Prompt.Get)

	// Meme routes
	api.Post("/memes", authed, submissions, h.Meme.Submit)
	api.Get("/memes", read, h.Meme.List)
	api.Get("/memes/:memeId", read, h.Meme.Get)
	api.Get("/memes/:memeId/vote", authed, h.Vote.Status)
	api.Get("/memes/:memeId/comments", read, h.Comment.List)
	api.Post("/memes/:memeId/comments", authed, comments, h.Comment.Add)

	// Vote and share routes
	api.Post("/votes", authed, votes, h.Vote.Cast)
	api.Post("/shares", authed, votes, h.Share.Claim)

	// Purchase routes
	api.Get("/purchases/bundles", h.Purchase.Bundles)
	api.Post("/purchases/confirm", authed, purchases, h.Purchase.Confirm)
	api.Get("/purchases/:txRef", authed, read, h.Purchase.Status)

	// Stats and sync routes
	api.Get("/stats", read, h.Account.Stats)
	api.Get("/sync/delta", sync, h.Sync.Delta)
}

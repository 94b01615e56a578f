package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kayceejenz/mtop/internal/model"
)

// The repository types satisfy these; tests substitute in-memory fakes.

type AccountStore interface {
	FindByID(ctx context.Context, id string) (*model.Account, error)
	Upsert(ctx context.Context, ident model.Identity, startingLikes decimal.Decimal) (*model.Account, bool, error)
	SetWallet(ctx context.Context, id, address string) (*model.Account, error)
	GetStats(ctx context.Context) (*model.StatsResponse, error)
}

type PromptStore interface {
	FindByID(ctx context.Context, id string) (*model.Prompt, error)
	GetOrCreate(ctx context.Context, dayKey string, activeUntil time.Time, text string) (*model.Prompt, error)
	DeactivateExpired(ctx context.Context, now time.Time) (int, error)
}

type MemeStore interface {
	Create(ctx context.Context, m *model.Meme) error
	FindByID(ctx context.Context, id string) (*model.Meme, error)
	ListForPrompt(ctx context.Context, q model.ListMemesQuery) ([]model.Meme, error)
	UpdatedSince(ctx context.Context, promptID string, since time.Time, limit int) ([]model.Meme, error)
	Now(ctx context.Context) (time.Time, error)
	ReconcileCounters(ctx context.Context, memeID string) (model.MemeCounters, bool, error)
}

type VoteStore interface {
	CastVote(ctx context.Context, memeID, voterID string, terms model.VoteTerms) (*model.VoteResult, error)
	HasVoted(ctx context.Context, memeID, voterID string) (bool, error)
}

type PurchaseStore interface {
	Confirm(ctx context.Context, accountID, txRef string, likeAmount decimal.Decimal) (*model.PurchaseResult, error)
	FindByRef(ctx context.Context, txRef string) (*model.Purchase, error)
}

type ShareStore interface {
	Reward(ctx context.Context, memeID, accountID string, reward decimal.Decimal) (*model.ShareResult, error)
}

type CommentStore interface {
	Create(ctx context.Context, c *model.Comment) error
	ListForMeme(ctx context.Context, memeID string) ([]model.Comment, error)
	CreatedSince(ctx context.Context, promptID string, since time.Time, limit int) ([]model.Comment, error)
}

// ObjectStore persists uploaded images and returns their public URL.
type ObjectStore interface {
	Put(ctx context.Context, key string, data []byte) (string, error)
}

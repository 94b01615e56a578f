package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Share marks that an account was rewarded for sharing a meme.
type Share struct {
	ID        string          `json:"id"`
	MemeID    string          `json:"memeId"`
	AccountID string          `json:"accountId"`
	Reward    decimal.Decimal `json:"reward"`
	CreatedAt time.Time       `json:"createdAt"`
}

// ShareRequest is the API request body for claiming a share reward.
type ShareRequest struct {
	MemeID string `json:"memeId" validate:"required,uuid"`
}

// ShareResult reports whether a reward was granted and the resulting balance.
type ShareResult struct {
	Rewarded    bool            `json:"rewarded"`
	LikeBalance decimal.Decimal `json:"likeBalance"`
}

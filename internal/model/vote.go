package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Vote is an immutable record of one account voting on one meme. The terms
// applied at cast time are stored with it.
type Vote struct {
	ID               string          `json:"id"`
	MemeID           string          `json:"memeId"`
	VoterID          string          `json:"voterId"`
	Cost             decimal.Decimal `json:"cost"`
	PoolContribution decimal.Decimal `json:"poolContribution"`
	CreatorReward    decimal.Decimal `json:"creatorReward"`
	CreatedAt        time.Time       `json:"createdAt"`
}

// VoteTerms are the economic constants applied to a single vote.
type VoteTerms struct {
	Cost             decimal.Decimal
	CreatorReward    decimal.Decimal
	PoolContribution decimal.Decimal
}

// VoteRequest is the API request body for casting a vote.
type VoteRequest struct {
	MemeID string `json:"memeId" validate:"required,uuid"`
}

// MemeCounters are the aggregate counters of a meme after a vote.
type MemeCounters struct {
	ID         string          `json:"id"`
	PromptID   string          `json:"promptId"`
	LikeCount  int             `json:"likeCount"`
	RewardPool decimal.Decimal `json:"rewardPool"`
}

// VoteResult is the API response after a successful vote.
type VoteResult struct {
	LikeBalance decimal.Decimal `json:"likeBalance"`
	Meme        MemeCounters    `json:"meme"`
}

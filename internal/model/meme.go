package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Feed orderings for meme listings.
const (
	OrderTop    = "top"
	OrderRecent = "recent"
)

// Meme is one submission to a prompt.
type Meme struct {
	ID         string          `json:"id"`
	PromptID   string          `json:"promptId"`
	CreatorID  string          `json:"creatorId"`
	Creator    *CreatorProfile `json:"creator,omitempty"`
	ImageURL   string          `json:"imageUrl"`
	Caption    string          `json:"caption"`
	LikeCount  int             `json:"likeCount"`
	RewardPool decimal.Decimal `json:"rewardPool"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

// SubmitMemeInput carries a meme submission through validation to storage.
type SubmitMemeInput struct {
	PromptID  string `validate:"required,uuid"`
	CreatorID string `validate:"required,uuid"`
	Caption   string `validate:"required,min=1,max=200"`
	Filename  string `validate:"max=255"`
	Image     []byte `validate:"required"`
}

// ListMemesQuery selects a page of a prompt's feed.
type ListMemesQuery struct {
	PromptID string `validate:"required,uuid"`
	Order    string `validate:"oneof=top recent"`
	Limit    int    `validate:"min=1,max=100"`
	Offset   int    `validate:"min=0"`
}

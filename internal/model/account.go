package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account represents one participating Farcaster identity and its balances.
type Account struct {
	ID            string          `json:"id"`
	FID           int64           `json:"fid"`
	Username      string          `json:"username"`
	DisplayName   string          `json:"displayName"`
	PfpURL        string          `json:"pfpUrl"`
	WalletAddress *string         `json:"walletAddress,omitempty"`
	LikeBalance   decimal.Decimal `json:"likeBalance"`
	TokenBalance  decimal.Decimal `json:"tokenBalance"`
	TotalEarned   decimal.Decimal `json:"totalEarned"`
	CreatedAt     time.Time       `json:"createdAt"`
	LastActive    time.Time       `json:"lastActive"`

	// VotesAffordable is derived from LikeBalance when the account is served.
	VotesAffordable int `json:"votesAffordable"`
}

// Identity is the upstream identity fact supplied by the mini-app host.
type Identity struct {
	FID           int64   `json:"fid" validate:"required,gt=0"`
	Username      string  `json:"username" validate:"max=64"`
	DisplayName   string  `json:"displayName" validate:"max=128"`
	PfpURL        string  `json:"pfpUrl" validate:"omitempty,url,max=2048"`
	WalletAddress *string `json:"walletAddress,omitempty" validate:"omitempty,eth_addr"`
}

// CreatorProfile is the public part of an account embedded in memes and comments.
type CreatorProfile struct {
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	PfpURL      string `json:"pfpUrl"`
}

// SessionResponse is the API response after identity resolution.
type SessionResponse struct {
	Token   string   `json:"token"`
	Account *Account `json:"account"`
	Created bool     `json:"created"`
}

// CreatorStanding is one row of the creator leaderboard.
type CreatorStanding struct {
	AccountID   string          `json:"accountId"`
	Username    string          `json:"username"`
	DisplayName string          `json:"displayName"`
	PfpURL      string          `json:"pfpUrl"`
	TotalEarned decimal.Decimal `json:"totalEarned"`
}

// StatsResponse is the API response for global statistics.
type StatsResponse struct {
	TotalAccounts     int               `json:"totalAccounts"`
	TotalMemes        int               `json:"totalMemes"`
	TotalVotes        int               `json:"totalVotes"`
	ActiveAccounts24h int               `json:"activeAccounts24h"`
	TopCreators       []CreatorStanding `json:"topCreators"`
}

package service

import (
	"github.com/shopspring/decimal"

	"github.com/kayceejenz/mtop/internal/model"
)

var (
	// VoteCost is debited from the voter's likes per vote.
	VoteCost = decimal.NewFromInt(3)

	// A vote is worth voteBaseUnit tokens; the creator receives creatorShare of it.
	voteBaseUnit  = decimal.NewFromInt(10)
	creatorShare  = decimal.RequireFromString("0.6")
	CreatorReward = voteBaseUnit.Mul(creatorShare)

	// PoolContribution is added to the meme's reward pool per vote.
	PoolContribution = decimal.NewFromInt(6)

	// StartingLikes are granted once when an account is first provisioned.
	StartingLikes = decimal.NewFromInt(5)

	// ShareReward is credited once per (meme, account) share.
	ShareReward = decimal.RequireFromString("0.2")
)

// USDC on Base.
const (
	USDCContract = "0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913"
	USDCDecimals = 6
	BaseChainID  = 8453
)

var bundlePrices = []struct {
	likes int
	price string
}{
	{10, "0.99"},
	{30, "1.99"},
	{60, "2.99"},
	{100, "4.99"},
}

// DefaultVoteTerms returns the terms applied to every vote.
func DefaultVoteTerms() model.VoteTerms {
	return model.VoteTerms{
		Cost:             VoteCost,
		CreatorReward:    CreatorReward,
		PoolContribution: PoolContribution,
	}
}

// Bundles returns the purchasable like bundles, smallest first.
func Bundles() []model.Bundle {
	out := make([]model.Bundle, 0, len(bundlePrices))
	for _, b := range bundlePrices {
		out = append(out, model.Bundle{
			Likes:           b.likes,
			USDCPrice:       b.price,
			AmountBaseUnits: ToBaseUnits(decimal.RequireFromString(b.price), USDCDecimals),
			TokenContract:   USDCContract,
			ChainID:         BaseChainID,
		})
	}
	return out
}

// BundleFor returns the bundle granting exactly likes.
func BundleFor(likes int) (model.Bundle, bool) {
	for _, b := range Bundles() {
		if b.Likes == likes {
			return b, true
		}
	}
	return model.Bundle{}, false
}

// ToBaseUnits converts a token amount to its integer base-unit string.
func ToBaseUnits(amount decimal.Decimal, decimals int32) string {
	return amount.Shift(decimals).Truncate(0).String()
}

// VotesAffordable returns how many votes a like balance covers.
func VotesAffordable(likes decimal.Decimal) int {
	if likes.LessThan(VoteCost) {
		return 0
	}
	return int(likes.Div(VoteCost).IntPart())
}

package service

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestCreatorReward(t *testing.T) {
	if !CreatorReward.Equal(decimal.NewFromInt(6)) {
		t.Errorf("CreatorReward = %s, want 6", CreatorReward)
	}
	terms := DefaultVoteTerms()
	if !terms.Cost.Equal(decimal.NewFromInt(3)) {
		t.Errorf("Cost = %s, want 3", terms.Cost)
	}
	if !terms.PoolContribution.Equal(decimal.NewFromInt(6)) {
		t.Errorf("PoolContribution = %s, want 6", terms.PoolContribution)
	}
}

func TestBundles(t *testing.T) {
	tests := []struct {
		likes     int
		price     string
		baseUnits string
	}{
		{10, "0.99", "990000"},
		{30, "1.99", "1990000"},
		{60, "2.99", "2990000"},
		{100, "4.99", "4990000"},
	}

	bundles := Bundles()
	if len(bundles) != len(tests) {
		t.Fatalf("got %d bundles, want %d", len(bundles), len(tests))
	}
	for i, tt := range tests {
		b := bundles[i]
		if b.Likes != tt.likes || b.USDCPrice != tt.price || b.AmountBaseUnits != tt.baseUnits {
			t.Errorf("bundle %d = %+v, want likes=%d price=%s base=%s", i, b, tt.likes, tt.price, tt.baseUnits)
		}
		if b.TokenContract != USDCContract {
			t.Errorf("bundle %d contract = %q, want %q", i, b.TokenContract, USDCContract)
		}
	}
}

func TestBundleFor(t *testing.T) {
	tests := []struct {
		likes int
		want  bool
	}{
		{10, true},
		{30, true},
		{100, true},
		{0, false},
		{11, false},
		{-10, false},
	}
	for _, tt := range tests {
		_, ok := BundleFor(tt.likes)
		if ok != tt.want {
			t.Errorf("BundleFor(%d) ok = %v, want %v", tt.likes, ok, tt.want)
		}
	}
}

func TestVotesAffordable(t *testing.T) {
	tests := []struct {
		balance string
		want    int
	}{
		{"0", 0},
		{"2.9", 0},
		{"3", 1},
		{"5", 1},
		{"5.2", 1},
		{"9", 3},
		{"10", 3},
	}
	for _, tt := range tests {
		got := VotesAffordable(decimal.RequireFromString(tt.balance))
		if got != tt.want {
			t.Errorf("VotesAffordable(%s) = %d, want %d", tt.balance, got, tt.want)
		}
	}
}

package service

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/kayceejenz/mtop/internal/model"
)

type VoteService struct {
	store VoteStore
	cache *CacheService
	terms model.VoteTerms
}

func NewVoteService(store VoteStore, cache *CacheService) *VoteService {
	return &VoteService{store: store, cache: cache, terms: DefaultVoteTerms()}
}

// Cast applies one vote from voterID on memeID. Either the vote and all its
// balance effects commit, or nothing changes and the error says why.
func (s *VoteService) Cast(ctx context.Context, memeID, voterID string) (*model.VoteResult, error) {
	if err := requireUUID("memeId", memeID); err != nil {
		return nil, err
	}
	if err := requireUUID("voterId", voterID); err != nil {
		return nil, err
	}

	res, err := s.store.CastVote(ctx, memeID, voterID, s.terms)
	if err != nil {
		return nil, err
	}

	// Counters are also reconciled by CounterWorker; drop the cached feed now
	// so the next read reflects this vote.
	if err := s.cache.InvalidateFeed(ctx, res.Meme.PromptID); err != nil {
		log.Warn().Err(err).Str("component", "vote").Msg("cache invalidate failed")
	}
	return res, nil
}

// HasVoted reports whether voterID has voted on memeID.
func (s *VoteService) HasVoted(ctx context.Context, memeID, voterID string) (bool, error) {
	if err := requireUUID("memeId", memeID); err != nil {
		return false, err
	}
	if err := requireUUID("voterId", voterID); err != nil {
		return false, err
	}
	return s.store.HasVoted(ctx, memeID, voterID)
}

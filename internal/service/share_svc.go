package service

import (
	"context"

	"github.com/kayceejenz/mtop/internal/model"
)

type ShareService struct {
	store ShareStore
}

func NewShareService(store ShareStore) *ShareService {
	return &ShareService{store: store}
}

// Reward grants the share reward the first time accountID shares memeID.
func (s *ShareService) Reward(ctx context.Context, memeID, accountID string) (*model.ShareResult, error) {
	if err := requireUUID("memeId", memeID); err != nil {
		return nil, err
	}
	if err := requireUUID("accountId", accountID); err != nil {
		return nil, err
	}
	return s.store.Reward(ctx, memeID, accountID, ShareReward)
}

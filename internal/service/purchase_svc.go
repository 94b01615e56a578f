package service

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/kayceejenz/mtop/internal/model"
	"github.com/kayceejenz/mtop/pkg/hash"
)

type PurchaseService struct {
	store PurchaseStore
}

func NewPurchaseService(store PurchaseStore) *PurchaseService {
	return &PurchaseService{store: store}
}

// Confirm credits a confirmed payment identified by its transaction hash.
// Replays of the same hash for the same account report Duplicate and credit
// nothing.
func (s *PurchaseService) Confirm(ctx context.Context, accountID, txRef string, likeAmount int) (*model.PurchaseResult, error) {
	if err := requireUUID("accountId", accountID); err != nil {
		return nil, err
	}
	ref, ok := hash.NormalizeTxHash(txRef)
	if !ok {
		return nil, model.ValidationError("txRef must be 0x followed by 64 hex characters")
	}
	if _, ok := BundleFor(likeAmount); !ok {
		return nil, model.ValidationError("likeAmount %d does not match a bundle", likeAmount)
	}
	return s.store.Confirm(ctx, accountID, ref, decimal.NewFromInt(int64(likeAmount)))
}

// Status returns the caller's purchase recorded under txRef. A reference
// credited to another account reports not found.
func (s *PurchaseService) Status(ctx context.Context, accountID, txRef string) (*model.Purchase, error) {
	ref, ok := hash.NormalizeTxHash(txRef)
	if !ok {
		return nil, model.ValidationError("txRef must be 0x followed by 64 hex characters")
	}
	p, err := s.store.FindByRef(ctx, ref)
	if err != nil {
		return nil, err
	}
	if p.AccountID != accountID {
		return nil, model.ErrPurchaseNotFound
	}
	return p, nil
}

// Bundles returns the purchasable like bundles.
func (s *PurchaseService) Bundles() []model.Bundle {
	return Bundles()
}

package service

import (
	"context"
	"strings"

	"github.com/kayceejenz/mtop/internal/model"
)

type AccountService struct {
	store AccountStore
}

func NewAccountService(store AccountStore) *AccountService {
	return &AccountService{store: store}
}

// Resolve maps an upstream identity to an account, provisioning one with the
// starting like grant the first time the identity is seen.
func (s *AccountService) Resolve(ctx context.Context, ident model.Identity) (*model.Account, bool, error) {
	ident.Username = strings.TrimSpace(ident.Username)
	ident.DisplayName = strings.TrimSpace(ident.DisplayName)
	ident.PfpURL = strings.TrimSpace(ident.PfpURL)
	if ident.WalletAddress != nil {
		addr := strings.TrimSpace(*ident.WalletAddress)
		if addr == "" {
			ident.WalletAddress = nil
		} else {
			ident.WalletAddress = &addr
		}
	}
	if err := validateStruct(ident); err != nil {
		return nil, false, err
	}
	acct, created, err := s.store.Upsert(ctx, ident, StartingLikes)
	if acct, err = withVotesAffordable(acct, err); err != nil {
		return nil, false, err
	}
	return acct, created, nil
}

// Get returns an account by id.
func (s *AccountService) Get(ctx context.Context, id string) (*model.Account, error) {
	if err := requireUUID("accountId", id); err != nil {
		return nil, err
	}
	return withVotesAffordable(s.store.FindByID(ctx, id))
}

// LinkWallet attaches a wallet address to the account.
func (s *AccountService) LinkWallet(ctx context.Context, id, address string) (*model.Account, error) {
	if err := requireUUID("accountId", id); err != nil {
		return nil, err
	}
	address = strings.TrimSpace(address)
	if err := validate.Var(address, "required,eth_addr"); err != nil {
		return nil, model.ValidationError("walletAddress must be 0x followed by 40 hex characters")
	}
	return withVotesAffordable(s.store.SetWallet(ctx, id, address))
}

func withVotesAffordable(a *model.Account, err error) (*model.Account, error) {
	if err != nil {
		return nil, err
	}
	a.VotesAffordable = VotesAffordable(a.LikeBalance)
	return a, nil
}

// GetStats returns aggregate platform statistics.
func (s *AccountService) GetStats(ctx context.Context) (*model.StatsResponse, error) {
	return s.store.GetStats(ctx)
}

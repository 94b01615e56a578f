package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/kayceejenz/mtop/internal/model"
)

type ShareRepo struct {
	ledger *Ledger
}

func NewShareRepo(ledger *Ledger) *ShareRepo {
	return &ShareRepo{ledger: ledger}
}

// Reward credits reward likes to the account the first time it shares a meme.
// Later calls for the same pair leave the balance untouched.
func (r *ShareRepo) Reward(ctx context.Context, memeID, accountID string, reward decimal.Decimal) (*model.ShareResult, error) {
	var result model.ShareResult

	err := r.ledger.WithTx(ctx, func(tx pgx.Tx) error {
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM memes WHERE id = $1)`, memeID).Scan(&exists); err != nil {
			return upstream(err)
		}
		if !exists {
			return model.ErrMemeNotFound
		}
		if err := r.ledger.LockAccounts(ctx, tx, accountID); err != nil {
			return err
		}

		inserted, err := r.ledger.InsertShare(ctx, tx, &model.Share{
			ID:        uuid.NewString(),
			MemeID:    memeID,
			AccountID: accountID,
			Reward:    reward,
		})
		if err != nil {
			return err
		}
		result.Rewarded = inserted
		if inserted {
			result.LikeBalance, err = r.ledger.IncrementAccount(ctx, tx, accountID, LikeBalance, reward)
		} else {
			result.LikeBalance, err = r.ledger.Balance(ctx, tx, accountID, LikeBalance)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

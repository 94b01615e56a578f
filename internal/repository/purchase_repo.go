package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/kayceejenz/mtop/internal/model"
)

type PurchaseRepo struct {
	ledger *Ledger
}

func NewPurchaseRepo(ledger *Ledger) *PurchaseRepo {
	return &PurchaseRepo{ledger: ledger}
}

// Confirm credits likeAmount to the account exactly once per txRef. A ref
// already recorded for the same account returns the current balance with
// Duplicate set; a ref recorded for another account is rejected.
func (r *PurchaseRepo) Confirm(ctx context.Context, accountID, txRef string, likeAmount decimal.Decimal) (*model.PurchaseResult, error) {
	var result model.PurchaseResult

	err := r.ledger.WithTx(ctx, func(tx pgx.Tx) error {
		if err := r.ledger.LockAccounts(ctx, tx, accountID); err != nil {
			return err
		}

		inserted, err := r.ledger.InsertPurchase(ctx, tx, &model.Purchase{
			TxRef:      txRef,
			AccountID:  accountID,
			LikeAmount: likeAmount,
		})
		if err != nil {
			return err
		}

		if inserted {
			result.LikeBalance, err = r.ledger.IncrementAccount(ctx, tx, accountID, LikeBalance, likeAmount)
			return err
		}

		var owner string
		if err := tx.QueryRow(ctx, `SELECT account_id::text FROM purchases WHERE tx_ref = $1`, txRef).Scan(&owner); err != nil {
			return upstream(err)
		}
		if owner != accountID {
			return model.ErrPurchaseRefClaimed
		}
		result.Duplicate = true
		result.LikeBalance, err = r.ledger.Balance(ctx, tx, accountID, LikeBalance)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// FindByRef returns a recorded purchase.
func (r *PurchaseRepo) FindByRef(ctx context.Context, txRef string) (*model.Purchase, error) {
	var p model.Purchase
	var amount string
	err := r.ledger.Pool().QueryRow(ctx, `
		SELECT tx_ref, account_id::text, like_amount::text, created_at
		FROM purchases WHERE tx_ref = $1`, txRef,
	).Scan(&p.TxRef, &p.AccountID, &amount, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrPurchaseNotFound
	}
	if err != nil {
		return nil, upstream(err)
	}
	if p.LikeAmount, err = decimal.NewFromString(amount); err != nil {
		return nil, fmt.Errorf("parse like_amount %q: %w", amount, err)
	}
	return &p, nil
}

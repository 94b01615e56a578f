package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/kayceejenz/mtop/internal/model"
)

type VoteRepo struct {
	ledger *Ledger
}

func NewVoteRepo(ledger *Ledger) *VoteRepo {
	return &VoteRepo{ledger: ledger}
}

// CastVote applies one vote atomically: the vote row, the voter's debit, the
// meme counters and the creator's reward commit together or not at all.
//
// Order inside the transaction:
//
//	lock voter and creator rows (id order)
//	insert vote            -> ErrAlreadyVoted if (meme, voter) exists
//	debit voter likes      -> ErrInsufficientBalance, vote insert rolls back
//	meme counters += (1, pool)
//	creator tokens += reward
func (r *VoteRepo) CastVote(ctx context.Context, memeID, voterID string, terms model.VoteTerms) (*model.VoteResult, error) {
	var result model.VoteResult

	err := r.ledger.WithTx(ctx, func(tx pgx.Tx) error {
		var creatorID, promptID string
		err := tx.QueryRow(ctx, `
			SELECT creator_id::text, prompt_id::text FROM memes WHERE id = $1`,
			memeID).Scan(&creatorID, &promptID)
		if errors.Is(err, pgx.ErrNoRows) {
			return model.ErrMemeNotFound
		}
		if err != nil {
			return upstream(err)
		}

		if err := r.ledger.LockAccounts(ctx, tx, voterID, creatorID); err != nil {
			return err
		}

		inserted, err := r.ledger.InsertVote(ctx, tx, &model.Vote{
			ID:               uuid.NewString(),
			MemeID:           memeID,
			VoterID:          voterID,
			Cost:             terms.Cost,
			PoolContribution: terms.PoolContribution,
			CreatorReward:    terms.CreatorReward,
		})
		if err != nil {
			return err
		}
		if !inserted {
			return model.ErrAlreadyVoted
		}

		balance, err := r.ledger.DebitAccount(ctx, tx, voterID, LikeBalance, terms.Cost)
		if err != nil {
			return err
		}

		counters, err := r.ledger.IncrementMeme(ctx, tx, memeID, 1, terms.PoolContribution)
		if err != nil {
			return err
		}

		if _, err := r.ledger.IncrementAccount(ctx, tx, creatorID, TokenBalance, terms.CreatorReward); err != nil {
			return err
		}
		if _, err := r.ledger.IncrementAccount(ctx, tx, creatorID, TotalEarned, terms.CreatorReward); err != nil {
			return err
		}

		if err := r.ledger.NotifyMemeChanged(ctx, tx, promptID, memeID); err != nil {
			return err
		}

		counters.PromptID = promptID
		result = model.VoteResult{LikeBalance: balance, Meme: counters}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// HasVoted reports whether the account has a vote on the meme.
func (r *VoteRepo) HasVoted(ctx context.Context, memeID, voterID string) (bool, error) {
	var voted bool
	err := r.ledger.Pool().QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM votes WHERE meme_id = $1 AND voter_id = $2)`,
		memeID, voterID).Scan(&voted)
	if err != nil {
		return false, upstream(err)
	}
	return voted, nil
}

// CountForMeme returns the number of vote records for a meme.
func (r *VoteRepo) CountForMeme(ctx context.Context, memeID string) (int, error) {
	var n int
	err := r.ledger.Pool().QueryRow(ctx, `SELECT COUNT(*) FROM votes WHERE meme_id = $1`, memeID).Scan(&n)
	if err != nil {
		return 0, upstream(err)
	}
	return n, nil
}

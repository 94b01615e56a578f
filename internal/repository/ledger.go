package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/kayceejenz/mtop/internal/model"
)

// Querier is satisfied by *pgxpool.Pool and pgx.Tx so ledger primitives can
// run inside or outside a transaction.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// AccountField names a numeric balance column on accounts.
type AccountField string

const (
	LikeBalance  AccountField = "like_balance"
	TokenBalance AccountField = "token_balance"
	TotalEarned  AccountField = "total_earned"
)

func (f AccountField) valid() bool {
	switch f {
	case LikeBalance, TokenBalance, TotalEarned:
		return true
	}
	return false
}

// Postgres error codes after which a transaction is safe to re-run from scratch.
const (
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeForeignKeyViolation  = "23503"
	codeCheckViolation       = "23514"

	maxTxAttempts = 3

	memeChangesChannel = "meme_changes"
)

// Ledger is the store for balances and the vote/share/purchase records. Every
// balance or counter mutation is a single atomic UPDATE; nothing is computed
// in application memory and written back.
type Ledger struct {
	pool *pgxpool.Pool
}

func NewLedger(pool *pgxpool.Pool) *Ledger {
	return &Ledger{pool: pool}
}

// Pool exposes the underlying pool for plain reads.
func (l *Ledger) Pool() *pgxpool.Pool {
	return l.pool
}

// WithTx runs fn in a transaction and commits it. The whole function is
// retried when Postgres aborts it for a deadlock or serialization failure.
func (l *Ledger) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	var err error
	for attempt := 1; attempt <= maxTxAttempts; attempt++ {
		err = l.runTx(ctx, fn)
		if err == nil || !isRetryable(err) {
			return err
		}
	}
	return err
}

func (l *Ledger) runTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := l.pool.Begin(ctx)
	if err != nil {
		return upstream(err)
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return upstream(err)
	}
	return nil
}

// LockAccounts takes row locks on the given accounts in id order so that
// transactions touching several accounts cannot deadlock each other.
// Returns ErrAccountNotFound if any id is missing.
func (l *Ledger) LockAccounts(ctx context.Context, q Querier, ids ...string) error {
	uniq := make(map[string]struct{}, len(ids))
	ordered := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := uniq[id]; ok {
			continue
		}
		uniq[id] = struct{}{}
		ordered = append(ordered, id)
	}
	sort.Strings(ordered)

	rows, err := q.Query(ctx, `
		SELECT id::text FROM accounts
		WHERE id = ANY($1::text[]::uuid[])
		ORDER BY id
		FOR UPDATE`, ordered)
	if err != nil {
		return upstream(err)
	}
	defer rows.Close()

	found := 0
	for rows.Next() {
		found++
	}
	if err := rows.Err(); err != nil {
		return upstream(err)
	}
	if found != len(ordered) {
		return model.ErrAccountNotFound
	}
	return nil
}

// IncrementAccount adds delta to a balance field and returns the new value.
func (l *Ledger) IncrementAccount(ctx context.Context, q Querier, accountID string, field AccountField, delta decimal.Decimal) (decimal.Decimal, error) {
	if !field.valid() {
		return decimal.Zero, fmt.Errorf("unknown account field %q", field)
	}
	query := fmt.Sprintf(`
		UPDATE accounts SET %[1]s = %[1]s + $2, last_active = NOW()
		WHERE id = $1
		RETURNING %[1]s::text`, field)

	var raw string
	err := q.QueryRow(ctx, query, accountID, delta.String()).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return decimal.Zero, model.ErrAccountNotFound
	}
	if err != nil {
		return decimal.Zero, upstream(err)
	}
	return decimal.NewFromString(raw)
}

// Balance reads the current value of a balance field.
func (l *Ledger) Balance(ctx context.Context, q Querier, accountID string, field AccountField) (decimal.Decimal, error) {
	if !field.valid() {
		return decimal.Zero, fmt.Errorf("unknown account field %q", field)
	}
	var raw string
	err := q.QueryRow(ctx, fmt.Sprintf(`SELECT %s::text FROM accounts WHERE id = $1`, field), accountID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return decimal.Zero, model.ErrAccountNotFound
	}
	if err != nil {
		return decimal.Zero, upstream(err)
	}
	return decimal.NewFromString(raw)
}

// DebitAccount subtracts amount from a balance field only if the current value
// covers it. The check and the debit are one statement, so concurrent debits
// of the same account serialize on the row and can never overdraw it.
func (l *Ledger) DebitAccount(ctx context.Context, q Querier, accountID string, field AccountField, amount decimal.Decimal) (decimal.Decimal, error) {
	if !field.valid() {
		return decimal.Zero, fmt.Errorf("unknown account field %q", field)
	}
	query := fmt.Sprintf(`
		UPDATE accounts SET %[1]s = %[1]s - $2, last_active = NOW()
		WHERE id = $1 AND %[1]s >= $2
		RETURNING %[1]s::text`, field)

	var raw string
	err := q.QueryRow(ctx, query, accountID, amount.String()).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		var exists bool
		if err := q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM accounts WHERE id = $1)`, accountID).Scan(&exists); err != nil {
			return decimal.Zero, upstream(err)
		}
		if !exists {
			return decimal.Zero, model.ErrAccountNotFound
		}
		return decimal.Zero, model.ErrInsufficientBalance
	}
	if err != nil {
		return decimal.Zero, upstream(err)
	}
	return decimal.NewFromString(raw)
}

// IncrementMeme bumps a meme's like count and reward pool and returns both.
func (l *Ledger) IncrementMeme(ctx context.Context, q Querier, memeID string, likes int, pool decimal.Decimal) (model.MemeCounters, error) {
	counters := model.MemeCounters{ID: memeID}
	var raw string
	err := q.QueryRow(ctx, `
		UPDATE memes
		SET like_count = like_count + $2, reward_pool = reward_pool + $3, updated_at = NOW()
		WHERE id = $1
		RETURNING like_count, reward_pool::text`,
		memeID, likes, pool.String()).Scan(&counters.LikeCount, &raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return counters, model.ErrMemeNotFound
	}
	if err != nil {
		return counters, upstream(err)
	}
	counters.RewardPool, err = decimal.NewFromString(raw)
	return counters, err
}

// InsertVote records a vote unless one already exists for (meme, voter).
// The unique constraint is the only thing that enforces one vote per pair;
// a concurrent duplicate blocks on the index and then reports false.
func (l *Ledger) InsertVote(ctx context.Context, q Querier, v *model.Vote) (bool, error) {
	tag, err := q.Exec(ctx, `
		INSERT INTO votes (id, meme_id, voter_id, cost, pool_contribution, creator_reward)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (meme_id, voter_id) DO NOTHING`,
		v.ID, v.MemeID, v.VoterID, v.Cost.String(), v.PoolContribution.String(), v.CreatorReward.String())
	if err != nil {
		return false, mapConstraint(err)
	}
	return tag.RowsAffected() == 1, nil
}

// InsertShare records a share reward unless one exists for (meme, account).
func (l *Ledger) InsertShare(ctx context.Context, q Querier, s *model.Share) (bool, error) {
	tag, err := q.Exec(ctx, `
		INSERT INTO shares (id, meme_id, account_id, reward)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (meme_id, account_id) DO NOTHING`,
		s.ID, s.MemeID, s.AccountID, s.Reward.String())
	if err != nil {
		return false, mapConstraint(err)
	}
	return tag.RowsAffected() == 1, nil
}

// InsertPurchase records a purchase unless its tx reference was seen before.
func (l *Ledger) InsertPurchase(ctx context.Context, q Querier, p *model.Purchase) (bool, error) {
	tag, err := q.Exec(ctx, `
		INSERT INTO purchases (tx_ref, account_id, like_amount)
		VALUES ($1, $2, $3)
		ON CONFLICT (tx_ref) DO NOTHING`,
		p.TxRef, p.AccountID, p.LikeAmount.String())
	if err != nil {
		return false, mapConstraint(err)
	}
	return tag.RowsAffected() == 1, nil
}

// Now returns the database's wall clock.
func (l *Ledger) Now(ctx context.Context) (time.Time, error) {
	var now time.Time
	if err := l.pool.QueryRow(ctx, `SELECT clock_timestamp()`).Scan(&now); err != nil {
		return time.Time{}, upstream(err)
	}
	return now, nil
}

// NotifyMemeChanged queues a meme_changes notification; Postgres delivers it
// only if the surrounding transaction commits.
func (l *Ledger) NotifyMemeChanged(ctx context.Context, q Querier, promptID, memeID string) error {
	_, err := q.Exec(ctx, `SELECT pg_notify($1, $2)`, memeChangesChannel, promptID+":"+memeID)
	if err != nil {
		return upstream(err)
	}
	return nil
}

func isRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == codeDeadlockDetected || pgErr.Code == codeSerializationFailure
	}
	return false
}

// mapConstraint turns constraint violations into domain errors. A foreign key
// failure means a referenced row is missing; a check failure on like_balance
// means a debit raced past the application check.
func mapConstraint(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeForeignKeyViolation:
			return fmt.Errorf("%w: %s", model.ErrNotFound, pgErr.ConstraintName)
		case codeCheckViolation:
			if pgErr.ConstraintName == "accounts_like_balance_non_negative" {
				return model.ErrInsufficientBalance
			}
			return fmt.Errorf("%w: %s", model.ErrValidation, pgErr.ConstraintName)
		}
	}
	return upstream(err)
}

// upstream marks infrastructure failures so callers can tell them from
// client-caused outcomes. Postgres-level errors that abort a transaction are
// passed through wrapped so isRetryable still sees them.
func upstream(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, model.ErrUpstreamUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %w", model.ErrUpstreamUnavailable, err)
}

package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/kayceejenz/mtop/internal/model"
)

type AccountRepo struct {
	ledger *Ledger
}

func NewAccountRepo(ledger *Ledger) *AccountRepo {
	return &AccountRepo{ledger: ledger}
}

const accountColumns = `
	id::text, fid, username, display_name, pfp_url, wallet_address,
	like_balance::text, token_balance::text, total_earned::text, created_at, last_active`

// scanAccount reads accountColumns followed by any extra columns into extra.
func scanAccount(row pgx.Row, extra ...any) (*model.Account, error) {
	var a model.Account
	var likes, tokens, earned string
	dest := []any{
		&a.ID, &a.FID, &a.Username, &a.DisplayName, &a.PfpURL, &a.WalletAddress,
		&likes, &tokens, &earned, &a.CreatedAt, &a.LastActive,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	var err error
	if a.LikeBalance, err = parseAmount("like_balance", likes); err != nil {
		return nil, err
	}
	if a.TokenBalance, err = parseAmount("token_balance", tokens); err != nil {
		return nil, err
	}
	if a.TotalEarned, err = parseAmount("total_earned", earned); err != nil {
		return nil, err
	}
	return &a, nil
}

func parseAmount(column, raw string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse %s %q: %w", column, raw, err)
	}
	return d, nil
}

// FindByID returns a single account by id.
func (r *AccountRepo) FindByID(ctx context.Context, id string) (*model.Account, error) {
	a, err := scanAccount(r.ledger.Pool().QueryRow(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrAccountNotFound
	}
	if err != nil {
		return nil, upstream(err)
	}
	return a, nil
}

// Upsert provisions an account for a Farcaster identity on first sight, or
// refreshes its profile. Starting likes are only granted on insert. created
// is true when the row was inserted by this call.
func (r *AccountRepo) Upsert(ctx context.Context, ident model.Identity, startingLikes decimal.Decimal) (acct *model.Account, created bool, err error) {
	acct, err = scanAccount(r.ledger.Pool().QueryRow(ctx, `
		INSERT INTO accounts (id, fid, username, display_name, pfp_url, wallet_address, like_balance)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (fid) DO UPDATE
		SET username = EXCLUDED.username,
		    display_name = EXCLUDED.display_name,
		    pfp_url = EXCLUDED.pfp_url,
		    wallet_address = COALESCE(EXCLUDED.wallet_address, accounts.wallet_address),
		    last_active = NOW()
		RETURNING `+accountColumns+`, (xmax = 0) AS inserted`,
		uuid.NewString(), ident.FID, ident.Username, ident.DisplayName, ident.PfpURL,
		ident.WalletAddress, startingLikes.String()), &created)
	if err != nil {
		return nil, false, upstream(err)
	}
	return acct, created, nil
}

// SetWallet links a wallet address to an account.
func (r *AccountRepo) SetWallet(ctx context.Context, id, address string) (*model.Account, error) {
	a, err := scanAccount(r.ledger.Pool().QueryRow(ctx, `
		UPDATE accounts SET wallet_address = $2, last_active = NOW()
		WHERE id = $1
		RETURNING `+accountColumns, id, address))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrAccountNotFound
	}
	if err != nil {
		return nil, upstream(err)
	}
	return a, nil
}

// GetStats returns aggregate statistics and the creator leaderboard.
func (r *AccountRepo) GetStats(ctx context.Context) (*model.StatsResponse, error) {
	pool := r.ledger.Pool()
	query := `
		SELECT
			(SELECT COUNT(*) FROM accounts) AS total_accounts,
			(SELECT COUNT(*) FROM memes) AS total_memes,
			(SELECT COUNT(*) FROM votes) AS total_votes,
			(SELECT COUNT(*) FROM accounts WHERE last_active > NOW() - INTERVAL '24 hours') AS active_24h`

	var stats model.StatsResponse
	err := pool.QueryRow(ctx, query).Scan(
		&stats.TotalAccounts, &stats.TotalMemes, &stats.TotalVotes, &stats.ActiveAccounts24h,
	)
	if err != nil {
		return nil, upstream(err)
	}

	rows, err := pool.Query(ctx, `
		SELECT id::text, username, display_name, pfp_url, total_earned::text
		FROM accounts
		WHERE total_earned > 0
		ORDER BY total_earned DESC, created_at ASC
		LIMIT 10`)
	if err != nil {
		return nil, upstream(err)
	}
	defer rows.Close()

	stats.TopCreators = make([]model.CreatorStanding, 0, 10)
	for rows.Next() {
		var s model.CreatorStanding
		var earned string
		if err := rows.Scan(&s.AccountID, &s.Username, &s.DisplayName, &s.PfpURL, &earned); err != nil {
			return nil, upstream(err)
		}
		if s.TotalEarned, err = parseAmount("total_earned", earned); err != nil {
			return nil, err
		}
		stats.TopCreators = append(stats.TopCreators, s)
	}
	if err := rows.Err(); err != nil {
		return nil, upstream(err)
	}

	return &stats, nil
}

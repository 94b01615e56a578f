package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/kayceejenz/mtop/internal/model"
)

type MemeRepo struct {
	ledger *Ledger
}

func NewMemeRepo(ledger *Ledger) *MemeRepo {
	return &MemeRepo{ledger: ledger}
}

const memeSelect = `
	SELECT m.id::text, m.prompt_id::text, m.creator_id::text, m.image_url, m.caption,
	       m.like_count, m.reward_pool::text, m.created_at, m.updated_at,
	       a.username, a.display_name, a.pfp_url
	FROM memes m
	JOIN accounts a ON a.id = m.creator_id`

func scanMeme(row pgx.Row) (*model.Meme, error) {
	var m model.Meme
	var pool string
	var creator model.CreatorProfile
	err := row.Scan(
		&m.ID, &m.PromptID, &m.CreatorID, &m.ImageURL, &m.Caption,
		&m.LikeCount, &pool, &m.CreatedAt, &m.UpdatedAt,
		&creator.Username, &creator.DisplayName, &creator.PfpURL,
	)
	if err != nil {
		return nil, err
	}
	if m.RewardPool, err = decimal.NewFromString(pool); err != nil {
		return nil, err
	}
	m.Creator = &creator
	return &m, nil
}

func collectMemes(rows pgx.Rows) ([]model.Meme, error) {
	defer rows.Close()
	memes := make([]model.Meme, 0)
	for rows.Next() {
		m, err := scanMeme(rows)
		if err != nil {
			return nil, upstream(err)
		}
		memes = append(memes, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, upstream(err)
	}
	return memes, nil
}

// Create inserts a new meme with zeroed counters.
func (r *MemeRepo) Create(ctx context.Context, m *model.Meme) error {
	err := r.ledger.Pool().QueryRow(ctx, `
		INSERT INTO memes (id, prompt_id, creator_id, image_url, caption)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at`,
		m.ID, m.PromptID, m.CreatorID, m.ImageURL, m.Caption,
	).Scan(&m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return mapConstraint(err)
	}
	m.LikeCount = 0
	m.RewardPool = decimal.Zero
	return nil
}

// FindByID returns a single meme with its creator's profile.
func (r *MemeRepo) FindByID(ctx context.Context, id string) (*model.Meme, error) {
	m, err := scanMeme(r.ledger.Pool().QueryRow(ctx, memeSelect+` WHERE m.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrMemeNotFound
	}
	if err != nil {
		return nil, upstream(err)
	}
	return m, nil
}

// ListForPrompt returns one page of a prompt's memes in the requested order.
func (r *MemeRepo) ListForPrompt(ctx context.Context, q model.ListMemesQuery) ([]model.Meme, error) {
	orderBy := ` ORDER BY m.like_count DESC, m.created_at DESC, m.id`
	if q.Order == model.OrderRecent {
		orderBy = ` ORDER BY m.created_at DESC, m.id`
	}
	rows, err := r.ledger.Pool().Query(ctx,
		memeSelect+` WHERE m.prompt_id = $1`+orderBy+` LIMIT $2 OFFSET $3`,
		q.PromptID, q.Limit, q.Offset)
	if err != nil {
		return nil, upstream(err)
	}
	return collectMemes(rows)
}

// UpdatedSince returns memes of a prompt created or re-counted at or after
// since, oldest change first. The bound is inclusive so a page boundary
// falling between rows with equal timestamps loses nothing.
func (r *MemeRepo) UpdatedSince(ctx context.Context, promptID string, since time.Time, limit int) ([]model.Meme, error) {
	rows, err := r.ledger.Pool().Query(ctx,
		memeSelect+` WHERE m.prompt_id = $1 AND m.updated_at >= $2 ORDER BY m.updated_at ASC, m.id ASC LIMIT $3`,
		promptID, since, limit)
	if err != nil {
		return nil, upstream(err)
	}
	return collectMemes(rows)
}

// Now reads the database clock, the clock that stamps updated_at.
func (r *MemeRepo) Now(ctx context.Context) (time.Time, error) {
	return r.ledger.Now(ctx)
}

// ReconcileCounters recomputes a meme's like count and reward pool from the
// vote ledger and reports whether the stored counters had drifted. The meme
// row is locked first so an in-flight vote either is fully counted or has not
// touched the row yet.
func (r *MemeRepo) ReconcileCounters(ctx context.Context, memeID string) (model.MemeCounters, bool, error) {
	counters := model.MemeCounters{ID: memeID}
	var drifted bool

	err := r.ledger.WithTx(ctx, func(tx pgx.Tx) error {
		var storedCount int
		var storedPool string
		err := tx.QueryRow(ctx,
			`SELECT like_count, reward_pool::text FROM memes WHERE id = $1 FOR UPDATE`, memeID,
		).Scan(&storedCount, &storedPool)
		if errors.Is(err, pgx.ErrNoRows) {
			return model.ErrMemeNotFound
		}
		if err != nil {
			return upstream(err)
		}

		var count int
		var pool string
		err = tx.QueryRow(ctx, `
			SELECT COUNT(*)::int, COALESCE(SUM(pool_contribution), 0)::text
			FROM votes WHERE meme_id = $1`, memeID,
		).Scan(&count, &pool)
		if err != nil {
			return upstream(err)
		}

		stored, err := decimal.NewFromString(storedPool)
		if err != nil {
			return err
		}
		derived, err := decimal.NewFromString(pool)
		if err != nil {
			return err
		}
		counters.LikeCount = count
		counters.RewardPool = derived

		if storedCount == count && stored.Equal(derived) {
			return nil
		}
		drifted = true
		_, err = tx.Exec(ctx, `
			UPDATE memes SET like_count = $2, reward_pool = $3, updated_at = NOW()
			WHERE id = $1`, memeID, count, derived.String())
		if err != nil {
			return upstream(err)
		}
		return nil
	})
	if err != nil {
		return counters, false, err
	}
	return counters, drifted, nil
}

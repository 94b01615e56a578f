package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/kayceejenz/mtop/internal/model"
)

type PromptRepo struct {
	ledger *Ledger
}

func NewPromptRepo(ledger *Ledger) *PromptRepo {
	return &PromptRepo{ledger: ledger}
}

const promptColumns = `id::text, text, to_char(day_key, 'YYYY-MM-DD'), active_until, is_active, created_at`

func scanPrompt(row pgx.Row) (*model.Prompt, error) {
	var p model.Prompt
	if err := row.Scan(&p.ID, &p.Text, &p.DayKey, &p.ActiveUntil, &p.IsActive, &p.CreatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

// FindByID returns a single prompt by id.
func (r *PromptRepo) FindByID(ctx context.Context, id string) (*model.Prompt, error) {
	p, err := scanPrompt(r.ledger.Pool().QueryRow(ctx,
		`SELECT `+promptColumns+` FROM prompts WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrPromptNotFound
	}
	if err != nil {
		return nil, upstream(err)
	}
	return p, nil
}

// FindActive returns the active prompt for a day.
func (r *PromptRepo) FindActive(ctx context.Context, dayKey string) (*model.Prompt, error) {
	p, err := scanPrompt(r.ledger.Pool().QueryRow(ctx,
		`SELECT `+promptColumns+` FROM prompts WHERE day_key = $1::date AND is_active`, dayKey))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrPromptNotFound
	}
	if err != nil {
		return nil, upstream(err)
	}
	return p, nil
}

// GetOrCreate returns the active prompt for dayKey, inserting one with the
// given text if none exists. Concurrent callers race on the partial unique
// index; losers skip the insert and read the winner's row.
func (r *PromptRepo) GetOrCreate(ctx context.Context, dayKey string, activeUntil time.Time, text string) (*model.Prompt, error) {
	query := `
		INSERT INTO prompts (id, text, day_key, active_until, is_active)
		VALUES ($1, $2, $3::date, $4, TRUE)
		ON CONFLICT (day_key) WHERE is_active DO NOTHING`

	if _, err := r.ledger.Pool().Exec(ctx, query, uuid.NewString(), text, dayKey, activeUntil); err != nil {
		return nil, upstream(err)
	}
	return r.FindActive(ctx, dayKey)
}

// DeactivateExpired closes every active prompt whose window ended at or
// before now and returns how many were closed.
func (r *PromptRepo) DeactivateExpired(ctx context.Context, now time.Time) (int, error) {
	tag, err := r.ledger.Pool().Exec(ctx, `
		UPDATE prompts SET is_active = FALSE
		WHERE is_active AND active_until <= $1`, now)
	if err != nil {
		return 0, upstream(err)
	}
	return int(tag.RowsAffected()), nil
}

package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/kayceejenz/mtop/internal/model"
)

type CommentRepo struct {
	ledger *Ledger
}

func NewCommentRepo(ledger *Ledger) *CommentRepo {
	return &CommentRepo{ledger: ledger}
}

const commentSelect = `
	SELECT c.id::text, c.meme_id::text, c.account_id::text, c.text, c.created_at,
	       a.username, a.display_name, a.pfp_url
	FROM comments c
	JOIN accounts a ON a.id = c.account_id`

func collectComments(rows pgx.Rows) ([]model.Comment, error) {
	defer rows.Close()
	comments := make([]model.Comment, 0)
	for rows.Next() {
		var c model.Comment
		var author model.CreatorProfile
		err := rows.Scan(
			&c.ID, &c.MemeID, &c.AccountID, &c.Text, &c.CreatedAt,
			&author.Username, &author.DisplayName, &author.PfpURL,
		)
		if err != nil {
			return nil, upstream(err)
		}
		c.Author = &author
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, upstream(err)
	}
	return comments, nil
}

// Create inserts a comment. A missing meme or account surfaces as ErrNotFound.
func (r *CommentRepo) Create(ctx context.Context, c *model.Comment) error {
	err := r.ledger.Pool().QueryRow(ctx, `
		INSERT INTO comments (id, meme_id, account_id, text)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`,
		c.ID, c.MemeID, c.AccountID, c.Text,
	).Scan(&c.CreatedAt)
	if err != nil {
		return mapConstraint(err)
	}
	return nil
}

// ListForMeme returns a meme's comments oldest first.
func (r *CommentRepo) ListForMeme(ctx context.Context, memeID string) ([]model.Comment, error) {
	rows, err := r.ledger.Pool().Query(ctx,
		commentSelect+` WHERE c.meme_id = $1 ORDER BY c.created_at ASC, c.id`, memeID)
	if err != nil {
		return nil, upstream(err)
	}
	return collectComments(rows)
}

// CreatedSince returns comments on a prompt's memes added at or after since,
// oldest first.
func (r *CommentRepo) CreatedSince(ctx context.Context, promptID string, since time.Time, limit int) ([]model.Comment, error) {
	rows, err := r.ledger.Pool().Query(ctx, commentSelect+`
		JOIN memes m ON m.id = c.meme_id
		WHERE m.prompt_id = $1 AND c.created_at >= $2
		ORDER BY c.created_at ASC, c.id ASC
		LIMIT $3`, promptID, since, limit)
	if err != nil {
		return nil, upstream(err)
	}
	return collectComments(rows)
}

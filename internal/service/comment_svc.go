package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/kayceejenz/mtop/internal/model"
)

const MaxCommentRunes = 500

type CommentService struct {
	comments CommentStore
	memes    MemeStore
	accounts AccountStore
}

func NewCommentService(comments CommentStore, memes MemeStore, accounts AccountStore) *CommentService {
	return &CommentService{comments: comments, memes: memes, accounts: accounts}
}

// Add attaches a comment to a meme.
func (s *CommentService) Add(ctx context.Context, memeID, accountID, text string) (*model.Comment, error) {
	if err := requireUUID("memeId", memeID); err != nil {
		return nil, err
	}
	if err := requireUUID("accountId", accountID); err != nil {
		return nil, err
	}
	text = strings.TrimSpace(text)
	if n := utf8.RuneCountInString(text); n == 0 || n > MaxCommentRunes {
		return nil, model.ValidationError("text must be 1-%d characters", MaxCommentRunes)
	}

	if _, err := s.memes.FindByID(ctx, memeID); err != nil {
		return nil, err
	}
	author, err := s.accounts.FindByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	c := &model.Comment{
		ID:        uuid.NewString(),
		MemeID:    memeID,
		AccountID: accountID,
		Text:      text,
	}
	if err := s.comments.Create(ctx, c); err != nil {
		return nil, err
	}
	c.Author = &model.CreatorProfile{
		Username:    author.Username,
		DisplayName: author.DisplayName,
		PfpURL:      author.PfpURL,
	}
	return c, nil
}

// List returns a meme's comments oldest first.
func (s *CommentService) List(ctx context.Context, memeID string) ([]model.Comment, error) {
	if err := requireUUID("memeId", memeID); err != nil {
		return nil, err
	}
	if _, err := s.memes.FindByID(ctx, memeID); err != nil {
		return nil, err
	}
	return s.comments.ListForMeme(ctx, memeID)
}

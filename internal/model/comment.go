package model

import "time"

// Comment is free-form text attached to a meme.
type Comment struct {
	ID        string          `json:"id"`
	MemeID    string          `json:"memeId"`
	AccountID string          `json:"accountId"`
	Author    *CreatorProfile `json:"author,omitempty"`
	Text      string          `json:"text"`
	CreatedAt time.Time       `json:"createdAt"`
}

// CommentRequest is the API request body for adding a comment.
type CommentRequest struct {
	Text string `json:"text"`
}

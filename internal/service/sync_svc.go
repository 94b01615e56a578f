package service

import (
	"context"
	"time"

	"github.com/kayceejenz/mtop/internal/model"
)

const (
	// MaxDeltaItems bounds each list in a delta response.
	MaxDeltaItems = 500
	// SyncOverlap is subtracted from the database clock when the delta is
	// complete. Rows are stamped with their transaction's start time, so a
	// write that began before the poll can commit after it with an earlier
	// timestamp; the overlap makes the next poll pick it up.
	SyncOverlap = 5 * time.Second
)

type SyncService struct {
	memes    MemeStore
	comments CommentStore
	limit    int
}

func NewSyncService(memes MemeStore, comments CommentStore) *SyncService {
	return &SyncService{memes: memes, comments: comments, limit: MaxDeltaItems}
}

// Delta returns the memes of a prompt whose counters or content changed since
// the given time, and the comments added to them since then. Clients poll
// with the returned SyncTimestamp and dedupe by id.
//
// When either list fills its page the cursor is the timestamp of the page's
// last row and HasMore is set. Otherwise the cursor is the database clock
// minus SyncOverlap, which may repeat rows but never skips a late commit.
func (s *SyncService) Delta(ctx context.Context, promptID string, since time.Time) (*model.SyncDeltaResponse, error) {
	if err := requireUUID("promptId", promptID); err != nil {
		return nil, err
	}

	// Read the clock before the lists so no row stamped after it is skipped.
	dbNow, err := s.memes.Now(ctx)
	if err != nil {
		return nil, err
	}

	memes, err := s.memes.UpdatedSince(ctx, promptID, since, s.limit)
	if err != nil {
		return nil, err
	}
	comments, err := s.comments.CreatedSince(ctx, promptID, since, s.limit)
	if err != nil {
		return nil, err
	}

	if memes == nil {
		memes = []model.Meme{}
	}
	if comments == nil {
		comments = []model.Comment{}
	}

	resp := &model.SyncDeltaResponse{Memes: memes, Comments: comments}

	var cursor time.Time
	if len(memes) >= s.limit {
		cursor = memes[len(memes)-1].UpdatedAt
		resp.HasMore = true
	}
	if len(comments) >= s.limit {
		last := comments[len(comments)-1].CreatedAt
		if !resp.HasMore || last.Before(cursor) {
			cursor = last
		}
		resp.HasMore = true
	}
	if !resp.HasMore {
		cursor = dbNow.Add(-SyncOverlap)
	} else if !cursor.After(since) {
		// A full page of rows sharing the cursor's timestamp; step past it
		// rather than serve the same page forever.
		cursor = since.Add(time.Microsecond)
	}

	resp.SyncTimestamp = cursor.UTC().Format(time.RFC3339Nano)
	return resp, nil
}

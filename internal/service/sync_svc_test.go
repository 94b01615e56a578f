package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kayceejenz/mtop/internal/model"
)

func TestSyncDelta(t *testing.T) {
	store := newFakeStore()
	svc := NewSyncService(fakeMemes{store}, fakeComments{store})
	comments := NewCommentService(fakeComments{store}, fakeMemes{store}, store)
	author := store.addAccount(0)
	prompt := store.addPrompt(true)

	since := time.Now().Add(-time.Second)
	old := store.addMeme(prompt.ID, author.ID)
	old.UpdatedAt = since.Add(-time.Minute)
	fresh := store.addMeme(prompt.ID, author.ID)
	_, err := comments.Add(context.Background(), fresh.ID, author.ID, "nice")
	require.NoError(t, err)

	delta, err := svc.Delta(context.Background(), prompt.ID, since)
	require.NoError(t, err)
	require.Len(t, delta.Memes, 1)
	assert.Equal(t, fresh.ID, delta.Memes[0].ID)
	require.Len(t, delta.Comments, 1)
	assert.NotEmpty(t, delta.SyncTimestamp)

	empty, err := svc.Delta(context.Background(), store.addPrompt(true).ID, since)
	require.NoError(t, err)
	assert.NotNil(t, empty.Memes)
	assert.NotNil(t, empty.Comments)
}

// pollAll follows the delta cursor until the backlog is drained and returns
// every meme and comment id seen.
func pollAll(t *testing.T, svc *SyncService, promptID string, since time.Time) (map[string]bool, map[string]bool, int) {
	t.Helper()
	memes, comments := map[string]bool{}, map[string]bool{}
	polls := 0
	for {
		polls++
		require.Less(t, polls, 20, "cursor is not advancing")
		delta, err := svc.Delta(context.Background(), promptID, since)
		require.NoError(t, err)
		for _, m := range delta.Memes {
			memes[m.ID] = true
		}
		for _, c := range delta.Comments {
			comments[c.ID] = true
		}
		next, err := time.Parse(time.RFC3339Nano, delta.SyncTimestamp)
		require.NoError(t, err)
		since = next
		if !delta.HasMore {
			return memes, comments, polls
		}
	}
}

func TestSyncDeltaPagesThroughLargeBacklog(t *testing.T) {
	store := newFakeStore()
	svc := NewSyncService(fakeMemes{store}, fakeComments{store})
	author := store.addAccount(0)
	prompt := store.addPrompt(true)

	base := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	store.clock = func() time.Time { return base.Add(time.Hour) }

	total := MaxDeltaItems + 100
	for i := 0; i < total; i++ {
		m := store.addMeme(prompt.ID, author.ID)
		m.UpdatedAt = base.Add(time.Duration(i) * time.Millisecond)
		// Rows straddling the first page boundary share one timestamp.
		if i >= MaxDeltaItems-3 && i <= MaxDeltaItems+3 {
			m.UpdatedAt = base.Add(time.Duration(MaxDeltaItems) * time.Millisecond)
		}
	}

	first, err := svc.Delta(context.Background(), prompt.ID, base.Add(-time.Minute))
	require.NoError(t, err)
	assert.Len(t, first.Memes, MaxDeltaItems)
	assert.True(t, first.HasMore)

	seen, _, polls := pollAll(t, svc, prompt.ID, base.Add(-time.Minute))
	assert.Len(t, seen, total, "every changed meme is delivered")
	assert.GreaterOrEqual(t, polls, 2)
}

func TestSyncDeltaCommentPageBoundsCursor(t *testing.T) {
	store := newFakeStore()
	svc := NewSyncService(fakeMemes{store}, fakeComments{store})
	svc.limit = 3
	author := store.addAccount(0)
	prompt := store.addPrompt(true)

	base := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	store.clock = func() time.Time { return base.Add(time.Hour) }
	meme := store.addMeme(prompt.ID, author.ID)
	meme.UpdatedAt = base.Add(30 * time.Minute)

	store.mu.Lock()
	for i := 0; i < 7; i++ {
		store.comments = append(store.comments, model.Comment{
			ID:        uuid.NewString(),
			MemeID:    meme.ID,
			AccountID: author.ID,
			Text:      "hi",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
	}
	store.mu.Unlock()

	first, err := svc.Delta(context.Background(), prompt.ID, base.Add(-time.Minute))
	require.NoError(t, err)
	require.True(t, first.HasMore)
	assert.Equal(t, base.Add(2*time.Minute).Format(time.RFC3339Nano), first.SyncTimestamp,
		"cursor stops at the last comment returned, not at the clock")

	memes, comments, _ := pollAll(t, svc, prompt.ID, base.Add(-time.Minute))
	assert.Len(t, memes, 1)
	assert.Len(t, comments, 7)
}

func TestSyncDeltaPicksUpLateCommit(t *testing.T) {
	store := newFakeStore()
	svc := NewSyncService(fakeMemes{store}, fakeComments{store})
	author := store.addAccount(0)
	prompt := store.addPrompt(true)

	pollAt := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	store.clock = func() time.Time { return pollAt }

	delta, err := svc.Delta(context.Background(), prompt.ID, pollAt.Add(-time.Minute))
	require.NoError(t, err)
	assert.Empty(t, delta.Memes)
	assert.False(t, delta.HasMore)
	cursor, err := time.Parse(time.RFC3339Nano, delta.SyncTimestamp)
	require.NoError(t, err)
	assert.True(t, cursor.Equal(pollAt.Add(-SyncOverlap)), "cursor %s", cursor)

	// A vote whose transaction started before the poll commits after it,
	// stamping the meme with a time earlier than the poll.
	late := store.addMeme(prompt.ID, author.ID)
	late.UpdatedAt = pollAt.Add(-2 * time.Second)
	store.clock = func() time.Time { return pollAt.Add(10 * time.Second) }

	delta, err = svc.Delta(context.Background(), prompt.ID, cursor)
	require.NoError(t, err)
	require.Len(t, delta.Memes, 1)
	assert.Equal(t, late.ID, delta.Memes[0].ID)
}

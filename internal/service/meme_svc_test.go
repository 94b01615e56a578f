package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kayceejenz/mtop/internal/model"
)

// pngBytes is enough of a PNG header for content sniffing.
var pngBytes = append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 64)...)

func newMemeFixture(t *testing.T) (*MemeService, *fakeStore, *fakeObjects) {
	t.Helper()
	store := newFakeStore()
	objects := &fakeObjects{}
	svc := NewMemeService(fakeMemes{store}, fakePrompts{store}, store, objects, nil, 1024)
	return svc, store, objects
}

func TestSubmitMeme(t *testing.T) {
	svc, store, objects := newMemeFixture(t)
	creator := store.addAccount(5)
	prompt := store.addPrompt(true)
	svc.now = func() time.Time { return time.UnixMilli(1700000000000) }

	m, err := svc.Submit(context.Background(), model.SubmitMemeInput{
		PromptID:  prompt.ID,
		CreatorID: creator.ID,
		Caption:   "  gm base  ",
		Filename:  "funny.PNG",
		Image:     pngBytes,
	})
	require.NoError(t, err)
	assert.Equal(t, "gm base", m.Caption)
	assert.Equal(t, 0, m.LikeCount)
	assert.True(t, m.RewardPool.IsZero())
	require.NotNil(t, m.Creator)
	assert.Equal(t, creator.Username, m.Creator.Username)

	require.Len(t, objects.keys, 1)
	key := objects.keys[0]
	assert.True(t, strings.HasPrefix(key, "memes/"+creator.ID+"/1700000000000_"), key)
	assert.True(t, strings.HasSuffix(key, ".png"), key)
	assert.Equal(t, "https://cdn.test/"+key, m.ImageURL)
}

func TestSubmitMemeRejections(t *testing.T) {
	svc, store, objects := newMemeFixture(t)
	creator := store.addAccount(5)
	open := store.addPrompt(true)
	closed := store.addPrompt(false)

	valid := model.SubmitMemeInput{PromptID: open.ID, CreatorID: creator.ID, Caption: "ok", Image: pngBytes}

	tests := []struct {
		name   string
		mutate func(in *model.SubmitMemeInput)
		want   error
	}{
		{"empty caption", func(in *model.SubmitMemeInput) { in.Caption = "   " }, model.ErrValidation},
		{"caption too long", func(in *model.SubmitMemeInput) { in.Caption = strings.Repeat("é", 201) }, model.ErrValidation},
		{"no image", func(in *model.SubmitMemeInput) { in.Image = nil }, model.ErrValidation},
		{"oversized image", func(in *model.SubmitMemeInput) { in.Image = append(pngBytes, make([]byte, 2048)...) }, model.ErrValidation},
		{"not an image", func(in *model.SubmitMemeInput) { in.Image = []byte("plain text body") }, model.ErrValidation},
		{"bad prompt id", func(in *model.SubmitMemeInput) { in.PromptID = "x" }, model.ErrValidation},
		{"unknown prompt", func(in *model.SubmitMemeInput) { in.PromptID = "00000000-0000-0000-0000-000000000000" }, model.ErrPromptNotFound},
		{"closed prompt", func(in *model.SubmitMemeInput) { in.PromptID = closed.ID }, model.ErrPromptClosed},
		{"unknown creator", func(in *model.SubmitMemeInput) { in.CreatorID = "00000000-0000-0000-0000-000000000000" }, model.ErrAccountNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.mutate(&in)
			_, err := svc.Submit(context.Background(), in)
			assert.ErrorIs(t, err, tt.want)
		})
	}
	assert.Empty(t, objects.keys, "rejected submissions must not store images")
	assert.Len(t, store.memes, 0)
}

func TestSubmitMemeCaptionAtLimit(t *testing.T) {
	svc, store, _ := newMemeFixture(t)
	creator := store.addAccount(5)
	prompt := store.addPrompt(true)

	_, err := svc.Submit(context.Background(), model.SubmitMemeInput{
		PromptID: prompt.ID, CreatorID: creator.ID, Caption: strings.Repeat("é", 200), Image: pngBytes,
	})
	assert.NoError(t, err)
}

func TestSubmitMemeStorageFailure(t *testing.T) {
	svc, store, objects := newMemeFixture(t)
	objects.err = errors.New("ftp: connection refused")
	creator := store.addAccount(5)
	prompt := store.addPrompt(true)

	_, err := svc.Submit(context.Background(), model.SubmitMemeInput{
		PromptID: prompt.ID, CreatorID: creator.ID, Caption: "c", Image: pngBytes,
	})
	assert.ErrorIs(t, err, model.ErrUpstreamUnavailable)
	assert.Len(t, store.memes, 0)
}

func TestListMemes(t *testing.T) {
	svc, store, _ := newMemeFixture(t)
	creator := store.addAccount(5)
	prompt := store.addPrompt(true)

	low := store.addMeme(prompt.ID, creator.ID)
	high := store.addMeme(prompt.ID, creator.ID)
	high.LikeCount = 4
	newest := store.addMeme(prompt.ID, creator.ID)
	newest.CreatedAt = time.Now().Add(time.Minute)
	store.addMeme(store.addPrompt(true).ID, creator.ID)

	top, err := svc.List(context.Background(), model.ListMemesQuery{PromptID: prompt.ID})
	require.NoError(t, err)
	require.Len(t, top, 3)
	assert.Equal(t, high.ID, top[0].ID)
	assert.Equal(t, newest.ID, top[1].ID)
	assert.Equal(t, low.ID, top[2].ID)

	recent, err := svc.List(context.Background(), model.ListMemesQuery{PromptID: prompt.ID, Order: model.OrderRecent, Limit: 1})
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, newest.ID, recent[0].ID)

	_, err = svc.List(context.Background(), model.ListMemesQuery{PromptID: prompt.ID, Order: "hot"})
	assert.ErrorIs(t, err, model.ErrValidation)

	_, err = svc.List(context.Background(), model.ListMemesQuery{PromptID: prompt.ID, Offset: -1})
	assert.ErrorIs(t, err, model.ErrValidation)

	capped, err := svc.List(context.Background(), model.ListMemesQuery{PromptID: prompt.ID, Limit: 1000})
	require.NoError(t, err)
	assert.Len(t, capped, 3)
}

func TestObjectKey(t *testing.T) {
	at := time.UnixMilli(1700000000123)
	key := ObjectKey("acct", at, []byte("data"), ".jpg")
	assert.Regexp(t, `^memes/acct/1700000000123_[0-9a-f]{16}\.jpg$`, key)
	assert.NotEqual(t, key, ObjectKey("acct", at, []byte("other"), ".jpg"))
}

func TestImageExt(t *testing.T) {
	tests := []struct {
		contentType string
		filename    string
		want        string
	}{
		{"image/png", "x.gif", ".png"},
		{"image/jpeg", "", ".jpg"},
		{"image/x-icon", "fav.ICO", ".ico"},
		{"image/x-icon", "", ""},
	}
	for _, tt := range tests {
		if got := imageExt(tt.contentType, tt.filename); got != tt.want {
			t.Errorf("imageExt(%q, %q) = %q, want %q", tt.contentType, tt.filename, got, tt.want)
		}
	}
}

package service

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/kayceejenz/mtop/internal/model"
	"github.com/kayceejenz/mtop/pkg/hash"
)

const (
	DefaultMaxImageBytes = 5 << 20
	DefaultFeedLimit     = 50
	MaxFeedLimit         = 100
	MaxCaptionRunes      = 200
)

var imageExtensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
	"image/bmp":  ".bmp",
}

type MemeService struct {
	memes         MemeStore
	prompts       PromptStore
	accounts      AccountStore
	objects       ObjectStore
	cache         *CacheService
	maxImageBytes int
	now           func() time.Time
}

func NewMemeService(memes MemeStore, prompts PromptStore, accounts AccountStore, objects ObjectStore, cache *CacheService, maxImageBytes int) *MemeService {
	if maxImageBytes <= 0 {
		maxImageBytes = DefaultMaxImageBytes
	}
	return &MemeService{
		memes:         memes,
		prompts:       prompts,
		accounts:      accounts,
		objects:       objects,
		cache:         cache,
		maxImageBytes: maxImageBytes,
		now:           time.Now,
	}
}

// ObjectKey builds the storage key for an uploaded image:
// memes/{creatorID}/{unixMillis}_{contentHash}{ext}.
func ObjectKey(creatorID string, at time.Time, data []byte, ext string) string {
	return fmt.Sprintf("memes/%s/%d_%s%s", creatorID, at.UnixMilli(), hash.ContentPrefix(data, 16), ext)
}

// imageExt picks the file extension from the sniffed content type, falling
// back to the client's filename when the type has no known mapping.
func imageExt(contentType, filename string) string {
	if ext, ok := imageExtensions[contentType]; ok {
		return ext
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if len(ext) > 8 {
		return ""
	}
	return ext
}

// Submit stores the image and then records the meme against an open prompt.
// An image stored for a submission whose insert then fails is left behind.
func (s *MemeService) Submit(ctx context.Context, in model.SubmitMemeInput) (*model.Meme, error) {
	in.Caption = strings.TrimSpace(in.Caption)
	if len(in.Image) == 0 {
		return nil, model.ValidationError("image is required")
	}
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	if len(in.Image) > s.maxImageBytes {
		return nil, model.ValidationError("image exceeds %d bytes", s.maxImageBytes)
	}
	contentType := http.DetectContentType(in.Image)
	if !strings.HasPrefix(contentType, "image/") {
		return nil, model.ValidationError("image has unsupported content type %s", contentType)
	}

	now := s.now()
	prompt, err := s.prompts.FindByID(ctx, in.PromptID)
	if err != nil {
		return nil, err
	}
	if !prompt.OpenAt(now) {
		return nil, model.ErrPromptClosed
	}

	creator, err := s.accounts.FindByID(ctx, in.CreatorID)
	if err != nil {
		return nil, err
	}

	key := ObjectKey(in.CreatorID, now, in.Image, imageExt(contentType, in.Filename))
	url, err := s.objects.Put(ctx, key, in.Image)
	if err != nil {
		return nil, fmt.Errorf("%w: store image: %w", model.ErrUpstreamUnavailable, err)
	}

	m := &model.Meme{
		ID:        uuid.NewString(),
		PromptID:  prompt.ID,
		CreatorID: creator.ID,
		ImageURL:  url,
		Caption:   in.Caption,
	}
	if err := s.memes.Create(ctx, m); err != nil {
		log.Warn().Err(err).Str("component", "meme").Str("object_key", key).Msg("meme insert failed after image upload")
		return nil, err
	}
	m.Creator = &model.CreatorProfile{
		Username:    creator.Username,
		DisplayName: creator.DisplayName,
		PfpURL:      creator.PfpURL,
	}

	if err := s.cache.InvalidateFeed(ctx, prompt.ID); err != nil {
		log.Warn().Err(err).Str("component", "meme").Msg("cache invalidate failed")
	}
	return m, nil
}

// List returns one page of a prompt's feed. The first page of each ordering
// is served from cache when available.
func (s *MemeService) List(ctx context.Context, q model.ListMemesQuery) ([]model.Meme, error) {
	if q.Order == "" {
		q.Order = model.OrderTop
	}
	if q.Limit == 0 {
		q.Limit = DefaultFeedLimit
	}
	if q.Limit > MaxFeedLimit {
		q.Limit = MaxFeedLimit
	}
	if err := validateStruct(q); err != nil {
		return nil, err
	}

	cacheable := q.Offset == 0
	if cacheable {
		var page []model.Meme
		hit, err := s.cache.GetFeed(ctx, q.PromptID, q.Order, q.Limit, &page)
		if err != nil {
			log.Warn().Err(err).Str("component", "meme").Msg("cache get failed")
		}
		if hit {
			return page, nil
		}
	}

	memes, err := s.memes.ListForPrompt(ctx, q)
	if err != nil {
		return nil, err
	}

	if cacheable {
		if err := s.cache.SetFeed(ctx, q.PromptID, q.Order, q.Limit, memes); err != nil {
			log.Warn().Err(err).Str("component", "meme").Msg("cache set failed")
		}
	}
	return memes, nil
}

// Get returns a single meme.
func (s *MemeService) Get(ctx context.Context, id string) (*model.Meme, error) {
	if err := requireUUID("memeId", id); err != nil {
		return nil, err
	}
	return s.memes.FindByID(ctx, id)
}

package service

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/kayceejenz/mtop/internal/model"
)

// PromptLibrary is the set of daily themes a new prompt is drawn from.
var PromptLibrary = []string{
	"Moment when $BASE finally drops.",
	"Trying to get into TBA (BaseApp)",
	"When someone says Ethereum is the only chain that matters but you are a Base Maxi.",
	"Explaining APY to someone who uses traditional banks.",
	"When the Base Dev actually listens to community",
	"When a normie asks you to onboard them.",
	"When the gas fees are low but your heart rate is high",
	"Me flexing my base experience like it's a skill",
	"When you realise compounding base rewards is actually working",
	"Trying to explain base to your non-crypto friend like..",
}

type PromptService struct {
	store PromptStore
	cache *CacheService
	now   func() time.Time
	pick  func() string
}

func NewPromptService(store PromptStore, cache *CacheService) *PromptService {
	return &PromptService{
		store: store,
		cache: cache,
		now:   time.Now,
		pick:  randomPrompt,
	}
}

func randomPrompt() string {
	return PromptLibrary[rand.IntN(len(PromptLibrary))]
}

// DayWindow returns the UTC day key for t and the instant that day ends.
func DayWindow(t time.Time) (string, time.Time) {
	u := t.UTC()
	start := time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
	return start.Format(model.DayKeyLayout), start.AddDate(0, 0, 1)
}

// Today returns the active prompt for the current UTC day, creating it on
// first request.
func (s *PromptService) Today(ctx context.Context) (*model.Prompt, error) {
	now := s.now()
	dayKey, until := DayWindow(now)

	var cached model.Prompt
	hit, err := s.cache.GetPrompt(ctx, dayKey, &cached)
	if err != nil {
		log.Warn().Err(err).Str("component", "prompt").Msg("cache get failed")
	}
	if hit && cached.OpenAt(now) {
		return &cached, nil
	}

	p, err := s.store.GetOrCreate(ctx, dayKey, until, s.pick())
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetPrompt(ctx, dayKey, p, min(PromptCacheTTL, until.Sub(now))); err != nil {
		log.Warn().Err(err).Str("component", "prompt").Msg("cache set failed")
	}
	return p, nil
}

// Get returns a prompt by id.
func (s *PromptService) Get(ctx context.Context, id string) (*model.Prompt, error) {
	if err := requireUUID("promptId", id); err != nil {
		return nil, err
	}
	return s.store.FindByID(ctx, id)
}

// DeactivateExpired closes prompts whose window has ended.
func (s *PromptService) DeactivateExpired(ctx context.Context) (int, error) {
	return s.store.DeactivateExpired(ctx, s.now())
}

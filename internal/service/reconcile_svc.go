package service

import (
	"context"
	"time"

	"github.com/kayceejenz/mtop/internal/model"
)

// ReconcileService re-derives meme counters from the vote ledger.
type ReconcileService struct {
	memes MemeStore

	// Observe, when set, receives the duration and drift of every reconcile.
	Observe func(d time.Duration, drifted bool)
}

func NewReconcileService(memes MemeStore) *ReconcileService {
	return &ReconcileService{memes: memes}
}

// ReconcileMeme recomputes like_count and reward_pool for a meme from its
// votes and reports whether the stored values had drifted.
func (s *ReconcileService) ReconcileMeme(ctx context.Context, memeID string) (model.MemeCounters, bool, error) {
	start := time.Now()
	counters, drifted, err := s.memes.ReconcileCounters(ctx, memeID)
	if err != nil {
		return counters, false, err
	}
	if s.Observe != nil {
		s.Observe(time.Since(start), drifted)
	}
	return counters, drifted, nil
}

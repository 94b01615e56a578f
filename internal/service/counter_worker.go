package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/kayceejenz/mtop/internal/model"
)

const memeChangesChannel = "meme_changes"

// CounterWorker listens for NOTIFY on meme_changes and batches counter
// reconciliation and feed cache invalidation. Fifty votes on one meme inside
// a window cost one reconcile.
type CounterWorker struct {
	pool      *pgxpool.Pool
	reconcile *ReconcileService
	cache     *CacheService
	window    time.Duration
	logger    zerolog.Logger

	mu      sync.Mutex
	pending map[string]string // memeID -> promptID
}

// NewCounterWorker creates a worker that flushes every window.
func NewCounterWorker(pool *pgxpool.Pool, reconcile *ReconcileService, cache *CacheService, window time.Duration) *CounterWorker {
	if window <= 0 {
		window = 5 * time.Second
	}
	return &CounterWorker{
		pool:      pool,
		reconcile: reconcile,
		cache:     cache,
		window:    window,
		logger:    log.With().Str("component", "counter-worker").Logger(),
		pending:   make(map[string]string),
	}
}

// Start listens until ctx is cancelled, reconnecting after errors.
func (w *CounterWorker) Start(ctx context.Context) {
	w.logger.Info().Dur("window", w.window).Msg("starting")

	for {
		if err := w.listenLoop(ctx); err != nil {
			if ctx.Err() != nil {
				w.logger.Info().Msg("stopping (context cancelled)")
				return
			}
			w.logger.Error().Err(err).Msg("listen error, reconnecting in 5s")
			select {
			case <-time.After(5 * time.Second):
			case <-ctx.Done():
				w.logger.Info().Msg("stopping (context cancelled)")
				return
			}
		}
	}
}

func (w *CounterWorker) listenLoop(ctx context.Context) error {
	conn, err := w.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "LISTEN "+memeChangesChannel); err != nil {
		return err
	}
	w.logger.Info().Str("channel", memeChangesChannel).Msg("listening")

	flushCtx, flushCancel := context.WithCancel(ctx)
	defer flushCancel()
	go w.flushLoop(flushCtx)

	for {
		notification, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			return err
		}
		w.Enqueue(notification.Payload)
	}
}

// Enqueue records a "promptID:memeID" payload for the next flush.
func (w *CounterWorker) Enqueue(payload string) {
	promptID, memeID, ok := ParseMemeChange(payload)
	if !ok {
		return
	}
	w.mu.Lock()
	w.pending[memeID] = promptID
	w.mu.Unlock()
}

func (w *CounterWorker) retry(memeID, promptID string) {
	w.mu.Lock()
	if _, ok := w.pending[memeID]; !ok {
		w.pending[memeID] = promptID
	}
	w.mu.Unlock()
}

// ParseMemeChange splits a meme_changes payload.
func ParseMemeChange(payload string) (promptID, memeID string, ok bool) {
	promptID, memeID, ok = strings.Cut(payload, ":")
	if !ok || promptID == "" || memeID == "" {
		return "", "", false
	}
	return promptID, memeID, true
}

func (w *CounterWorker) flushLoop(ctx context.Context) {
	ticker := time.NewTicker(w.window)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.Flush(ctx)
		case <-ctx.Done():
			w.Flush(context.Background())
			return
		}
	}
}

// Flush drains the pending set, reconciles each meme and invalidates the
// feeds of the prompts involved. It returns the number of memes reconciled.
// Memes whose reconcile fails stay pending for the next flush unless they no
// longer exist.
func (w *CounterWorker) Flush(ctx context.Context) int {
	w.mu.Lock()
	if len(w.pending) == 0 {
		w.mu.Unlock()
		return 0
	}
	batch := w.pending
	w.pending = make(map[string]string)
	w.mu.Unlock()

	prompts := make(map[string]struct{})
	reconciled, drifted := 0, 0
	for memeID, promptID := range batch {
		prompts[promptID] = struct{}{}
		_, d, err := w.reconcile.ReconcileMeme(ctx, memeID)
		if err != nil {
			w.logger.Error().Err(err).Str("meme_id", memeID).Msg("reconcile failed")
			if !errors.Is(err, model.ErrMemeNotFound) {
				w.retry(memeID, promptID)
			}
			continue
		}
		reconciled++
		if d {
			drifted++
			w.logger.Warn().Str("meme_id", memeID).Msg("counter drift repaired")
		}
	}

	for promptID := range prompts {
		if err := w.cache.InvalidateFeed(ctx, promptID); err != nil {
			w.logger.Warn().Err(err).Str("prompt_id", promptID).Msg("cache invalidate failed")
		}
	}

	w.logger.Debug().Int("reconciled", reconciled).Int("drifted", drifted).Int("prompts", len(prompts)).Msg("batch complete")
	return reconciled
}

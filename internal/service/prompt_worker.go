package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// PromptWorker rolls prompts over: it closes prompts whose day has ended and
// makes sure the current day's prompt exists.
type PromptWorker struct {
	prompts  *PromptService
	interval time.Duration
	logger   zerolog.Logger
	stopCh   chan struct{}
}

// NewPromptWorker creates a worker that ticks every interval.
func NewPromptWorker(prompts *PromptService, interval time.Duration) *PromptWorker {
	if interval <= 0 {
		interval = time.Minute
	}
	return &PromptWorker{
		prompts:  prompts,
		interval: interval,
		logger:   log.With().Str("component", "prompt-worker").Logger(),
		stopCh:   make(chan struct{}),
	}
}

// Start runs one tick immediately, then every interval.
func (w *PromptWorker) Start(ctx context.Context) {
	w.logger.Info().Dur("interval", w.interval).Msg("starting")

	w.Tick(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.Tick(ctx)
		case <-ctx.Done():
			w.logger.Info().Msg("stopping (context cancelled)")
			return
		case <-w.stopCh:
			w.logger.Info().Msg("stopping (stop signal)")
			return
		}
	}
}

// Stop signals the worker to stop.
func (w *PromptWorker) Stop() {
	close(w.stopCh)
}

// Tick runs one rollover cycle.
func (w *PromptWorker) Tick(ctx context.Context) {
	closed, err := w.prompts.DeactivateExpired(ctx)
	if err != nil {
		w.logger.Error().Err(err).Msg("deactivate expired prompts failed")
	}

	today, err := w.prompts.Today(ctx)
	if err != nil {
		w.logger.Error().Err(err).Msg("ensure today's prompt failed")
		return
	}

	if closed > 0 {
		w.logger.Info().Int("closed", closed).Str("prompt_id", today.ID).Str("day", today.DayKey).Msg("prompt rolled over")
	}
}

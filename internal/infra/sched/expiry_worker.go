package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"elearn-billing/internal/usecase"
)

// ExpiryWorker periodically flips active subscriptions past their expiry to
// expired. Reads already apply lazy expiry; the sweep keeps the stored status
// honest for reporting and plan deletion checks.
type ExpiryWorker struct {
	subUC    usecase.SubscriptionUseCase
	interval time.Duration
	log      *zerolog.Logger
}

func NewExpiryWorker(subUC usecase.SubscriptionUseCase, interval time.Duration, logger *zerolog.Logger) *ExpiryWorker {
	if interval <= 0 {
		interval = time.Hour
	}
	return &ExpiryWorker{subUC: subUC, interval: interval, log: logger}
}

func (w *ExpiryWorker) Start(ctx context.Context) {
	t := time.NewTicker(w.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			runCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
			if _, err := w.subUC.ExpireDue(runCtx); err != nil {
				w.log.Error().Err(err).Msg("expiry sweep failed")
			}
			cancel()
		}
	}
}

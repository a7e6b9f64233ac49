package sched

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"elearn-billing/internal/domain"
	"elearn-billing/internal/domain/ports/repository"
	"elearn-billing/internal/usecase"
)

// PaymentReconciler periodically scans for stale pending payments and tries to
// finalize them by calling PaymentUseCase.Verify(reference). This covers cases
// where the browser redirect and the webhook both got lost, or the process
// crashed mid-settle, so ledger and subscription state converge without
// manual repair scripts.
type PaymentReconciler struct {
	uc         usecase.PaymentUseCase
	ledger     repository.PaymentLedger
	interval   time.Duration // how often to scan
	staleAfter time.Duration // how old a pending payment must be to retry
	log        *zerolog.Logger
}

func NewPaymentReconciler(uc usecase.PaymentUseCase, ledger repository.PaymentLedger, interval, staleAfter time.Duration, logger *zerolog.Logger) *PaymentReconciler {
	if interval <= 0 {
		interval = time.Minute
	}
	if staleAfter <= 0 {
		staleAfter = 10 * time.Minute
	}
	return &PaymentReconciler{uc: uc, ledger: ledger, interval: interval, staleAfter: staleAfter, log: logger}
}

func (w *PaymentReconciler) Start(ctx context.Context) {
	t := time.NewTicker(w.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			w.tick(ctx)
		}
	}
}

func (w *PaymentReconciler) tick(ctx context.Context) {
	cutoff := time.Now().Add(-w.staleAfter)
	pending, err := w.ledger.ListPendingOlderThan(ctx, nil, cutoff, 200)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			w.log.Error().Err(err).Msg("reconcile sweep: list pending failed")
		}
		return
	}
	for _, p := range pending {
		_, err := w.uc.Verify(ctx, p.Reference)
		switch {
		case err == nil:
			w.log.Info().Str("reference", p.Reference).Msg("reconcile sweep: payment settled")
		case errors.Is(err, domain.ErrVerificationPending), errors.Is(err, domain.ErrGatewayUnavailable):
			// still undecided; next tick retries
		default:
			w.log.Warn().Err(err).Str("reference", p.Reference).Msg("reconcile sweep: verify failed")
		}
	}
}

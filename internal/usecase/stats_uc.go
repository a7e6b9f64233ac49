package usecase

import (
	"context"

	"github.com/rs/zerolog"

	"elearn-billing/internal/domain/ports/repository"
)

// Compile-time check
var _ StatsUseCase = (*statsUC)(nil)

type StatsUseCase interface {
	ActiveByPlan(ctx context.Context) (map[string]int, error)
	Revenue(ctx context.Context) (week int64, month int64, year int64, err error)
}

type statsUC struct {
	subs     repository.SubscriptionRepository
	payments repository.PaymentLedger

	log *zerolog.Logger
}

func NewStatsUseCase(subs repository.SubscriptionRepository, payments repository.PaymentLedger, logger *zerolog.Logger) *statsUC {
	return &statsUC{subs: subs, payments: payments, log: logger}
}

func (s *statsUC) ActiveByPlan(ctx context.Context) (map[string]int, error) {
	return s.subs.CountActiveByPlan(ctx, nil)
}

func (s *statsUC) Revenue(ctx context.Context) (int64, int64, int64, error) {
	w, err := s.payments.SumByPeriod(ctx, nil, "week")
	if err != nil {
		return 0, 0, 0, err
	}
	m, err := s.payments.SumByPeriod(ctx, nil, "month")
	if err != nil {
		return 0, 0, 0, err
	}
	y, err := s.payments.SumByPeriod(ctx, nil, "year")
	if err != nil {
		return 0, 0, 0, err
	}
	return w, m, y, nil
}

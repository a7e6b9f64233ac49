//go:build !integration

package web_test

import (
	"context"

	"elearn-billing/internal/domain/model"
	"elearn-billing/internal/domain/ports/repository"
	"elearn-billing/internal/usecase"
)

// ---- Mock use cases ----

type mockPaymentUC struct {
	InitializeFunc func(ctx context.Context, userID, email, planID string, amount int64) (*usecase.InitOutcome, error)
	VerifyFunc     func(ctx context.Context, reference string) (*usecase.VerifyOutcome, error)
}

var _ usecase.PaymentUseCase = (*mockPaymentUC)(nil)

func (m *mockPaymentUC) Initialize(ctx context.Context, userID, email, planID string, amount int64) (*usecase.InitOutcome, error) {
	return m.InitializeFunc(ctx, userID, email, planID, amount)
}

func (m *mockPaymentUC) Verify(ctx context.Context, reference string) (*usecase.VerifyOutcome, error) {
	return m.VerifyFunc(ctx, reference)
}

type mockSubscriptionUC struct {
	GetActiveFunc func(ctx context.Context, userID string) (*model.Subscription, error)
}

var _ usecase.SubscriptionUseCase = (*mockSubscriptionUC)(nil)

func (m *mockSubscriptionUC) GrantForPayment(ctx context.Context, tx repository.Tx, userID string, plan *model.Plan, amount int64, paymentMethod string) (*model.Subscription, bool, error) {
	return nil, false, nil
}
func (m *mockSubscriptionUC) GetActive(ctx context.Context, userID string) (*model.Subscription, error) {
	return m.GetActiveFunc(ctx, userID)
}
func (m *mockSubscriptionUC) ListByUser(ctx context.Context, userID string) ([]*model.Subscription, error) {
	return nil, nil
}
func (m *mockSubscriptionUC) Cancel(ctx context.Context, subscriptionID string) error { return nil }
func (m *mockSubscriptionUC) ExpireDue(ctx context.Context) (int, error)              { return 0, nil }

type mockPlanUC struct {
	CreateFunc func(ctx context.Context, name string, durationDays int, amount int64) (*model.Plan, error)
	ListFunc   func(ctx context.Context) ([]*model.Plan, error)
	DeleteFunc func(ctx context.Context, id string) error
}

var _ usecase.PlanUseCase = (*mockPlanUC)(nil)

func (m *mockPlanUC) Create(ctx context.Context, name string, durationDays int, amount int64) (*model.Plan, error) {
	return m.CreateFunc(ctx, name, durationDays, amount)
}
func (m *mockPlanUC) Update(ctx context.Context, id, name string, durationDays int, amount int64) (*model.Plan, error) {
	return nil, nil
}
func (m *mockPlanUC) Get(ctx context.Context, id string) (*model.Plan, error) { return nil, nil }
func (m *mockPlanUC) List(ctx context.Context) ([]*model.Plan, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return nil, nil
}
func (m *mockPlanUC) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

type mockStatsUC struct {
	ActiveByPlanFunc func(ctx context.Context) (map[string]int, error)
	RevenueFunc      func(ctx context.Context) (int64, int64, int64, error)
}

var _ usecase.StatsUseCase = (*mockStatsUC)(nil)

func (m *mockStatsUC) ActiveByPlan(ctx context.Context) (map[string]int, error) {
	if m.ActiveByPlanFunc != nil {
		return m.ActiveByPlanFunc(ctx)
	}
	return map[string]int{}, nil
}
func (m *mockStatsUC) Revenue(ctx context.Context) (int64, int64, int64, error) {
	if m.RevenueFunc != nil {
		return m.RevenueFunc(ctx)
	}
	return 0, 0, 0, nil
}

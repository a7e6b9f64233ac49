package usecase

import (
	"context"

	"github.com/google/uuid"

	"elearn-billing/internal/domain/model"
	"elearn-billing/internal/domain/ports/repository"
)

// Compile-time check
var _ PlanUseCase = (*planUC)(nil)

// PlanUseCase manages subscription plans.
type PlanUseCase interface {
	Create(ctx context.Context, name string, durationDays int, amount int64) (*model.Plan, error)
	Update(ctx context.Context, id, name string, durationDays int, amount int64) (*model.Plan, error)
	Get(ctx context.Context, id string) (*model.Plan, error)
	List(ctx context.Context) ([]*model.Plan, error)
	Delete(ctx context.Context, id string) error
}

type planUC struct {
	repo repository.PlanRepository
}

func NewPlanUseCase(repo repository.PlanRepository) *planUC {
	return &planUC{repo: repo}
}

func (uc *planUC) Create(ctx context.Context, name string, durationDays int, amount int64) (*model.Plan, error) {
	plan, err := model.NewPlan(uuid.NewString(), name, durationDays, amount)
	if err != nil {
		return nil, err
	}
	if err := uc.repo.Save(ctx, nil, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

func (uc *planUC) Update(ctx context.Context, id, name string, durationDays int, amount int64) (*model.Plan, error) {
	plan, err := uc.repo.FindByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	if name != "" {
		plan.Name = name
	}
	if durationDays > 0 {
		plan.DurationDays = durationDays
	}
	if amount > 0 {
		plan.Amount = amount
	}
	if err := uc.repo.Save(ctx, nil, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

func (uc *planUC) Get(ctx context.Context, id string) (*model.Plan, error) {
	return uc.repo.FindByID(ctx, nil, id)
}

func (uc *planUC) List(ctx context.Context) ([]*model.Plan, error) {
	return uc.repo.ListAll(ctx, nil)
}

func (uc *planUC) Delete(ctx context.Context, id string) error {
	return uc.repo.Delete(ctx, nil, id)
}

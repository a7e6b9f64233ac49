// File: internal/usecase/subscription_uc.go
package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"elearn-billing/internal/domain"
	"elearn-billing/internal/domain/model"
	"elearn-billing/internal/domain/ports/repository"
	"elearn-billing/internal/infra/metrics"
)

// Compile-time check
var _ SubscriptionUseCase = (*subscriptionUC)(nil)

type SubscriptionUseCase interface {
	// GrantForPayment creates or extends the user's subscription inside the
	// caller's transaction. It returns the granted subscription and whether
	// it was created or extended.
	GrantForPayment(ctx context.Context, tx repository.Tx, userID string, plan *model.Plan, amount int64, paymentMethod string) (*model.Subscription, bool, error)
	// GetActive returns the user's active subscription with lazy expiry:
	// an active row past its expiry is reported as ErrNoActiveSubscription.
	GetActive(ctx context.Context, userID string) (*model.Subscription, error)
	ListByUser(ctx context.Context, userID string) ([]*model.Subscription, error)
	Cancel(ctx context.Context, subscriptionID string) error
	// ExpireDue flips all active subscriptions past their expiry to expired.
	ExpireDue(ctx context.Context) (int, error)
}

type subscriptionUC struct {
	subs repository.SubscriptionRepository
	log  *zerolog.Logger
}

func NewSubscriptionUseCase(subs repository.SubscriptionRepository, logger *zerolog.Logger) *subscriptionUC {
	return &subscriptionUC{subs: subs, log: logger}
}

// GrantForPayment acquires a per-user advisory lock inside the caller's
// transaction: two reconciliations resolving at nearly the same time must not
// both read "no active subscription" and both insert one.
//
// Extension policy: a renewal extends from the later of (now, current expiry)
// so unused paid time is never forfeited.
func (uc *subscriptionUC) GrantForPayment(ctx context.Context, tx repository.Tx, userID string, plan *model.Plan, amount int64, paymentMethod string) (*model.Subscription, bool, error) {
	if userID == "" || plan.IsZero() {
		return nil, false, domain.ErrInvalidArgument
	}
	now := time.Now()

	if tx != nil {
		if err := uc.subs.LockUser(ctx, tx, userID); err != nil {
			return nil, false, err
		}
	}

	existing, err := uc.subs.FindActiveByUser(ctx, tx, userID)
	switch {
	case err == nil && existing.IsActive(now):
		existing.Extend(plan, now)
		existing.PlanID = plan.ID
		existing.PlanName = plan.Name
		existing.Amount = amount
		existing.PaymentMethod = paymentMethod
		if err := uc.subs.Save(ctx, tx, existing); err != nil {
			return nil, false, err
		}
		metrics.IncSubscriptionGranted("extended")
		return existing, false, nil

	case err == nil:
		// stale active row: flip it to expired before creating a fresh one
		existing.Status = model.SubscriptionStatusExpired
		existing.UpdatedAt = now
		if err := uc.subs.Save(ctx, tx, existing); err != nil {
			return nil, false, err
		}

	case !errors.Is(err, domain.ErrNotFound):
		return nil, false, err
	}

	sub, err := model.NewSubscription(uuid.NewString(), userID, plan, amount, paymentMethod)
	if err != nil {
		return nil, false, err
	}
	if err := uc.subs.Save(ctx, tx, sub); err != nil {
		return nil, false, err
	}
	metrics.IncSubscriptionGranted("created")
	return sub, true, nil
}

func (uc *subscriptionUC) GetActive(ctx context.Context, userID string) (*model.Subscription, error) {
	sub, err := uc.subs.FindActiveByUser(ctx, nil, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNoActiveSubscription
		}
		return nil, err
	}
	if !sub.IsActive(time.Now()) {
		return nil, domain.ErrNoActiveSubscription
	}
	return sub, nil
}

func (uc *subscriptionUC) ListByUser(ctx context.Context, userID string) ([]*model.Subscription, error) {
	return uc.subs.ListByUser(ctx, nil, userID)
}

func (uc *subscriptionUC) Cancel(ctx context.Context, subscriptionID string) error {
	sub, err := uc.subs.FindByID(ctx, nil, subscriptionID)
	if err != nil {
		return err
	}
	if sub.Status == model.SubscriptionStatusCancelled {
		return nil
	}
	sub.Status = model.SubscriptionStatusCancelled
	sub.UpdatedAt = time.Now()
	return uc.subs.Save(ctx, nil, sub)
}

func (uc *subscriptionUC) ExpireDue(ctx context.Context) (int, error) {
	n, err := uc.subs.ExpireDue(ctx, nil)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		metrics.IncSubscriptionsExpired(n)
		uc.log.Info().Int("count", n).Msg("subscriptions expired")
	}
	return n, nil
}

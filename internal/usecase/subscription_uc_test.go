//go:build !integration

package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"elearn-billing/internal/domain"
	"elearn-billing/internal/domain/model"
	"elearn-billing/internal/usecase"
)

func TestSubscriptionUseCase_GrantForPayment(t *testing.T) {
	ctx := context.Background()
	plan := monthlyPlan()

	t.Run("should create a fresh subscription when none is active", func(t *testing.T) {
		subs := NewMockSubscriptionRepo()
		uc := usecase.NewSubscriptionUseCase(subs, newTestLogger())

		sub, created, err := uc.GrantForPayment(ctx, nil, "user-1", plan, 1300, "card")
		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}
		if !created {
			t.Error("expected a newly created subscription")
		}
		if sub.Status != model.SubscriptionStatusActive {
			t.Errorf("expected active, got %q", sub.Status)
		}
		if sub.PlanName != "monthly" || sub.Amount != 1300 || sub.PaymentMethod != "card" {
			t.Errorf("subscription did not capture the purchase details: %+v", sub)
		}
	})

	t.Run("should extend an active subscription instead of creating a second one", func(t *testing.T) {
		subs := NewMockSubscriptionRepo()
		expiry := time.Now().Add(5 * 24 * time.Hour).Truncate(time.Second)
		subs.Save(ctx, nil, &model.Subscription{
			ID: "sub-1", UserID: "user-1", PlanID: plan.ID, PlanName: plan.Name,
			Status: model.SubscriptionStatusActive, ExpiresAt: expiry,
		})
		uc := usecase.NewSubscriptionUseCase(subs, newTestLogger())

		sub, created, err := uc.GrantForPayment(ctx, nil, "user-1", plan, 1300, "bank")
		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}
		if created {
			t.Error("expected an extension, not a new subscription")
		}
		want := expiry.Add(30 * 24 * time.Hour)
		if !sub.ExpiresAt.Equal(want) {
			t.Errorf("expected expiry %v, got %v", want, sub.ExpiresAt)
		}

		all, _ := subs.ListByUser(ctx, nil, "user-1")
		if len(all) != 1 {
			t.Errorf("expected a single subscription row, got %d", len(all))
		}
	})

	t.Run("should retire a stale active row and create a fresh one", func(t *testing.T) {
		subs := NewMockSubscriptionRepo()
		subs.Save(ctx, nil, &model.Subscription{
			ID: "sub-old", UserID: "user-1", PlanID: plan.ID,
			Status: model.SubscriptionStatusActive, ExpiresAt: time.Now().Add(-time.Hour),
		})
		uc := usecase.NewSubscriptionUseCase(subs, newTestLogger())

		sub, created, err := uc.GrantForPayment(ctx, nil, "user-1", plan, 1300, "card")
		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}
		if !created {
			t.Error("expected a fresh subscription when the existing one is past its expiry")
		}
		if sub.ID == "sub-old" {
			t.Error("expected a new subscription row")
		}

		old, _ := subs.FindByID(ctx, nil, "sub-old")
		if old.Status != model.SubscriptionStatusExpired {
			t.Errorf("expected the stale row to be flipped to expired, got %q", old.Status)
		}
	})

	t.Run("should reject an empty user or plan", func(t *testing.T) {
		uc := usecase.NewSubscriptionUseCase(NewMockSubscriptionRepo(), newTestLogger())

		if _, _, err := uc.GrantForPayment(ctx, nil, "", plan, 1300, "card"); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument for empty user, got: %v", err)
		}
		if _, _, err := uc.GrantForPayment(ctx, nil, "user-1", &model.Plan{}, 1300, "card"); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument for zero plan, got: %v", err)
		}
	})
}

func TestSubscriptionUseCase_GetActive(t *testing.T) {
	ctx := context.Background()

	t.Run("should return the active subscription", func(t *testing.T) {
		subs := NewMockSubscriptionRepo()
		subs.Save(ctx, nil, &model.Subscription{
			ID: "sub-1", UserID: "user-1",
			Status: model.SubscriptionStatusActive, ExpiresAt: time.Now().Add(time.Hour),
		})
		uc := usecase.NewSubscriptionUseCase(subs, newTestLogger())

		sub, err := uc.GetActive(ctx, "user-1")
		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}
		if sub.ID != "sub-1" {
			t.Errorf("expected sub-1, got %s", sub.ID)
		}
	})

	t.Run("should lazily treat a past-expiry active row as no subscription", func(t *testing.T) {
		subs := NewMockSubscriptionRepo()
		subs.Save(ctx, nil, &model.Subscription{
			ID: "sub-1", UserID: "user-1",
			Status: model.SubscriptionStatusActive, ExpiresAt: time.Now().Add(-time.Minute),
		})
		uc := usecase.NewSubscriptionUseCase(subs, newTestLogger())

		_, err := uc.GetActive(ctx, "user-1")
		if !errors.Is(err, domain.ErrNoActiveSubscription) {
			t.Fatalf("expected ErrNoActiveSubscription, got: %v", err)
		}
	})

	t.Run("should report no subscription for an unknown user", func(t *testing.T) {
		uc := usecase.NewSubscriptionUseCase(NewMockSubscriptionRepo(), newTestLogger())
		if _, err := uc.GetActive(ctx, "nobody"); !errors.Is(err, domain.ErrNoActiveSubscription) {
			t.Fatalf("expected ErrNoActiveSubscription, got: %v", err)
		}
	})
}

func TestSubscriptionUseCase_Cancel(t *testing.T) {
	ctx := context.Background()

	subs := NewMockSubscriptionRepo()
	subs.Save(ctx, nil, &model.Subscription{
		ID: "sub-1", UserID: "user-1",
		Status: model.SubscriptionStatusActive, ExpiresAt: time.Now().Add(time.Hour),
	})
	uc := usecase.NewSubscriptionUseCase(subs, newTestLogger())

	if err := uc.Cancel(ctx, "sub-1"); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	sub, _ := subs.FindByID(ctx, nil, "sub-1")
	if sub.Status != model.SubscriptionStatusCancelled {
		t.Errorf("expected cancelled, got %q", sub.Status)
	}

	// cancelling again is a no-op
	if err := uc.Cancel(ctx, "sub-1"); err != nil {
		t.Fatalf("second cancel failed: %v", err)
	}
}

func TestSubscriptionUseCase_ExpireDue(t *testing.T) {
	ctx := context.Background()

	subs := NewMockSubscriptionRepo()
	subs.Save(ctx, nil, &model.Subscription{
		ID: "sub-due", UserID: "user-1",
		Status: model.SubscriptionStatusActive, ExpiresAt: time.Now().Add(-time.Hour),
	})
	subs.Save(ctx, nil, &model.Subscription{
		ID: "sub-live", UserID: "user-2",
		Status: model.SubscriptionStatusActive, ExpiresAt: time.Now().Add(time.Hour),
	})
	uc := usecase.NewSubscriptionUseCase(subs, newTestLogger())

	n, err := uc.ExpireDue(ctx)
	if err != nil {
		t.Fatalf("expire due failed: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 row expired, got %d", n)
	}

	live, _ := subs.FindByID(ctx, nil, "sub-live")
	if live.Status != model.SubscriptionStatusActive {
		t.Errorf("expected sub-live to stay active, got %q", live.Status)
	}
}

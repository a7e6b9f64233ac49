package repository

import (
	"context"

	"elearn-billing/internal/domain/model"
)

// SubscriptionRepository is the port for user subscriptions.
type SubscriptionRepository interface {
	Save(ctx context.Context, tx Tx, sub *model.Subscription) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Subscription, error)
	// FindActiveByUser returns the user's single active subscription, or
	// domain.ErrNotFound. Inside a transaction the row is locked FOR UPDATE.
	FindActiveByUser(ctx context.Context, tx Tx, userID string) (*model.Subscription, error)
	ListByUser(ctx context.Context, tx Tx, userID string) ([]*model.Subscription, error)
	// LockUser serializes subscription writes for one user within the given
	// transaction (advisory xact lock); it is a no-op outside a transaction.
	LockUser(ctx context.Context, tx Tx, userID string) error
	// ExpireDue flips active rows past their expiry to expired; returns the
	// number of rows changed.
	ExpireDue(ctx context.Context, tx Tx) (int, error)
	CountActiveByPlan(ctx context.Context, tx Tx) (map[string]int, error)
}

package model

import (
	"time"

	"elearn-billing/internal/domain"
)

type SubscriptionStatus string

const (
	SubscriptionStatusPending   SubscriptionStatus = "pending"
	SubscriptionStatusActive    SubscriptionStatus = "active"
	SubscriptionStatusExpired   SubscriptionStatus = "expired"
	SubscriptionStatusCancelled SubscriptionStatus = "cancelled"
)

// Subscription is a user's entitlement window. At most one active
// subscription exists per user; historical rows persist as expired/cancelled.
type Subscription struct {
	ID            string // UUID
	UserID        string // UUID
	PlanID        string // UUID
	PlanName      string // denormalized display name at purchase time
	Amount        int64  // amount paid, base currency units
	Status        SubscriptionStatus
	StartDate     time.Time
	ExpiresAt     time.Time
	PaymentMethod string // gateway channel, e.g. "card"
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewSubscription creates an active subscription starting now.
func NewSubscription(id, userID string, plan *Plan, amount int64, paymentMethod string) (*Subscription, error) {
	if id == "" || userID == "" || plan.IsZero() {
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now()
	return &Subscription{
		ID:            id,
		UserID:        userID,
		PlanID:        plan.ID,
		PlanName:      plan.Name,
		Amount:        amount,
		Status:        SubscriptionStatusActive,
		StartDate:     now,
		ExpiresAt:     now.Add(plan.Duration()),
		PaymentMethod: paymentMethod,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// Extend pushes ExpiresAt forward by the plan duration, anchored at the later
// of now and the current expiry so unused paid time is never forfeited.
func (s *Subscription) Extend(plan *Plan, now time.Time) {
	anchor := now
	if s.ExpiresAt.After(now) {
		anchor = s.ExpiresAt
	}
	s.ExpiresAt = anchor.Add(plan.Duration())
	s.Status = SubscriptionStatusActive
	s.UpdatedAt = now
}

// IsActive reports whether the subscription entitles the user at `now`.
// An active row past its expiry is treated as expired (lazy expiry).
func (s *Subscription) IsActive(now time.Time) bool {
	return s.Status == SubscriptionStatusActive && now.Before(s.ExpiresAt)
}

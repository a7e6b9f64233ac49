package model

import (
	"time"

	"elearn-billing/internal/domain"
)

// DefaultPlanDurationDays applies when a plan does not specify a duration.
const DefaultPlanDurationDays = 30

// Plan represents a purchasable subscription plan with a fixed duration and
// price in base currency units.
type Plan struct {
	ID           string
	Name         string
	DurationDays int
	Amount       int64
	CreatedAt    time.Time
}

func (p *Plan) IsZero() bool { return p == nil || p.ID == "" }

// Duration returns the entitlement window, defaulting to 30 days.
func (p *Plan) Duration() time.Duration {
	days := p.DurationDays
	if days <= 0 {
		days = DefaultPlanDurationDays
	}
	return time.Duration(days) * 24 * time.Hour
}

// NewPlan validates and constructs a plan.
func NewPlan(id, name string, durationDays int, amount int64) (*Plan, error) {
	if id == "" || name == "" || durationDays < 0 || amount <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	return &Plan{
		ID:           id,
		Name:         name,
		DurationDays: durationDays,
		Amount:       amount,
		CreatedAt:    time.Now(),
	}, nil
}

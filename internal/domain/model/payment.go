package model

import "time"

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending" // initialized at gateway; awaiting verification
	PaymentStatusSuccess PaymentStatus = "success" // verified OK at provider
	PaymentStatusFailed  PaymentStatus = "failed"  // provider reported an explicit failure
)

// IsTerminal reports whether no further status transition is permitted.
func (s PaymentStatus) IsTerminal() bool {
	return s == PaymentStatusSuccess || s == PaymentStatusFailed
}

// PaymentRecord is one ledger entry per payment attempt. Reference is the
// idempotency key for the whole workflow: it is shared with the gateway,
// unique across the table, and immutable once created. Records are mutated
// exactly once (pending -> success|failed) and never deleted.
type PaymentRecord struct {
	Reference        string        // ULID, generated at initialization
	UserID           string        // UUID of the paying user
	PlanID           string        // UUID of the plan being purchased
	Amount           int64         // base currency units (naira); gateway wire format is minor units
	Status           PaymentStatus // see constants above
	GatewayReference string        // opaque access code returned by the gateway at init
	Channel          string        // e.g. "card", "bank"; reported by the gateway on success
	CreatedAt        time.Time
	UpdatedAt        time.Time
	PaidAt           *time.Time // set when status becomes success
}

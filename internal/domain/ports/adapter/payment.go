package adapter

import (
	"context"
	"encoding/json"
	"time"
)

// VerifyStatus is the provider-agnostic outcome of a verification call.
type VerifyStatus string

const (
	VerifyStatusSuccess VerifyStatus = "success"
	VerifyStatusFailed  VerifyStatus = "failed"
	// VerifyStatusPending covers every non-terminal provider answer
	// (abandoned, ongoing, queued...). The caller retries later.
	VerifyStatusPending VerifyStatus = "pending"
)

// InitResult is what the provider returns for a newly initialized transaction.
type InitResult struct {
	AuthorizationURL string // where to redirect the payer
	Reference        string // our reference, echoed back by the provider
	AccessCode       string // provider-side correlation token
}

// VerifyResult carries the provider's verdict plus the raw payload for audit.
type VerifyResult struct {
	Status   VerifyStatus
	Channel  string          // e.g. "card", "bank"
	Amount   int64           // minor currency units as reported by the provider
	PaidAt   *time.Time      // provider timestamp, if present
	Raw      json.RawMessage // untouched provider response body
	Provider string
}

// PaymentGateway is the port for payment providers. Implementations are pure
// adapters: outbound HTTPS only, no ledger or subscription access.
//
// Initialize takes the amount in base currency units and converts to the
// provider's minor unit on the wire. It fails with domain.ErrGatewayUnavailable
// when the provider is unreachable or answers non-2xx, and with
// domain.ErrGatewayRejected when the provider reports a validation error.
//
// Verify fails with domain.ErrGatewayUnavailable on network errors or timeouts;
// that is retryable and must never be conflated with a failed payment.
type PaymentGateway interface {
	Name() string
	Initialize(ctx context.Context, email string, amount int64, reference, callbackURL string, meta map[string]interface{}) (InitResult, error)
	Verify(ctx context.Context, reference string) (VerifyResult, error)
}

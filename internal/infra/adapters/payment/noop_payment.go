package payment

import (
	"context"
	"fmt"
	"sync"
	"time"

	"elearn-billing/internal/domain"
	"elearn-billing/internal/domain/ports/adapter"
)

var _ adapter.PaymentGateway = (*NoopPaymentGateway)(nil)

// NoopPaymentGateway is a simple in-memory gateway for dev mode and tests.
// Every initialized transaction verifies as success.
type NoopPaymentGateway struct {
	mu      sync.Mutex
	intents map[string]int64 // reference -> amount in minor units
}

func NewNoopPaymentGateway() *NoopPaymentGateway {
	return &NoopPaymentGateway{intents: make(map[string]int64)}
}

func (g *NoopPaymentGateway) Name() string { return "noop" }

func (g *NoopPaymentGateway) Initialize(ctx context.Context, email string, amount int64, reference, callbackURL string, meta map[string]interface{}) (adapter.InitResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.intents[reference] = amount * 100
	return adapter.InitResult{
		AuthorizationURL: "https://example.test/pay/" + reference,
		Reference:        reference,
		AccessCode:       fmt.Sprintf("noop-%d", len(g.intents)),
	}, nil
}

func (g *NoopPaymentGateway) Verify(ctx context.Context, reference string) (adapter.VerifyResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	amount, ok := g.intents[reference]
	if !ok {
		return adapter.VerifyResult{}, domain.ErrGatewayUnavailable
	}
	now := time.Now()
	return adapter.VerifyResult{
		Status:   adapter.VerifyStatusSuccess,
		Channel:  "card",
		Amount:   amount,
		PaidAt:   &now,
		Provider: g.Name(),
	}, nil
}

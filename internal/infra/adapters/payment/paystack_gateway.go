// File: internal/infra/adapters/payment/paystack_gateway.go
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"elearn-billing/internal/domain"
	"elearn-billing/internal/domain/ports/adapter"
)

var _ adapter.PaymentGateway = (*PaystackGateway)(nil)

// PaystackGateway implements adapter.PaymentGateway against the Paystack
// transaction REST API. Amounts cross the wire in kobo (minor units).
type PaystackGateway struct {
	secretKey string
	baseURL   string
	callback  string
	client    *http.Client
}

func NewPaystackGateway(secretKey, baseURL, callbackURL string) (*PaystackGateway, error) {
	if secretKey == "" {
		return nil, errors.New("paystack secret key empty")
	}
	if baseURL == "" {
		baseURL = "https://api.paystack.co"
	}
	if _, err := url.Parse(callbackURL); err != nil {
		return nil, fmt.Errorf("invalid callback url: %w", err)
	}
	return &PaystackGateway{
		secretKey: secretKey,
		baseURL:   baseURL,
		callback:  callbackURL,
		client:    &http.Client{Timeout: 15 * time.Second},
	}, nil
}

func (g *PaystackGateway) Name() string { return "paystack" }

// Initialize calls /transaction/initialize with the amount converted to kobo.
// Our reference travels to the provider so both sides share the idempotency key.
func (g *PaystackGateway) Initialize(ctx context.Context, email string, amount int64, reference, callbackURL string, meta map[string]interface{}) (adapter.InitResult, error) {
	if callbackURL == "" {
		callbackURL = g.callback
	}
	payload := map[string]any{
		"email":        email,
		"amount":       amount * 100,
		"reference":    reference,
		"callback_url": callbackURL,
	}
	if meta != nil {
		payload["metadata"] = meta
	}
	b, _ := json.Marshal(payload)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/transaction/initialize", bytes.NewReader(b))
	if err != nil {
		return adapter.InitResult{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.secretKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return adapter.InitResult{}, domain.ErrGatewayUnavailable
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return adapter.InitResult{}, domain.ErrGatewayUnavailable
	}

	var out struct {
		Status  bool   `json:"status"`
		Message string `json:"message"`
		Data    struct {
			AuthorizationURL string `json:"authorization_url"`
			AccessCode       string `json:"access_code"`
			Reference        string `json:"reference"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return adapter.InitResult{}, domain.ErrGatewayUnavailable
	}
	if resp.StatusCode >= 400 || !out.Status {
		return adapter.InitResult{}, fmt.Errorf("%w: %s", domain.ErrGatewayRejected, out.Message)
	}
	if out.Data.AuthorizationURL == "" || out.Data.Reference == "" {
		return adapter.InitResult{}, fmt.Errorf("%w: empty authorization url", domain.ErrGatewayRejected)
	}
	return adapter.InitResult{
		AuthorizationURL: out.Data.AuthorizationURL,
		Reference:        out.Data.Reference,
		AccessCode:       out.Data.AccessCode,
	}, nil
}

// Verify calls /transaction/verify/{reference}. Any transport problem or
// non-2xx answer maps to ErrGatewayUnavailable: a verdict we could not read
// is retryable, never a failed payment.
func (g *PaystackGateway) Verify(ctx context.Context, reference string) (adapter.VerifyResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/transaction/verify/"+url.PathEscape(reference), nil)
	if err != nil {
		return adapter.VerifyResult{}, err
	}
	req.Header.Set("Authorization", "Bearer "+g.secretKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return adapter.VerifyResult{}, domain.ErrGatewayUnavailable
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return adapter.VerifyResult{}, domain.ErrGatewayUnavailable
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return adapter.VerifyResult{}, domain.ErrGatewayUnavailable
	}

	var out struct {
		Status  bool   `json:"status"`
		Message string `json:"message"`
		Data    struct {
			Status  string `json:"status"`
			Amount  int64  `json:"amount"`
			Channel string `json:"channel"`
			PaidAt  string `json:"paid_at"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return adapter.VerifyResult{}, domain.ErrGatewayUnavailable
	}
	if !out.Status {
		return adapter.VerifyResult{}, domain.ErrGatewayUnavailable
	}

	res := adapter.VerifyResult{
		Channel:  out.Data.Channel,
		Amount:   out.Data.Amount,
		Raw:      json.RawMessage(body),
		Provider: g.Name(),
	}
	if t, err := time.Parse(time.RFC3339, out.Data.PaidAt); err == nil {
		res.PaidAt = &t
	}

	switch out.Data.Status {
	case "success":
		res.Status = adapter.VerifyStatusSuccess
	case "failed":
		res.Status = adapter.VerifyStatusFailed
	default:
		// abandoned / ongoing / queued / pending: not a verdict yet
		res.Status = adapter.VerifyStatusPending
	}
	return res, nil
}

package web

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"errors"
	"html/template"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"elearn-billing/internal/domain"
	"elearn-billing/internal/domain/model"
	"elearn-billing/internal/infra/logging"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type initRequest struct {
	PlanID string `json:"plan_id"`
	Amount int64  `json:"amount"`
}

type initResponse struct {
	AuthorizationURL string `json:"authorization_url"`
	Reference        string `json:"reference"`
	Amount           int64  `json:"amount"`
}

func (s *Server) handleInit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req initRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	out, err := s.payUC.Initialize(ctx, authUserID(ctx), authEmail(ctx), req.PlanID, req.Amount)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			http.Error(w, "Plan not found", http.StatusNotFound)
		case errors.Is(err, domain.ErrInvalidArgument):
			http.Error(w, "Invalid plan or amount", http.StatusBadRequest)
		case errors.Is(err, domain.ErrGatewayRejected):
			http.Error(w, "Payment provider rejected the request", http.StatusBadRequest)
		case errors.Is(err, domain.ErrGatewayUnavailable):
			http.Error(w, "Payment provider unavailable, try again shortly", http.StatusBadGateway)
		case errors.Is(err, domain.ErrInitializationConflict):
			http.Error(w, "Payment already initialized", http.StatusConflict)
		default:
			http.Error(w, "Failed to initialize payment", http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusOK, initResponse{
		AuthorizationURL: out.AuthorizationURL,
		Reference:        out.Reference,
		Amount:           out.Amount,
	})
}

type verifyResponse struct {
	Status string      `json:"status"`
	Data   interface{} `json:"data,omitempty"`
}

type paymentJSON struct {
	Reference string     `json:"reference"`
	PlanID    string     `json:"plan_id"`
	Amount    int64      `json:"amount"`
	Status    string     `json:"status"`
	Channel   string     `json:"channel,omitempty"`
	PaidAt    *time.Time `json:"paid_at,omitempty"`
}

func toPaymentJSON(p *model.PaymentRecord) paymentJSON {
	return paymentJSON{
		Reference: p.Reference,
		PlanID:    p.PlanID,
		Amount:    p.Amount,
		Status:    string(p.Status),
		Channel:   p.Channel,
		PaidAt:    p.PaidAt,
	}
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	reference := chi.URLParam(r, "reference")

	out, err := s.payUC.Verify(ctx, reference)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUnknownReference):
			http.Error(w, "Unknown payment reference", http.StatusNotFound)
		case errors.Is(err, domain.ErrVerificationPending), errors.Is(err, domain.ErrGatewayUnavailable):
			// Transient: never present as "failed" to avoid alarming a user
			// whose payment succeeds moments later.
			writeJSON(w, http.StatusAccepted, verifyResponse{Status: "pending"})
		case errors.Is(err, domain.ErrAmountMismatch):
			http.Error(w, "Payment amount mismatch, contact support", http.StatusConflict)
		default:
			http.Error(w, "Failed to verify payment", http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusOK, verifyResponse{
		Status: string(out.Payment.Status),
		Data:   toPaymentJSON(out.Payment),
	})
}

// handleCallback is the browser redirect target after checkout. Paystack
// appends ?reference= to the callback URL. Verification is idempotent inside
// the use case, so racing the webhook here is harmless.
func (s *Server) handleCallback(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	reference := r.URL.Query().Get("reference")
	if reference == "" {
		reference = r.URL.Query().Get("trxref")
	}
	if reference == "" {
		s.renderResult(w, http.StatusBadRequest, false, "missing payment reference")
		return
	}

	out, err := s.payUC.Verify(ctx, reference)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrVerificationPending), errors.Is(err, domain.ErrGatewayUnavailable):
			s.renderResult(w, http.StatusOK, false, "payment is still processing, check again shortly")
		case errors.Is(err, domain.ErrUnknownReference):
			s.renderResult(w, http.StatusNotFound, false, "unknown payment reference")
		default:
			s.renderResult(w, http.StatusBadRequest, false, "verification failed")
		}
		return
	}

	if out.Payment.Status == model.PaymentStatusSuccess {
		s.renderResult(w, http.StatusOK, true, "payment verified. your subscription is active.")
		return
	}
	s.renderResult(w, http.StatusOK, false, "payment was not successful")
}

type webhookEvent struct {
	Event string `json:"event"`
	Data  struct {
		Reference string `json:"reference"`
	} `json:"data"`
}

// handleWebhook receives Paystack events. The body is authenticated with an
// HMAC-SHA512 signature of the raw payload under the account secret key.
// The handler acknowledges fast and verifies through the worker pool; webhook
// redelivery covers a dropped task.
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	mac := hmac.New(sha512.New, []byte(s.webhookSecret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	if !hmac.Equal([]byte(expected), []byte(r.Header.Get("x-paystack-signature"))) {
		http.Error(w, "Invalid signature", http.StatusUnauthorized)
		return
	}

	var ev webhookEvent
	if err := json.Unmarshal(body, &ev); err != nil || ev.Data.Reference == "" {
		// acknowledged but ignored; not an event we act on
		w.WriteHeader(http.StatusOK)
		return
	}

	log := logging.With(r.Context(), s.log)
	switch ev.Event {
	case "charge.success", "charge.failed":
		reference := ev.Data.Reference
		if err := s.pool.Submit(func(ctx context.Context) error {
			ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
			defer cancel()
			_, err := s.payUC.Verify(ctx, reference)
			if errors.Is(err, domain.ErrVerificationPending) || errors.Is(err, domain.ErrGatewayUnavailable) {
				return nil // redelivery or the sweep will retry
			}
			return err
		}); err != nil {
			log.Warn().Err(err).Str("reference", reference).Msg("webhook task dropped")
		}
	default:
		log.Debug().Str("event", ev.Event).Msg("webhook event ignored")
	}

	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleMySubscription(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sub, err := s.subUC.GetActive(ctx, authUserID(ctx))
	if err != nil {
		if errors.Is(err, domain.ErrNoActiveSubscription) {
			http.Error(w, "No active subscription", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to load subscription", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

func (s *Server) handlePlansList(w http.ResponseWriter, r *http.Request) {
	plans, err := s.planUC.List(r.Context())
	if err != nil {
		http.Error(w, "Failed to list plans", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, plans)
}

type planRequest struct {
	Name         string `json:"name"`
	DurationDays int    `json:"duration_days"`
	Amount       int64  `json:"amount"`
}

func (s *Server) handlePlanCreate(w http.ResponseWriter, r *http.Request) {
	var req planRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	plan, err := s.planUC.Create(r.Context(), req.Name, req.DurationDays, req.Amount)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidArgument) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, "Failed to create plan", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, plan)
}

func (s *Server) handlePlanUpdate(w http.ResponseWriter, r *http.Request) {
	var req planRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	plan, err := s.planUC.Update(r.Context(), chi.URLParam(r, "id"), req.Name, req.DurationDays, req.Amount)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			http.Error(w, "Plan not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to update plan", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

func (s *Server) handlePlanDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.planUC.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			http.Error(w, "Plan not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to delete plan", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	activeByPlan, err := s.statsUC.ActiveByPlan(ctx)
	if err != nil {
		http.Error(w, "Failed to get totals", http.StatusInternalServerError)
		return
	}
	week, month, year, err := s.statsUC.Revenue(ctx)
	if err != nil {
		http.Error(w, "Failed to get revenue", http.StatusInternalServerError)
		return
	}

	response := struct {
		ActiveSubsByPlan map[string]int `json:"active_subs_by_plan"`
		Revenue          struct {
			Week  int64 `json:"week"`
			Month int64 `json:"month"`
			Year  int64 `json:"year"`
		} `json:"revenue"`
	}{ActiveSubsByPlan: activeByPlan}
	response.Revenue.Week = week
	response.Revenue.Month = month
	response.Revenue.Year = year

	writeJSON(w, http.StatusOK, response)
}

var resultPage = template.Must(template.New("cb").Parse(`<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8" />
<meta name="viewport" content="width=device-width,initial-scale=1" />
<title>Payment {{if .OK}}Success{{else}}Result{{end}}</title>
<style>
body{font-family:system-ui,Arial,sans-serif;margin:2rem;}
.card{max-width:560px;border:1px solid #ddd;border-radius:12px;padding:24px;}
.ok{color:#057a55} .fail{color:#b00020}
</style>
</head>
<body>
<div class="card">
<h1 class="{{if .OK}}ok{{else}}fail{{end}}">{{if .OK}}Payment successful{{else}}Payment result{{end}}</h1>
<p>{{.Message}}</p>
<p>You can close this page and return to the app.</p>
</div>
</body>
</html>`))

func (s *Server) renderResult(w http.ResponseWriter, status int, ok bool, msg string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_ = resultPage.Execute(w, struct {
		OK      bool
		Message string
	}{OK: ok, Message: msg})
}

package web

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"elearn-billing/internal/infra/worker"
	"elearn-billing/internal/usecase"
)

// Server wires the billing HTTP surface: payment initialization/verification
// for authenticated users, the gateway callback and webhook, and the admin
// plan/stats API.
type Server struct {
	payUC   usecase.PaymentUseCase
	subUC   usecase.SubscriptionUseCase
	planUC  usecase.PlanUseCase
	statsUC usecase.StatsUseCase

	pool          *worker.Pool
	jwtSecret     string
	adminAPIKey   string
	webhookSecret string // Paystack signs webhooks with the account secret key
	log           *zerolog.Logger
}

func NewServer(
	payUC usecase.PaymentUseCase,
	subUC usecase.SubscriptionUseCase,
	planUC usecase.PlanUseCase,
	statsUC usecase.StatsUseCase,
	pool *worker.Pool,
	jwtSecret, adminAPIKey, webhookSecret string,
	logger *zerolog.Logger,
) *Server {
	return &Server{
		payUC:         payUC,
		subUC:         subUC,
		planUC:        planUC,
		statsUC:       statsUC,
		pool:          pool,
		jwtSecret:     jwtSecret,
		adminAPIKey:   adminAPIKey,
		webhookSecret: webhookSecret,
		log:           logger,
	}
}

// Router builds the chi router with all routes and middleware attached.
func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()

	r.Use(func(next http.Handler) http.Handler {
		return Chain(next, TraceID(), Recover(s.log), RequestLog(s.log), Timeout(30*time.Second))
	})

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())

	// Gateway-facing routes: no user auth. The callback carries the payer's
	// browser; the webhook is authenticated by its HMAC signature.
	r.Get("/api/v1/payments/callback", s.handleCallback)
	r.Post("/api/v1/payments/webhook", s.handleWebhook)

	// User-facing routes
	r.Group(func(r chi.Router) {
		r.Use(UserAuth(s.jwtSecret))
		r.Post("/api/v1/payments/init", s.handleInit)
		r.Get("/api/v1/payments/verify/{reference}", s.handleVerify)
		r.Get("/api/v1/subscriptions/me", s.handleMySubscription)
		r.Get("/api/v1/plans", s.handlePlansList)
	})

	// Admin routes
	r.Group(func(r chi.Router) {
		r.Use(AdminAuth(s.adminAPIKey, s.log))
		r.Post("/api/v1/admin/plans", s.handlePlanCreate)
		r.Put("/api/v1/admin/plans/{id}", s.handlePlanUpdate)
		r.Delete("/api/v1/admin/plans/{id}", s.handlePlanDelete)
		r.Get("/api/v1/admin/stats", s.handleStats)
	})

	return r
}

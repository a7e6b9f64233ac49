package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	"elearn-billing/internal/config"
	"elearn-billing/internal/domain/ports/adapter"
	"elearn-billing/internal/domain/ports/repository"
	paygw "elearn-billing/internal/infra/adapters/payment"
	"elearn-billing/internal/infra/db/postgres"
	"elearn-billing/internal/infra/logging"
	"elearn-billing/internal/infra/metrics"
	"elearn-billing/internal/infra/redis"
	"elearn-billing/internal/infra/sched"
	"elearn-billing/internal/infra/web"
	"elearn-billing/internal/infra/worker"
	"elearn-billing/internal/usecase"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	dev := flag.Bool("dev", false, "run in development mode (noop payment gateway, relaxed validation)")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath, *dev)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log := logging.New(cfg.Log, cfg.Runtime.Dev)
	metrics.MustRegister()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.NewPgxPool(ctx, cfg.Database.URL, cfg.Database.MaxConns)
	if err != nil {
		log.Fatal().Err(err).Msg("connect to postgres")
	}
	defer pool.Close()

	// Repositories. The plan repo gets a read-through cache when redis is
	// configured; plans are read on every payment init and rarely change.
	var planRepo repository.PlanRepository = postgres.NewPlanRepo(pool)
	if cfg.Redis.URL != "" {
		rdb, err := redis.NewClient(ctx, &cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("connect to redis")
		}
		defer rdb.Close()
		planRepo = postgres.NewPlanRepoCacheDecorator(planRepo, rdb, cfg.Redis.TTL)
	}
	paymentRepo := postgres.NewPaymentRepo(pool)
	subRepo := postgres.NewSubscriptionRepo(pool)
	tm := postgres.NewTxManager(pool)

	var gateway adapter.PaymentGateway
	if cfg.Runtime.Dev && cfg.Paystack.SecretKey == "" {
		log.Warn().Msg("no paystack secret configured, using noop gateway")
		gateway = paygw.NewNoopPaymentGateway()
	} else {
		gateway, err = paygw.NewPaystackGateway(cfg.Paystack.SecretKey, cfg.Paystack.BaseURL, cfg.Paystack.CallbackURL)
		if err != nil {
			log.Fatal().Err(err).Msg("init paystack gateway")
		}
	}

	subUC := usecase.NewSubscriptionUseCase(subRepo, log)
	payUC := usecase.NewPaymentUseCase(paymentRepo, planRepo, subUC, gateway, tm, log)
	planUC := usecase.NewPlanUseCase(planRepo)
	statsUC := usecase.NewStatsUseCase(subRepo, paymentRepo, log)

	webhookPool := worker.NewPool(cfg.Sweep.WebhookWorkers, log)
	webhookPool.Start(ctx)
	defer webhookPool.Stop()

	reconciler := sched.NewPaymentReconciler(payUC, paymentRepo, cfg.Sweep.Interval, cfg.Sweep.StaleAfter, log)
	go reconciler.Start(ctx)

	expiry := sched.NewExpiryWorker(subUC, cfg.Sweep.ExpiryEvery, log)
	go expiry.Start(ctx)

	go reportPoolStats(ctx, pool)

	srv := web.NewServer(
		payUC, subUC, planUC, statsUC,
		webhookPool,
		cfg.Server.JWTSecret, cfg.Server.AdminAPIKey, cfg.Paystack.SecretKey,
		log,
	)
	httpSrv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("http server listening")
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("http server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	log.Info().Msg("bye")
}

func reportPoolStats(ctx context.Context, pool *pgxpool.Pool) {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			st := pool.Stat()
			metrics.SetDBPoolStats(st.TotalConns(), st.IdleConns(), st.AcquiredConns())
		}
	}
}

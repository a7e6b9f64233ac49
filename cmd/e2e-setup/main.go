package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/jackc/pgx/v4/pgxpool"

	"elearn-billing/internal/config"
	"elearn-billing/internal/domain/model"
	"elearn-billing/internal/infra/db/postgres"
)

// This script sets up a clean, predictable database state for manual
// end-to-end testing: creates the schema, wipes data and seeds plans.
func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.LoadConfig(*configPath, true)
	if err != nil {
		log.Fatalf("config load: %v", err)
	}

	pool, err := postgres.NewPgxPool(ctx, cfg.Database.URL, 5)
	if err != nil {
		log.Fatalf("postgres connection failed: %v", err)
	}
	defer pool.Close()

	log.Println("--- Starting E2E Environment Setup ---")

	log.Println("[1/3] Ensuring schema...")
	applySchema(ctx, pool)

	log.Println("[2/3] Wiping all existing data...")
	_, err = pool.Exec(ctx, `
		TRUNCATE plans, payments, subscriptions
		RESTART IDENTITY CASCADE;
	`)
	if err != nil {
		log.Fatalf("failed to truncate tables: %v", err)
	}

	log.Println("[3/3] Seeding standard plans...")
	seedPlans(ctx, pool)

	log.Println("--- E2E Environment Setup Complete ---")
}

func applySchema(ctx context.Context, pool *pgxpool.Pool) {
	schema, err := os.ReadFile("deploy/postgres/init.sql")
	if err != nil {
		log.Fatalf("could not read init.sql: %v", err)
	}
	if _, err := pool.Exec(ctx, string(schema)); err != nil {
		log.Fatalf("failed to apply schema: %v", err)
	}
}

func seedPlans(ctx context.Context, pool *pgxpool.Pool) {
	planRepo := postgres.NewPlanRepo(pool)

	monthly, _ := model.NewPlan("plan-monthly", "monthly", 30, 1300)
	if err := planRepo.Save(ctx, nil, monthly); err != nil {
		log.Printf("failed to save monthly plan: %v", err)
	}

	yearly, _ := model.NewPlan("plan-yearly", "yearly", 365, 12000)
	if err := planRepo.Save(ctx, nil, yearly); err != nil {
		log.Printf("failed to save yearly plan: %v", err)
	}
}

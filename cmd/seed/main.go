package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"elearn-billing/internal/config"
	"elearn-billing/internal/domain/model"
	"elearn-billing/internal/infra/db/postgres"
)

// Seeds the default subscription plans. Safe to run repeatedly: plans are
// matched by name and only missing ones are inserted.
func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath, true)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := postgres.NewPgxPool(ctx, cfg.Database.URL, cfg.Database.MaxConns)
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	repo := postgres.NewPlanRepo(pool)

	defaults := []struct {
		name         string
		durationDays int
		amount       int64
	}{
		{"monthly", 30, 1300},
		{"quarterly", 90, 3500},
		{"yearly", 365, 12000},
	}

	existing, err := repo.ListAll(ctx, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "list plans: %v\n", err)
		os.Exit(1)
	}
	have := make(map[string]bool, len(existing))
	for _, p := range existing {
		have[p.Name] = true
	}

	for _, d := range defaults {
		if have[d.name] {
			fmt.Printf("plan %q already present, skipping\n", d.name)
			continue
		}
		plan, err := model.NewPlan(uuid.NewString(), d.name, d.durationDays, d.amount)
		if err != nil {
			fmt.Fprintf(os.Stderr, "build plan %q: %v\n", d.name, err)
			os.Exit(1)
		}
		if err := repo.Save(ctx, nil, plan); err != nil {
			fmt.Fprintf(os.Stderr, "save plan %q: %v\n", d.name, err)
			os.Exit(1)
		}
		fmt.Printf("seeded plan %q (%d days, %d)\n", d.name, d.durationDays, d.amount)
	}
}

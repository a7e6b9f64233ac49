package postgres

import (
	"context"
	"fmt"

	"elearn-billing/internal/domain"
	"elearn-billing/internal/domain/model"
	"elearn-billing/internal/domain/ports/repository"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// Ensure interface compliance
var _ repository.PlanRepository = (*planRepo)(nil)

type planRepo struct {
	pool *pgxpool.Pool
}

func NewPlanRepo(pool *pgxpool.Pool) *planRepo {
	return &planRepo{pool: pool}
}

func (r *planRepo) Save(ctx context.Context, tx repository.Tx, plan *model.Plan) error {
	const q = `
INSERT INTO plans (id, name, duration_days, amount, created_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (id) DO UPDATE
  SET name          = EXCLUDED.name,
      duration_days = EXCLUDED.duration_days,
      amount        = EXCLUDED.amount;`
	_, err := execSQL(ctx, r.pool, tx, q, plan.ID, plan.Name, plan.DurationDays, plan.Amount, plan.CreatedAt)
	if err != nil {
		return fmt.Errorf("save plan: %w", err)
	}
	return nil
}

func (r *planRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Plan, error) {
	const q = `
SELECT id, name, duration_days, amount, created_at
  FROM plans
 WHERE id = $1;`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	var p model.Plan
	if err := row.Scan(&p.ID, &p.Name, &p.DurationDays, &p.Amount, &p.CreatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find plan: %w", err)
	}
	return &p, nil
}

func (r *planRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.Plan, error) {
	const q = `
SELECT id, name, duration_days, amount, created_at
  FROM plans
 ORDER BY amount ASC;`
	rows, err := queryRows(ctx, r.pool, tx, q)
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	defer rows.Close()
	var out []*model.Plan
	for rows.Next() {
		var p model.Plan
		if err := rows.Scan(&p.ID, &p.Name, &p.DurationDays, &p.Amount, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}

func (r *planRepo) Delete(ctx context.Context, tx repository.Tx, id string) error {
	// Refuse to delete a plan that still has active subscriptions.
	const countSQL = `
SELECT COUNT(1) FROM subscriptions s
 WHERE s.plan_id = $1 AND s.status = 'active';`
	row, err := pickRow(ctx, r.pool, tx, countSQL, id)
	if err != nil {
		return err
	}
	var cnt int
	if err := row.Scan(&cnt); err != nil {
		return fmt.Errorf("count active by plan: %w", err)
	}
	if cnt > 0 {
		return domain.ErrOperationFailed
	}

	const q = `DELETE FROM plans WHERE id = $1;`
	cmd, err := execSQL(ctx, r.pool, tx, q, id)
	if err != nil {
		return fmt.Errorf("delete plan: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

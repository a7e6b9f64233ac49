package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"elearn-billing/internal/domain"
	"elearn-billing/internal/domain/model"
	"elearn-billing/internal/domain/ports/repository"
)

var _ repository.PaymentLedger = (*paymentRepo)(nil)

type paymentRepo struct{ pool *pgxpool.Pool }

func NewPaymentRepo(pool *pgxpool.Pool) *paymentRepo {
	return &paymentRepo{pool: pool}
}

const paymentColumns = `reference, user_id, plan_id, amount, status, gateway_reference, channel, created_at, updated_at, paid_at`

// Create inserts a new pending record. The unique constraint on `reference`
// is the idempotency guard at the storage layer; a conflict surfaces as
// domain.ErrDuplicateReference, never as an upsert.
func (r *paymentRepo) Create(ctx context.Context, tx repository.Tx, p *model.PaymentRecord) error {
	const q = `
INSERT INTO payments (` + paymentColumns + `)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10);`

	_, err := execSQL(ctx, r.pool, tx, q, p.Reference, p.UserID, p.PlanID, p.Amount, p.Status, p.GatewayReference, p.Channel, p.CreatedAt, p.UpdatedAt, p.PaidAt)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.ErrDuplicateReference
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *paymentRepo) FindByReference(ctx context.Context, tx repository.Tx, reference string) (*model.PaymentRecord, error) {
	q := `SELECT ` + paymentColumns + ` FROM payments WHERE reference=$1`
	if _, ok := tx.(pgx.Tx); ok {
		q += " FOR UPDATE"
	}
	q += ";"
	row, err := pickRow(ctx, r.pool, tx, q, reference)
	if err != nil {
		return nil, err
	}
	return scanPayment(row)
}

// MarkStatusIfPending atomically transitions a record out of pending.
// Zero affected rows means the record was already terminal (or absent);
// the caller distinguishes via FindByReference.
func (r *paymentRepo) MarkStatusIfPending(
	ctx context.Context, tx repository.Tx, reference string, status model.PaymentStatus, channel string, paidAt *time.Time,
) (bool, error) {
	const q = `
UPDATE payments
   SET status = $2,
       channel = COALESCE(NULLIF($3, ''), channel),
       paid_at = COALESCE($4, paid_at),
       updated_at = NOW()
 WHERE reference = $1
   AND status = 'pending';`

	cmd, err := execSQL(ctx, r.pool, tx, q, reference, string(status), channel, paidAt)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return false, err
		}
		return false, domain.ErrOperationFailed
	}
	return cmd.RowsAffected() >= 1, nil
}

func (r *paymentRepo) ListPendingOlderThan(ctx context.Context, tx repository.Tx, olderThan time.Time, limit int) ([]*model.PaymentRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	const q = `SELECT ` + paymentColumns + ` FROM payments WHERE status='pending' AND created_at < $1 ORDER BY created_at ASC LIMIT $2;`
	rows, err := queryRows(ctx, r.pool, tx, q, olderThan, limit)
	if err != nil {
		switch err {
		case pgx.ErrNoRows:
			return nil, domain.ErrNotFound
		case domain.ErrInvalidArgument, domain.ErrInvalidExecContext:
			return nil, err
		default:
			return nil, domain.ErrOperationFailed
		}
	}
	defer rows.Close()

	var out []*model.PaymentRecord
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	return out, nil
}

func (r *paymentRepo) SumByPeriod(ctx context.Context, tx repository.Tx, period string) (int64, error) {
	const q = `SELECT COALESCE(SUM(amount),0) FROM payments WHERE status='success' AND paid_at >= DATE_TRUNC($1, NOW());`
	row, err := pickRow(ctx, r.pool, tx, q, period)
	if err != nil {
		return 0, err
	}

	var sum int64
	if err := row.Scan(&sum); err != nil {
		return 0, domain.ErrReadDatabaseRow
	}
	return sum, nil
}

func scanPayment(row pgx.Row) (*model.PaymentRecord, error) {
	p := &model.PaymentRecord{}
	if err := row.Scan(&p.Reference, &p.UserID, &p.PlanID, &p.Amount, &p.Status, &p.GatewayReference, &p.Channel, &p.CreatedAt, &p.UpdatedAt, &p.PaidAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return p, nil
}

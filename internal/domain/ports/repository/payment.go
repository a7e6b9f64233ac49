package repository

import (
	"context"
	"time"

	"elearn-billing/internal/domain/model"
)

// PaymentLedger is the durable record of payment attempts keyed by reference.
//
// Create relies on the unique constraint on `reference` and returns
// domain.ErrDuplicateReference on conflict; that constraint is the
// storage-level idempotency guard, not an accident of schema.
//
// MarkStatusIfPending performs the conditional transition in a single
// statement (UPDATE ... WHERE status='pending'). It returns false when zero
// rows were affected, i.e. the record was already terminal; callers treat
// that as the idempotent-replay path, never as an error.
type PaymentLedger interface {
	Create(ctx context.Context, tx Tx, p *model.PaymentRecord) error
	FindByReference(ctx context.Context, tx Tx, reference string) (*model.PaymentRecord, error)
	MarkStatusIfPending(ctx context.Context, tx Tx, reference string, status model.PaymentStatus, channel string, paidAt *time.Time) (bool, error)
	ListPendingOlderThan(ctx context.Context, tx Tx, olderThan time.Time, limit int) ([]*model.PaymentRecord, error)
	SumByPeriod(ctx context.Context, tx Tx, period string) (int64, error)
}

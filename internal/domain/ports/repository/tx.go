package repository

import (
	"context"

	"github.com/jackc/pgx/v4"
)

type Tx interface{}

// TransactionManager provides a thin abstraction to execute a function within a
// database transaction, passing the underlying transaction handle via `tx`.
//
// Repository methods accept a Tx and detect a live transaction on the
// implementation side (to run SELECT ... FOR UPDATE / tx-bound Exec as needed).
// A nil Tx means the non-transactional pool path.
//
// USAGE
//
//	tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
//	    rec, err := ledger.FindByReference(ctx, tx, ref)
//	    ...
//	    return err
//	})
//
// The concrete type of `tx` is infra-defined (pgx.Tx for Postgres).
type TransactionManager interface {
	WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx Tx) error) error
}

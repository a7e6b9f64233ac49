// File: internal/usecase/payment_uc.go
package usecase

import (
	"context"
	"crypto/rand"
	"errors"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"elearn-billing/internal/domain"
	"elearn-billing/internal/domain/model"
	"elearn-billing/internal/domain/ports/adapter"
	"elearn-billing/internal/domain/ports/repository"
	"elearn-billing/internal/infra/logging"
	"elearn-billing/internal/infra/metrics"
)

// Compile-time check
var _ PaymentUseCase = (*paymentUC)(nil)

// InitOutcome is what the caller needs to send the payer to the gateway.
type InitOutcome struct {
	AuthorizationURL string
	Reference        string
	Amount           int64
}

// VerifyOutcome reports the settled (or replayed) state of one reference.
type VerifyOutcome struct {
	Payment      *model.PaymentRecord
	Subscription *model.Subscription // nil unless this call granted/extended one
	Replayed     bool                // true when the record was already terminal
}

// PaymentUseCase orchestrates the payment reconciliation workflow. It is the
// only component allowed to touch both the ledger and the subscription store.
type PaymentUseCase interface {
	// Initialize creates a gateway transaction and a pending ledger record.
	Initialize(ctx context.Context, userID, email, planID string, amount int64) (*InitOutcome, error)
	// Verify resolves the final state of a reference. Calling it any number
	// of times after the first terminal resolution returns the stored outcome
	// without touching the gateway or the subscription again.
	Verify(ctx context.Context, reference string) (*VerifyOutcome, error)
}

type paymentUC struct {
	ledger  repository.PaymentLedger
	plans   repository.PlanRepository
	subUC   SubscriptionUseCase
	gateway adapter.PaymentGateway
	tm      repository.TransactionManager
	log     *zerolog.Logger
}

func NewPaymentUseCase(
	ledger repository.PaymentLedger,
	plans repository.PlanRepository,
	subUC SubscriptionUseCase,
	gateway adapter.PaymentGateway,
	tm repository.TransactionManager,
	logger *zerolog.Logger,
) *paymentUC {
	return &paymentUC{ledger: ledger, plans: plans, subUC: subUC, gateway: gateway, tm: tm, log: logger}
}

func newReference() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String()
}

func (u *paymentUC) Initialize(ctx context.Context, userID, email, planID string, amount int64) (*InitOutcome, error) {
	if userID == "" || email == "" || planID == "" {
		return nil, domain.ErrInvalidArgument
	}
	plan, err := u.plans.FindByID(ctx, nil, planID)
	if err != nil {
		return nil, err
	}
	// The plan is the source of truth for the charge; a client-supplied
	// amount must agree with it.
	if amount > 0 && amount != plan.Amount {
		return nil, domain.ErrInvalidArgument
	}

	reference := newReference()
	ctx = logging.WithReference(ctx, reference)
	log := logging.With(ctx, u.log)

	res, err := u.gateway.Initialize(ctx, email, plan.Amount, reference, "", map[string]interface{}{
		"plan_id": plan.ID,
		"user_id": userID,
	})
	if err != nil {
		log.Warn().Err(err).Str("plan_id", planID).Msg("gateway initialize failed")
		return nil, err
	}

	now := time.Now()
	rec := &model.PaymentRecord{
		Reference:        res.Reference,
		UserID:           userID,
		PlanID:           plan.ID,
		Amount:           plan.Amount,
		Status:           model.PaymentStatusPending,
		GatewayReference: res.AccessCode,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := u.ledger.Create(ctx, nil, rec); err != nil {
		if errors.Is(err, domain.ErrDuplicateReference) {
			// practically unreachable: references are generated fresh per call
			return nil, domain.ErrInitializationConflict
		}
		return nil, err
	}

	metrics.IncPayment(string(model.PaymentStatusPending))
	log.Info().Str("plan_id", plan.ID).Int64("amount", plan.Amount).Msg("payment initialized")

	return &InitOutcome{
		AuthorizationURL: res.AuthorizationURL,
		Reference:        res.Reference,
		Amount:           plan.Amount,
	}, nil
}

func (u *paymentUC) Verify(ctx context.Context, reference string) (*VerifyOutcome, error) {
	if reference == "" {
		return nil, domain.ErrInvalidArgument
	}
	ctx = logging.WithReference(ctx, reference)
	log := logging.With(ctx, u.log)
	start := time.Now()

	rec, err := u.ledger.FindByReference(ctx, nil, reference)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			metrics.IncPaymentVerify("fail", "unknown_reference")
			return nil, domain.ErrUnknownReference
		}
		return nil, err
	}

	// Idempotency short-circuit: a terminal record is returned as-is, with
	// no gateway call and no subscription mutation. This is the most
	// important correctness property of the whole workflow.
	if rec.Status.IsTerminal() {
		metrics.IncPaymentVerify("ok", "replay")
		return &VerifyOutcome{Payment: rec, Replayed: true}, nil
	}

	res, err := u.gateway.Verify(ctx, reference)
	if err != nil {
		// Transient: the record stays pending; webhook redelivery or the
		// reconcile sweep retries later.
		metrics.IncPaymentVerify("fail", "gateway_unavailable")
		log.Warn().Err(err).Msg("gateway verify unavailable")
		return nil, err
	}

	switch res.Status {
	case adapter.VerifyStatusPending:
		metrics.IncPaymentVerify("fail", "still_pending")
		return nil, domain.ErrVerificationPending

	case adapter.VerifyStatusFailed:
		out, err := u.settleFailed(ctx, rec)
		if err == nil {
			metrics.IncPaymentVerify("ok", "gateway_failed")
			metrics.ObservePaymentVerify("fail", time.Since(start).Seconds())
		}
		return out, err

	case adapter.VerifyStatusSuccess:
		// Money-relevant guard: a verified amount that disagrees with the
		// ledger is never settled automatically.
		if res.Amount != rec.Amount*100 {
			log.Error().Int64("ledger_amount", rec.Amount).Int64("gateway_amount", res.Amount).Msg("verified amount mismatch")
			metrics.IncPaymentVerify("fail", "amount_mismatch")
			return nil, domain.ErrAmountMismatch
		}
		out, err := u.settleSuccess(ctx, rec, &res)
		if err == nil {
			metrics.IncPaymentVerify("ok", "settled")
			metrics.ObservePaymentVerify("ok", time.Since(start).Seconds())
		}
		return out, err
	}

	return nil, domain.ErrOperationFailed
}

// settleFailed marks the record failed; no subscription change. Losing the
// conditional update to a concurrent call is the replay path, not an error.
func (u *paymentUC) settleFailed(ctx context.Context, rec *model.PaymentRecord) (*VerifyOutcome, error) {
	log := logging.With(ctx, u.log)

	updated, err := u.ledger.MarkStatusIfPending(ctx, nil, rec.Reference, model.PaymentStatusFailed, "", nil)
	if err != nil {
		return nil, err
	}
	if !updated {
		settled, err := u.ledger.FindByReference(ctx, nil, rec.Reference)
		if err != nil {
			return nil, err
		}
		return &VerifyOutcome{Payment: settled, Replayed: true}, nil
	}

	rec.Status = model.PaymentStatusFailed
	rec.UpdatedAt = time.Now()
	metrics.IncPayment(string(model.PaymentStatusFailed))
	log.Info().Msg("payment settled as failed")
	return &VerifyOutcome{Payment: rec}, nil
}

// settleSuccess runs the status transition and the subscription grant inside
// one transaction: a crash between the two steps must not leave the ledger
// showing success with no matching subscription.
func (u *paymentUC) settleSuccess(ctx context.Context, rec *model.PaymentRecord, res *adapter.VerifyResult) (*VerifyOutcome, error) {
	log := logging.With(ctx, u.log)

	plan, err := u.plans.FindByID(ctx, nil, rec.PlanID)
	if err != nil {
		return nil, err
	}

	var out VerifyOutcome
	err = u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		paidAt := res.PaidAt
		if paidAt == nil {
			now := time.Now()
			paidAt = &now
		}
		updated, err := u.ledger.MarkStatusIfPending(ctx, tx, rec.Reference, model.PaymentStatusSuccess, res.Channel, paidAt)
		if err != nil {
			return err
		}
		if !updated {
			// a concurrent verification won the transition
			settled, err := u.ledger.FindByReference(ctx, tx, rec.Reference)
			if err != nil {
				return err
			}
			out.Payment = settled
			out.Replayed = true
			return nil
		}

		sub, created, err := u.subUC.GrantForPayment(ctx, tx, rec.UserID, plan, rec.Amount, res.Channel)
		if err != nil {
			return err
		}

		settled := *rec
		settled.Status = model.PaymentStatusSuccess
		settled.Channel = res.Channel
		settled.PaidAt = paidAt
		settled.UpdatedAt = time.Now()
		out.Payment = &settled
		out.Subscription = sub

		if created {
			log.Info().Str("subscription_id", sub.ID).Msg("payment settled, subscription created")
		} else {
			log.Info().Str("subscription_id", sub.ID).Time("expires_at", sub.ExpiresAt).Msg("payment settled, subscription extended")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !out.Replayed {
		metrics.IncPayment(string(model.PaymentStatusSuccess))
		metrics.AddPaymentRevenue("ngn", out.Payment.Amount)
	}
	return &out, nil
}

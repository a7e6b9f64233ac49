//go:build !integration

package usecase_test

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"elearn-billing/internal/domain"
	"elearn-billing/internal/domain/model"
	"elearn-billing/internal/domain/ports/adapter"
	"elearn-billing/internal/domain/ports/repository"
)

// =============================
// Repositories
// =============================

// MockPaymentLedger is an in-memory ledger. Every method can be overridden by
// assigning the corresponding *Func field; the default behavior is stateful.
type MockPaymentLedger struct {
	mu    sync.Mutex
	store map[string]*model.PaymentRecord // by reference

	CreateFunc               func(ctx context.Context, tx repository.Tx, p *model.PaymentRecord) error
	FindByReferenceFunc      func(ctx context.Context, tx repository.Tx, reference string) (*model.PaymentRecord, error)
	MarkStatusIfPendingFunc  func(ctx context.Context, tx repository.Tx, reference string, status model.PaymentStatus, channel string, paidAt *time.Time) (bool, error)
	ListPendingOlderThanFunc func(ctx context.Context, tx repository.Tx, olderThan time.Time, limit int) ([]*model.PaymentRecord, error)
	SumByPeriodFunc          func(ctx context.Context, tx repository.Tx, period string) (int64, error)
}

var _ repository.PaymentLedger = (*MockPaymentLedger)(nil)

func NewMockPaymentLedger() *MockPaymentLedger {
	return &MockPaymentLedger{store: make(map[string]*model.PaymentRecord)}
}

func (m *MockPaymentLedger) Create(ctx context.Context, tx repository.Tx, p *model.PaymentRecord) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, p)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[p.Reference]; ok {
		return domain.ErrDuplicateReference
	}
	cp := *p
	m.store[p.Reference] = &cp
	return nil
}

func (m *MockPaymentLedger) FindByReference(ctx context.Context, tx repository.Tx, reference string) (*model.PaymentRecord, error) {
	if m.FindByReferenceFunc != nil {
		return m.FindByReferenceFunc(ctx, tx, reference)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.store[reference]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *MockPaymentLedger) MarkStatusIfPending(ctx context.Context, tx repository.Tx, reference string, status model.PaymentStatus, channel string, paidAt *time.Time) (bool, error) {
	if m.MarkStatusIfPendingFunc != nil {
		return m.MarkStatusIfPendingFunc(ctx, tx, reference, status, channel, paidAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.store[reference]
	if !ok || p.Status != model.PaymentStatusPending {
		return false, nil
	}
	p.Status = status
	if channel != "" {
		p.Channel = channel
	}
	if paidAt != nil {
		p.PaidAt = paidAt
	}
	p.UpdatedAt = time.Now()
	return true, nil
}

func (m *MockPaymentLedger) ListPendingOlderThan(ctx context.Context, tx repository.Tx, olderThan time.Time, limit int) ([]*model.PaymentRecord, error) {
	if m.ListPendingOlderThanFunc != nil {
		return m.ListPendingOlderThanFunc(ctx, tx, olderThan, limit)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.PaymentRecord
	for _, p := range m.store {
		if p.Status == model.PaymentStatusPending && p.CreatedAt.Before(olderThan) {
			cp := *p
			out = append(out, &cp)
			if limit > 0 && len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (m *MockPaymentLedger) SumByPeriod(ctx context.Context, tx repository.Tx, period string) (int64, error) {
	if m.SumByPeriodFunc != nil {
		return m.SumByPeriodFunc(ctx, tx, period)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var sum int64
	for _, p := range m.store {
		if p.Status == model.PaymentStatusSuccess {
			sum += p.Amount
		}
	}
	return sum, nil
}

// MockPlanRepo keeps plans in memory, keyed by ID.
type MockPlanRepo struct {
	mu    sync.Mutex
	plans map[string]*model.Plan

	FindByIDFunc func(ctx context.Context, tx repository.Tx, id string) (*model.Plan, error)
	DeleteFunc   func(ctx context.Context, tx repository.Tx, id string) error
}

var _ repository.PlanRepository = (*MockPlanRepo)(nil)

func NewMockPlanRepo() *MockPlanRepo {
	return &MockPlanRepo{plans: make(map[string]*model.Plan)}
}

func (m *MockPlanRepo) Save(ctx context.Context, tx repository.Tx, plan *model.Plan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *plan
	m.plans[plan.ID] = &cp
	return nil
}

func (m *MockPlanRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Plan, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, tx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.plans[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *MockPlanRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.Plan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*model.Plan, 0, len(m.plans))
	for _, p := range m.plans {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (m *MockPlanRepo) Delete(ctx context.Context, tx repository.Tx, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, tx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.plans[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.plans, id)
	return nil
}

// MockSubscriptionRepo keeps subscriptions in memory, keyed by ID.
type MockSubscriptionRepo struct {
	mu   sync.Mutex
	subs map[string]*model.Subscription

	SaveFunc             func(ctx context.Context, tx repository.Tx, sub *model.Subscription) error
	FindActiveByUserFunc func(ctx context.Context, tx repository.Tx, userID string) (*model.Subscription, error)
	LockUserFunc         func(ctx context.Context, tx repository.Tx, userID string) error
	ExpireDueFunc        func(ctx context.Context, tx repository.Tx) (int, error)

	LockCalls int // counts LockUser invocations
}

var _ repository.SubscriptionRepository = (*MockSubscriptionRepo)(nil)

func NewMockSubscriptionRepo() *MockSubscriptionRepo {
	return &MockSubscriptionRepo{subs: make(map[string]*model.Subscription)}
}

func (m *MockSubscriptionRepo) Save(ctx context.Context, tx repository.Tx, sub *model.Subscription) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, tx, sub)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *sub
	m.subs[sub.ID] = &cp
	return nil
}

func (m *MockSubscriptionRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.subs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *MockSubscriptionRepo) FindActiveByUser(ctx context.Context, tx repository.Tx, userID string) (*model.Subscription, error) {
	if m.FindActiveByUserFunc != nil {
		return m.FindActiveByUserFunc(ctx, tx, userID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.subs {
		if s.UserID == userID && s.Status == model.SubscriptionStatusActive {
			cp := *s
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockSubscriptionRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string) ([]*model.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Subscription
	for _, s := range m.subs {
		if s.UserID == userID {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *MockSubscriptionRepo) LockUser(ctx context.Context, tx repository.Tx, userID string) error {
	m.mu.Lock()
	m.LockCalls++
	m.mu.Unlock()
	if m.LockUserFunc != nil {
		return m.LockUserFunc(ctx, tx, userID)
	}
	return nil
}

func (m *MockSubscriptionRepo) ExpireDue(ctx context.Context, tx repository.Tx) (int, error) {
	if m.ExpireDueFunc != nil {
		return m.ExpireDueFunc(ctx, tx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	n := 0
	for _, s := range m.subs {
		if s.Status == model.SubscriptionStatusActive && !s.ExpiresAt.After(now) {
			s.Status = model.SubscriptionStatusExpired
			n++
		}
	}
	return n, nil
}

func (m *MockSubscriptionRepo) CountActiveByPlan(ctx context.Context, tx repository.Tx) (map[string]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]int)
	for _, s := range m.subs {
		if s.Status == model.SubscriptionStatusActive {
			out[s.PlanName]++
		}
	}
	return out, nil
}

// =============================
// Adapters
// =============================

// MockPaymentGateway simulates the provider; defaults accept everything.
type MockPaymentGateway struct {
	mu          sync.Mutex
	VerifyCalls int

	InitializeFunc func(ctx context.Context, email string, amount int64, reference, callbackURL string, meta map[string]interface{}) (adapter.InitResult, error)
	VerifyFunc     func(ctx context.Context, reference string) (adapter.VerifyResult, error)
}

var _ adapter.PaymentGateway = (*MockPaymentGateway)(nil)

func (m *MockPaymentGateway) Name() string { return "mock" }

func (m *MockPaymentGateway) Initialize(ctx context.Context, email string, amount int64, reference, callbackURL string, meta map[string]interface{}) (adapter.InitResult, error) {
	if m.InitializeFunc != nil {
		return m.InitializeFunc(ctx, email, amount, reference, callbackURL, meta)
	}
	return adapter.InitResult{
		AuthorizationURL: "https://checkout.example/" + reference,
		Reference:        reference,
		AccessCode:       "ac_" + reference,
	}, nil
}

func (m *MockPaymentGateway) Verify(ctx context.Context, reference string) (adapter.VerifyResult, error) {
	m.mu.Lock()
	m.VerifyCalls++
	m.mu.Unlock()
	if m.VerifyFunc != nil {
		return m.VerifyFunc(ctx, reference)
	}
	return adapter.VerifyResult{Status: adapter.VerifyStatusSuccess, Channel: "card"}, nil
}

// =============================
// Transaction manager
// =============================

type MockTxManager struct {
	WithTxFunc func(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error
}

var _ repository.TransactionManager = (*MockTxManager)(nil)

// WithTx runs the function immediately without a real transaction. Assign
// WithTxFunc to control transactional behavior in a specific test.
func (m *MockTxManager) WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	if m.WithTxFunc != nil {
		return m.WithTxFunc(ctx, txOpt, fn)
	}
	return fn(ctx, nil)
}

func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}

package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	budgetDomain "github.com/allisson/privmetrics/internal/budget/domain"
	"github.com/allisson/privmetrics/internal/database"
	apperrors "github.com/allisson/privmetrics/internal/errors"
)

// budgetUseCase implements BudgetUseCase.
type budgetUseCase struct {
	txManager      database.TxManager
	accountRepo    BudgetAccountRepository
	windowDuration time.Duration
	epsilonMax     float64
	deltaMax       float64

	mu     sync.Mutex
	scopes map[string]*sync.Mutex

	now func() time.Time
}

// scopeLock returns the mutex serializing admissions for one scope.
// Locks are never removed; the number of scopes is small and bounded.
func (b *budgetUseCase) scopeLock(scope string) *sync.Mutex {
	b.mu.Lock()
	defer b.mu.Unlock()

	lock, ok := b.scopes[scope]
	if !ok {
		lock = &sync.Mutex{}
		b.scopes[scope] = lock
	}
	return lock
}

func validateCharge(epsilon, delta float64) error {
	if epsilon <= 0 {
		return budgetDomain.ErrInvalidEpsilon
	}
	if delta < 0 {
		return budgetDomain.ErrInvalidDelta
	}
	return nil
}

// AdmitAndCommit atomically checks and charges the scope's budget.
func (b *budgetUseCase) AdmitAndCommit(
	ctx context.Context,
	scope string,
	epsilon, delta float64,
) (*budgetDomain.Admission, error) {
	if err := validateCharge(epsilon, delta); err != nil {
		return nil, err
	}

	lock := b.scopeLock(scope)
	lock.Lock()
	defer lock.Unlock()

	var admission *budgetDomain.Admission
	err := b.txManager.WithTx(ctx, func(txCtx context.Context) error {
		account, err := b.currentAccount(txCtx, scope)
		if err != nil {
			return err
		}

		if !account.CanAdmit(epsilon, delta) {
			admission = &budgetDomain.Admission{
				Granted:          false,
				Scope:            scope,
				WindowStart:      account.WindowStart,
				RemainingEpsilon: account.RemainingEpsilon(),
				RemainingDelta:   account.RemainingDelta(),
			}
			return nil
		}

		account.Spend(epsilon, delta)
		if err := b.accountRepo.UpdateSpend(txCtx, account); err != nil {
			return err
		}

		admission = &budgetDomain.Admission{
			Granted:          true,
			Scope:            scope,
			WindowStart:      account.WindowStart,
			EpsilonCharged:   epsilon,
			DeltaCharged:     delta,
			RemainingEpsilon: account.RemainingEpsilon(),
			RemainingDelta:   account.RemainingDelta(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return admission, nil
}

// currentAccount loads (with a row lock) or lazily opens the account for the
// scope's current window. Must run inside a transaction.
func (b *budgetUseCase) currentAccount(
	ctx context.Context,
	scope string,
) (*budgetDomain.BudgetAccount, error) {
	windowStart, windowEnd := budgetDomain.WindowFor(b.now(), b.windowDuration)

	account, err := b.accountRepo.GetForUpdate(ctx, scope, windowStart)
	switch {
	case err == nil:
		return account, nil
	case apperrors.Is(err, budgetDomain.ErrAccountNotFound):
		now := b.now().UTC()
		account = &budgetDomain.BudgetAccount{
			ID:          uuid.Must(uuid.NewV7()),
			Scope:       scope,
			WindowStart: windowStart,
			WindowEnd:   windowEnd,
			EpsilonMax:  b.epsilonMax,
			DeltaMax:    b.deltaMax,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := b.accountRepo.Create(ctx, account); err != nil {
			return nil, err
		}
		return account, nil
	default:
		return nil, err
	}
}

// Release refunds a previously committed charge.
func (b *budgetUseCase) Release(
	ctx context.Context,
	scope string,
	windowStart time.Time,
	epsilon, delta float64,
) error {
	if err := validateCharge(epsilon, delta); err != nil {
		return err
	}

	lock := b.scopeLock(scope)
	lock.Lock()
	defer lock.Unlock()

	return b.txManager.WithTx(ctx, func(txCtx context.Context) error {
		account, err := b.accountRepo.GetForUpdate(txCtx, scope, windowStart)
		if err != nil {
			return err
		}

		account.Refund(epsilon, delta)
		return b.accountRepo.UpdateSpend(txCtx, account)
	})
}

// Remaining returns an advisory view of the scope's current-window budget.
func (b *budgetUseCase) Remaining(
	ctx context.Context,
	scope string,
) (*budgetDomain.BudgetAccount, error) {
	windowStart, windowEnd := budgetDomain.WindowFor(b.now(), b.windowDuration)

	account, err := b.accountRepo.GetLatest(ctx, scope)
	switch {
	case err == nil && account.WindowStart.UTC().Equal(windowStart):
		return account, nil
	case err == nil || apperrors.Is(err, budgetDomain.ErrAccountNotFound):
		// No spend recorded in the current window yet: report a full budget
		// without opening an account.
		return &budgetDomain.BudgetAccount{
			Scope:       scope,
			WindowStart: windowStart,
			WindowEnd:   windowEnd,
			EpsilonMax:  b.epsilonMax,
			DeltaMax:    b.deltaMax,
		}, nil
	default:
		return nil, err
	}
}

// NewBudgetUseCase creates a new budget use case. The epsilon/delta caps and
// window duration apply to every lazily opened account.
func NewBudgetUseCase(
	txManager database.TxManager,
	accountRepo BudgetAccountRepository,
	windowDuration time.Duration,
	epsilonMax, deltaMax float64,
) BudgetUseCase {
	return &budgetUseCase{
		txManager:      txManager,
		accountRepo:    accountRepo,
		windowDuration: windowDuration,
		epsilonMax:     epsilonMax,
		deltaMax:       deltaMax,
		scopes:         make(map[string]*sync.Mutex),
		now:            time.Now,
	}
}

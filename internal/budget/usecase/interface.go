// Package usecase implements the privacy budget ledger business logic.
//
// Admission control is the one place budget spend is mutated. Two layers keep
// concurrent admissions correct: a per-scope mutex serializes callers inside
// this process, and the repository's row lock (SELECT ... FOR UPDATE inside
// the transaction) serializes across processes sharing the ledger.
package usecase

import (
	"context"
	"time"

	budgetDomain "github.com/allisson/privmetrics/internal/budget/domain"
)

// BudgetAccountRepository defines the interface for budget ledger persistence.
type BudgetAccountRepository interface {
	// Create inserts a new budget account row.
	Create(ctx context.Context, account *budgetDomain.BudgetAccount) error

	// GetForUpdate retrieves the account for (scope, windowStart) with a row
	// lock. Must be called inside a transaction. Returns ErrAccountNotFound
	// when the window has no account yet.
	GetForUpdate(ctx context.Context, scope string, windowStart time.Time) (*budgetDomain.BudgetAccount, error)

	// GetLatest retrieves the most recent account for a scope without locking.
	GetLatest(ctx context.Context, scope string) (*budgetDomain.BudgetAccount, error)

	// UpdateSpend persists the account's current spend counters.
	UpdateSpend(ctx context.Context, account *budgetDomain.BudgetAccount) error
}

// BudgetUseCase defines the business logic for privacy budget admission.
type BudgetUseCase interface {
	// AdmitAndCommit atomically checks and charges the scope's budget for the
	// current window. A denial is returned as a non-granted Admission carrying
	// the remaining budget, not as an error. The first admission of a window
	// lazily opens the account.
	AdmitAndCommit(ctx context.Context, scope string, epsilon, delta float64) (*budgetDomain.Admission, error)

	// Release refunds a previously committed charge, e.g. when the query
	// pipeline fails after admission. Refunds never drive spend below zero.
	Release(ctx context.Context, scope string, windowStart time.Time, epsilon, delta float64) error

	// Remaining returns an advisory view of the scope's current-window
	// budget. The answer may be stale by the time the caller acts on it;
	// only AdmitAndCommit decides admission.
	Remaining(ctx context.Context, scope string) (*budgetDomain.BudgetAccount, error)
}

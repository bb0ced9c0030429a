package usecase

import (
	"context"
	"time"

	budgetDomain "github.com/allisson/privmetrics/internal/budget/domain"
	"github.com/allisson/privmetrics/internal/metrics"
)

// budgetUseCaseWithMetrics decorates BudgetUseCase with metrics instrumentation.
type budgetUseCaseWithMetrics struct {
	next    BudgetUseCase
	metrics metrics.BusinessMetrics
}

// NewBudgetUseCaseWithMetrics wraps a BudgetUseCase with metrics recording.
func NewBudgetUseCaseWithMetrics(useCase BudgetUseCase, m metrics.BusinessMetrics) BudgetUseCase {
	return &budgetUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// AdmitAndCommit records metrics for admission operations. A denial is a
// normal outcome and is reported with its own status so dashboards can
// separate refused queries from ledger failures.
func (b *budgetUseCaseWithMetrics) AdmitAndCommit(
	ctx context.Context,
	scope string,
	epsilon, delta float64,
) (*budgetDomain.Admission, error) {
	start := time.Now()
	admission, err := b.next.AdmitAndCommit(ctx, scope, epsilon, delta)

	status := "success"
	switch {
	case err != nil:
		status = "error"
	case !admission.Granted:
		status = "denied"
	}

	b.metrics.RecordOperation(ctx, "budget", "admit_and_commit", status)
	b.metrics.RecordDuration(ctx, "budget", "admit_and_commit", time.Since(start), status)

	return admission, err
}

// Release records metrics for refund operations.
func (b *budgetUseCaseWithMetrics) Release(
	ctx context.Context,
	scope string,
	windowStart time.Time,
	epsilon, delta float64,
) error {
	start := time.Now()
	err := b.next.Release(ctx, scope, windowStart, epsilon, delta)

	status := "success"
	if err != nil {
		status = "error"
	}

	b.metrics.RecordOperation(ctx, "budget", "release", status)
	b.metrics.RecordDuration(ctx, "budget", "release", time.Since(start), status)

	return err
}

// Remaining records metrics for budget inspection operations.
func (b *budgetUseCaseWithMetrics) Remaining(
	ctx context.Context,
	scope string,
) (*budgetDomain.BudgetAccount, error) {
	start := time.Now()
	account, err := b.next.Remaining(ctx, scope)

	status := "success"
	if err != nil {
		status = "error"
	}

	b.metrics.RecordOperation(ctx, "budget", "remaining", status)
	b.metrics.RecordDuration(ctx, "budget", "remaining", time.Since(start), status)

	return account, err
}

package usecase

import (
	"context"
	"time"

	auditDomain "github.com/allisson/privmetrics/internal/audit/domain"
	"github.com/allisson/privmetrics/internal/metrics"
)

// auditChainUseCaseWithMetrics decorates AuditChainUseCase with metrics instrumentation.
type auditChainUseCaseWithMetrics struct {
	next    AuditChainUseCase
	metrics metrics.BusinessMetrics
}

// NewAuditChainUseCaseWithMetrics wraps an AuditChainUseCase with metrics recording.
func NewAuditChainUseCaseWithMetrics(useCase AuditChainUseCase, m metrics.BusinessMetrics) AuditChainUseCase {
	return &auditChainUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// Append records metrics for chain append operations.
func (a *auditChainUseCaseWithMetrics) Append(
	ctx context.Context,
	actor string,
	action auditDomain.ActionKind,
	subject string,
	metadata map[string]any,
) error {
	start := time.Now()
	err := a.next.Append(ctx, actor, action, subject, metadata)

	status := "success"
	if err != nil {
		status = "error"
	}

	a.metrics.RecordOperation(ctx, "audit", "append", status)
	a.metrics.RecordDuration(ctx, "audit", "append", time.Since(start), status)

	return err
}

// List records metrics for chain read operations.
func (a *auditChainUseCaseWithMetrics) List(
	ctx context.Context,
	offset, limit int,
	actor string,
	action auditDomain.ActionKind,
) ([]*auditDomain.AuditEntry, error) {
	start := time.Now()
	entries, err := a.next.List(ctx, offset, limit, actor, action)

	status := "success"
	if err != nil {
		status = "error"
	}

	a.metrics.RecordOperation(ctx, "audit", "list", status)
	a.metrics.RecordDuration(ctx, "audit", "list", time.Since(start), status)

	return entries, err
}

// Verify records metrics for chain verification operations. A verification
// that completes but finds a broken link is reported as "tampered" so the
// condition is visible without scraping logs.
func (a *auditChainUseCaseWithMetrics) Verify(
	ctx context.Context,
	fromSeq, toSeq uint64,
) (*auditDomain.ChainVerificationResult, error) {
	start := time.Now()
	result, err := a.next.Verify(ctx, fromSeq, toSeq)

	status := "success"
	switch {
	case err != nil:
		status = "error"
	case !result.Valid():
		status = "tampered"
	}

	a.metrics.RecordOperation(ctx, "audit", "verify", status)
	a.metrics.RecordDuration(ctx, "audit", "verify", time.Since(start), status)

	return result, err
}

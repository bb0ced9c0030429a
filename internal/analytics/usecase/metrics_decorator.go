package usecase

import (
	"context"
	"time"

	analyticsDomain "github.com/allisson/privmetrics/internal/analytics/domain"
	authDomain "github.com/allisson/privmetrics/internal/auth/domain"
	"github.com/allisson/privmetrics/internal/metrics"
)

// analyticsUseCaseWithMetrics decorates AnalyticsUseCase with metrics instrumentation.
type analyticsUseCaseWithMetrics struct {
	next    AnalyticsUseCase
	metrics metrics.BusinessMetrics
}

// NewAnalyticsUseCaseWithMetrics wraps an AnalyticsUseCase with metrics recording.
func NewAnalyticsUseCaseWithMetrics(useCase AnalyticsUseCase, m metrics.BusinessMetrics) AnalyticsUseCase {
	return &analyticsUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// Ingest records metrics for event ingestion operations.
func (a *analyticsUseCaseWithMetrics) Ingest(
	ctx context.Context,
	principal *authDomain.Principal,
	scope string,
	properties map[string]any,
	fieldMap analyticsDomain.FieldTokenizationMap,
) (*analyticsDomain.Event, error) {
	start := time.Now()
	event, err := a.next.Ingest(ctx, principal, scope, properties, fieldMap)

	status := "success"
	if err != nil {
		status = "error"
	}

	a.metrics.RecordOperation(ctx, "analytics", "ingest", status)
	a.metrics.RecordDuration(ctx, "analytics", "ingest", time.Since(start), status)

	return event, err
}

// Query records metrics for differentially private query operations. Granted
// queries additionally accumulate the charged epsilon and delta per scope.
func (a *analyticsUseCaseWithMetrics) Query(
	ctx context.Context,
	principal *authDomain.Principal,
	request *analyticsDomain.QueryRequest,
) (*analyticsDomain.QueryResult, error) {
	start := time.Now()
	result, err := a.next.Query(ctx, principal, request)

	status := "success"
	switch {
	case err != nil:
		status = "error"
	case result.Denied:
		status = "denied"
	}

	a.metrics.RecordOperation(ctx, "analytics", "query", status)
	a.metrics.RecordDuration(ctx, "analytics", "query", time.Since(start), status)

	if err == nil && !result.Denied {
		a.metrics.RecordBudgetSpend(
			ctx,
			request.Scope,
			string(request.Mechanism),
			result.EpsilonCharged,
			result.DeltaCharged,
		)
	}

	return result, err
}

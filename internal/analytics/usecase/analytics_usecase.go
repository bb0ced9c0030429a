// Package usecase implements the aggregation engine.
//
// Query orchestration follows a strict order: validate, admit against the
// budget ledger, aggregate, add noise, audit, return. Budget is charged
// before the aggregate is computed; a failure anywhere downstream of
// admission releases exactly what was charged. Clamping and budget splitting
// happen here because both interact with the sensitivity the noise is
// calibrated for.
package usecase

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	analyticsDomain "github.com/allisson/privmetrics/internal/analytics/domain"
	auditDomain "github.com/allisson/privmetrics/internal/audit/domain"
	auditUsecase "github.com/allisson/privmetrics/internal/audit/usecase"
	authDomain "github.com/allisson/privmetrics/internal/auth/domain"
	budgetUsecase "github.com/allisson/privmetrics/internal/budget/usecase"
	apperrors "github.com/allisson/privmetrics/internal/errors"
	"github.com/allisson/privmetrics/internal/privacy/noise"
	tokenizationUsecase "github.com/allisson/privmetrics/internal/tokenization/usecase"
)

// analyticsUseCase implements AnalyticsUseCase.
type analyticsUseCase struct {
	eventRepo      EventRepository
	tokenizationUC tokenizationUsecase.TokenizationUseCase
	budgetUC       budgetUsecase.BudgetUseCase
	auditChain     auditUsecase.AuditChainUseCase
}

// Ingest tokenizes the mapped properties and persists the event.
func (a *analyticsUseCase) Ingest(
	ctx context.Context,
	principal *authDomain.Principal,
	scope string,
	properties map[string]any,
	fieldMap analyticsDomain.FieldTokenizationMap,
) (*analyticsDomain.Event, error) {
	if scope == "" {
		return nil, analyticsDomain.ErrScopeRequired
	}

	tokenized := make(map[string]any, len(properties))
	for name, value := range properties {
		tokenized[name] = value
	}

	// Deterministic field order keeps the audit trail stable.
	fields := make([]string, 0, len(fieldMap))
	for name := range fieldMap {
		fields = append(fields, name)
	}
	sort.Strings(fields)

	tokenizedFields := make([]string, 0, len(fields))
	for _, name := range fields {
		value, ok := properties[name]
		if !ok {
			continue
		}
		plaintext, ok := value.(string)
		if !ok {
			return nil, apperrors.Wrap(analyticsDomain.ErrFieldNotString, name)
		}

		record, err := a.tokenizationUC.Tokenize(ctx, principal, fieldMap[name], plaintext)
		if err != nil {
			return nil, err
		}
		tokenized[name] = record.Token
		tokenizedFields = append(tokenizedFields, name)
	}

	event := &analyticsDomain.Event{
		ID:         uuid.Must(uuid.NewV7()),
		Scope:      scope,
		Properties: tokenized,
		RecordedAt: time.Now().UTC(),
	}

	if err := a.eventRepo.Create(ctx, event); err != nil {
		return nil, err
	}

	err := a.auditChain.Append(ctx, principal.Actor(), auditDomain.ActionIngest, scope, map[string]any{
		"event_id":         event.ID.String(),
		"tokenized_fields": tokenizedFields,
	})
	if err != nil {
		return nil, err
	}
	return event, nil
}

// Query runs a differentially private aggregate for the request's scope.
func (a *analyticsUseCase) Query(
	ctx context.Context,
	principal *authDomain.Principal,
	request *analyticsDomain.QueryRequest,
) (*analyticsDomain.QueryResult, error) {
	if err := request.Validate(); err != nil {
		return nil, err
	}
	mechanism, err := noise.ForKind(request.Mechanism)
	if err != nil {
		return nil, err
	}
	// Mechanism/delta incompatibilities are rejected before any budget is
	// charged; the mechanism re-validates before drawing randomness.
	if err := checkMechanismDelta(request.Mechanism, request.Delta); err != nil {
		return nil, err
	}

	admission, err := a.budgetUC.AdmitAndCommit(ctx, request.Scope, request.Epsilon, request.Delta)
	if err != nil {
		return nil, err
	}

	if !admission.Granted {
		err := a.auditChain.Append(ctx, principal.Actor(), auditDomain.ActionQueryDenied, request.Scope, map[string]any{
			"metric":            string(request.Metric),
			"requested_epsilon": request.Epsilon,
			"requested_delta":   request.Delta,
			"remaining_epsilon": admission.RemainingEpsilon,
			"remaining_delta":   admission.RemainingDelta,
			"window_start":      admission.WindowStart.UTC().Format(time.RFC3339),
		})
		if err != nil {
			return nil, err
		}
		return &analyticsDomain.QueryResult{
			Denied:           true,
			RemainingEpsilon: admission.RemainingEpsilon,
			RemainingDelta:   admission.RemainingDelta,
			WindowStart:      admission.WindowStart,
		}, nil
	}

	value, err := a.aggregate(ctx, request, mechanism)
	if err != nil {
		// The charge is refunded and the refund itself lands in the audit
		// trail, so ledger movements stay reconstructible from the chain.
		releaseErr := a.budgetUC.Release(ctx, request.Scope, admission.WindowStart, request.Epsilon, request.Delta)
		outcome := "ok"
		if releaseErr != nil {
			outcome = "error"
		}
		auditErr := a.auditChain.Append(ctx, principal.Actor(), auditDomain.ActionBudgetReleased, request.Scope, map[string]any{
			"epsilon_released": request.Epsilon,
			"delta_released":   request.Delta,
			"window_start":     admission.WindowStart.UTC().Format(time.RFC3339),
			"reason":           "aggregate_failure",
			"outcome":          outcome,
		})
		if auditErr != nil {
			return nil, auditErr
		}
		if releaseErr != nil {
			return nil, apperrors.Wrap(releaseErr, "failed to release budget after query failure")
		}
		return nil, err
	}

	err = a.auditChain.Append(ctx, principal.Actor(), auditDomain.ActionQueryGranted, request.Scope, map[string]any{
		"metric":          string(request.Metric),
		"mechanism":       string(request.Mechanism),
		"epsilon_charged": request.Epsilon,
		"delta_charged":   request.Delta,
		"window_start":    admission.WindowStart.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return nil, err
	}

	return &analyticsDomain.QueryResult{
		Value:            value,
		EpsilonCharged:   admission.EpsilonCharged,
		DeltaCharged:     admission.DeltaCharged,
		RemainingEpsilon: admission.RemainingEpsilon,
		RemainingDelta:   admission.RemainingDelta,
		WindowStart:      admission.WindowStart,
	}, nil
}

// aggregate computes the true aggregate over stored events and applies noise.
func (a *analyticsUseCase) aggregate(
	ctx context.Context,
	request *analyticsDomain.QueryRequest,
	mechanism noise.Mechanism,
) (float64, error) {
	events, err := a.eventRepo.ListByScope(ctx, request.Scope, request.Filters)
	if err != nil {
		return 0, err
	}

	switch request.Metric {
	case analyticsDomain.MetricCount:
		return mechanism.AddNoise(float64(len(events)), 1, request.Epsilon, request.Delta)

	case analyticsDomain.MetricSum:
		return mechanism.AddNoise(a.clampedSum(events, request), request.Sensitivity(), request.Epsilon, request.Delta)

	case analyticsDomain.MetricAvg:
		// Noisy sum over noisy count with the budget split evenly. The count
		// is floored at one so the division stays bounded.
		sum := a.clampedSum(events, request)
		count := float64(a.propertyCount(events, request.Property))

		sumSensitivity := math.Max(math.Abs(request.ClampMin), math.Abs(request.ClampMax))
		noisySum, err := mechanism.AddNoise(sum, sumSensitivity, request.Epsilon/2, request.Delta/2)
		if err != nil {
			return 0, err
		}
		noisyCount, err := mechanism.AddNoise(count, 1, request.Epsilon/2, request.Delta/2)
		if err != nil {
			return 0, err
		}
		return noisySum / math.Max(noisyCount, 1), nil

	default:
		return 0, analyticsDomain.ErrInvalidMetric
	}
}

// clampedSum sums the clamped property contributions. Events without the
// property, or with a non-numeric value, contribute nothing.
func (a *analyticsUseCase) clampedSum(events []*analyticsDomain.Event, request *analyticsDomain.QueryRequest) float64 {
	var sum float64
	for _, event := range events {
		value, ok := numericProperty(event.Properties, request.Property)
		if !ok {
			continue
		}
		sum += request.Clamp(value)
	}
	return sum
}

func (a *analyticsUseCase) propertyCount(events []*analyticsDomain.Event, property string) int {
	count := 0
	for _, event := range events {
		if _, ok := numericProperty(event.Properties, property); ok {
			count++
		}
	}
	return count
}

// numericProperty extracts a numeric property value. JSON decoding yields
// float64; integer values appear when events come straight from memory.
func numericProperty(properties map[string]any, name string) (float64, bool) {
	switch v := properties[name].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

func checkMechanismDelta(kind noise.MechanismKind, delta float64) error {
	switch kind {
	case noise.MechanismLaplace:
		if delta != 0 {
			return noise.ErrInvalidDelta
		}
	case noise.MechanismGaussian:
		if delta <= 0 || delta >= 1 {
			return noise.ErrInvalidDelta
		}
	}
	return nil
}

// NewAnalyticsUseCase creates a new analytics use case.
func NewAnalyticsUseCase(
	eventRepo EventRepository,
	tokenizationUC tokenizationUsecase.TokenizationUseCase,
	budgetUC budgetUsecase.BudgetUseCase,
	auditChain auditUsecase.AuditChainUseCase,
) AnalyticsUseCase {
	return &analyticsUseCase{
		eventRepo:      eventRepo,
		tokenizationUC: tokenizationUC,
		budgetUC:       budgetUC,
		auditChain:     auditChain,
	}
}

package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	analyticsDomain "github.com/allisson/privmetrics/internal/analytics/domain"
	auditDomain "github.com/allisson/privmetrics/internal/audit/domain"
	authDomain "github.com/allisson/privmetrics/internal/auth/domain"
	budgetDomain "github.com/allisson/privmetrics/internal/budget/domain"
	apperrors "github.com/allisson/privmetrics/internal/errors"
	"github.com/allisson/privmetrics/internal/privacy/noise"
	tokenizationDomain "github.com/allisson/privmetrics/internal/tokenization/domain"
)

// inMemoryEventRepo applies the same containment semantics the SQL
// repositories push into the store.
type inMemoryEventRepo struct {
	mu        sync.Mutex
	events    []*analyticsDomain.Event
	listErr   error
	listCalls int
}

func (r *inMemoryEventRepo) Create(_ context.Context, event *analyticsDomain.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *event
	r.events = append(r.events, &clone)
	return nil
}

func (r *inMemoryEventRepo) ListByScope(
	_ context.Context,
	scope string,
	filters map[string]string,
) ([]*analyticsDomain.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.listCalls++
	if r.listErr != nil {
		return nil, r.listErr
	}

	matched := make([]*analyticsDomain.Event, 0)
	for _, event := range r.events {
		if event.Scope != scope {
			continue
		}
		contains := true
		for key, want := range filters {
			if got, ok := event.Properties[key].(string); !ok || got != want {
				contains = false
				break
			}
		}
		if contains {
			matched = append(matched, event)
		}
	}
	return matched, nil
}

// fakeTokenizer replaces plaintexts with deterministic markers and records calls.
type fakeTokenizer struct {
	mu    sync.Mutex
	calls []struct {
		fieldType tokenizationDomain.FieldType
		plaintext string
	}
	tokenizeErr error
}

func (f *fakeTokenizer) Tokenize(
	_ context.Context,
	_ *authDomain.Principal,
	fieldType tokenizationDomain.FieldType,
	plaintext string,
) (*tokenizationDomain.TokenRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.tokenizeErr != nil {
		return nil, f.tokenizeErr
	}
	f.calls = append(f.calls, struct {
		fieldType tokenizationDomain.FieldType
		plaintext string
	}{fieldType, plaintext})
	return &tokenizationDomain.TokenRecord{
		ID:            uuid.Must(uuid.NewV7()),
		FieldType:     fieldType,
		KeyGeneration: 1,
		Token:         "tok:" + plaintext,
	}, nil
}

func (f *fakeTokenizer) Detokenize(
	_ context.Context,
	_ *authDomain.Principal,
	_ tokenizationDomain.FieldType,
	_ string,
	_ uint,
) (string, error) {
	return "", tokenizationDomain.ErrTokenNotFound
}

// fakeBudget grants or denies admissions and records releases.
type fakeBudget struct {
	mu         sync.Mutex
	deny       bool
	admitErr   error
	releaseErr error
	admits     int
	released   []struct{ epsilon, delta float64 }
	remaining  float64
	window     time.Time
}

func (f *fakeBudget) AdmitAndCommit(
	_ context.Context,
	scope string,
	epsilon, delta float64,
) (*budgetDomain.Admission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.admitErr != nil {
		return nil, f.admitErr
	}
	f.admits++
	if f.deny {
		return &budgetDomain.Admission{
			Scope:            scope,
			WindowStart:      f.window,
			RemainingEpsilon: f.remaining,
			RemainingDelta:   0.001,
		}, nil
	}
	return &budgetDomain.Admission{
		Granted:          true,
		Scope:            scope,
		WindowStart:      f.window,
		EpsilonCharged:   epsilon,
		DeltaCharged:     delta,
		RemainingEpsilon: f.remaining,
		RemainingDelta:   0.001,
	}, nil
}

func (f *fakeBudget) Release(_ context.Context, _ string, _ time.Time, epsilon, delta float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.releaseErr != nil {
		return f.releaseErr
	}
	f.released = append(f.released, struct{ epsilon, delta float64 }{epsilon, delta})
	return nil
}

func (f *fakeBudget) Remaining(_ context.Context, _ string) (*budgetDomain.BudgetAccount, error) {
	return nil, budgetDomain.ErrAccountNotFound
}

// auditRecorder captures audit appends.
type auditRecorder struct {
	mu      sync.Mutex
	entries []*auditDomain.AuditEntry
}

func (a *auditRecorder) Append(
	_ context.Context,
	actor string,
	action auditDomain.ActionKind,
	subject string,
	metadata map[string]any,
) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, &auditDomain.AuditEntry{
		Actor:    actor,
		Action:   action,
		Subject:  subject,
		Metadata: metadata,
	})
	return nil
}

func (a *auditRecorder) List(
	_ context.Context,
	_, _ int,
	_ string,
	_ auditDomain.ActionKind,
) ([]*auditDomain.AuditEntry, error) {
	return nil, nil
}

func (a *auditRecorder) Verify(_ context.Context, _, _ uint64) (*auditDomain.ChainVerificationResult, error) {
	return &auditDomain.ChainVerificationResult{}, nil
}

func (a *auditRecorder) last() *auditDomain.AuditEntry {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.entries) == 0 {
		return nil
	}
	return a.entries[len(a.entries)-1]
}

type analyticsFixture struct {
	repo      *inMemoryEventRepo
	tokenizer *fakeTokenizer
	budget    *fakeBudget
	audit     *auditRecorder
	uc        AnalyticsUseCase
}

func newAnalyticsFixture() *analyticsFixture {
	repo := &inMemoryEventRepo{}
	tokenizer := &fakeTokenizer{}
	budget := &fakeBudget{remaining: 0.5, window: time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)}
	audit := &auditRecorder{}
	return &analyticsFixture{
		repo:      repo,
		tokenizer: tokenizer,
		budget:    budget,
		audit:     audit,
		uc:        NewAnalyticsUseCase(repo, tokenizer, budget, audit),
	}
}

var analyst = &authDomain.Principal{ID: "analyst-1", Role: "analyst", Scope: "org-1"}

func ingestEvents(t *testing.T, f *analyticsFixture, scope string, properties ...map[string]any) {
	t.Helper()
	for _, props := range properties {
		_, err := f.uc.Ingest(context.Background(), analyst, scope, props, nil)
		require.NoError(t, err)
	}
}

func TestAnalyticsUseCase_IngestTokenizesMappedFields(t *testing.T) {
	f := newAnalyticsFixture()

	event, err := f.uc.Ingest(context.Background(), analyst, "org-1",
		map[string]any{
			"email":  "alice@example.com",
			"amount": 42.5,
			"status": "completed",
		},
		analyticsDomain.FieldTokenizationMap{"email": tokenizationDomain.FieldEmail},
	)
	require.NoError(t, err)

	assert.Equal(t, "tok:alice@example.com", event.Properties["email"])
	assert.Equal(t, 42.5, event.Properties["amount"])
	assert.Equal(t, "completed", event.Properties["status"])
	assert.Equal(t, "org-1", event.Scope)

	require.Len(t, f.tokenizer.calls, 1)
	assert.Equal(t, tokenizationDomain.FieldEmail, f.tokenizer.calls[0].fieldType)

	require.Len(t, f.repo.events, 1)
	assert.Equal(t, "tok:alice@example.com", f.repo.events[0].Properties["email"])

	entry := f.audit.last()
	require.NotNil(t, entry)
	assert.Equal(t, auditDomain.ActionIngest, entry.Action)
	assert.Equal(t, "org-1", entry.Subject)
	assert.Equal(t, event.ID.String(), entry.Metadata["event_id"])
	assert.Equal(t, []string{"email"}, entry.Metadata["tokenized_fields"])
}

func TestAnalyticsUseCase_IngestSkipsAbsentMappedFields(t *testing.T) {
	f := newAnalyticsFixture()

	_, err := f.uc.Ingest(context.Background(), analyst, "org-1",
		map[string]any{"status": "completed"},
		analyticsDomain.FieldTokenizationMap{"email": tokenizationDomain.FieldEmail},
	)
	require.NoError(t, err)
	assert.Empty(t, f.tokenizer.calls)
}

func TestAnalyticsUseCase_IngestRejectsNonStringMappedField(t *testing.T) {
	f := newAnalyticsFixture()

	_, err := f.uc.Ingest(context.Background(), analyst, "org-1",
		map[string]any{"email": 12345},
		analyticsDomain.FieldTokenizationMap{"email": tokenizationDomain.FieldEmail},
	)
	assert.ErrorIs(t, err, analyticsDomain.ErrFieldNotString)
	assert.Empty(t, f.repo.events)
}

func TestAnalyticsUseCase_IngestRequiresScope(t *testing.T) {
	f := newAnalyticsFixture()

	_, err := f.uc.Ingest(context.Background(), analyst, "", map[string]any{"a": "b"}, nil)
	assert.ErrorIs(t, err, analyticsDomain.ErrScopeRequired)
}

func TestAnalyticsUseCase_IngestDoesNotMutateCallerProperties(t *testing.T) {
	f := newAnalyticsFixture()

	properties := map[string]any{"email": "alice@example.com"}
	_, err := f.uc.Ingest(context.Background(), analyst, "org-1", properties,
		analyticsDomain.FieldTokenizationMap{"email": tokenizationDomain.FieldEmail})
	require.NoError(t, err)

	assert.Equal(t, "alice@example.com", properties["email"])
}

func TestAnalyticsUseCase_QueryCount(t *testing.T) {
	f := newAnalyticsFixture()
	ingestEvents(t, f, "org-1",
		map[string]any{"status": "completed"},
		map[string]any{"status": "completed"},
		map[string]any{"status": "failed"},
	)

	result, err := f.uc.Query(context.Background(), analyst, &analyticsDomain.QueryRequest{
		Scope:     "org-1",
		Metric:    analyticsDomain.MetricCount,
		Filters:   map[string]string{"status": "completed"},
		Epsilon:   20,
		Mechanism: noise.MechanismLaplace,
	})
	require.NoError(t, err)

	assert.False(t, result.Denied)
	// Laplace scale is 1/20, so the noisy count stays near the true count of 2.
	assert.InDelta(t, 2.0, result.Value, 2.0)
	assert.Equal(t, 20.0, result.EpsilonCharged)
	assert.Equal(t, 0.5, result.RemainingEpsilon)

	entry := f.audit.last()
	require.NotNil(t, entry)
	assert.Equal(t, auditDomain.ActionQueryGranted, entry.Action)
	assert.Equal(t, "count", entry.Metadata["metric"])
	assert.Equal(t, "2025-06-15T00:00:00Z", entry.Metadata["window_start"])
}

func TestAnalyticsUseCase_QuerySumClampsContributions(t *testing.T) {
	f := newAnalyticsFixture()
	ingestEvents(t, f, "org-1",
		map[string]any{"amount": 10.0},
		map[string]any{"amount": 950.0}, // clamped to 100
		map[string]any{"status": "no-amount"},
	)

	result, err := f.uc.Query(context.Background(), analyst, &analyticsDomain.QueryRequest{
		Scope:     "org-1",
		Metric:    analyticsDomain.MetricSum,
		Property:  "amount",
		Epsilon:   50,
		Mechanism: noise.MechanismLaplace,
		ClampMin:  0,
		ClampMax:  100,
	})
	require.NoError(t, err)

	// True clamped sum is 110; scale is 100/50 = 2.
	assert.InDelta(t, 110.0, result.Value, 60.0)
}

func TestAnalyticsUseCase_QueryAvg(t *testing.T) {
	f := newAnalyticsFixture()
	ingestEvents(t, f, "org-1",
		map[string]any{"amount": 10.0},
		map[string]any{"amount": 20.0},
		map[string]any{"amount": 30.0},
	)

	result, err := f.uc.Query(context.Background(), analyst, &analyticsDomain.QueryRequest{
		Scope:     "org-1",
		Metric:    analyticsDomain.MetricAvg,
		Property:  "amount",
		Epsilon:   200,
		Mechanism: noise.MechanismLaplace,
		ClampMin:  0,
		ClampMax:  50,
	})
	require.NoError(t, err)

	assert.InDelta(t, 20.0, result.Value, 10.0)
}

func TestAnalyticsUseCase_QueryDeniedIsNotAnError(t *testing.T) {
	f := newAnalyticsFixture()
	f.budget.deny = true
	f.budget.remaining = 0.25

	result, err := f.uc.Query(context.Background(), analyst, &analyticsDomain.QueryRequest{
		Scope:     "org-1",
		Metric:    analyticsDomain.MetricCount,
		Epsilon:   1,
		Mechanism: noise.MechanismLaplace,
	})
	require.NoError(t, err)

	assert.True(t, result.Denied)
	assert.Zero(t, result.Value)
	assert.Equal(t, 0.25, result.RemainingEpsilon)

	// The aggregate is never computed for a denied query.
	assert.Equal(t, 0, f.repo.listCalls)

	entry := f.audit.last()
	require.NotNil(t, entry)
	assert.Equal(t, auditDomain.ActionQueryDenied, entry.Action)
	assert.Equal(t, "2025-06-15T00:00:00Z", entry.Metadata["window_start"])
}

func TestAnalyticsUseCase_QueryReleasesBudgetOnAggregateFailure(t *testing.T) {
	f := newAnalyticsFixture()
	f.repo.listErr = apperrors.New("store unavailable")

	_, err := f.uc.Query(context.Background(), analyst, &analyticsDomain.QueryRequest{
		Scope:     "org-1",
		Metric:    analyticsDomain.MetricCount,
		Epsilon:   0.5,
		Mechanism: noise.MechanismLaplace,
	})
	require.Error(t, err)

	require.Len(t, f.budget.released, 1)
	assert.Equal(t, 0.5, f.budget.released[0].epsilon)
	assert.Equal(t, 0.0, f.budget.released[0].delta)

	// The refund leaves a trace in the audit trail.
	entry := f.audit.last()
	require.NotNil(t, entry)
	assert.Equal(t, auditDomain.ActionBudgetReleased, entry.Action)
	assert.Equal(t, "org-1", entry.Subject)
	assert.Equal(t, 0.5, entry.Metadata["epsilon_released"])
	assert.Equal(t, "aggregate_failure", entry.Metadata["reason"])
	assert.Equal(t, "ok", entry.Metadata["outcome"])
	assert.Equal(t, "2025-06-15T00:00:00Z", entry.Metadata["window_start"])
}

func TestAnalyticsUseCase_QueryAuditsFailedRelease(t *testing.T) {
	f := newAnalyticsFixture()
	f.repo.listErr = apperrors.New("store unavailable")
	f.budget.releaseErr = apperrors.New("refund rejected")

	_, err := f.uc.Query(context.Background(), analyst, &analyticsDomain.QueryRequest{
		Scope:     "org-1",
		Metric:    analyticsDomain.MetricCount,
		Epsilon:   0.5,
		Mechanism: noise.MechanismLaplace,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to release budget")

	// A refund that could not be applied is still recorded.
	entry := f.audit.last()
	require.NotNil(t, entry)
	assert.Equal(t, auditDomain.ActionBudgetReleased, entry.Action)
	assert.Equal(t, "error", entry.Metadata["outcome"])
}

func TestAnalyticsUseCase_QueryValidation(t *testing.T) {
	tests := []struct {
		name    string
		request analyticsDomain.QueryRequest
		wantErr error
	}{
		{
			"UnknownMetric",
			analyticsDomain.QueryRequest{Scope: "org-1", Metric: "median", Epsilon: 1, Mechanism: noise.MechanismLaplace},
			analyticsDomain.ErrInvalidMetric,
		},
		{
			"UnknownMechanism",
			analyticsDomain.QueryRequest{Scope: "org-1", Metric: analyticsDomain.MetricCount, Epsilon: 1, Mechanism: "staircase"},
			noise.ErrUnknownMechanism,
		},
		{
			"GaussianWithoutDelta",
			analyticsDomain.QueryRequest{Scope: "org-1", Metric: analyticsDomain.MetricCount, Epsilon: 1, Mechanism: noise.MechanismGaussian},
			noise.ErrInvalidDelta,
		},
		{
			"LaplaceWithDelta",
			analyticsDomain.QueryRequest{Scope: "org-1", Metric: analyticsDomain.MetricCount, Epsilon: 1, Delta: 1e-5, Mechanism: noise.MechanismLaplace},
			noise.ErrInvalidDelta,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAnalyticsFixture()

			_, err := f.uc.Query(context.Background(), analyst, &tt.request)
			assert.ErrorIs(t, err, tt.wantErr)

			// Structural failures never charge the budget.
			assert.Equal(t, 0, f.budget.admits)
		})
	}
}

func TestAnalyticsUseCase_QueryGaussian(t *testing.T) {
	f := newAnalyticsFixture()
	ingestEvents(t, f, "org-1",
		map[string]any{"status": "completed"},
		map[string]any{"status": "completed"},
	)

	result, err := f.uc.Query(context.Background(), analyst, &analyticsDomain.QueryRequest{
		Scope:     "org-1",
		Metric:    analyticsDomain.MetricCount,
		Epsilon:   10,
		Delta:     1e-3,
		Mechanism: noise.MechanismGaussian,
	})
	require.NoError(t, err)

	assert.False(t, result.Denied)
	assert.InDelta(t, 2.0, result.Value, 10.0)
	assert.Equal(t, 1e-3, result.DeltaCharged)
}

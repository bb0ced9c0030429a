package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	budgetDomain "github.com/allisson/privmetrics/internal/budget/domain"
)

// mockBusinessMetrics is a mock implementation of metrics.BusinessMetrics for testing.
type mockBusinessMetrics struct {
	mock.Mock
}

func (m *mockBusinessMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {
	m.Called(ctx, domain, operation, status)
}

func (m *mockBusinessMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
	m.Called(ctx, domain, operation, duration, status)
}

func (m *mockBusinessMetrics) RecordBudgetSpend(ctx context.Context, scope, mechanism string, epsilon, delta float64) {
	m.Called(ctx, scope, mechanism, epsilon, delta)
}

// mockBudgetUseCase is a mock implementation of BudgetUseCase for testing.
type mockBudgetUseCase struct {
	mock.Mock
}

func (m *mockBudgetUseCase) AdmitAndCommit(
	ctx context.Context,
	scope string,
	epsilon, delta float64,
) (*budgetDomain.Admission, error) {
	args := m.Called(ctx, scope, epsilon, delta)
	if admission, ok := args.Get(0).(*budgetDomain.Admission); ok {
		return admission, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockBudgetUseCase) Release(
	ctx context.Context,
	scope string,
	windowStart time.Time,
	epsilon, delta float64,
) error {
	args := m.Called(ctx, scope, windowStart, epsilon, delta)
	return args.Error(0)
}

func (m *mockBudgetUseCase) Remaining(ctx context.Context, scope string) (*budgetDomain.BudgetAccount, error) {
	args := m.Called(ctx, scope)
	if account, ok := args.Get(0).(*budgetDomain.BudgetAccount); ok {
		return account, args.Error(1)
	}
	return nil, args.Error(1)
}

func TestBudgetUseCaseWithMetrics_AdmitAndCommit(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_RecordsSuccessMetrics", func(t *testing.T) {
		admission := &budgetDomain.Admission{Granted: true, Scope: "org-1", EpsilonCharged: 0.5}
		mockUseCase := &mockBudgetUseCase{}
		mockUseCase.On("AdmitAndCommit", mock.Anything, "org-1", 0.5, 0.0).Return(admission, nil).Once()
		mockMetrics := &mockBusinessMetrics{}
		mockMetrics.On("RecordOperation", mock.Anything, "budget", "admit_and_commit", "success").Once()
		mockMetrics.On("RecordDuration", mock.Anything, "budget", "admit_and_commit",
			mock.AnythingOfType("time.Duration"), "success").Once()

		decorator := NewBudgetUseCaseWithMetrics(mockUseCase, mockMetrics)
		got, err := decorator.AdmitAndCommit(ctx, "org-1", 0.5, 0)

		require.NoError(t, err)
		assert.Equal(t, admission, got)
		mockMetrics.AssertExpectations(t)
	})

	t.Run("Denied_RecordsDeniedStatus", func(t *testing.T) {
		admission := &budgetDomain.Admission{Granted: false, Scope: "org-1"}
		mockUseCase := &mockBudgetUseCase{}
		mockUseCase.On("AdmitAndCommit", mock.Anything, "org-1", 5.0, 0.0).Return(admission, nil).Once()
		mockMetrics := &mockBusinessMetrics{}
		mockMetrics.On("RecordOperation", mock.Anything, "budget", "admit_and_commit", "denied").Once()
		mockMetrics.On("RecordDuration", mock.Anything, "budget", "admit_and_commit",
			mock.AnythingOfType("time.Duration"), "denied").Once()

		decorator := NewBudgetUseCaseWithMetrics(mockUseCase, mockMetrics)
		got, err := decorator.AdmitAndCommit(ctx, "org-1", 5.0, 0)

		require.NoError(t, err)
		assert.False(t, got.Granted)
		mockMetrics.AssertExpectations(t)
	})

	t.Run("Error_RecordsErrorMetrics", func(t *testing.T) {
		mockUseCase := &mockBudgetUseCase{}
		mockUseCase.On("AdmitAndCommit", mock.Anything, "org-1", 0.5, 0.0).
			Return(nil, errors.New("db down")).Once()
		mockMetrics := &mockBusinessMetrics{}
		mockMetrics.On("RecordOperation", mock.Anything, "budget", "admit_and_commit", "error").Once()
		mockMetrics.On("RecordDuration", mock.Anything, "budget", "admit_and_commit",
			mock.AnythingOfType("time.Duration"), "error").Once()

		decorator := NewBudgetUseCaseWithMetrics(mockUseCase, mockMetrics)
		_, err := decorator.AdmitAndCommit(ctx, "org-1", 0.5, 0)

		assert.Error(t, err)
		mockMetrics.AssertExpectations(t)
	})
}

func TestBudgetUseCaseWithMetrics_Release(t *testing.T) {
	windowStart := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	mockUseCase := &mockBudgetUseCase{}
	mockUseCase.On("Release", mock.Anything, "org-1", windowStart, 0.5, 0.0).Return(nil).Once()
	mockMetrics := &mockBusinessMetrics{}
	mockMetrics.On("RecordOperation", mock.Anything, "budget", "release", "success").Once()
	mockMetrics.On("RecordDuration", mock.Anything, "budget", "release",
		mock.AnythingOfType("time.Duration"), "success").Once()

	decorator := NewBudgetUseCaseWithMetrics(mockUseCase, mockMetrics)
	err := decorator.Release(context.Background(), "org-1", windowStart, 0.5, 0)

	assert.NoError(t, err)
	mockMetrics.AssertExpectations(t)
}

func TestBudgetUseCaseWithMetrics_Remaining(t *testing.T) {
	account := &budgetDomain.BudgetAccount{Scope: "org-1"}
	mockUseCase := &mockBudgetUseCase{}
	mockUseCase.On("Remaining", mock.Anything, "org-1").Return(account, nil).Once()
	mockMetrics := &mockBusinessMetrics{}
	mockMetrics.On("RecordOperation", mock.Anything, "budget", "remaining", "success").Once()
	mockMetrics.On("RecordDuration", mock.Anything, "budget", "remaining",
		mock.AnythingOfType("time.Duration"), "success").Once()

	decorator := NewBudgetUseCaseWithMetrics(mockUseCase, mockMetrics)
	got, err := decorator.Remaining(context.Background(), "org-1")

	require.NoError(t, err)
	assert.Equal(t, account, got)
	mockMetrics.AssertExpectations(t)
}

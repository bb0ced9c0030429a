package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	authDomain "github.com/allisson/privmetrics/internal/auth/domain"
	tokenizationDomain "github.com/allisson/privmetrics/internal/tokenization/domain"
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

// mockTokenizationUseCase is a mock implementation of TokenizationUseCase for testing.
type mockTokenizationUseCase struct {
	mock.Mock
}

func (m *mockTokenizationUseCase) Tokenize(
	ctx context.Context,
	principal *authDomain.Principal,
	fieldType tokenizationDomain.FieldType,
	plaintext string,
) (*tokenizationDomain.TokenRecord, error) {
	args := m.Called(ctx, principal, fieldType, plaintext)
	if record, ok := args.Get(0).(*tokenizationDomain.TokenRecord); ok {
		return record, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockTokenizationUseCase) Detokenize(
	ctx context.Context,
	principal *authDomain.Principal,
	fieldType tokenizationDomain.FieldType,
	token string,
	keyGeneration uint,
) (string, error) {
	args := m.Called(ctx, principal, fieldType, token, keyGeneration)
	return args.String(0), args.Error(1)
}

func TestTokenizationUseCaseWithMetrics_Tokenize(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_RecordsSuccessMetrics", func(t *testing.T) {
		record := &tokenizationDomain.TokenRecord{ID: uuid.New(), Token: "x7kp2@qwe.io"}
		mockUseCase := &mockTokenizationUseCase{}
		mockUseCase.On("Tokenize", mock.Anything, admin, tokenizationDomain.FieldEmail, "alice@example.com").
			Return(record, nil).Once()
		mockMetrics := &mockBusinessMetrics{}
		mockMetrics.On("RecordOperation", mock.Anything, "tokenization", "tokenize", "success").Once()
		mockMetrics.On("RecordDuration", mock.Anything, "tokenization", "tokenize",
			mock.AnythingOfType("time.Duration"), "success").Once()

		decorator := NewTokenizationUseCaseWithMetrics(mockUseCase, mockMetrics)
		got, err := decorator.Tokenize(ctx, admin, tokenizationDomain.FieldEmail, "alice@example.com")

		require.NoError(t, err)
		assert.Equal(t, record, got)
		mockUseCase.AssertExpectations(t)
		mockMetrics.AssertExpectations(t)
	})

	t.Run("Error_RecordsErrorMetrics", func(t *testing.T) {
		mockUseCase := &mockTokenizationUseCase{}
		mockUseCase.On("Tokenize", mock.Anything, admin, tokenizationDomain.FieldEmail, "not-an-email").
			Return(nil, tokenizationDomain.ErrFormatMismatch).Once()
		mockMetrics := &mockBusinessMetrics{}
		mockMetrics.On("RecordOperation", mock.Anything, "tokenization", "tokenize", "error").Once()
		mockMetrics.On("RecordDuration", mock.Anything, "tokenization", "tokenize",
			mock.AnythingOfType("time.Duration"), "error").Once()

		decorator := NewTokenizationUseCaseWithMetrics(mockUseCase, mockMetrics)
		_, err := decorator.Tokenize(ctx, admin, tokenizationDomain.FieldEmail, "not-an-email")

		assert.ErrorIs(t, err, tokenizationDomain.ErrFormatMismatch)
		mockMetrics.AssertExpectations(t)
	})
}

func TestTokenizationUseCaseWithMetrics_Detokenize(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_RecordsSuccessMetrics", func(t *testing.T) {
		mockUseCase := &mockTokenizationUseCase{}
		mockUseCase.On("Detokenize", mock.Anything, admin, tokenizationDomain.FieldEmail, "x7kp2@qwe.io", uint(1)).
			Return("alice@example.com", nil).Once()
		mockMetrics := &mockBusinessMetrics{}
		mockMetrics.On("RecordOperation", mock.Anything, "tokenization", "detokenize", "success").Once()
		mockMetrics.On("RecordDuration", mock.Anything, "tokenization", "detokenize",
			mock.AnythingOfType("time.Duration"), "success").Once()

		decorator := NewTokenizationUseCaseWithMetrics(mockUseCase, mockMetrics)
		plaintext, err := decorator.Detokenize(ctx, admin, tokenizationDomain.FieldEmail, "x7kp2@qwe.io", 1)

		require.NoError(t, err)
		assert.Equal(t, "alice@example.com", plaintext)
		mockMetrics.AssertExpectations(t)
	})

	t.Run("Error_RecordsErrorMetrics", func(t *testing.T) {
		mockUseCase := &mockTokenizationUseCase{}
		mockUseCase.On("Detokenize", mock.Anything, analyst, tokenizationDomain.FieldEmail, "x7kp2@qwe.io", uint(1)).
			Return("", errors.New("boom")).Once()
		mockMetrics := &mockBusinessMetrics{}
		mockMetrics.On("RecordOperation", mock.Anything, "tokenization", "detokenize", "error").Once()
		mockMetrics.On("RecordDuration", mock.Anything, "tokenization", "detokenize",
			mock.AnythingOfType("time.Duration"), "error").Once()

		decorator := NewTokenizationUseCaseWithMetrics(mockUseCase, mockMetrics)
		_, err := decorator.Detokenize(ctx, analyst, tokenizationDomain.FieldEmail, "x7kp2@qwe.io", 1)

		assert.Error(t, err)
		mockMetrics.AssertExpectations(t)
	})
}

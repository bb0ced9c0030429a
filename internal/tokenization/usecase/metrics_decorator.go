package usecase

import (
	"context"
	"time"

	authDomain "github.com/allisson/privmetrics/internal/auth/domain"
	"github.com/allisson/privmetrics/internal/metrics"
	tokenizationDomain "github.com/allisson/privmetrics/internal/tokenization/domain"
)

// tokenizationUseCaseWithMetrics decorates TokenizationUseCase with metrics instrumentation.
type tokenizationUseCaseWithMetrics struct {
	next    TokenizationUseCase
	metrics metrics.BusinessMetrics
}

// NewTokenizationUseCaseWithMetrics wraps a TokenizationUseCase with metrics recording.
func NewTokenizationUseCaseWithMetrics(
	useCase TokenizationUseCase,
	m metrics.BusinessMetrics,
) TokenizationUseCase {
	return &tokenizationUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// Tokenize records metrics for token derivation operations.
func (t *tokenizationUseCaseWithMetrics) Tokenize(
	ctx context.Context,
	principal *authDomain.Principal,
	fieldType tokenizationDomain.FieldType,
	plaintext string,
) (*tokenizationDomain.TokenRecord, error) {
	start := time.Now()
	record, err := t.next.Tokenize(ctx, principal, fieldType, plaintext)

	status := "success"
	if err != nil {
		status = "error"
	}

	t.metrics.RecordOperation(ctx, "tokenization", "tokenize", status)
	t.metrics.RecordDuration(ctx, "tokenization", "tokenize", time.Since(start), status)

	return record, err
}

// Detokenize records metrics for plaintext recovery operations.
func (t *tokenizationUseCaseWithMetrics) Detokenize(
	ctx context.Context,
	principal *authDomain.Principal,
	fieldType tokenizationDomain.FieldType,
	token string,
	keyGeneration uint,
) (string, error) {
	start := time.Now()
	plaintext, err := t.next.Detokenize(ctx, principal, fieldType, token, keyGeneration)

	status := "success"
	if err != nil {
		status = "error"
	}

	t.metrics.RecordOperation(ctx, "tokenization", "detokenize", status)
	t.metrics.RecordDuration(ctx, "tokenization", "detokenize", time.Since(start), status)

	return plaintext, err
}

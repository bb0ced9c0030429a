package usecase

import (
	"context"

	authDomain "github.com/allisson/privmetrics/internal/auth/domain"
	tokenizationDomain "github.com/allisson/privmetrics/internal/tokenization/domain"
)

// TokenRecordRepository defines the interface for token record persistence.
type TokenRecordRepository interface {
	// Create inserts a new token record.
	Create(ctx context.Context, record *tokenizationDomain.TokenRecord) error

	// GetByValueHash retrieves the record for a plaintext hash under a field
	// type and key generation. Returns ErrTokenNotFound when no mapping exists.
	GetByValueHash(
		ctx context.Context,
		fieldType tokenizationDomain.FieldType,
		keyGeneration uint,
		valueHash string,
	) (*tokenizationDomain.TokenRecord, error)

	// GetByToken retrieves the record for a token under a field type and key
	// generation. The same token string can exist under multiple generations,
	// so the generation is part of the lookup key. Returns ErrTokenNotFound
	// when no mapping exists.
	GetByToken(
		ctx context.Context,
		fieldType tokenizationDomain.FieldType,
		token string,
		keyGeneration uint,
	) (*tokenizationDomain.TokenRecord, error)

	// TokenExists reports whether the token exists under the field type in
	// any key generation.
	TokenExists(
		ctx context.Context,
		fieldType tokenizationDomain.FieldType,
		token string,
	) (bool, error)
}

// TokenizationUseCase defines the business logic for tokenize and detokenize
// operations. Every call, including denied attempts, appends an audit entry.
type TokenizationUseCase interface {
	// Tokenize derives the deterministic format-preserving token for the
	// plaintext under the active key generation. Repeated calls with the same
	// plaintext return the existing record.
	Tokenize(
		ctx context.Context,
		principal *authDomain.Principal,
		fieldType tokenizationDomain.FieldType,
		plaintext string,
	) (*tokenizationDomain.TokenRecord, error)

	// Detokenize recovers the original plaintext for a token issued under the
	// given key generation. The caller must assert the detokenize capability.
	// A token issued under a different generation fails with ErrKeyMismatch;
	// a destroyed generation fails with ErrKeysetDestroyed.
	Detokenize(
		ctx context.Context,
		principal *authDomain.Principal,
		fieldType tokenizationDomain.FieldType,
		token string,
		keyGeneration uint,
	) (string, error)
}

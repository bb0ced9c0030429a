// Package usecase implements tokenization business logic.
//
// Coordinates deterministic token derivation, plaintext encryption, and the
// audit trail. Tokenize always uses the active key generation; detokenize
// resolves historical generations through the keyset chain and is gated on
// the detokenize capability asserted by the external access-control layer.
package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/allisson/privmetrics/internal/audit/domain"
	auditUsecase "github.com/allisson/privmetrics/internal/audit/usecase"
	authDomain "github.com/allisson/privmetrics/internal/auth/domain"
	cryptoDomain "github.com/allisson/privmetrics/internal/crypto/domain"
	cryptoService "github.com/allisson/privmetrics/internal/crypto/service"
	apperrors "github.com/allisson/privmetrics/internal/errors"
	tokenizationDomain "github.com/allisson/privmetrics/internal/tokenization/domain"
	tokenizationService "github.com/allisson/privmetrics/internal/tokenization/service"
)

// tokenizationUseCase implements TokenizationUseCase.
type tokenizationUseCase struct {
	tokenRepo   TokenRecordRepository
	deriver     tokenizationService.TokenDeriver
	hashService HashService
	aeadManager cryptoService.AEADManager
	keyManager  cryptoService.KeyManager
	keysetChain *cryptoDomain.KeysetChain
	auditChain  auditUsecase.AuditChainUseCase
}

// valueAAD binds a ciphertext to its field type and key generation, so a
// record cannot be replayed under a different field type or generation.
func valueAAD(fieldType tokenizationDomain.FieldType, generation uint) []byte {
	return []byte(fmt.Sprintf("%s/%d", fieldType, generation))
}

// Tokenize derives the deterministic token for the plaintext under the active
// key generation, creating the token record on first use.
func (t *tokenizationUseCase) Tokenize(
	ctx context.Context,
	principal *authDomain.Principal,
	fieldType tokenizationDomain.FieldType,
	plaintext string,
) (*tokenizationDomain.TokenRecord, error) {
	if err := t.deriver.Validate(fieldType, plaintext); err != nil {
		return nil, err
	}

	keyset, err := t.keysetChain.Active()
	if err != nil {
		return nil, err
	}

	derivationKey, err := t.keyManager.DeriveKey(keyset.Key, cryptoDomain.PurposeTokenDerivation)
	if err != nil {
		return nil, err
	}
	defer cryptoDomain.Zero(derivationKey)

	valueHash := t.hashService.Hash(derivationKey, []byte(plaintext))

	// Deterministic fast path: the plaintext was tokenized before under this
	// generation.
	existing, err := t.tokenRepo.GetByValueHash(ctx, fieldType, keyset.Generation, valueHash)
	if err != nil && !apperrors.Is(err, tokenizationDomain.ErrTokenNotFound) {
		return nil, err
	}
	if existing != nil {
		if err := t.auditTokenize(ctx, principal, existing); err != nil {
			return nil, err
		}
		return existing, nil
	}

	token, err := t.deriver.Derive(derivationKey, fieldType, plaintext)
	if err != nil {
		return nil, err
	}

	encryptionKey, err := t.keyManager.DeriveKey(keyset.Key, cryptoDomain.PurposeValueEncryption)
	if err != nil {
		return nil, err
	}
	defer cryptoDomain.Zero(encryptionKey)

	cipher, err := t.aeadManager.CreateCipher(encryptionKey, keyset.Algorithm)
	if err != nil {
		return nil, err
	}

	ciphertext, nonce, err := cipher.Encrypt([]byte(plaintext), valueAAD(fieldType, keyset.Generation))
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to encrypt plaintext")
	}

	record := &tokenizationDomain.TokenRecord{
		ID:            uuid.Must(uuid.NewV7()),
		FieldType:     fieldType,
		KeyGeneration: keyset.Generation,
		ValueHash:     valueHash,
		Token:         token,
		Ciphertext:    ciphertext,
		Nonce:         nonce,
		CreatedAt:     time.Now().UTC(),
	}

	if err := t.tokenRepo.Create(ctx, record); err != nil {
		// A concurrent caller may have inserted the same mapping; the unique
		// constraint makes the insert race safe to resolve by re-reading.
		raced, getErr := t.tokenRepo.GetByValueHash(ctx, fieldType, keyset.Generation, valueHash)
		if getErr != nil {
			return nil, err
		}
		record = raced
	}

	if err := t.auditTokenize(ctx, principal, record); err != nil {
		return nil, err
	}
	return record, nil
}

// Detokenize recovers the original plaintext for a token issued under the
// given key generation.
func (t *tokenizationUseCase) Detokenize(
	ctx context.Context,
	principal *authDomain.Principal,
	fieldType tokenizationDomain.FieldType,
	token string,
	keyGeneration uint,
) (string, error) {
	if !fieldType.IsValid() {
		return "", tokenizationDomain.ErrInvalidFieldType
	}

	if !principal.HasCapability(authDomain.CapabilityDetokenize) {
		err := t.auditChain.Append(ctx, principal.Actor(), auditDomain.ActionAccessDenied, string(fieldType), map[string]any{
			"operation":      "detokenize",
			"key_generation": keyGeneration,
		})
		if err != nil {
			return "", err
		}
		return "", tokenizationDomain.ErrDetokenizeForbidden
	}

	// The generation is part of the lookup key: the same token string can
	// exist under several generations, each mapping to different plaintext.
	record, err := t.tokenRepo.GetByToken(ctx, fieldType, token, keyGeneration)
	if err != nil {
		if !apperrors.Is(err, tokenizationDomain.ErrTokenNotFound) {
			return "", err
		}

		exists, existsErr := t.tokenRepo.TokenExists(ctx, fieldType, token)
		if existsErr != nil {
			return "", existsErr
		}
		if exists {
			// The token was issued, just not under the requested generation.
			if auditErr := t.auditDetokenize(ctx, principal, fieldType, token, keyGeneration, "key_mismatch"); auditErr != nil {
				return "", auditErr
			}
			return "", tokenizationDomain.ErrKeyMismatch
		}

		if auditErr := t.auditDetokenize(ctx, principal, fieldType, token, keyGeneration, "not_found"); auditErr != nil {
			return "", auditErr
		}
		return "", err
	}

	keyset, err := t.keysetChain.Get(keyGeneration)
	if err != nil {
		if apperrors.Is(err, cryptoDomain.ErrKeysetDestroyed) {
			if auditErr := t.auditDetokenize(ctx, principal, fieldType, token, keyGeneration, "key_destroyed"); auditErr != nil {
				return "", auditErr
			}
		}
		return "", err
	}

	encryptionKey, err := t.keyManager.DeriveKey(keyset.Key, cryptoDomain.PurposeValueEncryption)
	if err != nil {
		return "", err
	}
	defer cryptoDomain.Zero(encryptionKey)

	cipher, err := t.aeadManager.CreateCipher(encryptionKey, keyset.Algorithm)
	if err != nil {
		return "", err
	}

	plaintext, err := cipher.Decrypt(record.Ciphertext, record.Nonce, valueAAD(fieldType, keyGeneration))
	if err != nil {
		return "", err
	}

	if err := t.auditDetokenize(ctx, principal, fieldType, token, keyGeneration, "ok"); err != nil {
		return "", err
	}
	return string(plaintext), nil
}

func (t *tokenizationUseCase) auditTokenize(
	ctx context.Context,
	principal *authDomain.Principal,
	record *tokenizationDomain.TokenRecord,
) error {
	return t.auditChain.Append(ctx, principal.Actor(), auditDomain.ActionTokenize, string(record.FieldType), map[string]any{
		"token":          record.Token,
		"key_generation": record.KeyGeneration,
	})
}

func (t *tokenizationUseCase) auditDetokenize(
	ctx context.Context,
	principal *authDomain.Principal,
	fieldType tokenizationDomain.FieldType,
	token string,
	keyGeneration uint,
	outcome string,
) error {
	return t.auditChain.Append(ctx, principal.Actor(), auditDomain.ActionDetokenize, string(fieldType), map[string]any{
		"token":          token,
		"key_generation": keyGeneration,
		"outcome":        outcome,
	})
}

// NewTokenizationUseCase creates a new tokenization use case.
func NewTokenizationUseCase(
	tokenRepo TokenRecordRepository,
	deriver tokenizationService.TokenDeriver,
	hashService HashService,
	aeadManager cryptoService.AEADManager,
	keyManager cryptoService.KeyManager,
	keysetChain *cryptoDomain.KeysetChain,
	auditChain auditUsecase.AuditChainUseCase,
) TokenizationUseCase {
	return &tokenizationUseCase{
		tokenRepo:   tokenRepo,
		deriver:     deriver,
		hashService: hashService,
		aeadManager: aeadManager,
		keyManager:  keyManager,
		keysetChain: keysetChain,
		auditChain:  auditChain,
	}
}

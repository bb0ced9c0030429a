package usecase

import (
	"context"

	cryptoDomain "github.com/allisson/privmetrics/internal/crypto/domain"
	cryptoService "github.com/allisson/privmetrics/internal/crypto/service"
	"github.com/allisson/privmetrics/internal/database"
)

// keysetUseCase implements KeysetUseCase on top of the key manager service and
// a keyset repository.
type keysetUseCase struct {
	txManager  database.TxManager
	keysetRepo KeysetRepository
	keyManager cryptoService.KeyManager
}

// Rotate creates a new key generation and retires the current active one.
//
// The rotation process:
//  1. Lists all generations (newest first) inside a transaction
//  2. If none exist, creates generation 1
//  3. Otherwise retires the current generation and creates generation N+1
//
// Both writes commit atomically, so the system never observes two active
// generations.
func (k *keysetUseCase) Rotate(
	ctx context.Context,
	masterKey *cryptoDomain.MasterKey,
	alg cryptoDomain.Algorithm,
) error {
	return k.txManager.WithTx(ctx, func(ctx context.Context) error {
		keysets, err := k.keysetRepo.List(ctx)
		if err != nil {
			return err
		}

		if len(keysets) == 0 {
			keyset, err := k.keyManager.CreateKeyset(masterKey, 1, alg)
			if err != nil {
				return err
			}
			return k.keysetRepo.Create(ctx, &keyset)
		}

		current := keysets[0]

		if current.State == cryptoDomain.KeysetActive {
			if err := k.keysetRepo.Retire(ctx, current.Generation); err != nil {
				return err
			}
		}

		keyset, err := k.keyManager.CreateKeyset(masterKey, current.Generation+1, alg)
		if err != nil {
			return err
		}
		return k.keysetRepo.Create(ctx, &keyset)
	})
}

// Destroy permanently erases the key material for a generation.
//
// The active generation cannot be destroyed: that would leave nothing to mint
// new tokens with. Callers must rotate first.
func (k *keysetUseCase) Destroy(ctx context.Context, generation uint) error {
	return k.txManager.WithTx(ctx, func(ctx context.Context) error {
		keyset, err := k.keysetRepo.GetByGeneration(ctx, generation)
		if err != nil {
			return err
		}

		if keyset.State == cryptoDomain.KeysetActive {
			return cryptoDomain.ErrActiveKeysetDestroy
		}
		if keyset.IsDestroyed() {
			return cryptoDomain.ErrKeysetDestroyed
		}

		return k.keysetRepo.Destroy(ctx, generation)
	})
}

// Unwrap decrypts all stored generations and returns them in a KeysetChain.
//
// Destroyed generations carry no key material and are loaded as-is; the chain
// reports ErrKeysetDestroyed when they are looked up.
func (k *keysetUseCase) Unwrap(
	ctx context.Context,
	masterKey *cryptoDomain.MasterKey,
) (*cryptoDomain.KeysetChain, error) {
	keysets, err := k.keysetRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	for _, keyset := range keysets {
		if keyset.IsDestroyed() {
			continue
		}
		if err := k.keyManager.UnwrapKeyset(keyset, masterKey); err != nil {
			return nil, err
		}
	}

	return cryptoDomain.NewKeysetChain(keysets), nil
}

// NewKeysetUseCase creates a new keyset use case instance with the provided
// dependencies.
func NewKeysetUseCase(
	txManager database.TxManager,
	keysetRepo KeysetRepository,
	keyManager cryptoService.KeyManager,
) KeysetUseCase {
	return &keysetUseCase{
		txManager:  txManager,
		keysetRepo: keysetRepo,
		keyManager: keyManager,
	}
}

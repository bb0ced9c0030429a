// Package usecase orchestrates key generation lifecycle operations.
//
// It coordinates the key manager service (cryptographic operations) with the
// keyset repository (persistence), implementing rotation, destruction, and the
// startup unwrap that loads all generations into an in-memory KeysetChain.
package usecase

import (
	"context"

	cryptoDomain "github.com/allisson/privmetrics/internal/crypto/domain"
)

// KeysetRepository defines the interface for keyset generation persistence.
//
// Implementations must support transaction-aware operations through context
// propagation (database.GetTx), return generations ordered by generation
// descending from List(), and be safe for concurrent use.
//
// Available implementations:
//   - PostgreSQLKeysetRepository: uses native UUID and BYTEA types
//   - MySQLKeysetRepository: uses CHAR(36) for UUIDs and BLOB for binary data
type KeysetRepository interface {
	// Create stores a new keyset generation.
	Create(ctx context.Context, keyset *cryptoDomain.Keyset) error

	// GetByGeneration retrieves a keyset by generation number. Returns
	// ErrKeysetNotFound if the generation does not exist.
	GetByGeneration(ctx context.Context, generation uint) (*cryptoDomain.Keyset, error)

	// List retrieves all keyset generations ordered by generation descending
	// (newest first). The ordering matters: rotation derives the next
	// generation number from the first element.
	List(ctx context.Context) ([]*cryptoDomain.Keyset, error)

	// Retire marks the active keyset for a generation as retired. Returns
	// ErrKeysetNotFound if no active keyset exists for the generation.
	Retire(ctx context.Context, generation uint) error

	// Destroy erases the generation's key material and marks it destroyed.
	// The row is retained so destroyed generations remain distinguishable
	// from generations that never existed.
	Destroy(ctx context.Context, generation uint) error
}

// KeysetUseCase defines the business logic for keyset generation lifecycle.
//
// Typical startup flow:
//
//	masterKey, err := cryptoDomain.LoadMasterKey(ctx, keeper)
//	if err != nil {
//	    return err
//	}
//	defer masterKey.Close()
//
//	chain, err := keysetUseCase.Unwrap(ctx, masterKey)
//	if err != nil {
//	    return err
//	}
//	defer chain.Close()
type KeysetUseCase interface {
	// Rotate creates a new key generation and retires the current active one.
	// If no generations exist yet, it creates generation 1. The operation is
	// atomic: the retire and the create commit together or not at all.
	Rotate(ctx context.Context, masterKey *cryptoDomain.MasterKey, alg cryptoDomain.Algorithm) error

	// Destroy permanently erases the key material for a generation. Tokens
	// minted under the generation become unrecoverable. Destroying the active
	// generation is rejected; rotate first.
	Destroy(ctx context.Context, generation uint) error

	// Unwrap decrypts all stored generations with the master key and returns
	// them in a KeysetChain for in-memory use. Destroyed generations are
	// included (without key material) so lookups can report destruction
	// instead of absence.
	//
	// The returned chain holds plaintext root keys in memory; call Close()
	// when it is no longer needed.
	Unwrap(ctx context.Context, masterKey *cryptoDomain.MasterKey) (*cryptoDomain.KeysetChain, error)
}

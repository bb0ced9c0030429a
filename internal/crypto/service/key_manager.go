package service

import (
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/hkdf"

	cryptoDomain "github.com/allisson/privmetrics/internal/crypto/domain"
)

// KeyManagerService implements the KeyManager interface for keyset management.
//
// The service manages the lifecycle of key generations in a two-tier hierarchy:
//   - keyset root keys are encrypted with the master key
//   - purpose keys (token derivation, value encryption, chain signing) are
//     derived from the root key via HKDF-SHA256
//
// Deriving independent purpose keys from a single root key keeps the stored
// key material small while guaranteeing the tokenization and audit concerns
// never share keys.
type KeyManagerService struct {
	aeadManager AEADManager
}

// NewKeyManager creates a new KeyManagerService instance with the provided AEADManager.
func NewKeyManager(aeadManager AEADManager) *KeyManagerService {
	return &KeyManagerService{
		aeadManager: aeadManager,
	}
}

// CreateKeyset creates a new keyset generation encrypted with the master key.
//
// The root key is generated as a random 32-byte (256-bit) key and encrypted
// using the master key with the specified algorithm. The encrypted keyset can
// be safely stored in the database. The returned keyset has both EncryptedKey
// and plaintext Key populated; callers must zero Key when done with it.
func (km *KeyManagerService) CreateKeyset(
	masterKey *cryptoDomain.MasterKey,
	generation uint,
	alg cryptoDomain.Algorithm,
) (cryptoDomain.Keyset, error) {
	// Generate a random 32-byte root key
	rootKey := make([]byte, 32)
	if _, err := rand.Read(rootKey); err != nil {
		return cryptoDomain.Keyset{}, fmt.Errorf("failed to generate keyset root key: %w", err)
	}

	// Create cipher using AEADManager
	aead, err := km.aeadManager.CreateCipher(masterKey.Key, alg)
	if err != nil {
		return cryptoDomain.Keyset{}, err
	}

	// Encrypt the root key with the master key
	encryptedKey, nonce, err := aead.Encrypt(rootKey, nil)
	if err != nil {
		return cryptoDomain.Keyset{}, fmt.Errorf("failed to encrypt keyset root key: %w", err)
	}

	keyset := cryptoDomain.Keyset{
		ID:           uuid.Must(uuid.NewV7()),
		Generation:   generation,
		State:        cryptoDomain.KeysetActive,
		Algorithm:    alg,
		EncryptedKey: encryptedKey,
		Key:          rootKey,
		Nonce:        nonce,
		CreatedAt:    time.Now().UTC(),
	}

	return keyset, nil
}

// UnwrapKeyset decrypts a keyset's root key using the master key and populates
// its Key field. The decrypted root key must be kept in memory only and never
// persisted in plaintext form.
func (km *KeyManagerService) UnwrapKeyset(
	keyset *cryptoDomain.Keyset,
	masterKey *cryptoDomain.MasterKey,
) error {
	if keyset.IsDestroyed() {
		return cryptoDomain.ErrKeysetDestroyed
	}

	aead, err := km.aeadManager.CreateCipher(masterKey.Key, keyset.Algorithm)
	if err != nil {
		return err
	}

	rootKey, err := aead.Decrypt(keyset.EncryptedKey, keyset.Nonce, nil)
	if err != nil {
		return cryptoDomain.ErrDecryptionFailed
	}

	keyset.Key = rootKey
	return nil
}

// DeriveKey derives a 32-byte purpose key from a keyset's root key using
// HKDF-SHA256. The purpose string is bound into the HKDF info parameter
// (versioned for future algorithm changes), so different purposes yield
// unrelated keys from the same root key.
func (km *KeyManagerService) DeriveKey(rootKey []byte, purpose string) ([]byte, error) {
	if len(rootKey) != 32 {
		return nil, cryptoDomain.ErrInvalidKeySize
	}

	info := []byte("privmetrics/" + purpose + "/v1")
	hkdf := hkdf.New(sha256.New, rootKey, nil, info)

	key := make([]byte, 32)
	if _, err := io.ReadFull(hkdf, key); err != nil {
		return nil, fmt.Errorf("failed to derive %s key: %w", purpose, err)
	}

	return key, nil
}

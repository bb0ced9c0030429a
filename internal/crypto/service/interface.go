// Package service provides cryptographic services for the key manager.
// Implements AEAD ciphers (AES-256-GCM, ChaCha20-Poly1305), HKDF-based purpose
// key derivation, and keyset generation management.
package service

import (
	cryptoDomain "github.com/allisson/privmetrics/internal/crypto/domain"
)

// AEAD defines the interface for Authenticated Encryption with Associated Data.
type AEAD interface {
	// Encrypt encrypts plaintext with optional AAD and returns ciphertext and nonce.
	Encrypt(plaintext, aad []byte) (ciphertext, nonce []byte, err error)

	// Decrypt decrypts ciphertext using the provided nonce and AAD.
	Decrypt(ciphertext, nonce, aad []byte) ([]byte, error)
}

// AEADManager defines the interface for creating AEAD cipher instances.
type AEADManager interface {
	// CreateCipher creates an AEAD cipher instance for the specified algorithm.
	CreateCipher(key []byte, alg cryptoDomain.Algorithm) (AEAD, error)
}

// KeyManager defines the interface for managing keyset generations and
// deriving purpose keys from them.
type KeyManager interface {
	// CreateKeyset creates a new keyset generation with a random root key
	// encrypted under the master key.
	CreateKeyset(
		masterKey *cryptoDomain.MasterKey,
		generation uint,
		alg cryptoDomain.Algorithm,
	) (cryptoDomain.Keyset, error)

	// UnwrapKeyset decrypts a keyset's root key with the master key and
	// populates its Key field.
	UnwrapKeyset(keyset *cryptoDomain.Keyset, masterKey *cryptoDomain.MasterKey) error

	// DeriveKey derives a 32-byte purpose key from a keyset's root key.
	DeriveKey(rootKey []byte, purpose string) ([]byte, error)
}

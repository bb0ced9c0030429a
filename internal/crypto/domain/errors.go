package domain

import (
	"github.com/allisson/privmetrics/internal/errors"
)

// Cryptographic operation error definitions.
//
// These domain-specific errors wrap standard errors from internal/errors
// to provide context for cryptographic failures. All errors are mapped to
// appropriate HTTP status codes by the error handling layer.
var (
	// ErrUnsupportedAlgorithm indicates the requested encryption algorithm is not supported.
	// Supported algorithms: AESGCM (AES-256-GCM), ChaCha20 (ChaCha20-Poly1305).
	ErrUnsupportedAlgorithm = errors.Wrap(errors.ErrInvalidInput, "unsupported algorithm")

	// ErrInvalidKeySize indicates the cryptographic key size is invalid.
	// All keys (master keys and keyset root keys) must be exactly 32 bytes.
	ErrInvalidKeySize = errors.Wrap(errors.ErrInvalidInput, "invalid key size")

	// ErrDecryptionFailed indicates a decryption operation failed.
	//
	// This error can occur due to:
	//   - Wrong decryption key used
	//   - Ciphertext has been tampered with (authentication failure)
	//   - Invalid nonce provided
	//
	// For security reasons, the specific cause is not disclosed to prevent
	// information leakage that could aid attackers.
	ErrDecryptionFailed = errors.Wrap(errors.ErrInvalidInput, "decryption failed")

	// ErrKeysetNotFound indicates no keyset exists for the requested generation.
	ErrKeysetNotFound = errors.Wrap(errors.ErrNotFound, "keyset not found")

	// ErrKeysetDestroyed indicates the keyset for the requested generation has
	// been deliberately destroyed (e.g., right-to-be-forgotten). Tokens issued
	// under a destroyed generation are permanently unrecoverable; this is
	// distinct from using the wrong generation.
	ErrKeysetDestroyed = errors.Wrap(errors.ErrInvalidInput, "keyset destroyed")

	// ErrActiveKeysetDestroy indicates an attempt to destroy the active
	// generation. Rotate to a new generation first.
	ErrActiveKeysetDestroy = errors.Wrap(errors.ErrInvalidInput, "cannot destroy active keyset")

	// ErrNoActiveKeyset indicates the keyset chain has no active generation.
	ErrNoActiveKeyset = errors.Wrap(errors.ErrNotFound, "no active keyset")

	// ErrMasterKeyNotSet indicates the MASTER_KEY environment variable is not configured.
	ErrMasterKeyNotSet = errors.New("MASTER_KEY environment variable not set")

	// ErrInvalidMasterKeyFormat indicates MASTER_KEY is not in "id:base64key" format.
	ErrInvalidMasterKeyFormat = errors.New("invalid MASTER_KEY format, expected id:base64key")

	// ErrInvalidMasterKeyBase64 indicates the master key is not valid base64.
	ErrInvalidMasterKeyBase64 = errors.New("invalid base64 in MASTER_KEY")
)

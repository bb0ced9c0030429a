package domain

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"strings"
)

// MasterKey represents the root key of the key hierarchy, used to encrypt
// keyset root keys.
//
// In production the key material should live in a Key Management Service and
// only its KMS-wrapped ciphertext appears in the environment. In development
// and test environments the raw base64 key may be supplied directly.
type MasterKey struct {
	ID  string
	Key []byte
}

// Close securely clears the master key material from memory.
func (m *MasterKey) Close() {
	Zero(m.Key)
	m.Key = nil
}

// KMSKeeper abstracts a KMS-backed keeper capable of unwrapping the master key.
// *secrets.Keeper from gocloud.dev implements this interface.
type KMSKeeper interface {
	Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error)
	Close() error
}

// LoadMasterKey loads the master key from the MASTER_KEY environment variable.
//
// Format: MASTER_KEY="id:base64value". When keeper is non-nil the decoded value
// is treated as KMS ciphertext and unwrapped through the keeper; otherwise it
// is used directly as the 32-byte key material.
func LoadMasterKey(ctx context.Context, keeper KMSKeeper) (*MasterKey, error) {
	raw := os.Getenv("MASTER_KEY")
	if raw == "" {
		return nil, ErrMasterKeyNotSet
	}

	parts := strings.SplitN(strings.TrimSpace(raw), ":", 2)
	if len(parts) != 2 || parts[0] == "" {
		return nil, ErrInvalidMasterKeyFormat
	}
	id := parts[0]

	decoded, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, fmt.Errorf("%w for %s: %v", ErrInvalidMasterKeyBase64, id, err)
	}

	key := decoded
	if keeper != nil {
		key, err = keeper.Decrypt(ctx, decoded)
		Zero(decoded)
		if err != nil {
			return nil, fmt.Errorf("failed to unwrap master key %s with KMS: %w", id, err)
		}
	}

	if len(key) != 32 {
		Zero(key)
		return nil, fmt.Errorf("%w: master key %s must be 32 bytes, got %d", ErrInvalidKeySize, id, len(key))
	}

	return &MasterKey{ID: id, Key: key}, nil
}

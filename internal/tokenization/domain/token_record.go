package domain

import (
	"time"

	"github.com/google/uuid"
)

// TokenRecord maps (field type, key generation, plaintext hash) to a token.
//
// Records are append-only and immutable. The original plaintext is stored
// AEAD-encrypted under the generation's value encryption key so authorized
// callers can reverse the mapping; the value hash is an HMAC of the plaintext
// under the generation's derivation key, used for the deterministic lookup.
// Key rotation retires records logically: they stay resolvable as long as
// their generation's key material is retained.
type TokenRecord struct {
	ID            uuid.UUID
	FieldType     FieldType
	KeyGeneration uint
	ValueHash     string
	Token         string
	Ciphertext    []byte
	Nonce         []byte
	CreatedAt     time.Time
}

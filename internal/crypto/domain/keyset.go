// Package domain defines the core cryptographic domain models for the key manager.
//
// It implements a two-tier key hierarchy: Master Key → Keyset root key → purpose keys.
// Each keyset is a numbered key generation; rotating generations changes future tokens
// while historical tokens remain resolvable via retained prior generations. Purpose
// keys (token derivation, value encryption, audit chain signing) are derived from the
// generation's root key with HKDF-SHA256 so the three concerns never share material.
package domain

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// KeysetState describes the lifecycle state of a key generation.
type KeysetState string

const (
	// KeysetActive marks the generation used for all new tokenization.
	KeysetActive KeysetState = "active"

	// KeysetRetired marks a rotated-out generation. Retired generations remain
	// resolvable so historical tokens can still be detokenized.
	KeysetRetired KeysetState = "retired"

	// KeysetDestroyed marks a generation whose key material has been
	// deliberately erased. Its tokens are permanently unrecoverable.
	KeysetDestroyed KeysetState = "destroyed"
)

// Keyset represents a versioned tokenization key generation.
// The root key is encrypted with the master key and stored in the database;
// the plaintext Key field is populated only after unwrapping and never persisted.
type Keyset struct {
	ID           uuid.UUID
	Generation   uint
	State        KeysetState
	Algorithm    Algorithm
	EncryptedKey []byte // root key encrypted with the master key; nil once destroyed
	Key          []byte // plaintext root key (populated after unwrap, never persisted)
	Nonce        []byte
	CreatedAt    time.Time
	DestroyedAt  *time.Time
}

// IsDestroyed reports whether the generation's key material has been erased.
func (k *Keyset) IsDestroyed() bool {
	return k.State == KeysetDestroyed
}

// KeysetChain manages the loaded key generations with thread-safe access.
//
// Reads (Active, Get) are safe for unlimited concurrent readers. Rotation and
// destruction are rare exclusive operations; they never invalidate a *Keyset
// already handed to an in-flight caller.
type KeysetChain struct {
	mu        sync.RWMutex
	activeGen uint
	keysets   map[uint]*Keyset
}

// NewKeysetChain creates a chain from the given keysets. The highest
// non-destroyed generation becomes active.
func NewKeysetChain(keysets []*Keyset) *KeysetChain {
	kc := &KeysetChain{keysets: make(map[uint]*Keyset, len(keysets))}
	for _, ks := range keysets {
		kc.keysets[ks.Generation] = ks
		if !ks.IsDestroyed() && ks.Generation > kc.activeGen {
			kc.activeGen = ks.Generation
		}
	}
	return kc
}

// Active returns the keyset used for new tokenization.
func (kc *KeysetChain) Active() (*Keyset, error) {
	kc.mu.RLock()
	defer kc.mu.RUnlock()

	ks, ok := kc.keysets[kc.activeGen]
	if !ok || ks.IsDestroyed() {
		return nil, ErrNoActiveKeyset
	}
	return ks, nil
}

// ActiveGeneration returns the number of the active generation (0 if none).
func (kc *KeysetChain) ActiveGeneration() uint {
	kc.mu.RLock()
	defer kc.mu.RUnlock()
	return kc.activeGen
}

// Get retrieves the keyset for a specific generation. It returns
// ErrKeysetNotFound for unknown generations and ErrKeysetDestroyed when the
// generation's key material has been erased.
func (kc *KeysetChain) Get(generation uint) (*Keyset, error) {
	kc.mu.RLock()
	defer kc.mu.RUnlock()

	ks, ok := kc.keysets[generation]
	if !ok {
		return nil, ErrKeysetNotFound
	}
	if ks.IsDestroyed() {
		return nil, ErrKeysetDestroyed
	}
	return ks, nil
}

// Add inserts a new generation into the chain. Generations higher than the
// current active one become active (key rotation). The previous active keyset
// stays in the chain for detokenization of historical tokens.
func (kc *KeysetChain) Add(ks *Keyset) {
	kc.mu.Lock()
	defer kc.mu.Unlock()

	kc.keysets[ks.Generation] = ks
	if !ks.IsDestroyed() && ks.Generation > kc.activeGen {
		kc.activeGen = ks.Generation
	}
}

// Destroy erases a generation's key material from the chain and marks it
// destroyed. The keyset entry itself is retained so later lookups can
// distinguish "destroyed" from "never existed".
func (kc *KeysetChain) Destroy(generation uint) error {
	kc.mu.Lock()
	defer kc.mu.Unlock()

	ks, ok := kc.keysets[generation]
	if !ok {
		return ErrKeysetNotFound
	}

	Zero(ks.Key)
	ks.Key = nil
	ks.EncryptedKey = nil
	ks.State = KeysetDestroyed
	now := time.Now().UTC()
	ks.DestroyedAt = &now
	return nil
}

// Close securely clears all root keys from the chain.
func (kc *KeysetChain) Close() {
	kc.mu.Lock()
	defer kc.mu.Unlock()

	for _, ks := range kc.keysets {
		Zero(ks.Key)
		ks.Key = nil
	}
	kc.keysets = map[uint]*Keyset{}
	kc.activeGen = 0
}

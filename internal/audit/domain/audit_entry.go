// Package domain defines the tamper-evident audit chain models.
//
// Audit entries form an append-only hash chain: each entry's digest covers its
// canonical content plus the previous entry's digest, and the digest is signed
// with an HMAC key derived from a key generation. Mutating, removing, or
// reordering any historical entry breaks every digest after it.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// DigestSize is the size in bytes of an entry digest (SHA-256).
const DigestSize = 32

// ActionKind identifies the recorded operation.
type ActionKind string

const (
	ActionTokenize       ActionKind = "tokenize"
	ActionDetokenize     ActionKind = "detokenize"
	ActionIngest         ActionKind = "ingest"
	ActionQueryGranted   ActionKind = "query_granted"
	ActionQueryDenied    ActionKind = "query_denied"
	ActionBudgetReleased ActionKind = "budget_released"
	ActionAccessDenied   ActionKind = "access_denied"
	ActionKeyRotated     ActionKind = "key_rotated"
	ActionKeyDestroyed   ActionKind = "key_destroyed"
	ActionChainVerified  ActionKind = "chain_verified"
)

// AuditEntry is a single link in the audit chain.
//
// Seq is assigned by the writer and strictly contiguous: entry N+1 always
// carries the digest of entry N in PrevDigest. The first entry links to a
// zero-valued digest.
type AuditEntry struct {
	ID            uuid.UUID
	Seq           uint64
	Actor         string
	Action        ActionKind
	Subject       string
	Metadata      map[string]any
	KeyGeneration uint
	PrevDigest    []byte
	Digest        []byte
	Signature     []byte
	CreatedAt     time.Time
}

// GenesisDigest returns the all-zero digest the first entry links to.
func GenesisDigest() []byte {
	return make([]byte, DigestSize)
}

// ChainVerificationResult reports the outcome of verifying a range of the chain.
type ChainVerificationResult struct {
	TotalChecked    int64
	ValidCount      int64
	InvalidCount    int64
	UnverifiedCount int64 // entries signed under a destroyed key generation
	InvalidSeqs     []uint64
	FirstInvalidSeq *uint64
}

// Valid reports whether every checked entry passed digest and signature checks.
func (r *ChainVerificationResult) Valid() bool {
	return r.InvalidCount == 0
}

// Package service implements the cryptographic core of the audit chain:
// canonical entry encoding, digest computation, and HMAC signing.
package service

import (
	auditDomain "github.com/allisson/privmetrics/internal/audit/domain"
)

// ChainSigner computes and verifies audit chain digests and signatures.
//
// The digest of an entry is SHA-256 over its canonical byte encoding, which
// includes the previous entry's digest. The signature is HMAC-SHA256 over the
// digest with a signing key derived from the entry's key generation.
type ChainSigner interface {
	// ComputeDigest returns the SHA-256 digest of the entry's canonical
	// encoding. The entry's PrevDigest field must already be set.
	ComputeDigest(entry *auditDomain.AuditEntry) ([]byte, error)

	// Sign returns the HMAC-SHA256 signature over the digest.
	Sign(signingKey, digest []byte) []byte

	// Verify recomputes the entry's digest and signature and checks them
	// against the stored values. Returns ErrDigestMismatch or
	// ErrSignatureInvalid on failure, nil when the entry is intact.
	Verify(signingKey []byte, entry *auditDomain.AuditEntry) error
}

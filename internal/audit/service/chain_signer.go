package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"fmt"

	auditDomain "github.com/allisson/privmetrics/internal/audit/domain"
)

type chainSigner struct{}

// NewChainSigner creates a signer using SHA-256 digests and HMAC-SHA256
// signatures over the canonical entry encoding.
func NewChainSigner() ChainSigner {
	return &chainSigner{}
}

// canonicalize converts an entry to its canonical byte representation.
// Format: seq || id || actor || action || subject || metadata || key_generation
// || created_at || prev_digest. Variable-length fields are length-prefixed to
// prevent ambiguity.
func (c *chainSigner) canonicalize(entry *auditDomain.AuditEntry) ([]byte, error) {
	buf := make([]byte, 0, 512)

	var seqBytes [8]byte
	binary.BigEndian.PutUint64(seqBytes[:], entry.Seq)
	buf = append(buf, seqBytes[:]...)

	buf = append(buf, entry.ID[:]...)

	buf = appendLengthPrefixed(buf, []byte(entry.Actor))
	buf = appendLengthPrefixed(buf, []byte(string(entry.Action)))
	buf = appendLengthPrefixed(buf, []byte(entry.Subject))

	if entry.Metadata != nil {
		metadataBytes, err := json.Marshal(entry.Metadata)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal metadata: %w", err)
		}
		buf = appendLengthPrefixed(buf, metadataBytes)
	} else {
		buf = appendLengthPrefixed(buf, nil)
	}

	var genBytes [8]byte
	binary.BigEndian.PutUint64(genBytes[:], uint64(entry.KeyGeneration))
	buf = append(buf, genBytes[:]...)

	// Timestamps are canonicalized at microsecond precision, the finest
	// precision the audit_entries column stores. Anything finer would make
	// the digest diverge after a database round trip.
	var timeBytes [8]byte
	binary.BigEndian.PutUint64(timeBytes[:], uint64(entry.CreatedAt.UnixMicro()))
	buf = append(buf, timeBytes[:]...)

	buf = append(buf, entry.PrevDigest...)

	return buf, nil
}

// appendLengthPrefixed adds a 4-byte big-endian length prefix followed by data.
func appendLengthPrefixed(buf []byte, data []byte) []byte {
	if len(data) > 0xFFFFFFFF {
		panic("data length exceeds uint32 max")
	}
	var length [4]byte
	binary.BigEndian.PutUint32(length[:], uint32(len(data)))
	buf = append(buf, length[:]...)
	buf = append(buf, data...)
	return buf
}

// ComputeDigest returns the SHA-256 digest of the entry's canonical encoding.
func (c *chainSigner) ComputeDigest(entry *auditDomain.AuditEntry) ([]byte, error) {
	if len(entry.PrevDigest) != auditDomain.DigestSize {
		return nil, fmt.Errorf("prev digest must be %d bytes, got %d",
			auditDomain.DigestSize, len(entry.PrevDigest))
	}

	canonical, err := c.canonicalize(entry)
	if err != nil {
		return nil, fmt.Errorf("failed to canonicalize entry: %w", err)
	}

	digest := sha256.Sum256(canonical)
	return digest[:], nil
}

// Sign returns the HMAC-SHA256 signature over the digest.
func (c *chainSigner) Sign(signingKey, digest []byte) []byte {
	mac := hmac.New(sha256.New, signingKey)
	mac.Write(digest)
	return mac.Sum(nil)
}

// Verify recomputes the entry's digest and signature against stored values.
func (c *chainSigner) Verify(signingKey []byte, entry *auditDomain.AuditEntry) error {
	expectedDigest, err := c.ComputeDigest(entry)
	if err != nil {
		return fmt.Errorf("failed to compute expected digest: %w", err)
	}

	if !hmac.Equal(entry.Digest, expectedDigest) {
		return auditDomain.ErrDigestMismatch
	}

	expectedSig := c.Sign(signingKey, expectedDigest)
	if !hmac.Equal(entry.Signature, expectedSig) {
		return auditDomain.ErrSignatureInvalid
	}

	return nil
}

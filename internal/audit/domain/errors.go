package domain

import (
	"github.com/allisson/privmetrics/internal/errors"
)

var (
	// ErrDigestMismatch indicates an entry's recomputed digest does not match
	// the stored digest, or the chain link to the previous entry is broken.
	ErrDigestMismatch = errors.Wrap(errors.ErrIntegrity, "audit entry digest mismatch")

	// ErrSignatureInvalid indicates an entry's HMAC signature failed verification.
	ErrSignatureInvalid = errors.Wrap(errors.ErrIntegrity, "audit entry signature invalid")

	// ErrSequenceGap indicates the stored chain is missing one or more
	// sequence numbers.
	ErrSequenceGap = errors.Wrap(errors.ErrIntegrity, "audit chain sequence gap")
)

package domain

import (
	"github.com/allisson/privmetrics/internal/errors"
)

var (
	// ErrInvalidFieldType indicates the field type is not one of the supported kinds.
	ErrInvalidFieldType = errors.Wrap(errors.ErrInvalidInput, "invalid field type")

	// ErrFormatMismatch indicates the plaintext does not match the syntactic
	// class of its declared field type.
	ErrFormatMismatch = errors.Wrap(errors.ErrInvalidInput, "plaintext does not match field type format")

	// ErrEmptyPlaintext indicates an empty plaintext was submitted for tokenization.
	ErrEmptyPlaintext = errors.Wrap(errors.ErrInvalidInput, "plaintext cannot be empty")

	// ErrPlaintextTooLong indicates the plaintext exceeds MaxPlaintextLength bytes.
	ErrPlaintextTooLong = errors.Wrap(errors.ErrInvalidInput, "plaintext exceeds maximum length")

	// ErrTokenNotFound indicates no token record exists for the lookup.
	ErrTokenNotFound = errors.Wrap(errors.ErrNotFound, "token not found")

	// ErrKeyMismatch indicates the token exists but was issued under a
	// different key generation than the one requested. Detokenization never
	// silently decrypts with the wrong generation.
	ErrKeyMismatch = errors.Wrap(errors.ErrInvalidInput, "token key generation mismatch")

	// ErrDetokenizeForbidden indicates the request did not assert the
	// detokenize capability.
	ErrDetokenizeForbidden = errors.Wrap(errors.ErrForbidden, "detokenize capability not asserted")
)

// Package service implements deterministic format-preserving token derivation.
//
// Tokens are derived from an HMAC-SHA256 keystream over (field type,
// plaintext), keyed with the generation's derivation key, and mapped into the
// plaintext's syntactic class by a per-field-type transformer. Derivation is
// a pure function of its inputs: the same plaintext, field type, and key
// always produce the same token.
package service

import (
	tokenizationDomain "github.com/allisson/privmetrics/internal/tokenization/domain"
)

// TokenDeriver defines the interface for deterministic token derivation.
type TokenDeriver interface {
	// Derive validates the plaintext against its field type and derives the
	// format-preserving token under the given derivation key.
	Derive(key []byte, fieldType tokenizationDomain.FieldType, plaintext string) (string, error)

	// Validate checks the plaintext against the field type's syntactic class
	// without deriving a token.
	Validate(fieldType tokenizationDomain.FieldType, plaintext string) error
}

// FieldTransformer maps plaintext of one field type into a token of the same
// syntactic class.
type FieldTransformer interface {
	// Validate checks the plaintext against the field type's syntactic class.
	Validate(plaintext string) error

	// Transform derives the token from the keystream. The plaintext must have
	// passed Validate.
	Transform(stream *prfStream, plaintext string) (string, error)
}

// NewFieldTransformer creates the transformer for the given field type.
func NewFieldTransformer(fieldType tokenizationDomain.FieldType) (FieldTransformer, error) {
	switch fieldType {
	case tokenizationDomain.FieldEmail:
		return &emailTransformer{}, nil
	case tokenizationDomain.FieldPhone:
		return &phoneTransformer{}, nil
	case tokenizationDomain.FieldSSN:
		return &ssnTransformer{}, nil
	case tokenizationDomain.FieldNumeric:
		return &numericTransformer{}, nil
	case tokenizationDomain.FieldAlphanumeric:
		return &alphanumericTransformer{}, nil
	default:
		return nil, tokenizationDomain.ErrInvalidFieldType
	}
}

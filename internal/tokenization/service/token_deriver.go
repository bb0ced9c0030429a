package service

import (
	tokenizationDomain "github.com/allisson/privmetrics/internal/tokenization/domain"
)

type hmacTokenDeriver struct{}

// NewTokenDeriver creates the HMAC-SHA256 based token deriver.
func NewTokenDeriver() TokenDeriver {
	return &hmacTokenDeriver{}
}

// Derive validates the plaintext and derives its format-preserving token.
// Derivation never blocks and draws no randomness: the token is a pure
// function of (key, field type, plaintext).
func (d *hmacTokenDeriver) Derive(
	key []byte,
	fieldType tokenizationDomain.FieldType,
	plaintext string,
) (string, error) {
	if len(plaintext) > tokenizationDomain.MaxPlaintextLength {
		return "", tokenizationDomain.ErrPlaintextTooLong
	}

	transformer, err := NewFieldTransformer(fieldType)
	if err != nil {
		return "", err
	}
	if err := transformer.Validate(plaintext); err != nil {
		return "", err
	}

	return transformer.Transform(newPRFStream(key, fieldType, plaintext), plaintext)
}

// Validate checks the plaintext against the field type's syntactic class.
func (d *hmacTokenDeriver) Validate(fieldType tokenizationDomain.FieldType, plaintext string) error {
	if len(plaintext) > tokenizationDomain.MaxPlaintextLength {
		return tokenizationDomain.ErrPlaintextTooLong
	}

	transformer, err := NewFieldTransformer(fieldType)
	if err != nil {
		return err
	}
	return transformer.Validate(plaintext)
}

package service

import (
	tokenizationDomain "github.com/allisson/privmetrics/internal/tokenization/domain"
)

type numericTransformer struct{}

// Validate checks that the plaintext is a non-empty digits-only string.
func (t *numericTransformer) Validate(plaintext string) error {
	if len(plaintext) == 0 {
		return tokenizationDomain.ErrEmptyPlaintext
	}
	for _, c := range plaintext {
		if c < '0' || c > '9' {
			return tokenizationDomain.ErrFormatMismatch
		}
	}
	return nil
}

// Transform derives a digits-only token of the same length as the plaintext.
func (t *numericTransformer) Transform(stream *prfStream, plaintext string) (string, error) {
	token := make([]byte, len(plaintext))
	for i := range token {
		token[i] = byte('0' + stream.uniformInt(10))
	}
	return string(token), nil
}

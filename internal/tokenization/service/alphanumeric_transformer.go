package service

import (
	tokenizationDomain "github.com/allisson/privmetrics/internal/tokenization/domain"
)

const (
	alphanumericChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	lowercaseChars    = "abcdefghijklmnopqrstuvwxyz"
	lowerAlnumChars   = "abcdefghijklmnopqrstuvwxyz0123456789"
)

type alphanumericTransformer struct{}

// Validate checks that the plaintext is a non-empty string over [A-Za-z0-9].
func (t *alphanumericTransformer) Validate(plaintext string) error {
	if len(plaintext) == 0 {
		return tokenizationDomain.ErrEmptyPlaintext
	}
	for _, c := range plaintext {
		if !isAlphanumeric(c) {
			return tokenizationDomain.ErrFormatMismatch
		}
	}
	return nil
}

// Transform derives an alphanumeric token of the same length as the plaintext.
func (t *alphanumericTransformer) Transform(stream *prfStream, plaintext string) (string, error) {
	token := make([]byte, len(plaintext))
	for i := range token {
		token[i] = alphanumericChars[stream.uniformInt(len(alphanumericChars))]
	}
	return string(token), nil
}

func isAlphanumeric(c rune) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9')
}

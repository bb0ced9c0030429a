package service

import (
	tokenizationDomain "github.com/allisson/privmetrics/internal/tokenization/domain"
)

type phoneTransformer struct{}

// Validate accepts digits with common formatting characters. A leading "+" is
// allowed only in the first position; at least one digit is required.
func (t *phoneTransformer) Validate(plaintext string) error {
	if len(plaintext) == 0 {
		return tokenizationDomain.ErrEmptyPlaintext
	}

	digits := 0
	for i, c := range plaintext {
		switch {
		case c >= '0' && c <= '9':
			digits++
		case c == '+':
			if i != 0 {
				return tokenizationDomain.ErrFormatMismatch
			}
		case c == '-' || c == ' ' || c == '(' || c == ')' || c == '.':
		default:
			return tokenizationDomain.ErrFormatMismatch
		}
	}
	if digits == 0 {
		return tokenizationDomain.ErrFormatMismatch
	}
	return nil
}

// Transform replaces each digit and preserves formatting characters in place,
// so "+1 (555) 123-4567" keeps its exact shape.
func (t *phoneTransformer) Transform(stream *prfStream, plaintext string) (string, error) {
	token := make([]byte, len(plaintext))
	for i := 0; i < len(plaintext); i++ {
		c := plaintext[i]
		if c >= '0' && c <= '9' {
			token[i] = byte('0' + stream.uniformInt(10))
			continue
		}
		token[i] = c
	}
	return string(token), nil
}

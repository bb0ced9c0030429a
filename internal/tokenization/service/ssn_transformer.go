package service

import (
	tokenizationDomain "github.com/allisson/privmetrics/internal/tokenization/domain"
)

type ssnTransformer struct{}

// Validate accepts the DDD-DD-DDDD dashed form or a bare 9-digit string.
func (t *ssnTransformer) Validate(plaintext string) error {
	if len(plaintext) == 0 {
		return tokenizationDomain.ErrEmptyPlaintext
	}

	switch len(plaintext) {
	case 9:
		for _, c := range plaintext {
			if c < '0' || c > '9' {
				return tokenizationDomain.ErrFormatMismatch
			}
		}
		return nil
	case 11:
		for i, c := range plaintext {
			if i == 3 || i == 6 {
				if c != '-' {
					return tokenizationDomain.ErrFormatMismatch
				}
				continue
			}
			if c < '0' || c > '9' {
				return tokenizationDomain.ErrFormatMismatch
			}
		}
		return nil
	default:
		return tokenizationDomain.ErrFormatMismatch
	}
}

// Transform replaces each digit and preserves the dashes in place, so the
// token matches the plaintext's form exactly.
func (t *ssnTransformer) Transform(stream *prfStream, plaintext string) (string, error) {
	token := make([]byte, len(plaintext))
	for i := 0; i < len(plaintext); i++ {
		if plaintext[i] == '-' {
			token[i] = '-'
			continue
		}
		token[i] = byte('0' + stream.uniformInt(10))
	}
	return string(token), nil
}

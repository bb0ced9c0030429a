package service

import (
	"strings"

	tokenizationDomain "github.com/allisson/privmetrics/internal/tokenization/domain"
)

type emailTransformer struct{}

// Validate accepts local@domain where the local part is non-empty and the
// domain has at least two non-empty dot-separated labels. Whitespace and
// additional "@" characters are rejected.
func (t *emailTransformer) Validate(plaintext string) error {
	if len(plaintext) == 0 {
		return tokenizationDomain.ErrEmptyPlaintext
	}
	if strings.Count(plaintext, "@") != 1 {
		return tokenizationDomain.ErrFormatMismatch
	}

	at := strings.IndexByte(plaintext, '@')
	local, domain := plaintext[:at], plaintext[at+1:]
	if local == "" || domain == "" {
		return tokenizationDomain.ErrFormatMismatch
	}
	if strings.ContainsAny(plaintext, " \t") {
		return tokenizationDomain.ErrFormatMismatch
	}

	labels := strings.Split(domain, ".")
	if len(labels) < 2 {
		return tokenizationDomain.ErrFormatMismatch
	}
	for _, label := range labels {
		if label == "" {
			return tokenizationDomain.ErrFormatMismatch
		}
	}
	return nil
}

// Transform derives an email-shaped token: the local part becomes lowercase
// alphanumeric of the same length (first character a letter), each domain
// label becomes lowercase letters of the same length, and the "@" and dots
// stay in place. The result is always a syntactically valid address.
func (t *emailTransformer) Transform(stream *prfStream, plaintext string) (string, error) {
	at := strings.IndexByte(plaintext, '@')
	local, domain := plaintext[:at], plaintext[at+1:]

	var b strings.Builder
	b.Grow(len(plaintext))

	for i := 0; i < len(local); i++ {
		if i == 0 {
			b.WriteByte(lowercaseChars[stream.uniformInt(len(lowercaseChars))])
			continue
		}
		b.WriteByte(lowerAlnumChars[stream.uniformInt(len(lowerAlnumChars))])
	}
	b.WriteByte('@')

	for i := 0; i < len(domain); i++ {
		if domain[i] == '.' {
			b.WriteByte('.')
			continue
		}
		b.WriteByte(lowercaseChars[stream.uniformInt(len(lowercaseChars))])
	}

	return b.String(), nil
}

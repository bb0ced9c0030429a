// Package domain defines the tokenization domain models.
//
// Tokenization is deterministic and format preserving: the same plaintext
// under the same key generation always yields the same token, and the token
// belongs to the same syntactic class as the plaintext (digits stay digits of
// the same length, email-shaped input stays email-shaped). Determinism makes
// equality joins on tokenized data possible without exposing plaintext.
package domain

// FieldType classifies an identifying field. The field type selects the
// format-preserving transformer and partitions the token space: the same
// plaintext tokenized under two field types yields unrelated tokens.
type FieldType string

const (
	// FieldEmail is an email address (local@domain).
	FieldEmail FieldType = "email"

	// FieldPhone is a phone number. Digits are replaced; formatting
	// characters (+, dashes, spaces, parentheses) are preserved in place.
	FieldPhone FieldType = "phone"

	// FieldSSN is a national identification number in DDD-DD-DDDD or
	// 9-digit form.
	FieldSSN FieldType = "ssn"

	// FieldNumeric is a digits-only value of any length.
	FieldNumeric FieldType = "numeric"

	// FieldAlphanumeric is a value over [A-Za-z0-9] of any length.
	FieldAlphanumeric FieldType = "alphanumeric"
)

// MaxPlaintextLength is the maximum accepted plaintext length in bytes.
const MaxPlaintextLength = 255

// IsValid reports whether the field type is one of the supported kinds.
func (f FieldType) IsValid() bool {
	switch f {
	case FieldEmail, FieldPhone, FieldSSN, FieldNumeric, FieldAlphanumeric:
		return true
	default:
		return false
	}
}

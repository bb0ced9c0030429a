// Package dto provides data transfer objects for tokenization HTTP handlers.
package dto

import (
	validation "github.com/jellydator/validation"

	customValidation "github.com/allisson/privmetrics/internal/validation"
)

// TokenizeRequest contains the parameters for deriving a token directly,
// outside of event ingestion.
type TokenizeRequest struct {
	FieldType string `json:"field_type"`
	Plaintext string `json:"plaintext"`
}

// Validate checks if the tokenize request is valid.
func (r *TokenizeRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.FieldType, validation.Required, customValidation.FieldTypeRule{}),
		validation.Field(&r.Plaintext, validation.Required, validation.Length(1, 255)),
	)
}

// DetokenizeRequest contains the parameters for recovering a plaintext.
// KeyGeneration names the generation the token was issued under; it must
// match the stored record exactly.
type DetokenizeRequest struct {
	FieldType     string `json:"field_type"`
	Token         string `json:"token"`
	KeyGeneration uint   `json:"key_generation"`
}

// Validate checks if the detokenize request is valid.
func (r *DetokenizeRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.FieldType, validation.Required, customValidation.FieldTypeRule{}),
		validation.Field(&r.Token, validation.Required, validation.Length(1, 255)),
		validation.Field(&r.KeyGeneration, validation.Required),
	)
}

package dto

import (
	"time"

	tokenizationDomain "github.com/allisson/privmetrics/internal/tokenization/domain"
)

// TokenResponse represents a token record in API responses.
// Ciphertext and nonce are never exposed.
type TokenResponse struct {
	ID            string    `json:"id"`
	FieldType     string    `json:"field_type"`
	Token         string    `json:"token"`
	KeyGeneration uint      `json:"key_generation"`
	CreatedAt     time.Time `json:"created_at"`
}

// MapTokenRecordToResponse converts a domain token record to an API response.
func MapTokenRecordToResponse(record *tokenizationDomain.TokenRecord) TokenResponse {
	return TokenResponse{
		ID:            record.ID.String(),
		FieldType:     string(record.FieldType),
		Token:         record.Token,
		KeyGeneration: record.KeyGeneration,
		CreatedAt:     record.CreatedAt,
	}
}

// DetokenizeResponse carries a recovered plaintext.
type DetokenizeResponse struct {
	FieldType     string `json:"field_type"`
	Plaintext     string `json:"plaintext"`
	KeyGeneration uint   `json:"key_generation"`
}

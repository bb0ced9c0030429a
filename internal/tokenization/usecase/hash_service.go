package usecase

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// HashService provides keyed hashing for deterministic token record lookups.
// The hash is keyed with the generation's derivation key so stored value
// hashes cannot be brute-forced offline from low-entropy plaintexts.
type HashService interface {
	Hash(key, value []byte) string
}

type hmacHashService struct{}

// NewHMACHashService creates a new HMAC-SHA256 hash service.
func NewHMACHashService() HashService {
	return &hmacHashService{}
}

// Hash computes HMAC-SHA256 of the value under the key as a hex string.
func (s *hmacHashService) Hash(key, value []byte) string {
	mac := hmac.New(sha256.New, key)
	mac.Write(value)
	return hex.EncodeToString(mac.Sum(nil))
}

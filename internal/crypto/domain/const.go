package domain

// Algorithm represents the cryptographic algorithm used for encryption.
//
// All supported algorithms provide Authenticated Encryption with Associated Data (AEAD),
// ensuring both confidentiality and authenticity of encrypted data.
//
// Algorithm selection guidelines:
//   - Use AESGCM on modern CPUs with AES-NI hardware acceleration
//   - Use ChaCha20 on mobile devices or systems without AES-NI
//   - Both provide equivalent 256-bit security when used correctly
type Algorithm string

const (
	// AESGCM represents the AES-256-GCM authenticated encryption algorithm.
	// 256-bit key, 12-byte nonce, 16-byte authentication tag. Hardware
	// accelerated on most modern CPUs.
	AESGCM Algorithm = "aes-gcm"

	// ChaCha20 represents the ChaCha20-Poly1305 authenticated encryption algorithm.
	// 256-bit key, 12-byte nonce, 16-byte authentication tag. Constant-time
	// implementation with excellent software performance.
	ChaCha20 Algorithm = "chacha20-poly1305"
)

// Key derivation purposes. Each purpose yields an independent key from a
// keyset's root key via HKDF-SHA256, so token derivation, value encryption,
// and audit chain signing never share key material.
const (
	// PurposeTokenDerivation derives the keyed-hash key used for deterministic
	// token derivation. Field type is appended to the purpose so different
	// field types produce unrelated token spaces.
	PurposeTokenDerivation = "token-derivation"

	// PurposeValueEncryption derives the AEAD key used to encrypt original
	// plaintext values inside token records.
	PurposeValueEncryption = "value-encryption"

	// PurposeChainSigning derives the HMAC key used to sign audit chain entries.
	PurposeChainSigning = "audit-chain-signing"
)

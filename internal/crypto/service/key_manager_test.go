package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/allisson/privmetrics/internal/crypto/domain"
)

func testMasterKey(t *testing.T) *cryptoDomain.MasterKey {
	t.Helper()
	return &cryptoDomain.MasterKey{
		ID:  "test-master-key",
		Key: randomKey(t),
	}
}

func TestKeyManager_CreateKeyset(t *testing.T) {
	km := NewKeyManager(NewAEADManager())
	masterKey := testMasterKey(t)

	keyset, err := km.CreateKeyset(masterKey, 1, cryptoDomain.AESGCM)
	require.NoError(t, err)

	assert.Equal(t, uint(1), keyset.Generation)
	assert.Equal(t, cryptoDomain.KeysetActive, keyset.State)
	assert.Len(t, keyset.Key, 32)
	assert.NotEmpty(t, keyset.EncryptedKey)
	assert.NotEqual(t, keyset.Key, keyset.EncryptedKey)
	assert.False(t, keyset.CreatedAt.IsZero())
}

func TestKeyManager_UnwrapKeyset(t *testing.T) {
	km := NewKeyManager(NewAEADManager())
	masterKey := testMasterKey(t)

	t.Run("round trip", func(t *testing.T) {
		keyset, err := km.CreateKeyset(masterKey, 1, cryptoDomain.AESGCM)
		require.NoError(t, err)

		original := append([]byte{}, keyset.Key...)
		keyset.Key = nil

		require.NoError(t, km.UnwrapKeyset(&keyset, masterKey))
		assert.Equal(t, original, keyset.Key)
	})

	t.Run("wrong master key", func(t *testing.T) {
		keyset, err := km.CreateKeyset(masterKey, 1, cryptoDomain.AESGCM)
		require.NoError(t, err)
		keyset.Key = nil

		err = km.UnwrapKeyset(&keyset, testMasterKey(t))
		assert.ErrorIs(t, err, cryptoDomain.ErrDecryptionFailed)
	})

	t.Run("destroyed keyset", func(t *testing.T) {
		keyset, err := km.CreateKeyset(masterKey, 1, cryptoDomain.AESGCM)
		require.NoError(t, err)
		keyset.State = cryptoDomain.KeysetDestroyed

		err = km.UnwrapKeyset(&keyset, masterKey)
		assert.ErrorIs(t, err, cryptoDomain.ErrKeysetDestroyed)
	})
}

func TestKeyManager_DeriveKey(t *testing.T) {
	km := NewKeyManager(NewAEADManager())
	rootKey := randomKey(t)

	t.Run("deterministic per purpose", func(t *testing.T) {
		key1, err := km.DeriveKey(rootKey, cryptoDomain.PurposeTokenDerivation)
		require.NoError(t, err)
		key2, err := km.DeriveKey(rootKey, cryptoDomain.PurposeTokenDerivation)
		require.NoError(t, err)

		assert.Len(t, key1, 32)
		assert.Equal(t, key1, key2)
	})

	t.Run("different purposes yield different keys", func(t *testing.T) {
		derivation, err := km.DeriveKey(rootKey, cryptoDomain.PurposeTokenDerivation)
		require.NoError(t, err)
		encryption, err := km.DeriveKey(rootKey, cryptoDomain.PurposeValueEncryption)
		require.NoError(t, err)
		signing, err := km.DeriveKey(rootKey, cryptoDomain.PurposeChainSigning)
		require.NoError(t, err)

		assert.NotEqual(t, derivation, encryption)
		assert.NotEqual(t, derivation, signing)
		assert.NotEqual(t, encryption, signing)
	})

	t.Run("different root keys yield different keys", func(t *testing.T) {
		key1, err := km.DeriveKey(rootKey, cryptoDomain.PurposeTokenDerivation)
		require.NoError(t, err)
		key2, err := km.DeriveKey(randomKey(t), cryptoDomain.PurposeTokenDerivation)
		require.NoError(t, err)

		assert.NotEqual(t, key1, key2)
	})

	t.Run("invalid root key size", func(t *testing.T) {
		_, err := km.DeriveKey(make([]byte, 16), cryptoDomain.PurposeTokenDerivation)
		assert.ErrorIs(t, err, cryptoDomain.ErrInvalidKeySize)
	})
}

package commands

import (
	"testing"

	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/allisson/privmetrics/internal/crypto/domain"
)

func TestParseAlgorithm(t *testing.T) {
	t.Run("aes-gcm", func(t *testing.T) {
		alg, err := parseAlgorithm("aes-gcm")
		require.NoError(t, err)
		require.Equal(t, cryptoDomain.AESGCM, alg)
	})

	t.Run("chacha20-poly1305", func(t *testing.T) {
		alg, err := parseAlgorithm("chacha20-poly1305")
		require.NoError(t, err)
		require.Equal(t, cryptoDomain.ChaCha20, alg)
	})

	t.Run("invalid", func(t *testing.T) {
		_, err := parseAlgorithm("des")
		require.Error(t, err)
		require.Contains(t, err.Error(), "invalid algorithm")
	})
}

func TestDefaultIO(t *testing.T) {
	io := DefaultIO()
	require.NotNil(t, io.Reader)
	require.NotNil(t, io.Writer)
}

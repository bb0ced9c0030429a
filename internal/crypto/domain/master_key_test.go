package domain

import (
	"context"
	"encoding/base64"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMasterKey(t *testing.T) {
	ctx := context.Background()
	validKey := base64.StdEncoding.EncodeToString(make([]byte, 32))

	tests := []struct {
		name    string
		value   string
		wantErr error
	}{
		{"not set", "", ErrMasterKeyNotSet},
		{"missing id", ":" + validKey, ErrInvalidMasterKeyFormat},
		{"missing separator", "no-separator", ErrInvalidMasterKeyFormat},
		{"invalid base64", "key1:!!!not-base64!!!", ErrInvalidMasterKeyBase64},
		{"wrong key size", "key1:" + base64.StdEncoding.EncodeToString(make([]byte, 16)), ErrInvalidKeySize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value == "" {
				require.NoError(t, os.Unsetenv("MASTER_KEY"))
			} else {
				t.Setenv("MASTER_KEY", tt.value)
			}

			mk, err := LoadMasterKey(ctx, nil)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, mk)
		})
	}

	t.Run("valid key without KMS", func(t *testing.T) {
		t.Setenv("MASTER_KEY", "dev-master-key:"+validKey)

		mk, err := LoadMasterKey(ctx, nil)
		require.NoError(t, err)
		defer mk.Close()

		assert.Equal(t, "dev-master-key", mk.ID)
		assert.Len(t, mk.Key, 32)
	})
}

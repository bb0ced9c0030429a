package commands

import (
	"bytes"
	"context"
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRunCreateMasterKey(t *testing.T) {
	ctx := context.Background()

	t.Run("development-mode", func(t *testing.T) {
		var out bytes.Buffer
		err := RunCreateMasterKey(ctx, &out, "test-key", "", "")
		require.NoError(t, err)
		require.Contains(t, out.String(), "MASTER_KEY=\"test-key:")
		require.Contains(t, out.String(), "WARNING")
		require.NotContains(t, out.String(), "KMS_PROVIDER")

		// The raw value must decode to 32 bytes
		value := extractMasterKeyValue(t, out.String(), "test-key")
		decoded, err := base64.StdEncoding.DecodeString(value)
		require.NoError(t, err)
		require.Len(t, decoded, 32)
	})

	t.Run("default-key-id", func(t *testing.T) {
		var out bytes.Buffer
		err := RunCreateMasterKey(ctx, &out, "", "", "")
		require.NoError(t, err)
		require.Contains(t, out.String(), "MASTER_KEY=\"master-key-")
	})

	t.Run("kms-mode", func(t *testing.T) {
		var out bytes.Buffer
		kmsKeyURI := "base64key://smGbjm71Nxd1Ig5FS0wj9SlbzAIrnolCz9bQQ6uAhl4="
		err := RunCreateMasterKey(ctx, &out, "prod-key", "localsecrets", kmsKeyURI)
		require.NoError(t, err)
		require.Contains(t, out.String(), "KMS_PROVIDER=\"localsecrets\"")
		require.Contains(t, out.String(), "KMS_KEY_URI=")
		require.Contains(t, out.String(), "MASTER_KEY=\"prod-key:")
		require.NotContains(t, out.String(), "WARNING")

		// KMS ciphertext is longer than the 32-byte plaintext
		value := extractMasterKeyValue(t, out.String(), "prod-key")
		decoded, err := base64.StdEncoding.DecodeString(value)
		require.NoError(t, err)
		require.Greater(t, len(decoded), 32)
	})

	t.Run("invalid-kms-uri", func(t *testing.T) {
		var out bytes.Buffer
		err := RunCreateMasterKey(ctx, &out, "test-key", "localsecrets", "unknown-scheme://nope")
		require.Error(t, err)
		require.Contains(t, err.Error(), "failed to open KMS keeper")
	})
}

// extractMasterKeyValue pulls the base64 value out of the MASTER_KEY line.
func extractMasterKeyValue(t *testing.T, output, keyID string) string {
	t.Helper()

	prefix := "MASTER_KEY=\"" + keyID + ":"
	for _, line := range strings.Split(output, "\n") {
		if strings.HasPrefix(line, prefix) {
			return strings.TrimSuffix(strings.TrimPrefix(line, prefix), "\"")
		}
	}

	t.Fatalf("MASTER_KEY line for %s not found in output", keyID)
	return ""
}

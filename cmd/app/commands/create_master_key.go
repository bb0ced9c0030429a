package commands

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
	"time"

	cryptoDomain "github.com/allisson/privmetrics/internal/crypto/domain"
	cryptoService "github.com/allisson/privmetrics/internal/crypto/service"
)

// RunCreateMasterKey generates a cryptographically secure 32-byte master key.
// The master key is the root of the key hierarchy: it wraps the keyset root
// keys stored in the database. Key material is zeroed from memory after
// encoding. If keyID is empty, generates a default ID in format
// "master-key-YYYY-MM-DD".
//
// When kmsKeyURI is set the key is encrypted through the KMS keeper before
// output and only the ciphertext appears in the environment. Without a KMS
// URI the raw base64 key is printed for development use.
//
// Output format:
//   - MASTER_KEY="<keyID>:<base64 value>"
//   - KMS_PROVIDER / KMS_KEY_URI when KMS mode is used
func RunCreateMasterKey(ctx context.Context, writer io.Writer, keyID, kmsProvider, kmsKeyURI string) error {
	// Generate default key ID if not provided
	if keyID == "" {
		keyID = fmt.Sprintf("master-key-%s", time.Now().Format("2006-01-02"))
	}

	// Generate a cryptographically secure 32-byte master key
	masterKey := make([]byte, 32)
	if _, err := rand.Read(masterKey); err != nil {
		return fmt.Errorf("failed to generate master key: %w", err)
	}
	defer cryptoDomain.Zero(masterKey)

	value := masterKey

	if kmsKeyURI != "" {
		// Open the KMS keeper and wrap the key material
		kmsService := cryptoService.NewKMSService()
		keeperInterface, err := kmsService.OpenKeeper(ctx, kmsKeyURI)
		if err != nil {
			return fmt.Errorf("failed to open KMS keeper: %w", err)
		}
		defer func() {
			if closeErr := keeperInterface.Close(); closeErr != nil {
				_, _ = fmt.Fprintf(writer, "# Warning: failed to close KMS keeper: %v\n", closeErr)
			}
		}()

		keeper, ok := keeperInterface.(interface {
			Encrypt(ctx context.Context, plaintext []byte) ([]byte, error)
		})
		if !ok {
			return fmt.Errorf("KMS keeper does not support encryption")
		}

		ciphertext, err := keeper.Encrypt(ctx, masterKey)
		if err != nil {
			return fmt.Errorf("failed to encrypt master key with KMS: %w", err)
		}
		value = ciphertext
	}

	encodedKey := base64.StdEncoding.EncodeToString(value)

	_, _ = fmt.Fprintln(writer, "# Master Key Configuration")
	_, _ = fmt.Fprintln(writer, "# Copy these environment variables to your .env file or secrets manager")
	_, _ = fmt.Fprintln(writer)

	if kmsKeyURI != "" {
		_, _ = fmt.Fprintf(writer, "KMS_PROVIDER=%q\n", kmsProvider)
		_, _ = fmt.Fprintf(writer, "KMS_KEY_URI=%q\n", kmsKeyURI)
	} else {
		_, _ = fmt.Fprintln(writer, "# WARNING: raw key output, for development only.")
		_, _ = fmt.Fprintln(writer, "# In production wrap the key with a KMS via --kms-provider and --kms-key-uri.")
	}

	_, _ = fmt.Fprintf(writer, "MASTER_KEY=\"%s:%s\"\n", keyID, encodedKey)

	return nil
}

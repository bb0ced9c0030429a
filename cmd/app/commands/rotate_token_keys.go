package commands

import (
	"context"
	"fmt"
	"log/slog"

	auditDomain "github.com/allisson/privmetrics/internal/audit/domain"
	authDomain "github.com/allisson/privmetrics/internal/auth/domain"

	"github.com/allisson/privmetrics/internal/app"
	"github.com/allisson/privmetrics/internal/config"
)

// RunRotateTokenKeys creates a new key generation and retires the current
// active one. Tokens minted under previous generations remain resolvable:
// rotation changes which generation signs and encrypts new material, it never
// invalidates old material. The rotation is recorded in the audit chain.
//
// Requirements: MASTER_KEY must be set and the database must be migrated.
func RunRotateTokenKeys(ctx context.Context, algorithmStr string) error {
	// Load configuration
	cfg := config.Load()

	// Create DI container
	container := app.NewContainer(cfg)

	// Get logger from container
	logger := container.Logger()
	logger.Info("rotating token keys", slog.String("algorithm", algorithmStr))

	// Ensure cleanup on exit
	defer closeContainer(container, logger)

	// Parse algorithm
	algorithm, err := parseAlgorithm(algorithmStr)
	if err != nil {
		return err
	}

	// Get keyset use case from container
	keysetUseCase, err := container.KeysetUseCase()
	if err != nil {
		return fmt.Errorf("failed to initialize keyset use case: %w", err)
	}

	// Load the master key for the duration of the rotation
	masterKey, err := container.MasterKey(ctx)
	if err != nil {
		return fmt.Errorf("failed to load master key: %w", err)
	}
	defer masterKey.Close()

	// Rotate the keyset
	if err := keysetUseCase.Rotate(ctx, masterKey, algorithm); err != nil {
		return fmt.Errorf("failed to rotate token keys: %w", err)
	}

	// Record the rotation in the audit chain. The chain is unwrapped after
	// the rotation so the entry is signed with the new active generation.
	auditChain, err := container.AuditChainUseCase(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize audit chain: %w", err)
	}

	appendErr := auditChain.Append(
		ctx,
		authDomain.SystemActor,
		auditDomain.ActionKeyRotated,
		"keyset",
		map[string]any{"algorithm": algorithmStr},
	)
	if appendErr != nil {
		return fmt.Errorf("failed to record rotation in audit chain: %w", appendErr)
	}

	logger.Info("token keys rotated successfully",
		slog.String("algorithm", string(algorithm)),
	)

	return nil
}

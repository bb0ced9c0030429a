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

// RunDestroyTokenKey permanently erases the key material for a generation.
// This is the crypto-erasure path: every token minted under the generation
// becomes unrecoverable, which satisfies deletion requests without touching
// individual token records. The destruction is recorded in the audit chain.
//
// Destroying the active generation is rejected; rotate first.
func RunDestroyTokenKey(ctx context.Context, generation uint) error {
	// Load configuration
	cfg := config.Load()

	// Create DI container
	container := app.NewContainer(cfg)

	// Get logger from container
	logger := container.Logger()
	logger.Info("destroying token key generation", slog.Uint64("generation", uint64(generation)))

	// Ensure cleanup on exit
	defer closeContainer(container, logger)

	// Get keyset use case from container
	keysetUseCase, err := container.KeysetUseCase()
	if err != nil {
		return fmt.Errorf("failed to initialize keyset use case: %w", err)
	}

	// Destroy the generation
	if err := keysetUseCase.Destroy(ctx, generation); err != nil {
		return fmt.Errorf("failed to destroy key generation %d: %w", generation, err)
	}

	// Record the destruction in the audit chain
	auditChain, err := container.AuditChainUseCase(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize audit chain: %w", err)
	}

	appendErr := auditChain.Append(
		ctx,
		authDomain.SystemActor,
		auditDomain.ActionKeyDestroyed,
		"keyset",
		map[string]any{"generation": generation},
	)
	if appendErr != nil {
		return fmt.Errorf("failed to record destruction in audit chain: %w", appendErr)
	}

	logger.Info("token key generation destroyed",
		slog.Uint64("generation", uint64(generation)),
	)

	return nil
}

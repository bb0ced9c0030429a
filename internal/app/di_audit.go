package app

import (
	"context"
	"fmt"

	auditRepository "github.com/allisson/privmetrics/internal/audit/repository"
	auditService "github.com/allisson/privmetrics/internal/audit/service"
	auditUseCase "github.com/allisson/privmetrics/internal/audit/usecase"
)

// AuditEntryRepository returns the audit entry repository for the configured
// database driver.
func (c *Container) AuditEntryRepository() (auditUseCase.AuditEntryRepository, error) {
	c.auditEntryRepoInit.Do(func() {
		db, err := c.DB()
		if err != nil {
			c.initErrors["auditEntryRepo"] = fmt.Errorf("failed to get database for audit entry repository: %w", err)
			return
		}

		switch c.config.DBDriver {
		case "postgres":
			c.auditEntryRepo = auditRepository.NewPostgreSQLAuditEntryRepository(db)
		case "mysql":
			c.auditEntryRepo = auditRepository.NewMySQLAuditEntryRepository(db)
		default:
			c.initErrors["auditEntryRepo"] = fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
		}
	})
	if err, exists := c.initErrors["auditEntryRepo"]; exists {
		return nil, err
	}
	return c.auditEntryRepo, nil
}

// AuditChainUseCase returns the audit chain use case, wrapped with metrics
// when enabled.
func (c *Container) AuditChainUseCase(ctx context.Context) (auditUseCase.AuditChainUseCase, error) {
	c.auditChainUCInit.Do(func() {
		entryRepo, err := c.AuditEntryRepository()
		if err != nil {
			c.initErrors["auditChainUseCase"] = err
			return
		}

		keysetChain, err := c.KeysetChain(ctx)
		if err != nil {
			c.initErrors["auditChainUseCase"] = err
			return
		}

		useCase := auditUseCase.NewAuditChainUseCase(
			entryRepo,
			auditService.NewChainSigner(),
			c.KeyManager(),
			keysetChain,
			c.config.ChainVerifyPageSize,
		)

		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			c.initErrors["auditChainUseCase"] = err
			return
		}

		c.auditChainUC = auditUseCase.NewAuditChainUseCaseWithMetrics(useCase, businessMetrics)
	})
	if err, exists := c.initErrors["auditChainUseCase"]; exists {
		return nil, err
	}
	return c.auditChainUC, nil
}

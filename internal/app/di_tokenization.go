package app

import (
	"context"
	"fmt"

	tokenizationRepository "github.com/allisson/privmetrics/internal/tokenization/repository"
	tokenizationService "github.com/allisson/privmetrics/internal/tokenization/service"
	tokenizationUseCase "github.com/allisson/privmetrics/internal/tokenization/usecase"
)

// TokenRecordRepository returns the token record repository for the
// configured database driver.
func (c *Container) TokenRecordRepository() (tokenizationUseCase.TokenRecordRepository, error) {
	c.tokenRecordRepoInit.Do(func() {
		db, err := c.DB()
		if err != nil {
			c.initErrors["tokenRecordRepo"] = fmt.Errorf("failed to get database for token record repository: %w", err)
			return
		}

		switch c.config.DBDriver {
		case "postgres":
			c.tokenRecordRepo = tokenizationRepository.NewPostgreSQLTokenRecordRepository(db)
		case "mysql":
			c.tokenRecordRepo = tokenizationRepository.NewMySQLTokenRecordRepository(db)
		default:
			c.initErrors["tokenRecordRepo"] = fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
		}
	})
	if err, exists := c.initErrors["tokenRecordRepo"]; exists {
		return nil, err
	}
	return c.tokenRecordRepo, nil
}

// TokenizationUseCase returns the tokenization use case, wrapped with metrics
// when enabled.
func (c *Container) TokenizationUseCase(ctx context.Context) (tokenizationUseCase.TokenizationUseCase, error) {
	c.tokenizationUCInit.Do(func() {
		tokenRepo, err := c.TokenRecordRepository()
		if err != nil {
			c.initErrors["tokenizationUseCase"] = err
			return
		}

		keysetChain, err := c.KeysetChain(ctx)
		if err != nil {
			c.initErrors["tokenizationUseCase"] = err
			return
		}

		auditChain, err := c.AuditChainUseCase(ctx)
		if err != nil {
			c.initErrors["tokenizationUseCase"] = err
			return
		}

		useCase := tokenizationUseCase.NewTokenizationUseCase(
			tokenRepo,
			tokenizationService.NewTokenDeriver(),
			tokenizationUseCase.NewHMACHashService(),
			c.AEADManager(),
			c.KeyManager(),
			keysetChain,
			auditChain,
		)

		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			c.initErrors["tokenizationUseCase"] = err
			return
		}

		c.tokenizationUC = tokenizationUseCase.NewTokenizationUseCaseWithMetrics(useCase, businessMetrics)
	})
	if err, exists := c.initErrors["tokenizationUseCase"]; exists {
		return nil, err
	}
	return c.tokenizationUC, nil
}

package app

import (
	"context"
	"fmt"

	analyticsRepository "github.com/allisson/privmetrics/internal/analytics/repository"
	analyticsUseCase "github.com/allisson/privmetrics/internal/analytics/usecase"
)

// EventRepository returns the event repository for the configured database
// driver.
func (c *Container) EventRepository() (analyticsUseCase.EventRepository, error) {
	c.eventRepoInit.Do(func() {
		db, err := c.DB()
		if err != nil {
			c.initErrors["eventRepo"] = fmt.Errorf("failed to get database for event repository: %w", err)
			return
		}

		switch c.config.DBDriver {
		case "postgres":
			c.eventRepo = analyticsRepository.NewPostgreSQLEventRepository(db)
		case "mysql":
			c.eventRepo = analyticsRepository.NewMySQLEventRepository(db)
		default:
			c.initErrors["eventRepo"] = fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
		}
	})
	if err, exists := c.initErrors["eventRepo"]; exists {
		return nil, err
	}
	return c.eventRepo, nil
}

// AnalyticsUseCase returns the analytics use case, wrapped with metrics when
// enabled.
func (c *Container) AnalyticsUseCase(ctx context.Context) (analyticsUseCase.AnalyticsUseCase, error) {
	c.analyticsUCInit.Do(func() {
		eventRepo, err := c.EventRepository()
		if err != nil {
			c.initErrors["analyticsUseCase"] = err
			return
		}

		tokenizationUC, err := c.TokenizationUseCase(ctx)
		if err != nil {
			c.initErrors["analyticsUseCase"] = err
			return
		}

		budgetUC, err := c.BudgetUseCase()
		if err != nil {
			c.initErrors["analyticsUseCase"] = err
			return
		}

		auditChain, err := c.AuditChainUseCase(ctx)
		if err != nil {
			c.initErrors["analyticsUseCase"] = err
			return
		}

		useCase := analyticsUseCase.NewAnalyticsUseCase(eventRepo, tokenizationUC, budgetUC, auditChain)

		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			c.initErrors["analyticsUseCase"] = err
			return
		}

		c.analyticsUC = analyticsUseCase.NewAnalyticsUseCaseWithMetrics(useCase, businessMetrics)
	})
	if err, exists := c.initErrors["analyticsUseCase"]; exists {
		return nil, err
	}
	return c.analyticsUC, nil
}

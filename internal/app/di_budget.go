package app

import (
	"fmt"

	budgetRepository "github.com/allisson/privmetrics/internal/budget/repository"
	budgetUseCase "github.com/allisson/privmetrics/internal/budget/usecase"
)

// BudgetAccountRepository returns the budget account repository for the
// configured database driver.
func (c *Container) BudgetAccountRepository() (budgetUseCase.BudgetAccountRepository, error) {
	c.budgetRepoInit.Do(func() {
		db, err := c.DB()
		if err != nil {
			c.initErrors["budgetAccountRepo"] = fmt.Errorf("failed to get database for budget account repository: %w", err)
			return
		}

		switch c.config.DBDriver {
		case "postgres":
			c.budgetAccountRepo = budgetRepository.NewPostgreSQLBudgetAccountRepository(db)
		case "mysql":
			c.budgetAccountRepo = budgetRepository.NewMySQLBudgetAccountRepository(db)
		default:
			c.initErrors["budgetAccountRepo"] = fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
		}
	})
	if err, exists := c.initErrors["budgetAccountRepo"]; exists {
		return nil, err
	}
	return c.budgetAccountRepo, nil
}

// BudgetUseCase returns the privacy budget ledger use case, wrapped with
// metrics when enabled.
func (c *Container) BudgetUseCase() (budgetUseCase.BudgetUseCase, error) {
	c.budgetUCInit.Do(func() {
		txManager, err := c.TxManager()
		if err != nil {
			c.initErrors["budgetUseCase"] = err
			return
		}

		accountRepo, err := c.BudgetAccountRepository()
		if err != nil {
			c.initErrors["budgetUseCase"] = err
			return
		}

		useCase := budgetUseCase.NewBudgetUseCase(
			txManager,
			accountRepo,
			c.config.BudgetWindowDuration,
			c.config.BudgetDefaultEpsilonMax,
			c.config.BudgetDefaultDeltaMax,
		)

		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			c.initErrors["budgetUseCase"] = err
			return
		}

		c.budgetUC = budgetUseCase.NewBudgetUseCaseWithMetrics(useCase, businessMetrics)
	})
	if err, exists := c.initErrors["budgetUseCase"]; exists {
		return nil, err
	}
	return c.budgetUC, nil
}

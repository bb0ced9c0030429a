package repository

import (
	"context"
	"database/sql"
	"time"

	budgetDomain "github.com/allisson/privmetrics/internal/budget/domain"
	"github.com/allisson/privmetrics/internal/database"
	apperrors "github.com/allisson/privmetrics/internal/errors"
)

// MySQLBudgetAccountRepository implements budget account persistence for MySQL.
type MySQLBudgetAccountRepository struct {
	db *sql.DB
}

// Create inserts a new budget account row.
func (m *MySQLBudgetAccountRepository) Create(
	ctx context.Context,
	account *budgetDomain.BudgetAccount,
) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO budget_accounts (` + budgetAccountColumns + `)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := querier.ExecContext(
		ctx,
		query,
		account.ID.String(),
		account.Scope,
		account.WindowStart,
		account.WindowEnd,
		account.EpsilonMax,
		account.EpsilonSpent,
		account.DeltaMax,
		account.DeltaSpent,
		account.CreatedAt,
		account.UpdatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create budget account")
	}
	return nil
}

// GetForUpdate retrieves the account for (scope, windowStart) with a row lock.
// Must be called inside a transaction.
func (m *MySQLBudgetAccountRepository) GetForUpdate(
	ctx context.Context,
	scope string,
	windowStart time.Time,
) (*budgetDomain.BudgetAccount, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + budgetAccountColumns + `
			  FROM budget_accounts
			  WHERE scope = ? AND window_start = ?
			  FOR UPDATE`

	account, err := scanBudgetAccount(querier.QueryRowContext(ctx, query, scope, windowStart))
	if err != nil {
		if apperrors.Is(err, sql.ErrNoRows) {
			return nil, budgetDomain.ErrAccountNotFound
		}
		return nil, err
	}
	return account, nil
}

// GetLatest retrieves the most recent account for a scope without locking.
func (m *MySQLBudgetAccountRepository) GetLatest(
	ctx context.Context,
	scope string,
) (*budgetDomain.BudgetAccount, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + budgetAccountColumns + `
			  FROM budget_accounts
			  WHERE scope = ?
			  ORDER BY window_start DESC
			  LIMIT 1`

	account, err := scanBudgetAccount(querier.QueryRowContext(ctx, query, scope))
	if err != nil {
		if apperrors.Is(err, sql.ErrNoRows) {
			return nil, budgetDomain.ErrAccountNotFound
		}
		return nil, err
	}
	return account, nil
}

// UpdateSpend persists the account's current spend counters.
func (m *MySQLBudgetAccountRepository) UpdateSpend(
	ctx context.Context,
	account *budgetDomain.BudgetAccount,
) error {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE budget_accounts
			  SET epsilon_spent = ?, delta_spent = ?, updated_at = ?
			  WHERE id = ?`

	result, err := querier.ExecContext(
		ctx,
		query,
		account.EpsilonSpent,
		account.DeltaSpent,
		time.Now().UTC(),
		account.ID.String(),
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update budget account spend")
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to get rows affected")
	}
	if rowsAffected == 0 {
		return budgetDomain.ErrAccountNotFound
	}
	return nil
}

// NewMySQLBudgetAccountRepository creates a new MySQL budget account repository.
func NewMySQLBudgetAccountRepository(db *sql.DB) *MySQLBudgetAccountRepository {
	return &MySQLBudgetAccountRepository{db: db}
}

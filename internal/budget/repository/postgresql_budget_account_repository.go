// Package repository implements budget ledger persistence.
//
// Spend mutations are expected to run inside a transaction started by the use
// case: GetForUpdate takes a row lock (SELECT ... FOR UPDATE) so concurrent
// admissions against the same account serialize at the database even if
// multiple processes share the ledger.
package repository

import (
	"context"
	"database/sql"
	"time"

	budgetDomain "github.com/allisson/privmetrics/internal/budget/domain"
	"github.com/allisson/privmetrics/internal/database"
	apperrors "github.com/allisson/privmetrics/internal/errors"
)

const budgetAccountColumns = `id, scope, window_start, window_end, epsilon_max, epsilon_spent, delta_max, delta_spent, created_at, updated_at`

// PostgreSQLBudgetAccountRepository implements budget account persistence for PostgreSQL.
type PostgreSQLBudgetAccountRepository struct {
	db *sql.DB
}

// Create inserts a new budget account row.
func (p *PostgreSQLBudgetAccountRepository) Create(
	ctx context.Context,
	account *budgetDomain.BudgetAccount,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO budget_accounts (` + budgetAccountColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := querier.ExecContext(
		ctx,
		query,
		account.ID,
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
// Must be called inside a transaction. Returns ErrAccountNotFound when the
// window has no account yet.
func (p *PostgreSQLBudgetAccountRepository) GetForUpdate(
	ctx context.Context,
	scope string,
	windowStart time.Time,
) (*budgetDomain.BudgetAccount, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + budgetAccountColumns + `
			  FROM budget_accounts
			  WHERE scope = $1 AND window_start = $2
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
// Used for advisory budget reads; the answer may be stale by the time the
// caller sees it.
func (p *PostgreSQLBudgetAccountRepository) GetLatest(
	ctx context.Context,
	scope string,
) (*budgetDomain.BudgetAccount, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + budgetAccountColumns + `
			  FROM budget_accounts
			  WHERE scope = $1
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
func (p *PostgreSQLBudgetAccountRepository) UpdateSpend(
	ctx context.Context,
	account *budgetDomain.BudgetAccount,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE budget_accounts
			  SET epsilon_spent = $1, delta_spent = $2, updated_at = $3
			  WHERE id = $4`

	result, err := querier.ExecContext(
		ctx,
		query,
		account.EpsilonSpent,
		account.DeltaSpent,
		time.Now().UTC(),
		account.ID,
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

// NewPostgreSQLBudgetAccountRepository creates a new PostgreSQL budget account repository.
func NewPostgreSQLBudgetAccountRepository(db *sql.DB) *PostgreSQLBudgetAccountRepository {
	return &PostgreSQLBudgetAccountRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBudgetAccount(scanner rowScanner) (*budgetDomain.BudgetAccount, error) {
	var account budgetDomain.BudgetAccount

	err := scanner.Scan(
		&account.ID,
		&account.Scope,
		&account.WindowStart,
		&account.WindowEnd,
		&account.EpsilonMax,
		&account.EpsilonSpent,
		&account.DeltaMax,
		&account.DeltaSpent,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		if apperrors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, apperrors.Wrap(err, "failed to scan budget account")
	}

	return &account, nil
}

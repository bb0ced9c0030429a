package repository

import (
	"context"
	"database/sql"
	"time"

	cryptoDomain "github.com/allisson/privmetrics/internal/crypto/domain"
	"github.com/allisson/privmetrics/internal/database"
	apperrors "github.com/allisson/privmetrics/internal/errors"
)

// MySQLKeysetRepository implements keyset persistence for MySQL databases.
type MySQLKeysetRepository struct {
	db *sql.DB
}

// Create inserts a new keyset generation into the MySQL database.
func (m *MySQLKeysetRepository) Create(ctx context.Context, keyset *cryptoDomain.Keyset) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO token_keysets (id, generation, state, algorithm, encrypted_key, nonce, created_at, destroyed_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := querier.ExecContext(
		ctx,
		query,
		keyset.ID.String(),
		keyset.Generation,
		string(keyset.State),
		string(keyset.Algorithm),
		keyset.EncryptedKey,
		keyset.Nonce,
		keyset.CreatedAt,
		keyset.DestroyedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create keyset")
	}
	return nil
}

// GetByGeneration retrieves a keyset by its generation number.
func (m *MySQLKeysetRepository) GetByGeneration(
	ctx context.Context,
	generation uint,
) (*cryptoDomain.Keyset, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, generation, state, algorithm, encrypted_key, nonce, created_at, destroyed_at
			  FROM token_keysets
			  WHERE generation = ?`

	row := querier.QueryRowContext(ctx, query, generation)
	return scanKeyset(row)
}

// List retrieves all keyset generations ordered by generation descending.
func (m *MySQLKeysetRepository) List(ctx context.Context) ([]*cryptoDomain.Keyset, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, generation, state, algorithm, encrypted_key, nonce, created_at, destroyed_at
			  FROM token_keysets
			  ORDER BY generation DESC`

	rows, err := querier.QueryContext(ctx, query)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list keysets")
	}
	defer func() {
		_ = rows.Close()
	}()

	keysets := make([]*cryptoDomain.Keyset, 0)
	for rows.Next() {
		keyset, err := scanKeysetRow(rows)
		if err != nil {
			return nil, err
		}
		keysets = append(keysets, keyset)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate keysets")
	}

	return keysets, nil
}

// Retire marks the keyset for a generation as retired.
func (m *MySQLKeysetRepository) Retire(ctx context.Context, generation uint) error {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE token_keysets SET state = ? WHERE generation = ? AND state = ?`

	result, err := querier.ExecContext(
		ctx,
		query,
		string(cryptoDomain.KeysetRetired),
		generation,
		string(cryptoDomain.KeysetActive),
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to retire keyset")
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to get rows affected")
	}
	if rowsAffected == 0 {
		return cryptoDomain.ErrKeysetNotFound
	}
	return nil
}

// Destroy erases a generation's key material and marks it destroyed.
func (m *MySQLKeysetRepository) Destroy(ctx context.Context, generation uint) error {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE token_keysets
			  SET state = ?, encrypted_key = NULL, destroyed_at = ?
			  WHERE generation = ? AND state != ?`

	result, err := querier.ExecContext(
		ctx,
		query,
		string(cryptoDomain.KeysetDestroyed),
		time.Now().UTC(),
		generation,
		string(cryptoDomain.KeysetDestroyed),
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to destroy keyset")
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to get rows affected")
	}
	if rowsAffected == 0 {
		return cryptoDomain.ErrKeysetNotFound
	}
	return nil
}

// NewMySQLKeysetRepository creates a new MySQL keyset repository.
func NewMySQLKeysetRepository(db *sql.DB) *MySQLKeysetRepository {
	return &MySQLKeysetRepository{db: db}
}

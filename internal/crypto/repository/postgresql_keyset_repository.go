// Package repository implements data persistence for key generation management.
//
// Each repository type has two implementations:
//   - PostgreSQL: uses native UUID type and BYTEA for binary data
//   - MySQL: uses CHAR(36) for UUIDs and BLOB for binary data
//
// All repositories support transaction-aware operations via database.GetTx().
package repository

import (
	"context"
	"database/sql"
	"time"

	cryptoDomain "github.com/allisson/privmetrics/internal/crypto/domain"
	"github.com/allisson/privmetrics/internal/database"
	apperrors "github.com/allisson/privmetrics/internal/errors"
)

// PostgreSQLKeysetRepository implements keyset persistence for PostgreSQL databases.
type PostgreSQLKeysetRepository struct {
	db *sql.DB
}

// Create inserts a new keyset generation into the PostgreSQL database.
func (p *PostgreSQLKeysetRepository) Create(ctx context.Context, keyset *cryptoDomain.Keyset) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO token_keysets (id, generation, state, algorithm, encrypted_key, nonce, created_at, destroyed_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := querier.ExecContext(
		ctx,
		query,
		keyset.ID,
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
func (p *PostgreSQLKeysetRepository) GetByGeneration(
	ctx context.Context,
	generation uint,
) (*cryptoDomain.Keyset, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, generation, state, algorithm, encrypted_key, nonce, created_at, destroyed_at
			  FROM token_keysets
			  WHERE generation = $1`

	row := querier.QueryRowContext(ctx, query, generation)
	return scanKeyset(row)
}

// List retrieves all keyset generations ordered by generation descending.
func (p *PostgreSQLKeysetRepository) List(ctx context.Context) ([]*cryptoDomain.Keyset, error) {
	querier := database.GetTx(ctx, p.db)

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
func (p *PostgreSQLKeysetRepository) Retire(ctx context.Context, generation uint) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE token_keysets SET state = $1 WHERE generation = $2 AND state = $3`

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

// Destroy erases a generation's key material and marks it destroyed. The row
// itself is retained so destroyed generations stay distinguishable from
// generations that never existed.
func (p *PostgreSQLKeysetRepository) Destroy(ctx context.Context, generation uint) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE token_keysets
			  SET state = $1, encrypted_key = NULL, destroyed_at = $2
			  WHERE generation = $3 AND state != $1`

	result, err := querier.ExecContext(
		ctx,
		query,
		string(cryptoDomain.KeysetDestroyed),
		time.Now().UTC(),
		generation,
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

// NewPostgreSQLKeysetRepository creates a new PostgreSQL keyset repository.
func NewPostgreSQLKeysetRepository(db *sql.DB) *PostgreSQLKeysetRepository {
	return &PostgreSQLKeysetRepository{db: db}
}

// rowScanner abstracts *sql.Row and *sql.Rows for shared scanning logic.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanKeyset(row *sql.Row) (*cryptoDomain.Keyset, error) {
	keyset, err := scanKeysetRow(row)
	if err != nil {
		if apperrors.Is(err, sql.ErrNoRows) {
			return nil, cryptoDomain.ErrKeysetNotFound
		}
		return nil, err
	}
	return keyset, nil
}

func scanKeysetRow(scanner rowScanner) (*cryptoDomain.Keyset, error) {
	var keyset cryptoDomain.Keyset
	var state, algorithm string
	var encryptedKey []byte

	err := scanner.Scan(
		&keyset.ID,
		&keyset.Generation,
		&state,
		&algorithm,
		&encryptedKey,
		&keyset.Nonce,
		&keyset.CreatedAt,
		&keyset.DestroyedAt,
	)
	if err != nil {
		if apperrors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, apperrors.Wrap(err, "failed to scan keyset")
	}

	keyset.State = cryptoDomain.KeysetState(state)
	keyset.Algorithm = cryptoDomain.Algorithm(algorithm)
	keyset.EncryptedKey = encryptedKey
	return &keyset, nil
}

// Package repository implements token record persistence.
//
// Token records are append-only: rows are inserted at tokenization time and
// never updated or deleted. Uniqueness on (field_type, key_generation,
// value_hash) and (field_type, key_generation, token) enforces determinism at
// the storage layer.
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

	"github.com/allisson/privmetrics/internal/database"
	apperrors "github.com/allisson/privmetrics/internal/errors"
	tokenizationDomain "github.com/allisson/privmetrics/internal/tokenization/domain"
)

// PostgreSQLTokenRecordRepository implements token record persistence for PostgreSQL databases.
type PostgreSQLTokenRecordRepository struct {
	db *sql.DB
}

// Create inserts a new token record.
func (p *PostgreSQLTokenRecordRepository) Create(
	ctx context.Context,
	record *tokenizationDomain.TokenRecord,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO token_records (id, field_type, key_generation, value_hash, token, ciphertext, nonce, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := querier.ExecContext(
		ctx,
		query,
		record.ID,
		string(record.FieldType),
		record.KeyGeneration,
		record.ValueHash,
		record.Token,
		record.Ciphertext,
		record.Nonce,
		record.CreatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create token record")
	}
	return nil
}

// GetByValueHash retrieves the record for a plaintext hash under a specific
// field type and key generation. Returns ErrTokenNotFound when no mapping exists.
func (p *PostgreSQLTokenRecordRepository) GetByValueHash(
	ctx context.Context,
	fieldType tokenizationDomain.FieldType,
	keyGeneration uint,
	valueHash string,
) (*tokenizationDomain.TokenRecord, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, field_type, key_generation, value_hash, token, ciphertext, nonce, created_at
			  FROM token_records
			  WHERE field_type = $1 AND key_generation = $2 AND value_hash = $3`

	row := querier.QueryRowContext(ctx, query, string(fieldType), keyGeneration, valueHash)
	return scanTokenRecord(row)
}

// GetByToken retrieves the record for a token under a field type and key
// generation. Returns ErrTokenNotFound when no mapping exists.
func (p *PostgreSQLTokenRecordRepository) GetByToken(
	ctx context.Context,
	fieldType tokenizationDomain.FieldType,
	token string,
	keyGeneration uint,
) (*tokenizationDomain.TokenRecord, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, field_type, key_generation, value_hash, token, ciphertext, nonce, created_at
			  FROM token_records
			  WHERE field_type = $1 AND token = $2 AND key_generation = $3`

	row := querier.QueryRowContext(ctx, query, string(fieldType), token, keyGeneration)
	return scanTokenRecord(row)
}

// TokenExists reports whether the token exists under the field type in any
// key generation.
func (p *PostgreSQLTokenRecordRepository) TokenExists(
	ctx context.Context,
	fieldType tokenizationDomain.FieldType,
	token string,
) (bool, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT EXISTS (SELECT 1 FROM token_records WHERE field_type = $1 AND token = $2)`

	var exists bool
	if err := querier.QueryRowContext(ctx, query, string(fieldType), token).Scan(&exists); err != nil {
		return false, apperrors.Wrap(err, "failed to check token existence")
	}
	return exists, nil
}

// NewPostgreSQLTokenRecordRepository creates a new PostgreSQL token record repository.
func NewPostgreSQLTokenRecordRepository(db *sql.DB) *PostgreSQLTokenRecordRepository {
	return &PostgreSQLTokenRecordRepository{db: db}
}

// rowScanner abstracts *sql.Row and *sql.Rows for shared scanning logic.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanTokenRecord(scanner rowScanner) (*tokenizationDomain.TokenRecord, error) {
	var record tokenizationDomain.TokenRecord
	var fieldType string

	err := scanner.Scan(
		&record.ID,
		&fieldType,
		&record.KeyGeneration,
		&record.ValueHash,
		&record.Token,
		&record.Ciphertext,
		&record.Nonce,
		&record.CreatedAt,
	)
	if err != nil {
		if apperrors.Is(err, sql.ErrNoRows) {
			return nil, tokenizationDomain.ErrTokenNotFound
		}
		return nil, apperrors.Wrap(err, "failed to scan token record")
	}

	record.FieldType = tokenizationDomain.FieldType(fieldType)
	return &record, nil
}

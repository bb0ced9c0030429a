package repository

import (
	"context"
	"database/sql"

	"github.com/allisson/privmetrics/internal/database"
	apperrors "github.com/allisson/privmetrics/internal/errors"
	tokenizationDomain "github.com/allisson/privmetrics/internal/tokenization/domain"
)

// MySQLTokenRecordRepository implements token record persistence for MySQL databases.
type MySQLTokenRecordRepository struct {
	db *sql.DB
}

// Create inserts a new token record.
func (m *MySQLTokenRecordRepository) Create(
	ctx context.Context,
	record *tokenizationDomain.TokenRecord,
) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO token_records (id, field_type, key_generation, value_hash, token, ciphertext, nonce, created_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := querier.ExecContext(
		ctx,
		query,
		record.ID.String(),
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
func (m *MySQLTokenRecordRepository) GetByValueHash(
	ctx context.Context,
	fieldType tokenizationDomain.FieldType,
	keyGeneration uint,
	valueHash string,
) (*tokenizationDomain.TokenRecord, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, field_type, key_generation, value_hash, token, ciphertext, nonce, created_at
			  FROM token_records
			  WHERE field_type = ? AND key_generation = ? AND value_hash = ?`

	row := querier.QueryRowContext(ctx, query, string(fieldType), keyGeneration, valueHash)
	return scanTokenRecord(row)
}

// GetByToken retrieves the record for a token under a field type and key
// generation. Returns ErrTokenNotFound when no mapping exists.
func (m *MySQLTokenRecordRepository) GetByToken(
	ctx context.Context,
	fieldType tokenizationDomain.FieldType,
	token string,
	keyGeneration uint,
) (*tokenizationDomain.TokenRecord, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, field_type, key_generation, value_hash, token, ciphertext, nonce, created_at
			  FROM token_records
			  WHERE field_type = ? AND token = ? AND key_generation = ?`

	row := querier.QueryRowContext(ctx, query, string(fieldType), token, keyGeneration)
	return scanTokenRecord(row)
}

// TokenExists reports whether the token exists under the field type in any
// key generation.
func (m *MySQLTokenRecordRepository) TokenExists(
	ctx context.Context,
	fieldType tokenizationDomain.FieldType,
	token string,
) (bool, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT EXISTS (SELECT 1 FROM token_records WHERE field_type = ? AND token = ?)`

	var exists bool
	if err := querier.QueryRowContext(ctx, query, string(fieldType), token).Scan(&exists); err != nil {
		return false, apperrors.Wrap(err, "failed to check token existence")
	}
	return exists, nil
}

// NewMySQLTokenRecordRepository creates a new MySQL token record repository.
func NewMySQLTokenRecordRepository(db *sql.DB) *MySQLTokenRecordRepository {
	return &MySQLTokenRecordRepository{db: db}
}

package repository

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/privmetrics/internal/errors"
	"github.com/allisson/privmetrics/internal/testutil"
	tokenizationDomain "github.com/allisson/privmetrics/internal/tokenization/domain"
)

func newTestTokenRecord(
	fieldType tokenizationDomain.FieldType,
	generation uint,
	plaintext, token string,
) *tokenizationDomain.TokenRecord {
	hash := sha256.Sum256([]byte(plaintext))
	return &tokenizationDomain.TokenRecord{
		ID:            uuid.Must(uuid.NewV7()),
		FieldType:     fieldType,
		KeyGeneration: generation,
		ValueHash:     hex.EncodeToString(hash[:]),
		Token:         token,
		Ciphertext:    []byte("ciphertext-" + plaintext),
		Nonce:         []byte("nonce-123456"),
		CreatedAt:     time.Now().UTC(),
	}
}

func TestPostgreSQLTokenRecordRepository_CreateAndGetByValueHash(t *testing.T) {
	testutil.SkipIfNoPostgres(t)
	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLTokenRecordRepository(db)
	ctx := context.Background()

	record := newTestTokenRecord(tokenizationDomain.FieldEmail, 1, "alice@example.com", "xqzrw@vkjds.net")
	require.NoError(t, repo.Create(ctx, record))

	read, err := repo.GetByValueHash(ctx, tokenizationDomain.FieldEmail, 1, record.ValueHash)
	require.NoError(t, err)

	assert.Equal(t, record.ID, read.ID)
	assert.Equal(t, tokenizationDomain.FieldEmail, read.FieldType)
	assert.Equal(t, uint(1), read.KeyGeneration)
	assert.Equal(t, record.Token, read.Token)
	assert.Equal(t, record.Ciphertext, read.Ciphertext)
	assert.Equal(t, record.Nonce, read.Nonce)
	assert.WithinDuration(t, record.CreatedAt, read.CreatedAt, time.Second)
}

func TestPostgreSQLTokenRecordRepository_GetByValueHashScopedToGeneration(t *testing.T) {
	testutil.SkipIfNoPostgres(t)
	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLTokenRecordRepository(db)
	ctx := context.Background()

	gen1 := newTestTokenRecord(tokenizationDomain.FieldNumeric, 1, "123456", "884213")
	gen2 := newTestTokenRecord(tokenizationDomain.FieldNumeric, 2, "123456", "017395")
	require.NoError(t, repo.Create(ctx, gen1))
	require.NoError(t, repo.Create(ctx, gen2))

	read, err := repo.GetByValueHash(ctx, tokenizationDomain.FieldNumeric, 2, gen2.ValueHash)
	require.NoError(t, err)
	assert.Equal(t, gen2.ID, read.ID)
	assert.Equal(t, "017395", read.Token)

	_, err = repo.GetByValueHash(ctx, tokenizationDomain.FieldNumeric, 3, gen2.ValueHash)
	assert.ErrorIs(t, err, tokenizationDomain.ErrTokenNotFound)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestPostgreSQLTokenRecordRepository_GetByToken(t *testing.T) {
	testutil.SkipIfNoPostgres(t)
	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLTokenRecordRepository(db)
	ctx := context.Background()

	record := newTestTokenRecord(tokenizationDomain.FieldSSN, 1, "123-45-6789", "902-31-5507")
	require.NoError(t, repo.Create(ctx, record))

	read, err := repo.GetByToken(ctx, tokenizationDomain.FieldSSN, "902-31-5507", 1)
	require.NoError(t, err)
	assert.Equal(t, record.ID, read.ID)
	assert.Equal(t, record.ValueHash, read.ValueHash)

	// Same token under a different field type is a different namespace.
	_, err = repo.GetByToken(ctx, tokenizationDomain.FieldPhone, "902-31-5507", 1)
	assert.ErrorIs(t, err, tokenizationDomain.ErrTokenNotFound)
}

func TestPostgreSQLTokenRecordRepository_GetByTokenScopedToGeneration(t *testing.T) {
	testutil.SkipIfNoPostgres(t)
	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLTokenRecordRepository(db)
	ctx := context.Background()

	// The same token string can exist under two generations with different
	// plaintexts behind it.
	gen1 := newTestTokenRecord(tokenizationDomain.FieldNumeric, 1, "111111", "550099")
	gen2 := newTestTokenRecord(tokenizationDomain.FieldNumeric, 2, "222222", "550099")
	require.NoError(t, repo.Create(ctx, gen1))
	require.NoError(t, repo.Create(ctx, gen2))

	read, err := repo.GetByToken(ctx, tokenizationDomain.FieldNumeric, "550099", 1)
	require.NoError(t, err)
	assert.Equal(t, gen1.ID, read.ID)
	assert.Equal(t, gen1.ValueHash, read.ValueHash)

	read, err = repo.GetByToken(ctx, tokenizationDomain.FieldNumeric, "550099", 2)
	require.NoError(t, err)
	assert.Equal(t, gen2.ID, read.ID)

	_, err = repo.GetByToken(ctx, tokenizationDomain.FieldNumeric, "550099", 3)
	assert.ErrorIs(t, err, tokenizationDomain.ErrTokenNotFound)
}

func TestPostgreSQLTokenRecordRepository_TokenExists(t *testing.T) {
	testutil.SkipIfNoPostgres(t)
	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLTokenRecordRepository(db)
	ctx := context.Background()

	record := newTestTokenRecord(tokenizationDomain.FieldEmail, 1, "alice@example.com", "xqzrw@vkjds.net")
	require.NoError(t, repo.Create(ctx, record))

	exists, err := repo.TokenExists(ctx, tokenizationDomain.FieldEmail, "xqzrw@vkjds.net")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.TokenExists(ctx, tokenizationDomain.FieldPhone, "xqzrw@vkjds.net")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestPostgreSQLTokenRecordRepository_GetByTokenNotFound(t *testing.T) {
	testutil.SkipIfNoPostgres(t)
	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLTokenRecordRepository(db)

	_, err := repo.GetByToken(context.Background(), tokenizationDomain.FieldEmail, "missing@missing.net", 1)
	assert.ErrorIs(t, err, tokenizationDomain.ErrTokenNotFound)
}

func TestPostgreSQLTokenRecordRepository_DuplicateValueHashRejected(t *testing.T) {
	testutil.SkipIfNoPostgres(t)
	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLTokenRecordRepository(db)
	ctx := context.Background()

	first := newTestTokenRecord(tokenizationDomain.FieldEmail, 1, "bob@example.com", "qwert@yuiop.org")
	require.NoError(t, repo.Create(ctx, first))

	duplicate := newTestTokenRecord(tokenizationDomain.FieldEmail, 1, "bob@example.com", "asdfg@hjklz.org")
	assert.Error(t, repo.Create(ctx, duplicate))
}

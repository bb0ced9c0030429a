package repository

import (
	"context"
	"crypto/sha256"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auditDomain "github.com/allisson/privmetrics/internal/audit/domain"
	apperrors "github.com/allisson/privmetrics/internal/errors"
	"github.com/allisson/privmetrics/internal/testutil"
)

func newStoredEntry(seq uint64, actor string, action auditDomain.ActionKind) *auditDomain.AuditEntry {
	digest := sha256.Sum256([]byte(fmt.Sprintf("digest-%d", seq)))
	prev := sha256.Sum256([]byte(fmt.Sprintf("digest-%d", seq-1)))
	signature := sha256.Sum256([]byte(fmt.Sprintf("signature-%d", seq)))

	return &auditDomain.AuditEntry{
		ID:            uuid.Must(uuid.NewV7()),
		Seq:           seq,
		Actor:         actor,
		Action:        action,
		Subject:       "scope:checkout",
		Metadata:      map[string]any{"epsilon": 0.1},
		KeyGeneration: 1,
		PrevDigest:    prev[:],
		Digest:        digest[:],
		Signature:     signature[:],
		CreatedAt:     time.Now().UTC(),
	}
}

func TestPostgreSQLAuditEntryRepository_CreateAndGetLast(t *testing.T) {
	testutil.SkipIfNoPostgres(t)
	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLAuditEntryRepository(db)
	ctx := context.Background()

	_, err := repo.GetLast(ctx)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	first := newStoredEntry(1, "analyst-1", auditDomain.ActionTokenize)
	require.NoError(t, repo.Create(ctx, first))
	second := newStoredEntry(2, "analyst-2", auditDomain.ActionQueryGranted)
	require.NoError(t, repo.Create(ctx, second))

	last, err := repo.GetLast(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), last.Seq)
	assert.Equal(t, second.Digest, last.Digest)
	assert.Equal(t, second.PrevDigest, last.PrevDigest)
	assert.Equal(t, second.Signature, last.Signature)
	assert.Equal(t, map[string]any{"epsilon": 0.1}, last.Metadata)
}

func TestPostgreSQLAuditEntryRepository_List_Filters(t *testing.T) {
	testutil.SkipIfNoPostgres(t)
	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLAuditEntryRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newStoredEntry(1, "analyst-1", auditDomain.ActionTokenize)))
	require.NoError(t, repo.Create(ctx, newStoredEntry(2, "analyst-2", auditDomain.ActionQueryGranted)))
	require.NoError(t, repo.Create(ctx, newStoredEntry(3, "analyst-1", auditDomain.ActionQueryDenied)))

	all, err := repo.List(ctx, 0, 10, "", "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, uint64(3), all[0].Seq, "newest first")

	byActor, err := repo.List(ctx, 0, 10, "analyst-1", "")
	require.NoError(t, err)
	require.Len(t, byActor, 2)

	byAction, err := repo.List(ctx, 0, 10, "", auditDomain.ActionQueryGranted)
	require.NoError(t, err)
	require.Len(t, byAction, 1)
	assert.Equal(t, uint64(2), byAction[0].Seq)

	paged, err := repo.List(ctx, 1, 1, "", "")
	require.NoError(t, err)
	require.Len(t, paged, 1)
	assert.Equal(t, uint64(2), paged[0].Seq)
}

func TestPostgreSQLAuditEntryRepository_ListRange(t *testing.T) {
	testutil.SkipIfNoPostgres(t)
	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLAuditEntryRepository(db)
	ctx := context.Background()

	for seq := uint64(1); seq <= 5; seq++ {
		require.NoError(t, repo.Create(ctx, newStoredEntry(seq, "analyst-1", auditDomain.ActionIngest)))
	}

	entries, err := repo.ListRange(ctx, 2, 3)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, uint64(2), entries[0].Seq)
	assert.Equal(t, uint64(4), entries[2].Seq)

	empty, err := repo.ListRange(ctx, 10, 3)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

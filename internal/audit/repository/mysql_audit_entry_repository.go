package repository

import (
	"context"
	"database/sql"

	auditDomain "github.com/allisson/privmetrics/internal/audit/domain"
	"github.com/allisson/privmetrics/internal/database"
	apperrors "github.com/allisson/privmetrics/internal/errors"
)

// MySQLAuditEntryRepository implements audit entry persistence for MySQL.
type MySQLAuditEntryRepository struct {
	db *sql.DB
}

// Create appends a new audit entry.
func (m *MySQLAuditEntryRepository) Create(ctx context.Context, entry *auditDomain.AuditEntry) error {
	querier := database.GetTx(ctx, m.db)

	metadataJSON, err := marshalMetadata(entry.Metadata)
	if err != nil {
		return err
	}

	query := `INSERT INTO audit_entries (id, seq, actor, action, subject, metadata, key_generation, prev_digest, digest, signature, created_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		entry.ID.String(),
		entry.Seq,
		entry.Actor,
		string(entry.Action),
		entry.Subject,
		metadataJSON,
		entry.KeyGeneration,
		entry.PrevDigest,
		entry.Digest,
		entry.Signature,
		entry.CreatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create audit entry")
	}
	return nil
}

// GetLast retrieves the entry with the highest sequence number. Returns
// ErrNotFound when the chain is empty.
func (m *MySQLAuditEntryRepository) GetLast(ctx context.Context) (*auditDomain.AuditEntry, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, seq, actor, action, subject, metadata, key_generation, prev_digest, digest, signature, created_at
			  FROM audit_entries
			  ORDER BY seq DESC
			  LIMIT 1`

	entry, err := scanAuditEntry(querier.QueryRowContext(ctx, query))
	if err != nil {
		if apperrors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return entry, nil
}

// List retrieves entries ordered by seq descending (newest first) with
// pagination and optional actor/action filters (empty string means no filter).
func (m *MySQLAuditEntryRepository) List(
	ctx context.Context,
	offset, limit int,
	actor string,
	action auditDomain.ActionKind,
) ([]*auditDomain.AuditEntry, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, seq, actor, action, subject, metadata, key_generation, prev_digest, digest, signature, created_at
			  FROM audit_entries
			  WHERE (? = '' OR actor = ?)
			    AND (? = '' OR action = ?)
			  ORDER BY seq DESC
			  LIMIT ? OFFSET ?`

	rows, err := querier.QueryContext(
		ctx, query, actor, actor, string(action), string(action), limit, offset,
	)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list audit entries")
	}
	defer func() {
		_ = rows.Close()
	}()

	return collectAuditEntries(rows)
}

// ListRange retrieves up to limit entries with seq >= fromSeq, ordered by seq
// ascending.
func (m *MySQLAuditEntryRepository) ListRange(
	ctx context.Context,
	fromSeq uint64,
	limit int,
) ([]*auditDomain.AuditEntry, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, seq, actor, action, subject, metadata, key_generation, prev_digest, digest, signature, created_at
			  FROM audit_entries
			  WHERE seq >= ?
			  ORDER BY seq ASC
			  LIMIT ?`

	rows, err := querier.QueryContext(ctx, query, fromSeq, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list audit entry range")
	}
	defer func() {
		_ = rows.Close()
	}()

	return collectAuditEntries(rows)
}

// NewMySQLAuditEntryRepository creates a new MySQL audit entry repository.
func NewMySQLAuditEntryRepository(db *sql.DB) *MySQLAuditEntryRepository {
	return &MySQLAuditEntryRepository{db: db}
}

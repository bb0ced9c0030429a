// Package repository implements audit chain persistence.
//
// The audit_entries table is append-only: no update or delete statements exist
// in this package. Entries are keyed by their chain sequence number.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"

	auditDomain "github.com/allisson/privmetrics/internal/audit/domain"
	"github.com/allisson/privmetrics/internal/database"
	apperrors "github.com/allisson/privmetrics/internal/errors"
)

// PostgreSQLAuditEntryRepository implements audit entry persistence for PostgreSQL.
type PostgreSQLAuditEntryRepository struct {
	db *sql.DB
}

// Create appends a new audit entry.
func (p *PostgreSQLAuditEntryRepository) Create(ctx context.Context, entry *auditDomain.AuditEntry) error {
	querier := database.GetTx(ctx, p.db)

	metadataJSON, err := marshalMetadata(entry.Metadata)
	if err != nil {
		return err
	}

	query := `INSERT INTO audit_entries (id, seq, actor, action, subject, metadata, key_generation, prev_digest, digest, signature, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err = querier.ExecContext(
		ctx,
		query,
		entry.ID,
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
func (p *PostgreSQLAuditEntryRepository) GetLast(ctx context.Context) (*auditDomain.AuditEntry, error) {
	querier := database.GetTx(ctx, p.db)

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
func (p *PostgreSQLAuditEntryRepository) List(
	ctx context.Context,
	offset, limit int,
	actor string,
	action auditDomain.ActionKind,
) ([]*auditDomain.AuditEntry, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, seq, actor, action, subject, metadata, key_generation, prev_digest, digest, signature, created_at
			  FROM audit_entries
			  WHERE ($1 = '' OR actor = $1)
			    AND ($2 = '' OR action = $2)
			  ORDER BY seq DESC
			  LIMIT $3 OFFSET $4`

	rows, err := querier.QueryContext(ctx, query, actor, string(action), limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list audit entries")
	}
	defer func() {
		_ = rows.Close()
	}()

	return collectAuditEntries(rows)
}

// ListRange retrieves up to limit entries with seq >= fromSeq, ordered by seq
// ascending. Used by chain verification to walk the chain in pages.
func (p *PostgreSQLAuditEntryRepository) ListRange(
	ctx context.Context,
	fromSeq uint64,
	limit int,
) ([]*auditDomain.AuditEntry, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, seq, actor, action, subject, metadata, key_generation, prev_digest, digest, signature, created_at
			  FROM audit_entries
			  WHERE seq >= $1
			  ORDER BY seq ASC
			  LIMIT $2`

	rows, err := querier.QueryContext(ctx, query, fromSeq, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list audit entry range")
	}
	defer func() {
		_ = rows.Close()
	}()

	return collectAuditEntries(rows)
}

// NewPostgreSQLAuditEntryRepository creates a new PostgreSQL audit entry repository.
func NewPostgreSQLAuditEntryRepository(db *sql.DB) *PostgreSQLAuditEntryRepository {
	return &PostgreSQLAuditEntryRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func marshalMetadata(metadata map[string]any) ([]byte, error) {
	if metadata == nil {
		return nil, nil
	}
	metadataJSON, err := json.Marshal(metadata)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal audit entry metadata")
	}
	return metadataJSON, nil
}

func scanAuditEntry(scanner rowScanner) (*auditDomain.AuditEntry, error) {
	var entry auditDomain.AuditEntry
	var action string
	var metadataJSON []byte

	err := scanner.Scan(
		&entry.ID,
		&entry.Seq,
		&entry.Actor,
		&action,
		&entry.Subject,
		&metadataJSON,
		&entry.KeyGeneration,
		&entry.PrevDigest,
		&entry.Digest,
		&entry.Signature,
		&entry.CreatedAt,
	)
	if err != nil {
		if apperrors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, apperrors.Wrap(err, "failed to scan audit entry")
	}

	entry.Action = auditDomain.ActionKind(action)

	if metadataJSON != nil {
		if err := json.Unmarshal(metadataJSON, &entry.Metadata); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal audit entry metadata")
		}
	}

	return &entry, nil
}

func collectAuditEntries(rows *sql.Rows) ([]*auditDomain.AuditEntry, error) {
	entries := make([]*auditDomain.AuditEntry, 0)
	for rows.Next() {
		entry, err := scanAuditEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate audit entries")
	}

	return entries, nil
}

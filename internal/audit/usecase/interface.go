// Package usecase implements the audit chain writer and verifier.
//
// All appends funnel through a single logical writer so the chain stays
// strictly ordered: the use case serializes appends with a mutex and tracks
// the tail (last sequence number and digest) in memory after loading it from
// the store once.
package usecase

import (
	"context"

	auditDomain "github.com/allisson/privmetrics/internal/audit/domain"
)

// AuditEntryRepository defines the interface for audit chain persistence.
//
// The store is append-only. Implementations must keep seq unique and support
// transaction-aware operations through context propagation.
type AuditEntryRepository interface {
	// Create appends a new audit entry.
	Create(ctx context.Context, entry *auditDomain.AuditEntry) error

	// GetLast retrieves the entry with the highest sequence number. Returns
	// ErrNotFound when the chain is empty.
	GetLast(ctx context.Context) (*auditDomain.AuditEntry, error)

	// List retrieves entries ordered by seq descending with pagination and
	// optional actor/action filters (zero values mean no filter).
	List(
		ctx context.Context,
		offset, limit int,
		actor string,
		action auditDomain.ActionKind,
	) ([]*auditDomain.AuditEntry, error)

	// ListRange retrieves up to limit entries with seq >= fromSeq, ordered by
	// seq ascending.
	ListRange(ctx context.Context, fromSeq uint64, limit int) ([]*auditDomain.AuditEntry, error)
}

// AuditChainUseCase defines the business logic for the audit chain.
type AuditChainUseCase interface {
	// Append records a new entry at the tail of the chain. The entry is
	// digested over the previous entry's digest and signed with the active
	// key generation's chain signing key.
	Append(
		ctx context.Context,
		actor string,
		action auditDomain.ActionKind,
		subject string,
		metadata map[string]any,
	) error

	// List retrieves entries newest first with pagination and optional
	// actor/action filters.
	List(
		ctx context.Context,
		offset, limit int,
		actor string,
		action auditDomain.ActionKind,
	) ([]*auditDomain.AuditEntry, error)

	// Verify walks the chain from fromSeq through toSeq (0 means to the end)
	// recomputing digests and signatures. A broken chain is reported in the
	// result, never repaired. The returned error is reserved for operational
	// failures (store unavailable, bad arguments).
	Verify(ctx context.Context, fromSeq, toSeq uint64) (*auditDomain.ChainVerificationResult, error)
}

// Package dto provides data transfer objects for audit chain HTTP handlers.
package dto

import (
	"encoding/hex"
	"time"

	auditDomain "github.com/allisson/privmetrics/internal/audit/domain"
)

// AuditEntryResponse represents a single chain entry in API responses.
// Digests and signatures are hex-encoded so external verifiers can recompute
// them.
type AuditEntryResponse struct {
	ID            string         `json:"id"`
	Seq           uint64         `json:"seq"`
	Actor         string         `json:"actor"`
	Action        string         `json:"action"`
	Subject       string         `json:"subject"`
	Metadata      map[string]any `json:"metadata,omitempty"`
	KeyGeneration uint           `json:"key_generation"`
	PrevDigest    string         `json:"prev_digest"`
	Digest        string         `json:"digest"`
	Signature     string         `json:"signature"`
	CreatedAt     time.Time      `json:"created_at"`
}

// MapEntryToResponse converts a domain audit entry to an API response.
func MapEntryToResponse(entry *auditDomain.AuditEntry) AuditEntryResponse {
	return AuditEntryResponse{
		ID:            entry.ID.String(),
		Seq:           entry.Seq,
		Actor:         entry.Actor,
		Action:        string(entry.Action),
		Subject:       entry.Subject,
		Metadata:      entry.Metadata,
		KeyGeneration: entry.KeyGeneration,
		PrevDigest:    hex.EncodeToString(entry.PrevDigest),
		Digest:        hex.EncodeToString(entry.Digest),
		Signature:     hex.EncodeToString(entry.Signature),
		CreatedAt:     entry.CreatedAt,
	}
}

// ListEntriesResponse represents a page of audit entries.
type ListEntriesResponse struct {
	Entries []AuditEntryResponse `json:"entries"`
	Offset  int                  `json:"offset"`
	Limit   int                  `json:"limit"`
}

// MapEntriesToListResponse converts a page of domain entries to an API response.
func MapEntriesToListResponse(entries []*auditDomain.AuditEntry, offset, limit int) ListEntriesResponse {
	resp := ListEntriesResponse{
		Entries: make([]AuditEntryResponse, 0, len(entries)),
		Offset:  offset,
		Limit:   limit,
	}
	for _, entry := range entries {
		resp.Entries = append(resp.Entries, MapEntryToResponse(entry))
	}
	return resp
}

// VerificationResponse represents the outcome of a chain verification run.
type VerificationResponse struct {
	Valid           bool     `json:"valid"`
	TotalChecked    int64    `json:"total_checked"`
	ValidCount      int64    `json:"valid_count"`
	InvalidCount    int64    `json:"invalid_count"`
	UnverifiedCount int64    `json:"unverified_count"`
	InvalidSeqs     []uint64 `json:"invalid_seqs,omitempty"`
	FirstInvalidSeq *uint64  `json:"first_invalid_seq,omitempty"`
}

// MapVerificationToResponse converts a domain verification result to an API response.
func MapVerificationToResponse(result *auditDomain.ChainVerificationResult) VerificationResponse {
	return VerificationResponse{
		Valid:           result.Valid(),
		TotalChecked:    result.TotalChecked,
		ValidCount:      result.ValidCount,
		InvalidCount:    result.InvalidCount,
		UnverifiedCount: result.UnverifiedCount,
		InvalidSeqs:     result.InvalidSeqs,
		FirstInvalidSeq: result.FirstInvalidSeq,
	}
}

package usecase

import (
	"bytes"
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	auditDomain "github.com/allisson/privmetrics/internal/audit/domain"
	auditService "github.com/allisson/privmetrics/internal/audit/service"
	cryptoDomain "github.com/allisson/privmetrics/internal/crypto/domain"
	cryptoService "github.com/allisson/privmetrics/internal/crypto/service"
	apperrors "github.com/allisson/privmetrics/internal/errors"
)

// verifyConcurrency bounds the number of parallel digest recomputations
// during chain verification.
const verifyConcurrency = 8

// auditChainUseCase implements AuditChainUseCase.
//
// The mutex serializes appends so sequence numbers stay contiguous and each
// entry links to the digest of its actual predecessor. The chain tail is
// loaded lazily from the store on the first append.
type auditChainUseCase struct {
	mu          sync.Mutex
	entryRepo   AuditEntryRepository
	signer      auditService.ChainSigner
	keyManager  cryptoService.KeyManager
	keysetChain *cryptoDomain.KeysetChain
	pageSize    int

	tailLoaded bool
	lastSeq    uint64
	lastDigest []byte
}

// Append records a new entry at the tail of the chain.
func (a *auditChainUseCase) Append(
	ctx context.Context,
	actor string,
	action auditDomain.ActionKind,
	subject string,
	metadata map[string]any,
) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.loadTail(ctx); err != nil {
		return err
	}

	keyset, err := a.keysetChain.Active()
	if err != nil {
		return apperrors.Wrap(err, "failed to resolve signing key generation")
	}

	signingKey, err := a.keyManager.DeriveKey(keyset.Key, cryptoDomain.PurposeChainSigning)
	if err != nil {
		return apperrors.Wrap(err, "failed to derive chain signing key")
	}
	defer cryptoDomain.Zero(signingKey)

	entry := &auditDomain.AuditEntry{
		ID:            uuid.Must(uuid.NewV7()),
		Seq:           a.lastSeq + 1,
		Actor:         actor,
		Action:        action,
		Subject:       subject,
		Metadata:      metadata,
		KeyGeneration: keyset.Generation,
		PrevDigest:    a.lastDigest,
		CreatedAt:     time.Now().UTC().Truncate(time.Microsecond),
	}

	digest, err := a.signer.ComputeDigest(entry)
	if err != nil {
		return apperrors.Wrap(err, "failed to compute audit entry digest")
	}
	entry.Digest = digest
	entry.Signature = a.signer.Sign(signingKey, digest)

	if err := a.entryRepo.Create(ctx, entry); err != nil {
		return err
	}

	a.lastSeq = entry.Seq
	a.lastDigest = entry.Digest
	return nil
}

// loadTail initializes the in-memory chain tail from the store. Caller must
// hold the mutex.
func (a *auditChainUseCase) loadTail(ctx context.Context) error {
	if a.tailLoaded {
		return nil
	}

	last, err := a.entryRepo.GetLast(ctx)
	switch {
	case err == nil:
		a.lastSeq = last.Seq
		a.lastDigest = last.Digest
	case apperrors.Is(err, apperrors.ErrNotFound):
		a.lastSeq = 0
		a.lastDigest = auditDomain.GenesisDigest()
	default:
		return err
	}

	a.tailLoaded = true
	return nil
}

// List retrieves entries newest first with pagination and optional filters.
func (a *auditChainUseCase) List(
	ctx context.Context,
	offset, limit int,
	actor string,
	action auditDomain.ActionKind,
) ([]*auditDomain.AuditEntry, error) {
	entries, err := a.entryRepo.List(ctx, offset, limit, actor, action)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list audit entries")
	}
	return entries, nil
}

type entryStatus int

const (
	statusValid entryStatus = iota
	statusInvalid
	statusUnverified
)

// Verify walks the chain recomputing digests and signatures.
//
// Linkage (sequence contiguity and prev-digest matching) is checked
// sequentially; per-entry digest and signature recomputation is fanned out
// with an errgroup. Entries signed under a destroyed or missing key
// generation get a digest-only check and are counted as unverified.
func (a *auditChainUseCase) Verify(
	ctx context.Context,
	fromSeq, toSeq uint64,
) (*auditDomain.ChainVerificationResult, error) {
	if fromSeq == 0 {
		fromSeq = 1
	}
	if toSeq != 0 && toSeq < fromSeq {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "to_seq must be >= from_seq")
	}

	result := &auditDomain.ChainVerificationResult{}

	expectedPrev, err := a.predecessorDigest(ctx, fromSeq)
	if err != nil {
		return nil, err
	}

	signingKeys := make(map[uint][]byte)
	defer func() {
		for _, key := range signingKeys {
			cryptoDomain.Zero(key)
		}
	}()

	expectedSeq := fromSeq
	cursor := fromSeq
	for {
		entries, err := a.entryRepo.ListRange(ctx, cursor, a.pageSize)
		if err != nil {
			return nil, err
		}
		if len(entries) == 0 {
			break
		}

		done := false
		if toSeq != 0 {
			for i, entry := range entries {
				if entry.Seq > toSeq {
					entries = entries[:i]
					done = true
					break
				}
			}
		}

		statuses := make([]entryStatus, len(entries))
		reportSeqs := make([]uint64, len(entries))
		var signatureJobs []int

		for i, entry := range entries {
			result.TotalChecked++
			reportSeqs[i] = entry.Seq

			if entry.Seq != expectedSeq {
				// Missing sequence numbers break the chain as surely as a
				// tampered digest does. The gap is reported at the first
				// missing sequence number, not at the entry found after it.
				statuses[i] = statusInvalid
				reportSeqs[i] = expectedSeq
				expectedSeq = entry.Seq + 1
				expectedPrev = entry.Digest
				continue
			}

			if expectedPrev != nil && !bytes.Equal(entry.PrevDigest, expectedPrev) {
				statuses[i] = statusInvalid
			} else {
				signatureJobs = append(signatureJobs, i)
			}
			expectedSeq = entry.Seq + 1
			expectedPrev = entry.Digest
		}

		g := &errgroup.Group{}
		g.SetLimit(verifyConcurrency)
		for _, i := range signatureJobs {
			entry := entries[i]

			signingKey, keyErr := a.signingKeyFor(entry.KeyGeneration, signingKeys)
			if keyErr != nil {
				// Digest-only check: the generation's key material is gone,
				// so the signature can no longer be recomputed.
				idx := i
				g.Go(func() error {
					digest, digestErr := a.signer.ComputeDigest(entry)
					if digestErr != nil || !bytes.Equal(entry.Digest, digest) {
						statuses[idx] = statusInvalid
					} else {
						statuses[idx] = statusUnverified
					}
					return nil
				})
				continue
			}

			idx := i
			g.Go(func() error {
				if verifyErr := a.signer.Verify(signingKey, entry); verifyErr != nil {
					statuses[idx] = statusInvalid
				}
				return nil
			})
		}
		_ = g.Wait()

		for i := range entries {
			switch statuses[i] {
			case statusValid:
				result.ValidCount++
			case statusUnverified:
				result.UnverifiedCount++
			case statusInvalid:
				result.InvalidCount++
				result.InvalidSeqs = append(result.InvalidSeqs, reportSeqs[i])
				if result.FirstInvalidSeq == nil {
					seq := reportSeqs[i]
					result.FirstInvalidSeq = &seq
				}
			}
		}

		if done {
			break
		}
		cursor = entries[len(entries)-1].Seq + 1
	}

	return result, nil
}

// predecessorDigest returns the digest the entry at fromSeq must link to:
// the genesis digest for the first entry, the stored digest of entry
// fromSeq-1 otherwise, or nil when the predecessor is absent (the first
// link then goes unchecked; the gap itself is reported by the walk).
func (a *auditChainUseCase) predecessorDigest(ctx context.Context, fromSeq uint64) ([]byte, error) {
	if fromSeq == 1 {
		return auditDomain.GenesisDigest(), nil
	}

	entries, err := a.entryRepo.ListRange(ctx, fromSeq-1, 1)
	if err != nil {
		return nil, err
	}
	if len(entries) == 1 && entries[0].Seq == fromSeq-1 {
		return entries[0].Digest, nil
	}
	return nil, nil
}

// signingKeyFor derives (and caches) the chain signing key for a generation.
func (a *auditChainUseCase) signingKeyFor(generation uint, cache map[uint][]byte) ([]byte, error) {
	if key, ok := cache[generation]; ok {
		return key, nil
	}

	keyset, err := a.keysetChain.Get(generation)
	if err != nil {
		return nil, err
	}

	key, err := a.keyManager.DeriveKey(keyset.Key, cryptoDomain.PurposeChainSigning)
	if err != nil {
		return nil, err
	}
	cache[generation] = key
	return key, nil
}

// NewAuditChainUseCase creates a new audit chain use case.
func NewAuditChainUseCase(
	entryRepo AuditEntryRepository,
	signer auditService.ChainSigner,
	keyManager cryptoService.KeyManager,
	keysetChain *cryptoDomain.KeysetChain,
	verifyPageSize int,
) AuditChainUseCase {
	return &auditChainUseCase{
		entryRepo:   entryRepo,
		signer:      signer,
		keyManager:  keyManager,
		keysetChain: keysetChain,
		pageSize:    verifyPageSize,
	}
}

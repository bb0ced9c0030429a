// Package domain defines the privacy budget ledger models.
//
// A BudgetAccount tracks cumulative epsilon/delta spend for one (scope,
// window) pair. Accounts are single-writer rows: all spend mutations go
// through the use case's per-scope serialization, and closed windows are
// immutable history.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// BudgetAccount is the ledger row for one scope and time window.
type BudgetAccount struct {
	ID           uuid.UUID
	Scope        string
	WindowStart  time.Time
	WindowEnd    time.Time
	EpsilonMax   float64
	EpsilonSpent float64
	DeltaMax     float64
	DeltaSpent   float64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// RemainingEpsilon returns the unspent epsilon budget, never negative.
func (b *BudgetAccount) RemainingEpsilon() float64 {
	remaining := b.EpsilonMax - b.EpsilonSpent
	if remaining < 0 {
		return 0
	}
	return remaining
}

// RemainingDelta returns the unspent delta budget, never negative.
func (b *BudgetAccount) RemainingDelta() float64 {
	remaining := b.DeltaMax - b.DeltaSpent
	if remaining < 0 {
		return 0
	}
	return remaining
}

// CanAdmit reports whether charging (epsilon, delta) keeps the account within
// its caps.
func (b *BudgetAccount) CanAdmit(epsilon, delta float64) bool {
	return b.EpsilonSpent+epsilon <= b.EpsilonMax && b.DeltaSpent+delta <= b.DeltaMax
}

// Spend charges the account. Callers must have checked CanAdmit under
// exclusive access.
func (b *BudgetAccount) Spend(epsilon, delta float64) {
	b.EpsilonSpent += epsilon
	b.DeltaSpent += delta
}

// Refund returns a previously committed charge to the account. Spend never
// goes below zero even if a refund exceeds the recorded spend.
func (b *BudgetAccount) Refund(epsilon, delta float64) {
	b.EpsilonSpent -= epsilon
	if b.EpsilonSpent < 0 {
		b.EpsilonSpent = 0
	}
	b.DeltaSpent -= delta
	if b.DeltaSpent < 0 {
		b.DeltaSpent = 0
	}
}

// WindowFor computes the window containing ts for the given duration.
// Windows are aligned to the epoch in UTC so every caller derives the same
// boundaries independently.
func WindowFor(ts time.Time, duration time.Duration) (start, end time.Time) {
	start = ts.UTC().Truncate(duration)
	return start, start.Add(duration)
}

// Admission is the outcome of a budget admission request. A denial is a
// normal outcome, not an error: it carries the remaining budget so callers
// can report what is left.
type Admission struct {
	Granted          bool
	Scope            string
	WindowStart      time.Time
	EpsilonCharged   float64
	DeltaCharged     float64
	RemainingEpsilon float64
	RemainingDelta   float64
}

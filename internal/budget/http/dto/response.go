// Package dto provides data transfer objects for budget HTTP handlers.
package dto

import (
	"time"

	budgetDomain "github.com/allisson/privmetrics/internal/budget/domain"
)

// BudgetResponse represents the advisory remaining budget for a scope.
// The view can be stale by the time the caller acts on it; only admission
// decides whether a query runs.
type BudgetResponse struct {
	Scope            string    `json:"scope"`
	WindowStart      time.Time `json:"window_start"`
	WindowEnd        time.Time `json:"window_end"`
	EpsilonSpent     float64   `json:"epsilon_spent"`
	DeltaSpent       float64   `json:"delta_spent"`
	EpsilonMax       float64   `json:"epsilon_max"`
	DeltaMax         float64   `json:"delta_max"`
	RemainingEpsilon float64   `json:"remaining_epsilon"`
	RemainingDelta   float64   `json:"remaining_delta"`
}

// MapAccountToResponse converts a domain budget account to an API response.
func MapAccountToResponse(account *budgetDomain.BudgetAccount) BudgetResponse {
	return BudgetResponse{
		Scope:            account.Scope,
		WindowStart:      account.WindowStart,
		WindowEnd:        account.WindowEnd,
		EpsilonSpent:     account.EpsilonSpent,
		DeltaSpent:       account.DeltaSpent,
		EpsilonMax:       account.EpsilonMax,
		DeltaMax:         account.DeltaMax,
		RemainingEpsilon: account.RemainingEpsilon(),
		RemainingDelta:   account.RemainingDelta(),
	}
}

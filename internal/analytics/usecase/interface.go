package usecase

import (
	"context"

	analyticsDomain "github.com/allisson/privmetrics/internal/analytics/domain"
	authDomain "github.com/allisson/privmetrics/internal/auth/domain"
)

// EventRepository defines the interface for event persistence.
type EventRepository interface {
	// Create inserts a new event.
	Create(ctx context.Context, event *analyticsDomain.Event) error

	// ListByScope retrieves the scope's events matching the equality filters,
	// ordered by recording time ascending.
	ListByScope(
		ctx context.Context,
		scope string,
		filters map[string]string,
	) ([]*analyticsDomain.Event, error)
}

// AnalyticsUseCase defines the business logic for event ingestion and
// differentially private queries.
type AnalyticsUseCase interface {
	// Ingest tokenizes the properties named in the field tokenization map and
	// persists the event. Raw identifying values never reach storage.
	Ingest(
		ctx context.Context,
		principal *authDomain.Principal,
		scope string,
		properties map[string]any,
		fieldMap analyticsDomain.FieldTokenizationMap,
	) (*analyticsDomain.Event, error)

	// Query runs a differentially private aggregate: admission against the
	// budget ledger, true aggregate over stored events, calibrated noise. A
	// denied admission returns a non-error result with Denied set. If the
	// pipeline fails after admission the charge is released.
	Query(
		ctx context.Context,
		principal *authDomain.Principal,
		request *analyticsDomain.QueryRequest,
	) (*analyticsDomain.QueryResult, error)
}

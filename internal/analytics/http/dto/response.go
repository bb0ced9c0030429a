package dto

import (
	"time"

	analyticsDomain "github.com/allisson/privmetrics/internal/analytics/domain"
)

// EventResponse represents a recorded event in API responses. Properties are
// returned as stored, with identifying values already tokenized.
type EventResponse struct {
	ID         string         `json:"id"`
	Scope      string         `json:"scope"`
	Properties map[string]any `json:"properties"`
	RecordedAt time.Time      `json:"recorded_at"`
}

// MapEventToResponse converts a domain event to an API response.
func MapEventToResponse(event *analyticsDomain.Event) EventResponse {
	return EventResponse{
		ID:         event.ID.String(),
		Scope:      event.Scope,
		Properties: event.Properties,
		RecordedAt: event.RecordedAt,
	}
}

// QueryResponse represents a differentially private query result.
// When Denied is true the value is zero and nothing was charged.
type QueryResponse struct {
	Value            float64   `json:"value"`
	Denied           bool      `json:"denied"`
	EpsilonCharged   float64   `json:"epsilon_charged"`
	DeltaCharged     float64   `json:"delta_charged"`
	RemainingEpsilon float64   `json:"remaining_epsilon"`
	RemainingDelta   float64   `json:"remaining_delta"`
	WindowStart      time.Time `json:"window_start"`
}

// MapQueryResultToResponse converts a domain query result to an API response.
func MapQueryResultToResponse(result *analyticsDomain.QueryResult) QueryResponse {
	return QueryResponse{
		Value:            result.Value,
		Denied:           result.Denied,
		EpsilonCharged:   result.EpsilonCharged,
		DeltaCharged:     result.DeltaCharged,
		RemainingEpsilon: result.RemainingEpsilon,
		RemainingDelta:   result.RemainingDelta,
		WindowStart:      result.WindowStart,
	}
}

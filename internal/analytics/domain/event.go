// Package domain defines the analytics domain models.
//
// Events are stored only after their identifying fields have passed through
// the tokenization engine; queries never see raw identifiers. Query results
// are transient and persisted only as audit chain metadata.
package domain

import (
	"time"

	"github.com/google/uuid"

	tokenizationDomain "github.com/allisson/privmetrics/internal/tokenization/domain"
)

// Event is a single analytics event within an organizational scope.
// Properties hold the event payload as JSON; properties named in the
// ingestion's field tokenization map are stored tokenized.
type Event struct {
	ID         uuid.UUID
	Scope      string
	Properties map[string]any
	RecordedAt time.Time
}

// FieldTokenizationMap names the event properties that must be tokenized at
// ingestion and the field type to tokenize each one as.
type FieldTokenizationMap map[string]tokenizationDomain.FieldType

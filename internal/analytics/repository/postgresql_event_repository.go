// Package repository implements event persistence.
//
// Events are stored with their tokenized properties as JSON. Filter matching
// uses the database's native JSON containment operator so equality filters on
// tokenized properties run in the store.
//
// Each repository type has two implementations:
//   - PostgreSQL: JSONB properties with the @> containment operator
//   - MySQL: JSON properties with JSON_CONTAINS
//
// All repositories support transaction-aware operations via database.GetTx().
package repository

import (
	"context"
	"database/sql"
	"encoding/json"

	analyticsDomain "github.com/allisson/privmetrics/internal/analytics/domain"
	"github.com/allisson/privmetrics/internal/database"
	apperrors "github.com/allisson/privmetrics/internal/errors"
)

// PostgreSQLEventRepository implements event persistence for PostgreSQL databases.
type PostgreSQLEventRepository struct {
	db *sql.DB
}

// Create inserts a new event.
func (p *PostgreSQLEventRepository) Create(ctx context.Context, event *analyticsDomain.Event) error {
	querier := database.GetTx(ctx, p.db)

	properties, err := json.Marshal(event.Properties)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal event properties")
	}

	query := `INSERT INTO events (id, scope, properties, recorded_at)
			  VALUES ($1, $2, $3, $4)`

	_, err = querier.ExecContext(ctx, query, event.ID, event.Scope, properties, event.RecordedAt)
	if err != nil {
		return apperrors.Wrap(err, "failed to create event")
	}
	return nil
}

// ListByScope retrieves the scope's events whose properties contain all the
// given equality filters, ordered by recording time ascending.
func (p *PostgreSQLEventRepository) ListByScope(
	ctx context.Context,
	scope string,
	filters map[string]string,
) ([]*analyticsDomain.Event, error) {
	querier := database.GetTx(ctx, p.db)

	filterJSON, err := marshalFilters(filters)
	if err != nil {
		return nil, err
	}

	query := `SELECT id, scope, properties, recorded_at
			  FROM events
			  WHERE scope = $1 AND properties @> $2::jsonb
			  ORDER BY recorded_at ASC`

	rows, err := querier.QueryContext(ctx, query, scope, filterJSON)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list events")
	}
	defer func() {
		_ = rows.Close()
	}()

	return collectEvents(rows)
}

// NewPostgreSQLEventRepository creates a new PostgreSQL event repository.
func NewPostgreSQLEventRepository(db *sql.DB) *PostgreSQLEventRepository {
	return &PostgreSQLEventRepository{db: db}
}

// marshalFilters encodes equality filters as a JSON object for containment
// matching. An empty filter set encodes as {} which matches every row.
func marshalFilters(filters map[string]string) ([]byte, error) {
	if filters == nil {
		filters = map[string]string{}
	}
	encoded, err := json.Marshal(filters)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal filters")
	}
	return encoded, nil
}

// rowScanner abstracts *sql.Row and *sql.Rows for shared scanning logic.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(scanner rowScanner) (*analyticsDomain.Event, error) {
	var event analyticsDomain.Event
	var properties []byte

	err := scanner.Scan(&event.ID, &event.Scope, &properties, &event.RecordedAt)
	if err != nil {
		if apperrors.Is(err, sql.ErrNoRows) {
			return nil, analyticsDomain.ErrEventNotFound
		}
		return nil, apperrors.Wrap(err, "failed to scan event")
	}

	if err := json.Unmarshal(properties, &event.Properties); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal event properties")
	}
	return &event, nil
}

func collectEvents(rows *sql.Rows) ([]*analyticsDomain.Event, error) {
	events := make([]*analyticsDomain.Event, 0)
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate events")
	}
	return events, nil
}

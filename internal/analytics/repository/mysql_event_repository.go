package repository

import (
	"context"
	"database/sql"
	"encoding/json"

	analyticsDomain "github.com/allisson/privmetrics/internal/analytics/domain"
	"github.com/allisson/privmetrics/internal/database"
	apperrors "github.com/allisson/privmetrics/internal/errors"
)

// MySQLEventRepository implements event persistence for MySQL databases.
type MySQLEventRepository struct {
	db *sql.DB
}

// Create inserts a new event.
func (m *MySQLEventRepository) Create(ctx context.Context, event *analyticsDomain.Event) error {
	querier := database.GetTx(ctx, m.db)

	properties, err := json.Marshal(event.Properties)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal event properties")
	}

	query := `INSERT INTO events (id, scope, properties, recorded_at)
			  VALUES (?, ?, ?, ?)`

	_, err = querier.ExecContext(ctx, query, event.ID.String(), event.Scope, properties, event.RecordedAt)
	if err != nil {
		return apperrors.Wrap(err, "failed to create event")
	}
	return nil
}

// ListByScope retrieves the scope's events whose properties contain all the
// given equality filters, ordered by recording time ascending.
func (m *MySQLEventRepository) ListByScope(
	ctx context.Context,
	scope string,
	filters map[string]string,
) ([]*analyticsDomain.Event, error) {
	querier := database.GetTx(ctx, m.db)

	filterJSON, err := marshalFilters(filters)
	if err != nil {
		return nil, err
	}

	query := `SELECT id, scope, properties, recorded_at
			  FROM events
			  WHERE scope = ? AND JSON_CONTAINS(properties, ?)
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

// NewMySQLEventRepository creates a new MySQL event repository.
func NewMySQLEventRepository(db *sql.DB) *MySQLEventRepository {
	return &MySQLEventRepository{db: db}
}

package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/privmetrics/internal/testutil"
)

func TestMySQLEventRepository_CreateAndList(t *testing.T) {
	testutil.SkipIfNoMySQL(t)
	db := testutil.SetupMySQLDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupMySQLDB(t, db)

	repo := NewMySQLEventRepository(db)
	ctx := context.Background()

	event := newTestEvent("org-1", map[string]any{"email": "xqzrw@vkjds.net", "status": "completed"})
	require.NoError(t, repo.Create(ctx, event))

	events, err := repo.ListByScope(ctx, "org-1", nil)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, event.ID, events[0].ID)
	assert.Equal(t, "completed", events[0].Properties["status"])
}

func TestMySQLEventRepository_ListFiltersOnProperties(t *testing.T) {
	testutil.SkipIfNoMySQL(t)
	db := testutil.SetupMySQLDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupMySQLDB(t, db)

	repo := NewMySQLEventRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newTestEvent("org-1", map[string]any{"status": "completed"})))
	require.NoError(t, repo.Create(ctx, newTestEvent("org-1", map[string]any{"status": "failed"})))

	completed, err := repo.ListByScope(ctx, "org-1", map[string]string{"status": "completed"})
	require.NoError(t, err)
	assert.Len(t, completed, 1)
}

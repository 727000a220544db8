package backend

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/brandradar/visibility-dashboard/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWhere(t *testing.T) {
	var w where
	assert.Equal(t, "", w.String())

	w.days("day", models.TimeRange{Start: "2024-01-01"})
	w.addIfSet("model_id = ?", "")
	w.addIfSet("entity_id = ?", "A")

	assert.Equal(t, " WHERE day >= ?::date AND entity_id = ?", w.String())
	assert.Equal(t, []interface{}{"2024-01-01", "A"}, w.args)
}

// Runs against a real database only when TEST_DATABASE_URL is set
func TestPostgresClient_Integration(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	client, err := NewPostgresClient(dsn)
	require.NoError(t, err)
	defer client.Close()

	ctx := context.Background()
	_, err = client.ListBrands(ctx)
	require.NoError(t, err)

	_, err = client.GetPrompt(ctx, "00000000-0000-0000-0000-000000000000")
	assert.True(t, errors.Is(err, ErrNotFound))

	rows, err := client.PromptMentionRows(ctx, []string{}, models.FilterSelection{})
	require.NoError(t, err)
	assert.Empty(t, rows)
}

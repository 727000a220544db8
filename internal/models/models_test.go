package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeRange(t *testing.T) {
	now := time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC)

	tests := []struct {
		preset string
		start  string
	}{
		{preset: "7d", start: "2024-03-04"},
		{preset: "30d", start: "2024-02-10"},
		{preset: "90d", start: "2023-12-12"},
	}

	for _, tt := range tests {
		t.Run(tt.preset, func(t *testing.T) {
			r, err := ParseTimeRange(tt.preset, now)
			require.NoError(t, err)
			assert.Equal(t, tt.start, r.Start)
			assert.Equal(t, "2024-03-10", r.End)
			assert.Equal(t, tt.preset, r.Preset)
		})
	}

	_, err := ParseTimeRange("1y", now)
	assert.Error(t, err)
}

func TestNewTimeRange(t *testing.T) {
	r, err := NewTimeRange("2024-01-01", "2024-01-31")
	require.NoError(t, err)
	assert.True(t, r.Contains("2024-01-15"))
	assert.True(t, r.Contains("2024-01-31"))
	assert.False(t, r.Contains("2024-02-01"))

	_, err = NewTimeRange("2024-02-01", "2024-01-01")
	assert.Error(t, err)

	_, err = NewTimeRange("yesterday", "2024-01-01")
	assert.Error(t, err)
}

func TestDirectory(t *testing.T) {
	dir := NewDirectory(
		[]Brand{{ID: "A", Name: "Acme", Color: "#000000", IsPrimary: true}},
		[]Competitor{{ID: "B", Name: "Bolt"}},
	)

	assert.Equal(t, "Acme", dir.Name("A"))
	assert.True(t, dir.Lookup("A").IsPrimary)
	assert.True(t, dir.Lookup("B").IsCompetitor)
	assert.Equal(t, "ghost", dir.Name("ghost"))
	assert.Equal(t, "#000000", dir.ColorAt("A", 3))
	assert.Equal(t, defaultColors[1], dir.ColorAt("B", 1))
	assert.Equal(t, defaultColors[0], dir.ColorAt("ghost", len(defaultColors)))
}

func TestRecommendationStatus_Valid(t *testing.T) {
	assert.True(t, StatusInProgress.Valid())
	assert.False(t, RecommendationStatus("archived").Valid())
}

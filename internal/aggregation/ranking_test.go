package aggregation

import (
	"math"
	"testing"

	"github.com/brandradar/visibility-dashboard/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f64(v float64) *float64 { return &v }

func TestBuildRanking_WeightedAverages(t *testing.T) {
	rows := []models.DailyVisibilityRow{
		{EntityID: "A", Mentions: 10, AvgPosition: f64(2), AvgSentimentScore: f64(0.5)},
		{EntityID: "A", Mentions: 5, AvgPosition: f64(4), AvgSentimentScore: nil},
	}

	entries := BuildRanking(rows, testDirectory())

	require.Len(t, entries, 1)
	e := entries[0]
	require.NotNil(t, e.AvgPosition)
	assert.InDelta(t, 2.67, *e.AvgPosition, 0.01)
	require.NotNil(t, e.AvgSentiment01)
	assert.Equal(t, 75, *e.AvgSentiment01)
	assert.Equal(t, 100, e.Visibility)
	assert.Equal(t, 15, e.Mentions)
	assert.Equal(t, 1, e.Rank)
	assert.Equal(t, "Acme", e.Name)
}

func TestBuildRanking_NilWithoutSamples(t *testing.T) {
	rows := []models.DailyVisibilityRow{
		{EntityID: "A", Mentions: 4},
		{EntityID: "B", Mentions: 0, AvgPosition: f64(1), AvgSentimentScore: f64(1)},
	}

	entries := BuildRanking(rows, testDirectory())

	require.Len(t, entries, 2)
	for _, e := range entries {
		assert.Nil(t, e.AvgPosition, e.EntityID)
		assert.Nil(t, e.AvgSentiment01, e.EntityID)
		assert.Equal(t, models.EmDash, e.PositionLabel())
		assert.Equal(t, models.EmDash, e.SentimentLabel())
	}
}

func TestBuildRanking_SortAndTieBreak(t *testing.T) {
	rows := []models.DailyVisibilityRow{
		{EntityID: "C", Mentions: 2},
		{EntityID: "B", Mentions: 2},
		{EntityID: "A", Mentions: 6},
	}

	entries := BuildRanking(rows, models.Directory{})

	require.Len(t, entries, 3)
	assert.Equal(t, []string{"A", "B", "C"}, []string{entries[0].EntityID, entries[1].EntityID, entries[2].EntityID})
	assert.Equal(t, 60, entries[0].Visibility)
	assert.Equal(t, 20, entries[1].Visibility)
	assert.Equal(t, 3, entries[2].Rank)
}

func TestBuildRanking_VisibilitySumsTo100(t *testing.T) {
	rows := []models.DailyVisibilityRow{
		{EntityID: "A", Mentions: 1},
		{EntityID: "B", Mentions: 1},
		{EntityID: "C", Mentions: 1},
		{EntityID: "D", Mentions: 7},
		{EntityID: "E", Mentions: 3},
	}

	entries := BuildRanking(rows, models.Directory{})

	sum := 0
	for _, e := range entries {
		sum += e.Visibility
	}
	assert.InDelta(t, 100, sum, float64(len(entries)))
}

func TestBuildRanking_SentimentDomain(t *testing.T) {
	tests := []struct {
		name     string
		score    float64
		expected int
	}{
		{name: "most negative", score: -1, expected: 0},
		{name: "neutral", score: 0, expected: 50},
		{name: "most positive", score: 1, expected: 100},
		{name: "out of range clamps", score: 3, expected: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries := BuildRanking([]models.DailyVisibilityRow{
				{EntityID: "A", Mentions: 1, AvgSentimentScore: f64(tt.score)},
			}, models.Directory{})
			require.NotNil(t, entries[0].AvgSentiment01)
			assert.Equal(t, tt.expected, *entries[0].AvgSentiment01)
		})
	}
}

func TestBuildRanking_IgnoresNaN(t *testing.T) {
	entries := BuildRanking([]models.DailyVisibilityRow{
		{EntityID: "A", Mentions: 3, AvgPosition: f64(math.NaN())},
	}, models.Directory{})

	assert.Nil(t, entries[0].AvgPosition)
}

func TestBuildRanking_Empty(t *testing.T) {
	entries := BuildRanking(nil, models.Directory{})
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}

func TestRankingEntry_Labels(t *testing.T) {
	pill := 75
	e := models.RankingEntry{AvgPosition: f64(2.6667), AvgSentiment01: &pill}
	assert.Equal(t, "2.7", e.PositionLabel())
	assert.Equal(t, "75", e.SentimentLabel())
}

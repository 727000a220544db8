package aggregation

import (
	"testing"

	"github.com/brandradar/visibility-dashboard/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildUsage(t *testing.T) {
	platforms := []models.Platform{
		{ID: "gpt", Name: "GPT-4o", InputCostPerToken: 0.001, OutputCostPerToken: 0.002},
		{ID: "cheap", Name: "Cheap", InputCostPerToken: 0.0001, OutputCostPerToken: 0.0001},
	}
	runs := []models.Run{
		{ModelID: "gpt", InputTokens: 100, OutputTokens: 50},
		{ModelID: "gpt", InputTokens: 100, OutputTokens: 50},
		{ModelID: "cheap", InputTokens: 1000, OutputTokens: 1000},
		{ModelID: "unknown", InputTokens: 10, OutputTokens: 10},
	}

	usage := BuildUsage(runs, platforms)

	require.Len(t, usage, 3)
	assert.Equal(t, "gpt", usage[0].ModelID)
	assert.Equal(t, "GPT-4o", usage[0].Name)
	assert.Equal(t, 2, usage[0].Runs)
	assert.InDelta(t, 0.4, usage[0].Cost, 1e-9)
	assert.Equal(t, "cheap", usage[1].ModelID)
	assert.InDelta(t, 0.2, usage[1].Cost, 1e-9)
	assert.Equal(t, "unknown", usage[2].Name)
	assert.Equal(t, 0.0, usage[2].Cost)
}

func TestSummarizeRecommendations(t *testing.T) {
	recs := []models.Recommendation{
		{Status: models.StatusOpen, Priority: 4, Impact: 2, Confidence: 0.5},
		{Status: models.StatusOpen, Priority: 2, Impact: 4, Confidence: 1},
		{Status: models.StatusDone, Priority: 10},
	}

	summary := SummarizeRecommendations(recs)

	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 2, summary.ByStatus[models.StatusOpen])
	assert.Equal(t, 1, summary.ByStatus[models.StatusDone])
	assert.Equal(t, 0, summary.ByStatus[models.StatusDismissed])
	require.NotNil(t, summary.AvgPriority)
	assert.InDelta(t, 3.0, *summary.AvgPriority, 1e-9)
	assert.InDelta(t, 0.75, *summary.AvgConfidence, 1e-9)
}

func TestSummarizeRecommendations_NoOpen(t *testing.T) {
	summary := SummarizeRecommendations([]models.Recommendation{{Status: models.StatusDismissed}})
	assert.Nil(t, summary.AvgPriority)
	assert.Nil(t, summary.AvgImpact)
}

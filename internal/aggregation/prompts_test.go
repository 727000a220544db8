package aggregation

import (
	"testing"

	"github.com/brandradar/visibility-dashboard/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func promptRows() []models.PromptMentionRow {
	return []models.PromptMentionRow{
		{PromptID: "p1", EntityID: "A", Mentions: 6, AvgPosition: f64(1), AvgSentimentScore: f64(0)},
		{PromptID: "p1", EntityID: "B", Mentions: 2, AvgPosition: f64(3)},
		{PromptID: "p1", EntityID: "C", Mentions: 1},
		{PromptID: "p1", EntityID: "D", Mentions: 1},
		{PromptID: "p2", EntityID: "B", Mentions: 5, AvgPosition: f64(2)},
	}
}

func TestBuildPromptMetrics_BrandFilter(t *testing.T) {
	metrics := BuildPromptMetrics([]string{"p1", "p2"}, promptRows(), "A", testDirectory())

	require.Len(t, metrics, 2)

	p1 := metrics[0]
	assert.Equal(t, "p1", p1.PromptID)
	assert.Equal(t, 10, p1.TotalMentions)
	assert.Equal(t, 6, p1.Mentions)
	assert.InDelta(t, 60.0, p1.Visibility, 1e-9)
	require.NotNil(t, p1.AvgPosition)
	assert.InDelta(t, 1.0, *p1.AvgPosition, 1e-9)
	require.NotNil(t, p1.AvgSentiment01)
	assert.Equal(t, 50, *p1.AvgSentiment01)

	p2 := metrics[1]
	assert.Equal(t, 5, p2.TotalMentions)
	assert.Equal(t, 0, p2.Mentions)
	assert.Equal(t, 0.0, p2.Visibility)
	assert.Nil(t, p2.AvgPosition, "no rows match the brand filter")
	assert.Nil(t, p2.AvgSentiment01)
}

func TestBuildPromptMetrics_AllBrands(t *testing.T) {
	metrics := BuildPromptMetrics(nil, promptRows(), "", testDirectory())

	require.Len(t, metrics, 2)
	p1 := metrics[0]
	assert.Equal(t, 10, p1.Mentions)
	assert.InDelta(t, 100.0, p1.Visibility, 1e-9)
	require.NotNil(t, p1.AvgPosition)
	assert.InDelta(t, (1*6+3*2)/8.0, *p1.AvgPosition, 1e-9)
}

func TestBuildPromptMetrics_TopBrands(t *testing.T) {
	metrics := BuildPromptMetrics([]string{"p1"}, promptRows(), "D", testDirectory())

	top := metrics[0].TopBrands
	require.Len(t, top, 3)
	assert.Equal(t, "A", top[0].EntityID)
	assert.Equal(t, "Acme", top[0].Name)
	assert.InDelta(t, 60.0, top[0].Share, 1e-9)
	assert.Equal(t, "B", top[1].EntityID)
	assert.Equal(t, "C", top[2].EntityID, "C and D tie; id breaks the tie")
	for i := 1; i < len(top); i++ {
		assert.GreaterOrEqual(t, top[i-1].Mentions, top[i].Mentions)
	}
}

func TestBuildPromptMetrics_PromptWithoutRows(t *testing.T) {
	metrics := BuildPromptMetrics([]string{"missing"}, promptRows(), "", testDirectory())

	require.Len(t, metrics, 1)
	assert.Equal(t, "missing", metrics[0].PromptID)
	assert.Equal(t, 0, metrics[0].TotalMentions)
	assert.Nil(t, metrics[0].AvgPosition)
	assert.Empty(t, metrics[0].TopBrands)
}

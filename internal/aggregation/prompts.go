package aggregation

import (
	"sort"

	"github.com/brandradar/visibility-dashboard/internal/models"
)

const topBrandsPerPrompt = 3

type promptAccumulator struct {
	total     int
	matched   int
	position  weightedMean
	sentiment weightedMean
	byEntity  map[string]int
}

// BuildPromptMetrics computes visibility per prompt. The denominator is every
// mention under the prompt; the numerator and averages only count rows for
// brandID (or all rows when brandID is empty). TopBrands ignores the filter.
//
// Output follows promptIDs; a nil promptIDs reports every prompt seen in rows,
// sorted by id. Prompts with no rows get zero mentions and nil averages.
func BuildPromptMetrics(promptIDs []string, rows []models.PromptMentionRow, brandID string, dir models.Directory) []models.PromptMetrics {
	acc := make(map[string]*promptAccumulator)
	for _, row := range rows {
		a, ok := acc[row.PromptID]
		if !ok {
			a = &promptAccumulator{byEntity: make(map[string]int)}
			acc[row.PromptID] = a
		}
		a.total += row.Mentions
		a.byEntity[row.EntityID] += row.Mentions
		if brandID != "" && row.EntityID != brandID {
			continue
		}
		a.matched += row.Mentions
		a.position.add(row.AvgPosition, row.Mentions)
		a.sentiment.add(row.AvgSentimentScore, row.Mentions)
	}

	if promptIDs == nil {
		promptIDs = make([]string, 0, len(acc))
		for id := range acc {
			promptIDs = append(promptIDs, id)
		}
		sort.Strings(promptIDs)
	}

	metrics := make([]models.PromptMetrics, 0, len(promptIDs))
	for _, id := range promptIDs {
		m := models.PromptMetrics{PromptID: id, TopBrands: []models.BrandShare{}}
		a, ok := acc[id]
		if !ok {
			metrics = append(metrics, m)
			continue
		}

		m.TotalMentions = a.total
		m.Mentions = a.matched
		m.Visibility = percent(a.matched, a.total)
		m.AvgPosition = a.position.mean()
		m.AvgSentiment01 = sentimentPill(a.sentiment.mean())

		for i, entityID := range rankIDs(a.byEntity) {
			if i >= topBrandsPerPrompt {
				break
			}
			m.TopBrands = append(m.TopBrands, models.BrandShare{
				EntityID: entityID,
				Name:     dir.Name(entityID),
				Color:    dir.ColorAt(entityID, i),
				Mentions: a.byEntity[entityID],
				Share:    percent(a.byEntity[entityID], a.total),
			})
		}
		metrics = append(metrics, m)
	}
	return metrics
}

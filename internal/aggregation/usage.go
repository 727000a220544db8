package aggregation

import (
	"sort"

	"github.com/brandradar/visibility-dashboard/internal/models"
)

// BuildUsage sums tokens and cost per model. Runs for models missing from
// platforms are still counted, at zero cost.
func BuildUsage(runs []models.Run, platforms []models.Platform) []models.ModelUsage {
	byID := make(map[string]models.Platform, len(platforms))
	for _, p := range platforms {
		byID[p.ID] = p
	}

	usage := make(map[string]*models.ModelUsage)
	for _, run := range runs {
		u, ok := usage[run.ModelID]
		if !ok {
			name := run.ModelID
			if p, found := byID[run.ModelID]; found && p.Name != "" {
				name = p.Name
			}
			u = &models.ModelUsage{ModelID: run.ModelID, Name: name}
			usage[run.ModelID] = u
		}
		p := byID[run.ModelID]
		u.Runs++
		u.InputTokens += run.InputTokens
		u.OutputTokens += run.OutputTokens
		u.Cost += float64(run.InputTokens)*p.InputCostPerToken + float64(run.OutputTokens)*p.OutputCostPerToken
	}

	result := make([]models.ModelUsage, 0, len(usage))
	for _, u := range usage {
		result = append(result, *u)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Cost != result[j].Cost {
			return result[i].Cost > result[j].Cost
		}
		return result[i].ModelID < result[j].ModelID
	})
	return result
}

// SummarizeRecommendations counts recommendations per status and averages
// the scores of the open ones
func SummarizeRecommendations(recs []models.Recommendation) models.RecommendationSummary {
	summary := models.RecommendationSummary{
		Total:    len(recs),
		ByStatus: make(map[models.RecommendationStatus]int, len(models.RecommendationStatuses)),
	}
	for _, status := range models.RecommendationStatuses {
		summary.ByStatus[status] = 0
	}

	var priority, impact, confidence weightedMean
	for _, rec := range recs {
		summary.ByStatus[rec.Status]++
		if rec.Status != models.StatusOpen {
			continue
		}
		p, i, c := rec.Priority, rec.Impact, rec.Confidence
		priority.add(&p, 1)
		impact.add(&i, 1)
		confidence.add(&c, 1)
	}
	summary.AvgPriority = priority.mean()
	summary.AvgImpact = impact.mean()
	summary.AvgConfidence = confidence.mean()
	return summary
}

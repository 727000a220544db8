package aggregation

import (
	"math"
	"sort"

	"github.com/brandradar/visibility-dashboard/internal/models"
)

type entityAccumulator struct {
	mentions  int
	position  weightedMean
	sentiment weightedMean
}

// BuildRanking builds the industry ranking table from day/model/entity buckets.
// Averages are weighted by mention count and stay nil when no bucket carried
// a value. Entries sort by visibility, then mentions, then entity id.
func BuildRanking(rows []models.DailyVisibilityRow, dir models.Directory) []models.RankingEntry {
	entries := []models.RankingEntry{}
	if len(rows) == 0 {
		return entries
	}

	acc := make(map[string]*entityAccumulator)
	total := 0
	for _, row := range rows {
		a, ok := acc[row.EntityID]
		if !ok {
			a = &entityAccumulator{}
			acc[row.EntityID] = a
		}
		a.mentions += row.Mentions
		a.position.add(row.AvgPosition, row.Mentions)
		a.sentiment.add(row.AvgSentimentScore, row.Mentions)
		total += row.Mentions
	}

	for id, a := range acc {
		entity := dir.Lookup(id)
		entries = append(entries, models.RankingEntry{
			EntityID:       id,
			Name:           entity.Name,
			Color:          entity.Color,
			IsCompetitor:   entity.IsCompetitor,
			Mentions:       a.mentions,
			Visibility:     int(math.Round(percent(a.mentions, total))),
			AvgPosition:    a.position.mean(),
			AvgSentiment01: sentimentPill(a.sentiment.mean()),
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Visibility != entries[j].Visibility {
			return entries[i].Visibility > entries[j].Visibility
		}
		if entries[i].Mentions != entries[j].Mentions {
			return entries[i].Mentions > entries[j].Mentions
		}
		return entries[i].EntityID < entries[j].EntityID
	})

	for i := range entries {
		entries[i].Rank = i + 1
		if entries[i].Color == "" {
			entries[i].Color = dir.ColorAt(entries[i].EntityID, i)
		}
	}
	return entries
}

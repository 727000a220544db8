package aggregation

import (
	"sort"
	"time"

	"github.com/brandradar/visibility-dashboard/internal/models"
)

// pieTopN is how many entities get their own slice before the rest fold into Other
const pieTopN = 8

// dayBucket sums mentions per entity for one day
type dayBucket struct {
	mentions map[string]int
	total    int
}

func groupByDay(rows []models.DailyVisibilityRow) map[string]*dayBucket {
	days := make(map[string]*dayBucket)
	for _, row := range rows {
		b, ok := days[row.Day]
		if !ok {
			b = &dayBucket{mentions: make(map[string]int)}
			days[row.Day] = b
		}
		b.mentions[row.EntityID] += row.Mentions
		b.total += row.Mentions
	}
	return days
}

// DayLabel formats a YYYY-MM-DD day as "Jan 2"; unparseable days are returned as-is
func DayLabel(day string) string {
	t, err := time.Parse(models.DayLayout, day)
	if err != nil {
		return day
	}
	return t.Format("Jan 2")
}

// BuildDailySeries turns daily rollup rows into per-day visibility percentages.
// With brandID set, the only series is that entity's share of each day's total.
// Otherwise every entity present on a day gets its share; absent entities are omitted.
func BuildDailySeries(rows []models.DailyVisibilityRow, brandID string, dir models.Directory) models.DailySeries {
	series := models.DailySeries{
		Rows:   []models.DailySeriesRow{},
		Series: []models.SeriesMeta{},
	}
	if len(rows) == 0 {
		return series
	}

	buckets := groupByDay(rows)
	days := make([]string, 0, len(buckets))
	for day := range buckets {
		days = append(days, day)
	}
	sort.Strings(days)

	rangeTotals := make(map[string]int)
	for _, day := range days {
		b := buckets[day]
		row := models.DailySeriesRow{
			Day:    day,
			Date:   DayLabel(day),
			Values: make(map[string]float64),
		}

		if brandID != "" {
			row.Values[brandID] = percent(b.mentions[brandID], b.total)
		} else {
			for entityID, mentions := range b.mentions {
				row.Values[entityID] = percent(mentions, b.total)
				rangeTotals[entityID] += mentions
			}
		}
		series.Rows = append(series.Rows, row)
	}

	if brandID != "" {
		series.Series = append(series.Series, models.SeriesMeta{
			EntityID: brandID,
			Name:     dir.Name(brandID),
			Color:    dir.ColorAt(brandID, 0),
		})
		return series
	}

	for i, id := range rankIDs(rangeTotals) {
		series.Series = append(series.Series, models.SeriesMeta{
			EntityID: id,
			Name:     dir.Name(id),
			Color:    dir.ColorAt(id, i),
		})
	}
	return series
}

// BuildPie collapses the whole range into shares of the grand total.
// With brandID set the result is {selected, Other}; otherwise the top 8
// entities by mentions plus an Other slice when anything remains.
func BuildPie(rows []models.DailyVisibilityRow, brandID string, dir models.Directory) []models.PieSlice {
	slices := []models.PieSlice{}
	if len(rows) == 0 {
		return slices
	}

	totals := make(map[string]int)
	grand := 0
	for _, row := range rows {
		totals[row.EntityID] += row.Mentions
		grand += row.Mentions
	}

	if brandID != "" {
		selected := totals[brandID]
		other := grand - selected
		slices = append(slices,
			models.PieSlice{
				EntityID: brandID,
				Name:     dir.Name(brandID),
				Color:    dir.ColorAt(brandID, 0),
				Mentions: selected,
				Percent:  percent(selected, grand),
			},
			otherSlice(other, grand),
		)
		return slices
	}

	ids := rankIDs(totals)
	remainder := grand
	for i, id := range ids {
		if i >= pieTopN {
			break
		}
		remainder -= totals[id]
		slices = append(slices, models.PieSlice{
			EntityID: id,
			Name:     dir.Name(id),
			Color:    dir.ColorAt(id, i),
			Mentions: totals[id],
			Percent:  percent(totals[id], grand),
		})
	}
	if len(ids) > pieTopN && remainder > 0 {
		slices = append(slices, otherSlice(remainder, grand))
	}
	return slices
}

func otherSlice(mentions, grand int) models.PieSlice {
	return models.PieSlice{
		Name:     "Other",
		Color:    "#9CA3AF",
		Mentions: mentions,
		Percent:  percent(mentions, grand),
		IsOther:  true,
	}
}

// rankIDs orders ids by count descending, then id ascending
func rankIDs(counts map[string]int) []string {
	ids := make([]string, 0, len(counts))
	for id := range counts {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if counts[ids[i]] != counts[ids[j]] {
			return counts[ids[i]] > counts[ids[j]]
		}
		return ids[i] < ids[j]
	})
	return ids
}

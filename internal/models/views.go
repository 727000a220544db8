package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// EmDash is rendered wherever an average has no samples
const EmDash = "—"

// SeriesMeta describes one chart series
type SeriesMeta struct {
	EntityID string `json:"entity_id"`
	Name     string `json:"name"`
	Color    string `json:"color"`
}

// DailySeriesRow holds one day's visibility percentages keyed by entity id.
// Entities with no mentions that day are absent rather than zero.
type DailySeriesRow struct {
	Day    string
	Date   string
	Values map[string]float64
}

// MarshalJSON flattens the row into {"date": "Jan 1", "<entity>": pct, ...}.
// "date" is reserved for the label; an entity with that id is left out.
func (r DailySeriesRow) MarshalJSON() ([]byte, error) {
	flat := make(map[string]interface{}, len(r.Values)+1)
	for id, v := range r.Values {
		if id == dateKey {
			continue
		}
		flat[id] = v
	}
	flat[dateKey] = r.Date
	return json.Marshal(flat)
}

const dateKey = "date"

// DailySeries is the chart-ready visibility-over-time view
type DailySeries struct {
	Rows   []DailySeriesRow `json:"rows"`
	Series []SeriesMeta     `json:"series"`
}

// PieSlice is one share of total mentions across the whole range
type PieSlice struct {
	EntityID string  `json:"entity_id,omitempty"`
	Name     string  `json:"name"`
	Color    string  `json:"color"`
	Mentions int     `json:"mentions"`
	Percent  float64 `json:"percent"`
	IsOther  bool    `json:"is_other,omitempty"`
}

// RankingEntry is one row of the industry ranking table
type RankingEntry struct {
	Rank           int      `json:"rank"`
	EntityID       string   `json:"entity_id"`
	Name           string   `json:"name"`
	Color          string   `json:"color"`
	IsCompetitor   bool     `json:"is_competitor"`
	Mentions       int      `json:"mentions"`
	Visibility     int      `json:"visibility"`
	AvgPosition    *float64 `json:"avg_position"`
	AvgSentiment01 *int     `json:"avg_sentiment"`
}

// PositionLabel renders the average position with one decimal
func (e RankingEntry) PositionLabel() string {
	if e.AvgPosition == nil {
		return EmDash
	}
	return fmt.Sprintf("%.1f", *e.AvgPosition)
}

// SentimentLabel renders the 0-100 sentiment pill value
func (e RankingEntry) SentimentLabel() string {
	if e.AvgSentiment01 == nil {
		return EmDash
	}
	return fmt.Sprintf("%d", *e.AvgSentiment01)
}

// BrandShare is one entry of a prompt's mini leaderboard
type BrandShare struct {
	EntityID string  `json:"entity_id"`
	Name     string  `json:"name"`
	Color    string  `json:"color"`
	Mentions int     `json:"mentions"`
	Share    float64 `json:"share"`
}

// PromptMetrics is the per-prompt visibility summary
type PromptMetrics struct {
	PromptID       string       `json:"prompt_id"`
	TotalMentions  int          `json:"total_mentions"`
	Mentions       int          `json:"mentions"`
	Visibility     float64      `json:"visibility"`
	AvgPosition    *float64     `json:"avg_position"`
	AvgSentiment01 *int         `json:"avg_sentiment"`
	TopBrands      []BrandShare `json:"top_brands"`
}

// DomainCount tallies cited sources per hostname
type DomainCount struct {
	Domain string `json:"domain"`
	Count  int    `json:"count"`
}

// ModelUsage is token and cost usage for one model
type ModelUsage struct {
	ModelID      string  `json:"model_id"`
	Name         string  `json:"name"`
	Runs         int     `json:"runs"`
	InputTokens  int     `json:"input_tokens"`
	OutputTokens int     `json:"output_tokens"`
	Cost         float64 `json:"cost"`
}

// RecommendationSummary counts recommendations per status
type RecommendationSummary struct {
	Total         int                          `json:"total"`
	ByStatus      map[RecommendationStatus]int `json:"by_status"`
	AvgPriority   *float64                     `json:"avg_open_priority"`
	AvgImpact     *float64                     `json:"avg_open_impact"`
	AvgConfidence *float64                     `json:"avg_open_confidence"`
}

// Open returns the number of open recommendations
func (s RecommendationSummary) Open() int {
	return s.ByStatus[StatusOpen]
}

// Report represents a periodic visibility report
type Report struct {
	ID              string                `json:"id"`
	GeneratedAt     time.Time             `json:"generated_at"`
	Period          string                `json:"period"` // "daily" or "weekly"
	Selection       FilterSelection       `json:"selection"`
	BrandName       string                `json:"brand_name"`
	TotalMentions   int                   `json:"total_mentions"`
	Ranking         []RankingEntry        `json:"ranking"`
	Share           []PieSlice            `json:"share"`
	TopDomains      []DomainCount         `json:"top_domains"`
	Recommendations RecommendationSummary `json:"recommendations"`
	RecentMentions  []RecentMention       `json:"recent_mentions"`
}

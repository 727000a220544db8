package models

import "time"

// Brand is a tracked brand owned by the workspace
type Brand struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Color     string    `json:"color" db:"color"`
	LogoURL   string    `json:"logo_url" db:"logo_url"`
	Website   string    `json:"website" db:"website"`
	IsPrimary bool      `json:"is_primary" db:"is_primary"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Competitor belongs to exactly one brand
type Competitor struct {
	ID        string    `json:"id" db:"id"`
	BrandID   string    `json:"brand_id" db:"brand_id"`
	Name      string    `json:"name" db:"name"`
	Color     string    `json:"color" db:"color"`
	LogoURL   string    `json:"logo_url" db:"logo_url"`
	Website   string    `json:"website" db:"website"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Platform is one AI chat model the prompts are evaluated against
type Platform struct {
	ID                 string  `json:"id" db:"id"`
	Name               string  `json:"name" db:"name"`
	LogoURL            string  `json:"logo_url" db:"logo_url"`
	InputCostPerToken  float64 `json:"input_cost_per_token" db:"input_cost_per_token"`
	OutputCostPerToken float64 `json:"output_cost_per_token" db:"output_cost_per_token"`
}

// Prompt is a question tracked for a brand
type Prompt struct {
	ID        string    `json:"id" db:"id"`
	BrandID   string    `json:"brand_id" db:"brand_id"`
	Text      string    `json:"text" db:"text"`
	Topic     *string   `json:"topic" db:"topic"`
	Active    bool      `json:"active" db:"active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Tag is a user-managed topic label for prompts
type Tag struct {
	ID        string    `json:"id" db:"id"`
	BrandID   string    `json:"brand_id" db:"brand_id"`
	Name      string    `json:"name" db:"name"`
	Color     string    `json:"color" db:"color"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Run is one execution of a prompt against a model
type Run struct {
	ID           string    `json:"id" db:"id"`
	RunID        string    `json:"run_id" db:"run_id"`
	PromptID     string    `json:"prompt_id" db:"prompt_id"`
	ModelID      string    `json:"model_id" db:"model_id"`
	Response     string    `json:"response" db:"response"`
	InputTokens  int       `json:"input_tokens" db:"input_tokens"`
	OutputTokens int       `json:"output_tokens" db:"output_tokens"`
	Status       string    `json:"status" db:"status"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// Mention is one sentence-level reference to an entity inside a run's response
type Mention struct {
	ID        string    `json:"id" db:"id"`
	RunID     string    `json:"run_id" db:"run_id"`
	PromptID  string    `json:"prompt_id" db:"prompt_id"`
	ModelID   string    `json:"model_id" db:"model_id"`
	EntityID  string    `json:"entity_id" db:"entity_id"`
	Sentence  string    `json:"sentence" db:"sentence"`
	Position  *int      `json:"position" db:"position"`
	Sentiment string    `json:"sentiment" db:"sentiment"` // "positive", "negative", "neutral"
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// DailyVisibilityRow is the backend's per-day, per-entity, per-model rollup
type DailyVisibilityRow struct {
	Day               string   `json:"day" db:"day"` // YYYY-MM-DD
	EntityID          string   `json:"entity_id" db:"entity_id"`
	ModelID           string   `json:"model_id" db:"model_id"`
	Mentions          int      `json:"mention_count" db:"mention_count"`
	TotalRuns         int      `json:"total_runs" db:"total_runs"`
	AvgPosition       *float64 `json:"avg_position" db:"avg_position"`
	AvgSentimentScore *float64 `json:"avg_sentiment_score" db:"avg_sentiment_score"` // [-1, 1]
}

// PromptMentionRow is a mention rollup scoped to one prompt
type PromptMentionRow struct {
	PromptID          string   `json:"prompt_id" db:"prompt_id"`
	Day               string   `json:"day" db:"day"`
	EntityID          string   `json:"entity_id" db:"entity_id"`
	ModelID           string   `json:"model_id" db:"model_id"`
	Mentions          int      `json:"mention_count" db:"mention_count"`
	AvgPosition       *float64 `json:"avg_position" db:"avg_position"`
	AvgSentimentScore *float64 `json:"avg_sentiment_score" db:"avg_sentiment_score"`
}

// RecentMention is a mention pre-joined with entity, prompt and model names
type RecentMention struct {
	ID         string    `json:"id" db:"id"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	Day        string    `json:"day" db:"day"`
	EntityID   string    `json:"entity_id" db:"entity_id"`
	EntityName string    `json:"entity_name" db:"entity_name"`
	PromptID   string    `json:"prompt_id" db:"prompt_id"`
	PromptText string    `json:"prompt_text" db:"prompt_text"`
	ModelID    string    `json:"model_id" db:"model_id"`
	ModelName  string    `json:"model_name" db:"model_name"`
	RunID      string    `json:"run_id" db:"run_id"`
	Position   *int      `json:"position" db:"position"`
	Sentiment  string    `json:"sentiment" db:"sentiment"`
	Sentence   string    `json:"sentence" db:"sentence"`
}

// Source is a URL cited in a run's response
type Source struct {
	ID        string    `json:"id" db:"id"`
	PromptID  string    `json:"prompt_id" db:"prompt_id"`
	RunID     string    `json:"run_id" db:"run_id"`
	ModelID   string    `json:"model_id" db:"model_id"`
	URL       string    `json:"url" db:"url"`
	Title     string    `json:"title" db:"title"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// WorkspaceModel toggles a model for a workspace
type WorkspaceModel struct {
	WorkspaceID string `json:"workspace_id" db:"workspace_id"`
	ModelID     string `json:"model_id" db:"model_id"`
	Enabled     bool   `json:"enabled" db:"enabled"`
}

// TripKey resolves one chat execution
type TripKey struct {
	RunID    string
	ModelID  string
	PromptID string
}

// Trip is a run with the mentions extracted from it
type Trip struct {
	Run      Run       `json:"run"`
	Mentions []Mention `json:"mentions"`
	Sources  []Source  `json:"sources"`
}

// ChatExchange is one competitor-analysis question and answer
type ChatExchange struct {
	ID             string    `json:"id" db:"id"`
	CompetitorID   string    `json:"competitor_id" db:"competitor_id"`
	CompetitorName string    `json:"competitor_name" db:"competitor_name"`
	Message        string    `json:"message" db:"message"`
	Response       string    `json:"response" db:"response"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

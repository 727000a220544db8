package models

import "time"

// RecommendationStatus tracks an optimization recommendation through its lifecycle
type RecommendationStatus string

const (
	StatusOpen       RecommendationStatus = "open"
	StatusInProgress RecommendationStatus = "in_progress"
	StatusDone       RecommendationStatus = "done"
	StatusDismissed  RecommendationStatus = "dismissed"
)

// RecommendationStatuses lists every valid status in display order
var RecommendationStatuses = []RecommendationStatus{StatusOpen, StatusInProgress, StatusDone, StatusDismissed}

// Valid reports whether s is a known status
func (s RecommendationStatus) Valid() bool {
	for _, known := range RecommendationStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Recommendation is an optimization-tracking record
type Recommendation struct {
	ID          string                     `json:"id" db:"id"`
	BrandID     string                     `json:"brand_id" db:"brand_id"`
	Title       string                     `json:"title" db:"title"`
	Description string                     `json:"description" db:"description"`
	Priority    float64                    `json:"priority" db:"priority"`
	Effort      float64                    `json:"effort" db:"effort"`
	Impact      float64                    `json:"impact" db:"impact"`
	Confidence  float64                    `json:"confidence" db:"confidence"`
	Status      RecommendationStatus       `json:"status" db:"status"`
	CreatedAt   time.Time                  `json:"created_at" db:"created_at"`
	Targets     []RecommendationTarget     `json:"recommendation_targets,omitempty" db:"-"`
	Evidence    []RecommendationEvidence   `json:"recommendation_evidence,omitempty" db:"-"`
	Changes     []RecommendationChange     `json:"recommendation_changes,omitempty" db:"-"`
	Experiments []RecommendationExperiment `json:"recommendation_experiments,omitempty" db:"-"`
}

// RecommendationTarget names a prompt or entity the recommendation aims at
type RecommendationTarget struct {
	ID               string  `json:"id" db:"id"`
	RecommendationID string  `json:"recommendation_id" db:"recommendation_id"`
	PromptID         *string `json:"prompt_id" db:"prompt_id"`
	EntityID         *string `json:"entity_id" db:"entity_id"`
}

// RecommendationEvidence links supporting material
type RecommendationEvidence struct {
	ID               string `json:"id" db:"id"`
	RecommendationID string `json:"recommendation_id" db:"recommendation_id"`
	Kind             string `json:"kind" db:"kind"`
	URL              string `json:"url" db:"url"`
	Note             string `json:"note" db:"note"`
}

// RecommendationChange records a change made while acting on a recommendation
type RecommendationChange struct {
	ID               string    `json:"id" db:"id"`
	RecommendationID string    `json:"recommendation_id" db:"recommendation_id"`
	Description      string    `json:"description" db:"description"`
	ChangedAt        time.Time `json:"changed_at" db:"changed_at"`
}

// RecommendationExperiment tracks a before/after visibility measurement
type RecommendationExperiment struct {
	ID               string     `json:"id" db:"id"`
	RecommendationID string     `json:"recommendation_id" db:"recommendation_id"`
	Hypothesis       string     `json:"hypothesis" db:"hypothesis"`
	BaselineValue    *float64   `json:"baseline_value" db:"baseline_value"`
	ResultValue      *float64   `json:"result_value" db:"result_value"`
	StartedAt        time.Time  `json:"started_at" db:"started_at"`
	EndedAt          *time.Time `json:"ended_at" db:"ended_at"`
}

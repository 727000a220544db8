package models

import (
	"fmt"
	"time"
)

// DayLayout is the backend's day format; day strings sort lexicographically
const DayLayout = "2006-01-02"

// TimeRange is an inclusive span of days
type TimeRange struct {
	Preset string `json:"preset,omitempty"`
	Start  string `json:"start"`
	End    string `json:"end"`
}

var rangePresets = map[string]int{
	"7d":  7,
	"30d": 30,
	"90d": 90,
}

// ParseTimeRange expands a preset such as "30d" into a range ending on now's day
func ParseTimeRange(preset string, now time.Time) (TimeRange, error) {
	days, ok := rangePresets[preset]
	if !ok {
		return TimeRange{}, fmt.Errorf("unknown time range %q (expected 7d, 30d or 90d)", preset)
	}

	end := now.UTC()
	start := end.AddDate(0, 0, -(days - 1))
	return TimeRange{
		Preset: preset,
		Start:  start.Format(DayLayout),
		End:    end.Format(DayLayout),
	}, nil
}

// NewTimeRange builds a custom range from two day strings
func NewTimeRange(start, end string) (TimeRange, error) {
	s, err := time.Parse(DayLayout, start)
	if err != nil {
		return TimeRange{}, fmt.Errorf("invalid start day %q: %w", start, err)
	}
	e, err := time.Parse(DayLayout, end)
	if err != nil {
		return TimeRange{}, fmt.Errorf("invalid end day %q: %w", end, err)
	}
	if e.Before(s) {
		return TimeRange{}, fmt.Errorf("end day %s is before start day %s", end, start)
	}
	return TimeRange{Start: start, End: end}, nil
}

// Contains reports whether day falls inside the range
func (r TimeRange) Contains(day string) bool {
	return day >= r.Start && day <= r.End
}

// FilterSelection is the user's current brand, model and time-range choice.
// BrandID selects one entity (brand or competitor); an empty BrandID or ModelID means all.
type FilterSelection struct {
	BrandID string    `json:"brand_id"`
	ModelID string    `json:"model_id"`
	Range   TimeRange `json:"range"`
}

// AllBrands reports whether no single brand is selected
func (f FilterSelection) AllBrands() bool {
	return f.BrandID == ""
}

// AllModels reports whether no single model is selected
func (f FilterSelection) AllModels() bool {
	return f.ModelID == ""
}

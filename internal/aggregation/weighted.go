package aggregation

import "math"

// percent returns part/total*100, or 0 when total is 0
func percent(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}

// weightedMean accumulates a mean weighted by mention count.
// Samples without a value add no weight.
type weightedMean struct {
	sum    float64
	weight float64
}

func (w *weightedMean) add(value *float64, weight int) {
	if value == nil || weight <= 0 || math.IsNaN(*value) {
		return
	}
	w.sum += *value * float64(weight)
	w.weight += float64(weight)
}

// mean is nil when no weighted samples were added
func (w weightedMean) mean() *float64 {
	if w.weight == 0 {
		return nil
	}
	m := w.sum / w.weight
	return &m
}

// sentimentPill maps a [-1, 1] score onto the 0-100 pill scale
func sentimentPill(score *float64) *int {
	if score == nil {
		return nil
	}
	s := math.Max(-1, math.Min(1, *score))
	v := int(math.Round((s + 1) / 2 * 100))
	return &v
}

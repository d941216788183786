package suggest

import (
	"fmt"
	"strings"
	"time"
)

type MetricType string

const (
	MetricNumeric    MetricType = "numeric"
	MetricPercentage MetricType = "percentage"
	MetricMilestone  MetricType = "milestone"
	MetricCurrency   MetricType = "currency"
	MetricAchieved   MetricType = "achieved"
)

func ParseMetricType(v any) MetricType {
	s, _ := v.(string)
	switch m := MetricType(strings.ToLower(strings.TrimSpace(s))); m {
	case MetricNumeric, MetricPercentage, MetricMilestone, MetricCurrency, MetricAchieved:
		return m
	default:
		return MetricNumeric
	}
}

type KeyResult struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	MetricType  MetricType `json:"metric_type"`
	TargetValue float64    `json:"target_value"`
	Baseline    float64    `json:"baseline"`
	Unit        string     `json:"unit"`
	Weight      float64    `json:"weight"`
	Deadline    *time.Time `json:"deadline,omitempty"`
}

// NormalizeKeyResults is the key-result counterpart of NormalizeTasks.
func NormalizeKeyResults(candidates []Record, opts ...Option) ([]KeyResult, error) {
	if len(candidates) == 0 {
		return nil, ErrNoKeyResults
	}
	o := buildOptions(opts)

	equalShare := 100 / float64(len(candidates))
	krs := make([]KeyResult, len(candidates))
	weights := make([]float64, len(candidates))

	for i, c := range candidates {
		title, ok := nonEmptyString(c["title"])
		if !ok {
			title = fmt.Sprintf("Key Result %d", i+1)
		}

		metric := ParseMetricType(c["metric_type"])
		target, ok := numberField(c["target_value"])
		if !ok {
			target = 100
		}
		baseline, ok := numberField(c["baseline"])
		if !ok {
			baseline = 0
		}

		switch metric {
		case MetricPercentage:
			target = clamp(target, 0, 100)
			baseline = clamp(baseline, 0, 100)
		case MetricAchieved:
			target, baseline = 1, 0
		}

		krs[i] = KeyResult{
			ID:          o.newID(),
			Title:       title,
			Description: stringOr(c["description"], ""),
			MetricType:  metric,
			TargetValue: target,
			Baseline:    baseline,
			Unit:        stringOr(c["unit"], ""),
			Deadline:    dateField(c["deadline"]),
		}
		weights[i] = provisionalWeight(c["weight"], equalShare)
	}

	for i, w := range RebalanceWeights(weights) {
		krs[i].Weight = w
	}
	return krs, nil
}

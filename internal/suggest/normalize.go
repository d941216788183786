package suggest

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"okr-planner-backend/internal/errlog"
)

type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

// ParsePriority is case-sensitive; anything unknown is Medium.
func ParsePriority(v any) Priority {
	s, _ := v.(string)
	switch Priority(s) {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return Priority(s)
	default:
		return PriorityMedium
	}
}

type Task struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Priority     Priority   `json:"priority"`
	Target       float64    `json:"target"`
	Weight       float64    `json:"weight"`
	Deadline     *time.Time `json:"deadline,omitempty"`
	ParentTaskID string     `json:"parentTaskId,omitempty"`
}

var (
	ErrNoTasks      = errlog.New(errlog.CodeEmptyResult, "No valid tasks returned")
	ErrNoKeyResults = errlog.New(errlog.CodeEmptyResult, "No valid JSON array found in API response")
)

type options struct {
	parentTaskID string
	newID        func() string
}

type Option func(*options)

// WithParentTaskID links every produced task to a weekly task.
func WithParentTaskID(id string) Option {
	return func(o *options) { o.parentTaskID = id }
}

func WithIDGenerator(fn func() string) Option {
	return func(o *options) {
		if fn != nil {
			o.newID = fn
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{newID: uuid.NewString}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// NormalizeTasks coerces candidates into tasks whose weights sum to 100.
// Output has the same length and order as the input.
func NormalizeTasks(candidates []Record, opts ...Option) ([]Task, error) {
	if len(candidates) == 0 {
		return nil, ErrNoTasks
	}
	o := buildOptions(opts)

	equalShare := 100 / float64(len(candidates))
	tasks := make([]Task, len(candidates))
	weights := make([]float64, len(candidates))

	for i, c := range candidates {
		title, ok := nonEmptyString(c["title"])
		if !ok {
			title = fmt.Sprintf("Task %d", i+1)
		}

		target, ok := numberField(c["target"])
		if !ok {
			target = 100
		}

		tasks[i] = Task{
			ID:           o.newID(),
			Title:        title,
			Description:  stringOr(c["description"], ""),
			Priority:     ParsePriority(c["priority"]),
			Target:       clamp(target, 0, 100),
			Deadline:     dateField(c["deadline"]),
			ParentTaskID: o.parentTaskID,
		}
		weights[i] = provisionalWeight(c["weight"], equalShare)
	}

	for i, w := range RebalanceWeights(weights) {
		tasks[i].Weight = w
	}
	return tasks, nil
}

// provisionalWeight falls back to the equal share for zero, missing,
// unparseable and non-finite values.
func provisionalWeight(v any, equalShare float64) float64 {
	w, ok := numberField(v)
	if !ok || w == 0 || math.IsInf(w, 0) {
		return equalShare
	}
	return w
}

// RebalanceWeights rescales weights to integer percentages summing to 100.
// The rounding remainder is spread one unit at a time from index 0, wrapping.
// A zero or NaN total leaves the weights untouched.
func RebalanceWeights(weights []float64) []float64 {
	out := append([]float64(nil), weights...)
	if len(out) == 0 {
		return out
	}

	var total float64
	for _, w := range out {
		total += w
	}
	if total == 0 || math.IsNaN(total) {
		return out
	}

	// an overflowed total scales every share to 0; the repair below spreads the 100
	var sum float64
	for i, w := range out {
		v := roundHalfUp(w / total * 100)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			v = 0
		}
		out[i] = v
		sum += v
	}

	diff := int64(100 - sum)
	if diff == 0 {
		return out
	}

	n := int64(len(out))
	step := float64(1)
	if diff < 0 {
		step = -1
		diff = -diff
	}
	laps, rest := diff/n, diff%n
	for i := range out {
		units := laps
		if int64(i) < rest {
			units++
		}
		out[i] += step * float64(units)
	}
	return out
}

func roundHalfUp(x float64) float64 {
	return math.Floor(x + 0.5)
}

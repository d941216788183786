package suggest

import (
	"encoding/json"
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/spf13/cast"
)

// Record is one untrusted candidate object decoded from model output.
type Record = map[string]any

var (
	taskKeys      = []string{"title", "description", "deadline", "priority", "target", "weight"}
	keyResultKeys = []string{"metric_type", "target_value", "baseline", "unit"}

	leadingFloat = regexp.MustCompile(`^[+-]?(?:Infinity|(?:\d+\.?\d*|\.\d+)(?:[eE][+-]?\d+)?)`)
)

// ShapeFunc reports whether a decoded array looks like the records an extractor is after.
type ShapeFunc func(items []any) bool

// IsTaskShaped accepts arrays whose first element carries a task field and no key-result-only field.
func IsTaskShaped(items []any) bool {
	first, ok := firstRecord(items)
	if !ok {
		return false
	}
	return hasAnyKey(first, taskKeys) && !hasAnyKey(first, keyResultKeys)
}

// IsKeyResultShaped accepts arrays whose first element carries a key-result-only field.
func IsKeyResultShaped(items []any) bool {
	first, ok := firstRecord(items)
	if !ok {
		return false
	}
	return hasAnyKey(first, keyResultKeys)
}

func firstRecord(items []any) (Record, bool) {
	if len(items) == 0 {
		return nil, false
	}
	r, ok := items[0].(map[string]any)
	return r, ok
}

func hasAnyKey(r Record, keys []string) bool {
	for _, k := range keys {
		if _, ok := r[k]; ok {
			return true
		}
	}
	return false
}

// nonEmptyString returns v when it is a non-empty string.
func nonEmptyString(v any) (string, bool) {
	s, ok := v.(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

func stringOr(v any, fallback string) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fallback
}

// numberField parses v the way a lenient float parser reads a prefix:
// "80%" is 80, "abc" is not a number. Booleans and null are not numbers.
func numberField(v any) (float64, bool) {
	switch x := v.(type) {
	case nil, bool:
		return 0, false
	case string:
		return parseLeadingFloat(x)
	case json.Number:
		return parseLeadingFloat(string(x))
	case float64:
		if math.IsNaN(x) {
			return 0, false
		}
		return x, true
	case map[string]any, []any:
		return 0, false
	default:
		f, err := cast.ToFloat64E(v)
		if err != nil || math.IsNaN(f) {
			return 0, false
		}
		return f, true
	}
}

func parseLeadingFloat(s string) (float64, bool) {
	m := leadingFloat.FindString(strings.TrimSpace(s))
	if m == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(m, 64)
	// ErrRange still carries ±Inf or 0.
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, false
	}
	return f, true
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}

// dateField reads a deadline. Strings go through dateparse, numbers are epoch milliseconds.
// Zero values and anything unparseable give nil.
func dateField(v any) *time.Time {
	switch x := v.(type) {
	case nil, bool:
		return nil
	case time.Time:
		if x.IsZero() {
			return nil
		}
		return &x
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return nil
		}
		t, err := dateparse.ParseIn(s, time.UTC)
		if err != nil {
			return nil
		}
		return &t
	default:
		ms, ok := numberField(v)
		if !ok || ms == 0 || math.IsInf(ms, 0) {
			return nil
		}
		t := time.UnixMilli(int64(ms)).UTC()
		return &t
	}
}

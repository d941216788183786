package suggest

import (
	"encoding/json"
	"regexp"
	"strings"

	charmlog "github.com/charmbracelet/log"
)

// Strategy names the extraction step that produced a result.
type Strategy string

const (
	StrategyArray      Strategy = "array"
	StrategyField      Strategy = "field"
	StrategyTextField  Strategy = "text-field"
	StrategyShapeScan  Strategy = "shape-scan"
	StrategyFirstArray Strategy = "first-array"
	StrategyNone       Strategy = "none"
)

var (
	codeFence     = regexp.MustCompile("```(?:json)?")
	bracketedList = regexp.MustCompile(`\[[\s\S]*?\]`)
)

// Extractor locates the most plausible array of records in a model answer.
// Fields are checked in order, first as keys of a decoded object and then
// as "field": [...] substrings of the raw text.
type Extractor struct {
	fields   []string
	patterns []*regexp.Regexp
	accept   ShapeFunc
	logger   *charmlog.Logger
}

func NewExtractor(accept ShapeFunc, fields ...string) *Extractor {
	patterns := make([]*regexp.Regexp, len(fields))
	for i, f := range fields {
		patterns[i] = regexp.MustCompile(`"` + regexp.QuoteMeta(f) + `"\s*:\s*(\[[\s\S]*?\])`)
	}
	return &Extractor{fields: fields, patterns: patterns, accept: accept}
}

// TaskExtractor finds weekly, daily or generic task arrays.
func TaskExtractor() *Extractor {
	return NewExtractor(IsTaskShaped, "weekly_tasks", "daily_tasks", "tasks")
}

// KeyResultExtractor finds key result arrays.
func KeyResultExtractor() *Extractor {
	return NewExtractor(IsKeyResultShaped, "Key Results")
}

// WithLogger returns a copy that writes debug diagnostics to l.
func (e *Extractor) WithLogger(l *charmlog.Logger) *Extractor {
	cp := *e
	cp.logger = l
	return &cp
}

// Extract returns the candidate records found in raw, or an empty slice.
func (e *Extractor) Extract(raw any) []Record {
	records, _ := e.ExtractWithStrategy(raw)
	return records
}

// ExtractWithStrategy is Extract plus the step that matched.
func (e *Extractor) ExtractWithStrategy(raw any) ([]Record, Strategy) {
	records, strategy := e.extract(raw)
	if e.logger != nil {
		e.logger.Debug("extracted candidates", "strategy", strategy, "count", len(records))
	}
	return records, strategy
}

func (e *Extractor) extract(raw any) ([]Record, Strategy) {
	switch v := raw.(type) {
	case nil:
		return []Record{}, StrategyNone
	case string:
		return e.fromText(v)
	case json.RawMessage:
		return e.fromText(string(v))
	case []byte:
		return e.fromText(string(v))
	case []Record:
		if len(v) > 0 {
			return v, StrategyArray
		}
	case []any:
		if _, ok := firstRecord(v); ok {
			return toRecords(v), StrategyArray
		}
	case map[string]any:
		for _, f := range e.fields {
			if items, ok := asArray(v[f]); ok {
				return toRecords(items), StrategyField
			}
		}
	}

	b, err := json.Marshal(raw)
	if err != nil {
		e.debug("candidate not serialisable", "err", err)
		return []Record{}, StrategyNone
	}
	return e.fromText(string(b))
}

func (e *Extractor) fromText(text string) ([]Record, Strategy) {
	clean := strings.TrimSpace(codeFence.ReplaceAllString(text, ""))

	for i, p := range e.patterns {
		m := p.FindStringSubmatch(clean)
		if m == nil {
			continue
		}
		if items, ok := parseArray(m[1]); ok {
			return toRecords(items), StrategyTextField
		}
		e.debug("field match is not valid JSON", "field", e.fields[i])
	}

	var (
		first []any
		found bool
	)
	for _, candidate := range bracketedList.FindAllString(clean, -1) {
		items, ok := parseArray(candidate)
		if !ok {
			continue
		}
		if e.accept != nil && e.accept(items) {
			return toRecords(items), StrategyShapeScan
		}
		if !found {
			first, found = items, true
		}
	}
	if found {
		return toRecords(first), StrategyFirstArray
	}

	return []Record{}, StrategyNone
}

func (e *Extractor) debug(msg string, keyvals ...any) {
	if e.logger != nil {
		e.logger.Debug(msg, keyvals...)
	}
}

func parseArray(s string) ([]any, bool) {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil, false
	}
	items, ok := v.([]any)
	return items, ok
}

func asArray(v any) ([]any, bool) {
	switch x := v.(type) {
	case []any:
		return x, true
	case []Record:
		items := make([]any, len(x))
		for i, r := range x {
			items[i] = r
		}
		return items, true
	default:
		return nil, false
	}
}

// toRecords keeps length and order; non-object items become empty records.
func toRecords(items []any) []Record {
	out := make([]Record, len(items))
	for i, it := range items {
		if r, ok := it.(map[string]any); ok {
			out[i] = r
		} else {
			out[i] = Record{}
		}
	}
	return out
}

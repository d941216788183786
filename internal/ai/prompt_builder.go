package ai

import (
	"fmt"
	"strings"
	"time"
)

const (
	HorizonWeekly = "weekly"
	HorizonDaily  = "daily"

	defaultCount = 5
	maxCount     = 10
)

type TaskPromptInput struct {
	Horizon         string
	Objective       string
	KeyResult       string
	ParentTaskTitle string
	Hint            string
	Count           int
	Today           time.Time
}

type KeyResultPromptInput struct {
	Objective   string
	Description string
	Hint        string
	Count       int
}

// TaskField is the JSON field the model is asked to put tasks under.
func TaskField(horizon string) string {
	if horizon == HorizonDaily {
		return "daily_tasks"
	}
	return "weekly_tasks"
}

func clampCount(n int) int {
	switch {
	case n <= 0:
		return defaultCount
	case n > maxCount:
		return maxCount
	default:
		return n
	}
}

// BuildTaskPrompt forms the user prompt for weekly or daily task suggestions.
func BuildTaskPrompt(in TaskPromptInput) string {
	today := in.Today
	if today.IsZero() {
		today = time.Now()
	}
	horizon := in.Horizon
	if horizon != HorizonDaily {
		horizon = HorizonWeekly
	}
	field := TaskField(horizon)

	var b strings.Builder

	fmt.Fprintf(&b, "Suggest %d %s tasks.\n", clampCount(in.Count), horizon)

	b.WriteString("objective: ")
	b.WriteString(strings.TrimSpace(in.Objective))
	b.WriteString("\n")

	if kr := strings.TrimSpace(in.KeyResult); kr != "" {
		b.WriteString("key_result: ")
		b.WriteString(kr)
		b.WriteString("\n")
	}

	if parent := strings.TrimSpace(in.ParentTaskTitle); parent != "" {
		b.WriteString("weekly_task: ")
		b.WriteString(parent)
		b.WriteString("\n")
	}

	if hint := strings.TrimSpace(in.Hint); hint != "" {
		b.WriteString("user_hint: ")
		b.WriteString(hint)
		b.WriteString("\n")
	}

	b.WriteString("today: ")
	b.WriteString(today.Format("2006-01-02"))
	b.WriteString("\n")

	if horizon == HorizonDaily {
		b.WriteString("All deadlines are today.\n")
	} else {
		fmt.Fprintf(&b, "Deadlines fall between today and %s.\n", today.AddDate(0, 0, 6).Format("2006-01-02"))
	}

	fmt.Fprintf(&b, "Return {\"%s\": [...]} where each item has title, description, priority (High|Medium|Low), target (0-100), weight (0-100, all weights sum to 100) and deadline (YYYY-MM-DD).\n", field)

	return b.String()
}

// BuildKeyResultPrompt forms the user prompt for key result suggestions.
func BuildKeyResultPrompt(in KeyResultPromptInput) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Suggest %d key results.\n", clampCount(in.Count))

	b.WriteString("objective: ")
	b.WriteString(strings.TrimSpace(in.Objective))
	b.WriteString("\n")

	if d := strings.TrimSpace(in.Description); d != "" {
		b.WriteString("objective_description: ")
		b.WriteString(d)
		b.WriteString("\n")
	}

	if hint := strings.TrimSpace(in.Hint); hint != "" {
		b.WriteString("user_hint: ")
		b.WriteString(hint)
		b.WriteString("\n")
	}

	b.WriteString("Return {\"Key Results\": [...]} where each item has title, description, metric_type (numeric|percentage|milestone|currency|achieved), target_value, baseline, unit and weight (0-100, all weights sum to 100).\n")

	return b.String()
}

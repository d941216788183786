package tasks

import (
	"okr-planner-backend/internal/ai"
	"okr-planner-backend/internal/suggest"
)

type SuggestRequest struct {
	Objective       string     `json:"objective" validate:"required,max=2000"`
	KeyResult       string     `json:"key_result" validate:"max=2000"`
	Horizon         string     `json:"horizon" validate:"omitempty,oneof=weekly daily"`
	ParentTaskID    string     `json:"parent_task_id" validate:"max=128"`
	ParentTaskTitle string     `json:"parent_task_title" validate:"max=500"`
	Hint            string     `json:"hint" validate:"max=1000"`
	Count           int        `json:"count" validate:"gte=0,lte=10"`
	Params          *ai.Params `json:"params"`
}

// NormalizeRequest carries model output produced outside this service.
// Raw may be anything; unusable values end in an empty result, not a 400.
type NormalizeRequest struct {
	Raw          any    `json:"raw"`
	ParentTaskID string `json:"parent_task_id" validate:"max=128"`
}

type Result struct {
	Tasks    []suggest.Task   `json:"tasks"`
	Strategy suggest.Strategy `json:"strategy"`
}

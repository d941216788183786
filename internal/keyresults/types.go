package keyresults

import (
	"okr-planner-backend/internal/ai"
	"okr-planner-backend/internal/suggest"
)

type SuggestRequest struct {
	Objective   string     `json:"objective" validate:"required,max=2000"`
	Description string     `json:"description" validate:"max=4000"`
	Hint        string     `json:"hint" validate:"max=1000"`
	Count       int        `json:"count" validate:"gte=0,lte=10"`
	Params      *ai.Params `json:"params"`
}

type NormalizeRequest struct {
	Raw any `json:"raw"`
}

type Result struct {
	KeyResults []suggest.KeyResult `json:"key_results"`
	Strategy   suggest.Strategy    `json:"strategy"`
}

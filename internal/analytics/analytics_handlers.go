package analytics

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"

	charmlog "github.com/charmbracelet/log"
)

type suggestionAcceptedBody struct {
	Kind   string `json:"kind" validate:"required,oneof=weekly_tasks daily_tasks tasks key_results"`
	Count  int    `json:"count" validate:"gte=0,lte=100"`
	Edited bool   `json:"edited"`
}

// suggestion_accepted: the user confirmed a suggestion set in the UI
func SuggestionAcceptedHandler(db Execer, validate *validator.Validate, logger *charmlog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body suggestionAcceptedBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if err := validate.Struct(body); err != nil {
			http.Error(w, "invalid body: "+err.Error(), http.StatusBadRequest)
			return
		}

		props := map[string]any{
			"kind":   body.Kind,
			"count":  body.Count,
			"edited": body.Edited,
		}

		if err := Log(r.Context(), db, FromRequest(r), "suggestion_accepted", props); err != nil && logger != nil {
			logger.Warn("analytics insert failed", "event", "suggestion_accepted", "err", err)
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true})
	}
}

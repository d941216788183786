// Package httpx holds the request plumbing shared by the suggestion handlers.
package httpx

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"

	"okr-planner-backend/internal/analytics"
	"okr-planner-backend/internal/errlog"
)

const MaxBodyBytes = 1 << 20

// Decode reads and validates a JSON body. On failure the reply is already
// written and false is returned.
func Decode(w http.ResponseWriter, r *http.Request, validate *validator.Validate, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return false
	}
	if err := validate.Struct(dst); err != nil {
		errlog.WriteJSON(w, errlog.Wrap(errlog.CodeInvalidRequest, "invalid request", err))
		return false
	}
	return true
}

// RequestContext carries the analytics envelope of r to hub subscribers.
func RequestContext(r *http.Request) context.Context {
	return analytics.WithEnvelope(r.Context(), analytics.FromRequest(r))
}

func WriteJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

package errlog

import (
	"encoding/json"
	"net/http"
)

// WriteJSON replies with {error, code} and the status HTTPStatus picks.
func WriteJSON(w http.ResponseWriter, err error) {
	e := As(err)
	if e == nil {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(HTTPStatus(e))
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": e.Details,
		"code":  e.Code,
	})
}

// DebugHandler serves GET (list) and DELETE (clear) for the ring.
func DebugHandler(ring *Ring) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			entries := ring.Entries()
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]any{
				"entries":  entries,
				"count":    len(entries),
				"capacity": ring.Cap(),
			})
		case http.MethodDelete:
			ring.Clear()
			w.WriteHeader(http.StatusNoContent)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	}
}

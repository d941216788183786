package tasks

import (
	"net/http"

	"okr-planner-backend/internal/errlog"
	"okr-planner-backend/internal/httpx"
)

// POST /tasks/suggest
func (h *TaskHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	var req SuggestRequest
	if !httpx.Decode(w, r, h.validate, &req) {
		return
	}

	res, err := h.SuggestTasks(httpx.RequestContext(r), req)
	if err != nil {
		errlog.WriteJSON(w, err)
		return
	}
	httpx.WriteJSON(w, res)
}

// POST /tasks/normalize
func (h *TaskHandler) Normalize(w http.ResponseWriter, r *http.Request) {
	var req NormalizeRequest
	if !httpx.Decode(w, r, h.validate, &req) {
		return
	}

	res, err := h.NormalizeTasks(httpx.RequestContext(r), req)
	if err != nil {
		errlog.WriteJSON(w, err)
		return
	}
	httpx.WriteJSON(w, res)
}

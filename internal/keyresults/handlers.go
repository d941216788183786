package keyresults

import (
	"context"
	"net/http"
	"time"

	charmlog "github.com/charmbracelet/log"
	"github.com/go-playground/validator/v10"

	"okr-planner-backend/internal/ai"
	"okr-planner-backend/internal/errlog"
	"okr-planner-backend/internal/events"
	"okr-planner-backend/internal/httpx"
	"okr-planner-backend/internal/suggest"
)

type Handler struct {
	AI        ai.Generator
	extractor *suggest.Extractor
	reporter  *httpx.Reporter
	validate  *validator.Validate
}

func New(gen ai.Generator, reporter *httpx.Reporter, validate *validator.Validate, logger *charmlog.Logger) *Handler {
	if logger == nil {
		logger = charmlog.Default()
	}
	return &Handler{
		AI:        gen,
		extractor: suggest.KeyResultExtractor().WithLogger(logger),
		reporter:  reporter,
		validate:  validate,
	}
}

func (h *Handler) SuggestKeyResults(ctx context.Context, req SuggestRequest) (Result, error) {
	prompt := ai.BuildKeyResultPrompt(ai.KeyResultPromptInput{
		Objective:   req.Objective,
		Description: req.Description,
		Hint:        req.Hint,
		Count:       req.Count,
	})

	var params ai.Params
	if req.Params != nil {
		params = *req.Params
	}

	start := time.Now()
	raw, err := h.AI.Generate(ctx, prompt, params)
	elapsed := time.Since(start)
	if err != nil {
		err = errlog.Tag(err, errlog.CodeUpstreamFailure, "generation failed")
		h.reporter.Report(ctx, events.Suggestion{Kind: events.KindKeyResults, Outcome: events.OutcomeUpstreamError, Duration: elapsed}, err)
		return Result{}, err
	}

	return h.normalize(ctx, raw, elapsed)
}

func (h *Handler) NormalizeKeyResults(ctx context.Context, req NormalizeRequest) (Result, error) {
	return h.normalize(ctx, req.Raw, 0)
}

func (h *Handler) normalize(ctx context.Context, raw any, elapsed time.Duration) (Result, error) {
	records, strategy := h.extractor.ExtractWithStrategy(raw)
	krs, err := suggest.NormalizeKeyResults(records)

	s := events.Suggestion{
		Kind:     events.KindKeyResults,
		Count:    len(krs),
		Strategy: string(strategy),
		Outcome:  events.OutcomeOK,
		Duration: elapsed,
	}
	if err != nil {
		s.Outcome = events.OutcomeEmpty
		err = errlog.As(err).With("strategy", string(strategy))
	}
	h.reporter.Report(ctx, s, err)

	if err != nil {
		return Result{Strategy: strategy}, err
	}
	return Result{KeyResults: krs, Strategy: strategy}, nil
}

// POST /key-results/suggest
func (h *Handler) Suggest(w http.ResponseWriter, r *http.Request) {
	var req SuggestRequest
	if !httpx.Decode(w, r, h.validate, &req) {
		return
	}

	res, err := h.SuggestKeyResults(httpx.RequestContext(r), req)
	if err != nil {
		errlog.WriteJSON(w, err)
		return
	}
	httpx.WriteJSON(w, res)
}

// POST /key-results/normalize
func (h *Handler) Normalize(w http.ResponseWriter, r *http.Request) {
	var req NormalizeRequest
	if !httpx.Decode(w, r, h.validate, &req) {
		return
	}

	res, err := h.NormalizeKeyResults(httpx.RequestContext(r), req)
	if err != nil {
		errlog.WriteJSON(w, err)
		return
	}
	httpx.WriteJSON(w, res)
}

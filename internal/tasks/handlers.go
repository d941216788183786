package tasks

import (
	"context"
	"time"

	charmlog "github.com/charmbracelet/log"
	"github.com/go-playground/validator/v10"

	"okr-planner-backend/internal/ai"
	"okr-planner-backend/internal/errlog"
	"okr-planner-backend/internal/events"
	"okr-planner-backend/internal/httpx"
	"okr-planner-backend/internal/suggest"
)

type TaskHandler struct {
	AI        ai.Generator
	extractor *suggest.Extractor
	reporter  *httpx.Reporter
	validate  *validator.Validate
	now       func() time.Time
}

// New builds the task handler. logger receives extraction diagnostics;
// per-request lines go to the logger carried by the request context.
func New(gen ai.Generator, reporter *httpx.Reporter, validate *validator.Validate, logger *charmlog.Logger) *TaskHandler {
	if logger == nil {
		logger = charmlog.Default()
	}
	return &TaskHandler{
		AI:        gen,
		extractor: suggest.TaskExtractor().WithLogger(logger),
		reporter:  reporter,
		validate:  validate,
		now:       time.Now,
	}
}

func kindFor(horizon string) events.Kind {
	if horizon == ai.HorizonDaily {
		return events.KindDailyTasks
	}
	return events.KindWeeklyTasks
}

// SuggestTasks asks the generator for tasks and normalizes whatever comes back.
func (h *TaskHandler) SuggestTasks(ctx context.Context, req SuggestRequest) (Result, error) {
	horizon := req.Horizon
	if horizon == "" {
		horizon = ai.HorizonWeekly
	}
	kind := kindFor(horizon)

	prompt := ai.BuildTaskPrompt(ai.TaskPromptInput{
		Horizon:         horizon,
		Objective:       req.Objective,
		KeyResult:       req.KeyResult,
		ParentTaskTitle: req.ParentTaskTitle,
		Hint:            req.Hint,
		Count:           req.Count,
		Today:           h.now(),
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
		h.reporter.Report(ctx, events.Suggestion{
			Kind:         kind,
			Outcome:      events.OutcomeUpstreamError,
			ParentTaskID: req.ParentTaskID,
			Duration:     elapsed,
		}, err)
		return Result{}, err
	}

	return h.normalize(ctx, kind, raw, req.ParentTaskID, elapsed)
}

// NormalizeTasks runs extraction and normalization on caller-supplied output.
func (h *TaskHandler) NormalizeTasks(ctx context.Context, req NormalizeRequest) (Result, error) {
	return h.normalize(ctx, events.KindTasks, req.Raw, req.ParentTaskID, 0)
}

func (h *TaskHandler) normalize(ctx context.Context, kind events.Kind, raw any, parentTaskID string, elapsed time.Duration) (Result, error) {
	records, strategy := h.extractor.ExtractWithStrategy(raw)

	var opts []suggest.Option
	if parentTaskID != "" {
		opts = append(opts, suggest.WithParentTaskID(parentTaskID))
	}

	tasks, err := suggest.NormalizeTasks(records, opts...)

	s := events.Suggestion{
		Kind:         kind,
		Count:        len(tasks),
		Strategy:     string(strategy),
		Outcome:      events.OutcomeOK,
		ParentTaskID: parentTaskID,
		Duration:     elapsed,
	}
	if err != nil {
		s.Outcome = events.OutcomeEmpty
		err = errlog.As(err).With("strategy", string(strategy))
	}
	h.reporter.Report(ctx, s, err)

	if err != nil {
		return Result{Strategy: strategy}, err
	}
	return Result{Tasks: tasks, Strategy: strategy}, nil
}

package httpx

import (
	"context"

	"okr-planner-backend/internal/analytics"
	"okr-planner-backend/internal/errlog"
	"okr-planner-backend/internal/events"
	"okr-planner-backend/internal/logger"
)

// Reporter closes a suggestion run: failures go to the error ring and the
// request logger, then the run is published on the hub.
type Reporter struct {
	hub  *events.Hub
	ring *errlog.Ring
}

func NewReporter(hub *events.Hub, ring *errlog.Ring) *Reporter {
	return &Reporter{hub: hub, ring: ring}
}

func (rep *Reporter) Report(ctx context.Context, s events.Suggestion, err error) {
	if uid, ok := analytics.UserIDFromContext(ctx); ok {
		s.UserID = uid
	}

	log := logger.FromContext(ctx)
	if err != nil {
		e := errlog.As(err).With("kind", string(s.Kind))
		rep.ring.Record(e)
		log.Log(errlog.Level(e.Severity), "suggestion failed", "kind", s.Kind, "code", e.Code, "err", err)
	} else {
		log.Info("suggestion ready", "kind", s.Kind, "count", s.Count, "strategy", s.Strategy, "took", s.Duration)
	}

	rep.hub.Publish(ctx, s)
}

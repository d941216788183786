package analytics

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	charmlog "github.com/charmbracelet/log"

	"okr-planner-backend/internal/events"
)

type CtxKey string

const (
	ctxUserIDKey   CtxKey = "analytics_user_id"
	ctxEnvelopeKey CtxKey = "analytics_envelope"
)

// Execer is the part of *sql.DB that Log needs.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Envelope is what we store with every event.
type Envelope struct {
	UserID       int
	SessionID    string
	Platform     string
	AppVersion   string
	DeviceLocale string
	IPCountry    string
	SourceKey    string
}

// FromRequest extracts event envelope fields from request.
// Backend-trustable fields only.
func FromRequest(r *http.Request) Envelope {
	platform := strings.TrimSpace(r.Header.Get("X-Platform"))
	if platform == "" {
		platform = "unknown"
	} else {
		platform = strings.ToLower(platform)
		if platform != "ios" && platform != "android" && platform != "web" {
			platform = "unknown"
		}
	}

	appVer := strings.TrimSpace(r.Header.Get("X-App-Version"))
	locale := strings.TrimSpace(r.Header.Get("Accept-Language"))
	if locale == "" {
		locale = strings.TrimSpace(r.Header.Get("X-Device-Locale"))
	}

	env := Envelope{
		SessionID:    strings.TrimSpace(r.Header.Get("X-Session-Id")),
		Platform:     platform,
		AppVersion:   appVer,
		DeviceLocale: locale,
		SourceKey:    SourceEventKeyFromRequest(r),
	}
	if uid, ok := UserIDFromContext(r.Context()); ok {
		env.UserID = uid
	}
	return env
}

func WithUserID(ctx context.Context, userID int) context.Context {
	return context.WithValue(ctx, ctxUserIDKey, userID)
}

func UserIDFromContext(ctx context.Context) (int, bool) {
	v := ctx.Value(ctxUserIDKey)
	if v == nil {
		return 0, false
	}
	uid, ok := v.(int)
	return uid, ok
}

func WithEnvelope(ctx context.Context, env Envelope) context.Context {
	return context.WithValue(ctx, ctxEnvelopeKey, env)
}

func EnvelopeFromContext(ctx context.Context) (Envelope, bool) {
	env, ok := ctx.Value(ctxEnvelopeKey).(Envelope)
	return env, ok
}

// Client-provided idempotency key (optional)
// If present and duplicates, insert is ignored.
func SourceEventKeyFromRequest(r *http.Request) string {
	k := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	if k != "" {
		return k
	}
	return strings.TrimSpace(r.Header.Get("X-Source-Event-Key"))
}

// Log inserts one analytics event. A nil db makes it a no-op.
// Never logs sensitive raw text; caller passes sanitized props.
func Log(ctx context.Context, db Execer, env Envelope, eventName string, props any) error {
	if db == nil || eventName == "" {
		return nil
	}

	userID := env.UserID
	if userID == 0 {
		if uid, ok := UserIDFromContext(ctx); ok {
			userID = uid
		}
	}

	b, err := json.Marshal(props)
	if err != nil {
		// if props can't marshal, don't break core flow
		return nil
	}

	if env.SourceKey != "" {
		_, err = db.ExecContext(ctx, `
			INSERT INTO analytics_events (
				event_name, event_time,
				user_id, session_id,
				platform, app_version, device_locale, ip_country,
				source_event_key,
				properties
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10::jsonb)
			ON CONFLICT (source_event_key) DO NOTHING
		`, eventName, time.Now().UTC(),
			nullIfZero(userID), nullIfEmpty(env.SessionID),
			env.Platform, env.AppVersion, nullIfEmpty(env.DeviceLocale), nullIfEmpty(env.IPCountry),
			env.SourceKey,
			string(b),
		)
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO analytics_events (
			event_name, event_time,
			user_id, session_id,
			platform, app_version, device_locale, ip_country,
			properties
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9::jsonb)
	`, eventName, time.Now().UTC(),
		nullIfZero(userID), nullIfEmpty(env.SessionID),
		env.Platform, env.AppVersion, nullIfEmpty(env.DeviceLocale), nullIfEmpty(env.IPCountry),
		string(b),
	)
	return err
}

func nullIfEmpty(s string) sql.NullString {
	if strings.TrimSpace(s) == "" {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullIfZero(v int) sql.NullInt64 {
	if v == 0 {
		return sql.NullInt64{Valid: false}
	}
	return sql.NullInt64{Int64: int64(v), Valid: true}
}

// Recorder stores suggestion runs published on the events hub.
type Recorder struct {
	db     Execer
	logger *charmlog.Logger
}

func NewRecorder(db Execer, logger *charmlog.Logger) *Recorder {
	return &Recorder{db: db, logger: logger}
}

// Record is an events.Handler. Failures are logged, never returned.
func (rec *Recorder) Record(ctx context.Context, s events.Suggestion) {
	env, _ := EnvelopeFromContext(ctx)
	if s.UserID != 0 {
		env.UserID = s.UserID
	}
	// one request may publish once; the idempotency key belongs to the UI event
	env.SourceKey = ""

	props := map[string]any{
		"kind":        s.Kind,
		"outcome":     s.Outcome,
		"count":       s.Count,
		"strategy":    s.Strategy,
		"duration_ms": s.Duration.Milliseconds(),
	}
	if s.ParentTaskID != "" {
		props["parent_task_id"] = s.ParentTaskID
	}

	if err := Log(ctx, rec.db, env, "suggestions_generated", props); err != nil && rec.logger != nil {
		rec.logger.Warn("analytics insert failed", "event", "suggestions_generated", "err", err)
	}
}

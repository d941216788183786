package analytics

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"okr-planner-backend/internal/events"
)

type execCall struct {
	query string
	args  []any
}

type fakeExec struct {
	calls []execCall
	err   error
}

func (f *fakeExec) ExecContext(_ context.Context, query string, args ...any) (sql.Result, error) {
	f.calls = append(f.calls, execCall{query: query, args: args})
	return nil, f.err
}

func TestFromRequest(t *testing.T) {
	t.Run("Should read trusted headers", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", nil)
		r.Header.Set("X-Platform", "Web")
		r.Header.Set("X-App-Version", "1.2.0")
		r.Header.Set("X-Device-Locale", "en-US")
		r.Header.Set("X-Session-Id", " s-1 ")
		r.Header.Set("X-Source-Event-Key", "k-1")
		r = r.WithContext(WithUserID(r.Context(), 42))

		env := FromRequest(r)

		assert.Equal(t, "web", env.Platform)
		assert.Equal(t, "1.2.0", env.AppVersion)
		assert.Equal(t, "en-US", env.DeviceLocale)
		assert.Equal(t, "s-1", env.SessionID)
		assert.Equal(t, "k-1", env.SourceKey)
		assert.Equal(t, 42, env.UserID)
	})

	t.Run("Should mark unknown platforms", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", nil)
		r.Header.Set("X-Platform", "fridge")
		r.Header.Set("Idempotency-Key", "idem")
		r.Header.Set("X-Source-Event-Key", "ignored")

		env := FromRequest(r)

		assert.Equal(t, "unknown", env.Platform)
		assert.Equal(t, "idem", env.SourceKey)
		assert.Equal(t, 0, env.UserID)
	})
}

func TestLog(t *testing.T) {
	t.Run("Should be a no-op without a database", func(t *testing.T) {
		assert.NoError(t, Log(t.Context(), nil, Envelope{}, "x", nil))
	})

	t.Run("Should use the idempotent insert when a source key is present", func(t *testing.T) {
		db := &fakeExec{}

		err := Log(t.Context(), db, Envelope{UserID: 7, Platform: "web", SourceKey: "k"}, "suggestion_accepted", map[string]any{"count": 3})

		require.NoError(t, err)
		require.Len(t, db.calls, 1)
		assert.Contains(t, db.calls[0].query, "ON CONFLICT (source_event_key) DO NOTHING")
		assert.Equal(t, "suggestion_accepted", db.calls[0].args[0])
		assert.Equal(t, sql.NullInt64{Int64: 7, Valid: true}, db.calls[0].args[2])
		assert.Equal(t, "k", db.calls[0].args[8])
		assert.Equal(t, `{"count":3}`, db.calls[0].args[9])
	})

	t.Run("Should store anonymous events with a null user", func(t *testing.T) {
		db := &fakeExec{}

		require.NoError(t, Log(t.Context(), db, Envelope{}, "suggestions_generated", map[string]any{}))

		require.Len(t, db.calls, 1)
		assert.NotContains(t, db.calls[0].query, "ON CONFLICT")
		assert.Equal(t, sql.NullInt64{}, db.calls[0].args[2])
	})

	t.Run("Should skip props that cannot be marshalled", func(t *testing.T) {
		db := &fakeExec{}
		require.NoError(t, Log(t.Context(), db, Envelope{}, "x", make(chan int)))
		assert.Empty(t, db.calls)
	})
}

func TestRecorder(t *testing.T) {
	t.Run("Should store a suggestion run with the request envelope", func(t *testing.T) {
		db := &fakeExec{}
		rec := NewRecorder(db, nil)
		ctx := WithEnvelope(t.Context(), Envelope{Platform: "ios", SourceKey: "ui-key"})

		rec.Record(ctx, events.Suggestion{
			Kind:         events.KindDailyTasks,
			UserID:       3,
			Count:        4,
			Strategy:     "field",
			Outcome:      events.OutcomeOK,
			ParentTaskID: "w-1",
			Duration:     1500 * time.Millisecond,
		})

		require.Len(t, db.calls, 1)
		call := db.calls[0]
		assert.NotContains(t, call.query, "ON CONFLICT")
		assert.Equal(t, "suggestions_generated", call.args[0])
		assert.Equal(t, sql.NullInt64{Int64: 3, Valid: true}, call.args[2])
		assert.Equal(t, "ios", call.args[4])
		props := call.args[8].(string)
		assert.True(t, strings.Contains(props, `"parent_task_id":"w-1"`))
		assert.True(t, strings.Contains(props, `"duration_ms":1500`))
	})

	t.Run("Should swallow insert failures", func(t *testing.T) {
		rec := NewRecorder(&fakeExec{err: errors.New("db down")}, nil)
		assert.NotPanics(t, func() { rec.Record(t.Context(), events.Suggestion{Kind: events.KindTasks}) })
	})
}

func TestSuggestionAcceptedHandler(t *testing.T) {
	validate := validator.New()

	t.Run("Should log the event", func(t *testing.T) {
		db := &fakeExec{}
		h := SuggestionAcceptedHandler(db, validate, nil)

		r := httptest.NewRequest(http.MethodPost, "/analytics/suggestion-accepted", strings.NewReader(`{"kind":"weekly_tasks","count":5,"edited":true}`))
		w := httptest.NewRecorder()
		h(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"ok":true}`, w.Body.String())
		require.Len(t, db.calls, 1)
		assert.Equal(t, "suggestion_accepted", db.calls[0].args[0])
	})

	t.Run("Should reject unknown kinds", func(t *testing.T) {
		h := SuggestionAcceptedHandler(&fakeExec{}, validate, nil)

		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"kind":"goals"}`))
		w := httptest.NewRecorder()
		h(w, r)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Should reject invalid json", func(t *testing.T) {
		h := SuggestionAcceptedHandler(&fakeExec{}, validate, nil)

		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{`))
		w := httptest.NewRecorder()
		h(w, r)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

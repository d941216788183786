package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"okr-planner-backend/internal/events"
)

func TestMetrics_Observe(t *testing.T) {
	t.Run("Should count outcomes and strategies", func(t *testing.T) {
		m := New()

		m.Observe(t.Context(), events.Suggestion{Kind: events.KindWeeklyTasks, Outcome: events.OutcomeOK, Strategy: "text-field", Duration: time.Second})
		m.Observe(t.Context(), events.Suggestion{Kind: events.KindWeeklyTasks, Outcome: events.OutcomeOK, Strategy: "text-field"})
		m.Observe(t.Context(), events.Suggestion{Kind: events.KindWeeklyTasks, Outcome: events.OutcomeUpstreamError})

		assert.Equal(t, 2.0, testutil.ToFloat64(m.Suggestions.WithLabelValues("weekly_tasks", "ok")))
		assert.Equal(t, 1.0, testutil.ToFloat64(m.Suggestions.WithLabelValues("weekly_tasks", "upstream_error")))
		assert.Equal(t, 2.0, testutil.ToFloat64(m.Strategies.WithLabelValues("weekly_tasks", "text-field")))
	})

	t.Run("Should expose metrics over HTTP", func(t *testing.T) {
		m := New()
		m.Observe(t.Context(), events.Suggestion{Kind: events.KindKeyResults, Outcome: events.OutcomeEmpty})

		rec := httptest.NewRecorder()
		m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		body, _ := io.ReadAll(rec.Body)
		assert.Contains(t, string(body), `okr_suggestions_total{kind="key_results",outcome="empty"} 1`)
	})
}

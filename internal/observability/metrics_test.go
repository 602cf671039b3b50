package observability

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"projecthub/internal/apperr"
)

func TestObserveGate(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.ObserveGate("project_rank", nil)
	m.ObserveGate("project_rank", apperr.Forbidden("no access to this project"))
	m.ObserveGate("project_rank", apperr.Forbidden("project rank 4 is not permitted"))

	expected := `
# HELP projecthub_gate_decisions_total Authorization gate decisions by gate and outcome
# TYPE projecthub_gate_decisions_total counter
projecthub_gate_decisions_total{gate="project_rank",outcome="allow"} 1
projecthub_gate_decisions_total{gate="project_rank",outcome="forbidden"} 2
`
	require.NoError(t, testutil.CollectAndCompare(m.GateDecisionsTotal, strings.NewReader(expected)))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveGate("system_rank", nil)
		m.ObserveTransition("approved")
		m.ObserveAssignment("assign")
	})
}

func TestMiddlewareUsesRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewMetrics(prometheus.NewRegistry())

	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/projects/:project_id", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.GET("/metrics", m.Handler())

	for _, id := range []string{"a", "b"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/projects/"+id, nil))
		require.Equal(t, http.StatusNoContent, w.Code)
	}

	assert.Equal(t, float64(2), testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/projects/:project_id", "204")))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "projecthub_http_requests_total")
}

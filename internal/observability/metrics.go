package observability

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"projecthub/internal/apperr"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Authorization metrics
	GateDecisionsTotal *prometheus.CounterVec

	// Workflow metrics
	RequestTransitionsTotal *prometheus.CounterVec
	AssignmentChangesTotal  *prometheus.CounterVec
}

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		registry: registry,
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "projecthub_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "projecthub_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		GateDecisionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "projecthub_gate_decisions_total",
				Help: "Authorization gate decisions by gate and outcome",
			},
			[]string{"gate", "outcome"},
		),
		RequestTransitionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "projecthub_request_transitions_total",
				Help: "Role requests created or resolved, by resulting status",
			},
			[]string{"status"},
		),
		AssignmentChangesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "projecthub_assignment_changes_total",
				Help: "Project role assignment mutations by operation",
			},
			[]string{"operation"},
		),
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.GateDecisionsTotal,
		m.RequestTransitionsTotal,
		m.AssignmentChangesTotal,
	)
	return m
}

// ObserveGate counts one gate decision. The outcome is "allow" or the error
// kind that denied the request.
func (m *Metrics) ObserveGate(gate string, err error) {
	if m == nil {
		return
	}
	outcome := "allow"
	if err != nil {
		outcome = string(apperr.KindOf(err))
	}
	m.GateDecisionsTotal.WithLabelValues(gate, outcome).Inc()
}

func (m *Metrics) ObserveTransition(status string) {
	if m == nil {
		return
	}
	m.RequestTransitionsTotal.WithLabelValues(status).Inc()
}

func (m *Metrics) ObserveAssignment(operation string) {
	if m == nil {
		return
	}
	m.AssignmentChangesTotal.WithLabelValues(operation).Inc()
}

// Middleware instruments gin requests. The path label is the route template
// so ids do not blow up cardinality.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		m.HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		m.HTTPRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}

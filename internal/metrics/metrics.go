// Package metrics registers and records Prometheus metrics for Agentverse.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for Agentverse.
type Metrics struct {
	// Provider metrics
	ProviderRequests  *prometheus.CounterVec
	ProviderFallbacks *prometheus.CounterVec
	ProviderLatency   *prometheus.HistogramVec

	// Agent metrics
	AgentExecutions *prometheus.CounterVec

	// Tooling metrics
	CodeRuns          *prometheus.CounterVec
	ProjectsGenerated *prometheus.CounterVec

	// Transport metrics
	WSConnections       prometheus.Gauge
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

var (
	metricsOnce   sync.Once
	sharedMetrics *Metrics
)

// New creates and registers all Prometheus metrics. Registration happens
// once per process; later calls return the shared instance.
func New() *Metrics {
	metricsOnce.Do(func() {
		sharedMetrics = &Metrics{
			ProviderRequests: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "agentverse_provider_requests_total",
					Help: "Total number of LLM provider requests",
				},
				[]string{"provider", "outcome"},
			),
			ProviderFallbacks: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "agentverse_provider_fallbacks_total",
					Help: "Total number of requests degraded to the mock provider",
				},
				[]string{"provider", "reason"},
			),
			ProviderLatency: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "agentverse_provider_request_duration_seconds",
					Help:    "LLM provider request duration in seconds",
					Buckets: prometheus.ExponentialBuckets(0.1, 2, 10), // 100ms to 51s
				},
				[]string{"provider"},
			),
			AgentExecutions: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "agentverse_agent_executions_total",
					Help: "Total number of agent integration executions",
				},
				[]string{"template", "result"},
			),
			CodeRuns: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "agentverse_code_runs_total",
					Help: "Total number of code snippet executions",
				},
				[]string{"language", "outcome"},
			),
			ProjectsGenerated: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "agentverse_projects_generated_total",
					Help: "Total number of generated projects by source",
				},
				[]string{"source"}, // source: model, fallback
			),
			WSConnections: promauto.NewGauge(
				prometheus.GaugeOpts{
					Name: "agentverse_ws_connections",
					Help: "Number of open WebSocket connections",
				},
			),
			HTTPRequestsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "agentverse_http_requests_total",
					Help: "Total number of HTTP requests",
				},
				[]string{"method", "path", "status"},
			),
			HTTPRequestDuration: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "agentverse_http_request_duration_seconds",
					Help:    "HTTP request duration in seconds",
					Buckets: prometheus.DefBuckets,
				},
				[]string{"method", "path"},
			),
		}
	})

	return sharedMetrics
}

// RecordProviderRequest records one LLM provider request.
func (m *Metrics) RecordProviderRequest(provider string, success bool, seconds float64) {
	outcome := "error"
	if success {
		outcome = "success"
	}
	m.ProviderRequests.WithLabelValues(provider, outcome).Inc()
	m.ProviderLatency.WithLabelValues(provider).Observe(seconds)
}

// RecordFallback records a request degraded to the mock provider.
func (m *Metrics) RecordFallback(provider, reason string) {
	m.ProviderFallbacks.WithLabelValues(provider, reason).Inc()
}

// RecordExecution records an agent integration execution.
func (m *Metrics) RecordExecution(template string, success bool) {
	result := "failure"
	if success {
		result = "success"
	}
	m.AgentExecutions.WithLabelValues(template, result).Inc()
}

// RecordCodeRun records a code snippet execution.
func (m *Metrics) RecordCodeRun(language, outcome string) {
	m.CodeRuns.WithLabelValues(language, outcome).Inc()
}

// RecordProject records a generated project and which path produced it.
func (m *Metrics) RecordProject(source string) {
	m.ProjectsGenerated.WithLabelValues(source).Inc()
}

// RecordHTTPRequest records an HTTP request.
func (m *Metrics) RecordHTTPRequest(method, path, status string, seconds float64) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(seconds)
}

package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the amply client
type Metrics struct {
	// Command execution metrics
	CommandExecutions *prometheus.CounterVec
	CommandDuration   *prometheus.HistogramVec
	CommandErrors     *prometheus.CounterVec

	// Remote API metrics
	APIRequests        *prometheus.CounterVec
	APIRequestDuration *prometheus.HistogramVec
	APIRetries         *prometheus.CounterVec
	SessionExpirations prometheus.Counter

	// Session metrics
	SessionBoots  *prometheus.CounterVec
	SessionLogins *prometheus.CounterVec

	// Route guard metrics
	RouteDecisions *prometheus.CounterVec
	Redirects      *prometheus.CounterVec

	// Registration wizard metrics
	WizardTransitions *prometheus.CounterVec
	WizardSubmissions *prometheus.CounterVec

	// Query cache metrics
	QueryCacheHits      *prometheus.CounterVec
	QueryCacheMisses    *prometheus.CounterVec
	QueryInvalidations  *prometheus.CounterVec
	StaleResultsDropped prometheus.Counter

	// Error metrics (by error code from structured errors)
	Errors *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all metrics registered
func NewMetrics(registry prometheus.Registerer) *Metrics {
	factory := promauto.With(registry)

	return &Metrics{
		// Command metrics
		CommandExecutions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "amply_command_executions_total",
				Help: "Total number of command executions",
			},
			[]string{"command", "success"},
		),
		CommandDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "amply_command_duration_seconds",
				Help:    "Command execution duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"command"},
		),
		CommandErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "amply_command_errors_total",
				Help: "Total number of command errors",
			},
			[]string{"command", "error_code"},
		),

		// API metrics
		APIRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "amply_api_requests_total",
				Help: "Total number of remote API requests",
			},
			[]string{"method", "endpoint", "status_class"},
		),
		APIRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "amply_api_request_duration_seconds",
				Help:    "Remote API request latency in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
			},
			[]string{"method", "endpoint"},
		),
		APIRetries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "amply_api_retries_total",
				Help: "Total number of query retries",
			},
			[]string{"endpoint"},
		),
		SessionExpirations: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "amply_session_expirations_total",
				Help: "Total number of 401 responses that forced a logout",
			},
		),

		// Session metrics
		SessionBoots: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "amply_session_boots_total",
				Help: "Total number of session boots by outcome",
			},
			[]string{"outcome"},
		),
		SessionLogins: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "amply_session_logins_total",
				Help: "Total number of login attempts",
			},
			[]string{"success"},
		),

		// Route guard metrics
		RouteDecisions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "amply_route_decisions_total",
				Help: "Total number of route guard classifications",
			},
			[]string{"screen", "decision"},
		),
		Redirects: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "amply_route_redirects_total",
				Help: "Total number of redirects performed by the navigator",
			},
			[]string{"decision"},
		),

		// Wizard metrics
		WizardTransitions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "amply_wizard_transitions_total",
				Help: "Total number of registration wizard navigation attempts",
			},
			[]string{"slide", "direction", "accepted"},
		),
		WizardSubmissions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "amply_wizard_submissions_total",
				Help: "Total number of registration submissions",
			},
			[]string{"contributor_type", "success"},
		),

		// Query cache metrics
		QueryCacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "amply_query_cache_hits_total",
				Help: "Total number of query cache hits",
			},
			[]string{"resource"},
		),
		QueryCacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "amply_query_cache_misses_total",
				Help: "Total number of query cache misses",
			},
			[]string{"resource"},
		),
		QueryInvalidations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "amply_query_invalidations_total",
				Help: "Total number of cache invalidations after mutations",
			},
			[]string{"resource"},
		),
		StaleResultsDropped: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "amply_query_stale_results_dropped_total",
				Help: "Total number of responses discarded because their screen was gone",
			},
		),

		// Error metrics
		Errors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "amply_errors_total",
				Help: "Total number of errors by error code",
			},
			[]string{"error_code", "category"},
		),
	}
}

// ObserveRequest records one API round trip. A zero status means the
// request never got a response.
func (m *Metrics) ObserveRequest(method, endpoint string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.APIRequests.WithLabelValues(method, endpoint, StatusClass(status)).Inc()
	m.APIRequestDuration.WithLabelValues(method, endpoint).Observe(elapsed.Seconds())
}

// StatusClass buckets an HTTP status as "2xx", "4xx", ... or "error".
func StatusClass(status int) string {
	if status < 100 || status > 599 {
		return "error"
	}
	return strconv.Itoa(status/100) + "xx"
}

// BoolLabel renders a bool label value.
func BoolLabel(b bool) string {
	return strconv.FormatBool(b)
}

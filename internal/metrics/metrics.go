package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	apiRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "path", "status"},
	)

	apiRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	approvalRequestsCreatedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "approval_requests_created_total",
			Help: "Total number of approval requests submitted",
		},
		[]string{"request_type"},
	)

	approvalDecisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "approval_decisions_total",
			Help: "Total number of approval decisions applied",
		},
		[]string{"decision"},
	)

	approvalConflictsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "approval_decision_conflicts_total",
			Help: "Total number of decisions rejected by the optimistic-concurrency guard",
		},
	)

	pendingRequestsByRole = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "approval_requests_pending_by_role",
			Help: "Number of pending approval requests per approver role",
		},
		[]string{"role"},
	)

	databaseConnectionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "database_connections_active",
			Help: "Number of active database connections",
		},
	)

	databaseConnectionsIdle = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "database_connections_idle",
			Help: "Number of idle database connections",
		},
	)
)

func init() {
	prometheus.MustRegister(apiRequestsTotal)
	prometheus.MustRegister(apiRequestDuration)
	prometheus.MustRegister(approvalRequestsCreatedTotal)
	prometheus.MustRegister(approvalDecisionsTotal)
	prometheus.MustRegister(approvalConflictsTotal)
	prometheus.MustRegister(pendingRequestsByRole)
	prometheus.MustRegister(databaseConnectionsActive)
	prometheus.MustRegister(databaseConnectionsIdle)
}

// RecordAPIRequest records one HTTP request outcome.
func RecordAPIRequest(method, path string, status int, durationSeconds float64) {
	apiRequestsTotal.WithLabelValues(method, path, statusLabel(status)).Inc()
	apiRequestDuration.WithLabelValues(method, path).Observe(durationSeconds)
}

// RecordRequestCreated records a submitted approval request.
func RecordRequestCreated(requestType string) {
	approvalRequestsCreatedTotal.WithLabelValues(requestType).Inc()
}

// RecordDecision records an applied decision.
func RecordDecision(decision string) {
	approvalDecisionsTotal.WithLabelValues(decision).Inc()
}

// RecordConflict records a decision lost to the concurrency guard.
func RecordConflict() {
	approvalConflictsTotal.Inc()
}

// SetPendingByRole updates the pending-queue gauge for a role.
func SetPendingByRole(role string, count float64) {
	pendingRequestsByRole.WithLabelValues(role).Set(count)
}

// SetDatabaseConnections updates the DB pool gauges.
func SetDatabaseConnections(active, idle int) {
	databaseConnectionsActive.Set(float64(active))
	databaseConnectionsIdle.Set(float64(idle))
}

func statusLabel(status int) string {
	switch {
	case status < 200:
		return "1xx"
	case status < 300:
		return "2xx"
	case status < 400:
		return "3xx"
	case status < 500:
		return "4xx"
	default:
		return "5xx"
	}
}

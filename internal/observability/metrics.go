// Package observability provides Prometheus collectors and
// OpenTelemetry tracing setup.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"gorm.io/gorm"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "clubhub_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "clubhub_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// BallotsCast counts accepted votes.
	BallotsCast = promauto.NewCounter(prometheus.CounterOpts{
		Name: "clubhub_ballots_cast_total",
		Help: "Total number of accepted ballots",
	})

	// ClubRequestsProcessed counts processed club requests by decision.
	ClubRequestsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "clubhub_club_requests_processed_total",
		Help: "Total number of processed club creation requests by decision",
	}, []string{"decision"})

	// GovernanceConflicts counts rejected mutations by operation, e.g.
	// duplicate votes or already-processed requests.
	GovernanceConflicts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "clubhub_governance_conflicts_total",
		Help: "Total number of mutations rejected for violating a governance invariant",
	}, []string{"operation"})

	// ElectionStatusRefreshes counts lazy election status advances.
	ElectionStatusRefreshes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "clubhub_election_status_refreshes_total",
		Help: "Total number of election status columns advanced on read",
	})
)

// DatabaseMetrics wraps DB access for recording query latency.
type DatabaseMetrics struct {
	db *gorm.DB
}

// NewDatabaseMetrics returns a new DatabaseMetrics instance.
func NewDatabaseMetrics(db *gorm.DB) *DatabaseMetrics {
	return &DatabaseMetrics{db: db}
}

// ObserveQuery records the latency of a database query.
func (m *DatabaseMetrics) ObserveQuery(operation, table string, start time.Time) {
	latency := time.Since(start).Seconds()
	DatabaseQueryLatency.WithLabelValues(operation, table).Observe(latency)
}

// TrackQuery returns a function that records query latency when called (e.g. defer).
func (m *DatabaseMetrics) TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		m.ObserveQuery(operation, table, start)
	}
}

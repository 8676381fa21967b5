// Package observability holds the Prometheus collectors and OpenTelemetry
// tracer used by the worklog server.
package observability

import (
	"strings"
	"sync"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "worklog_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by statement kind.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "worklog_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	// LoginAttempts counts login attempts by outcome.
	LoginAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "worklog_login_attempts_total",
		Help: "Total number of login attempts by result",
	}, []string{"result"})

	// EntryWrites counts entry mutations by operation.
	EntryWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "worklog_entry_writes_total",
		Help: "Total number of entry create/update/delete operations",
	}, []string{"operation"})
)

var (
	httpMetricsOnce sync.Once
	httpMetrics     *fiberprometheus.FiberPrometheus
)

// HTTPMetrics returns the process-wide Fiber request collector. It registers
// with the default registry on first use only, so several servers built in
// one process (tests) share it.
func HTTPMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	httpMetricsOnce.Do(func() {
		httpMetrics = fiberprometheus.New(serviceName)
	})
	return httpMetrics
}

// ObserveQuery records the latency of one SQL statement.
func ObserveQuery(sql string, elapsed time.Duration) {
	DatabaseQueryLatency.WithLabelValues(statementKind(sql)).Observe(elapsed.Seconds())
}

// statementKind returns the lowercased leading keyword of sql.
func statementKind(sql string) string {
	sql = strings.TrimSpace(sql)
	if i := strings.IndexAny(sql, " \t\n("); i > 0 {
		sql = sql[:i]
	}
	switch kind := strings.ToLower(sql); kind {
	case "select", "insert", "update", "delete":
		return kind
	default:
		return "other"
	}
}

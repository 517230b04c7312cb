package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the balance engine.
type Metrics struct {
	// Balance query metrics
	BalanceLookups       *prometheus.CounterVec
	BalanceQueryDuration prometheus.Histogram

	// Cache rebuild metrics
	RebuildRuns      prometheus.Counter
	RebuildAccounts  prometheus.Histogram
	RebuildDuration  prometheus.Histogram
	AnchorRegressions prometheus.Counter

	// Cache maintenance metrics
	CacheInvalidations prometheus.Counter

	// Ledger metrics
	ConsistencyChecks *prometheus.CounterVec

	// Database metrics
	DBConnections prometheus.Gauge
	DBErrors      *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		BalanceLookups: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "saldo_balance_lookups_total",
				Help: "Total balance lookups by cache result",
			},
			[]string{"result"},
		),
		BalanceQueryDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "saldo_balance_query_duration_seconds",
			Help:    "Duration of balance query operations",
			Buckets: prometheus.DefBuckets,
		}),

		RebuildRuns: promauto.NewCounter(prometheus.CounterOpts{
			Name: "saldo_rebuild_runs_total",
			Help: "Total number of cache rebuild runs",
		}),
		RebuildAccounts: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "saldo_rebuild_accounts",
			Help:    "Number of accounts covered per rebuild run",
			Buckets: []float64{1, 10, 100, 1000, 10000, 100000},
		}),
		RebuildDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "saldo_rebuild_duration_seconds",
			Help:    "Duration of cache rebuild runs",
			Buckets: []float64{.1, .5, 1, 5, 10, 30, 60, 300},
		}),
		AnchorRegressions: promauto.NewCounter(prometheus.CounterOpts{
			Name: "saldo_anchor_regressions_total",
			Help: "Cache writes rejected for carrying older anchors than the stored row",
		}),

		CacheInvalidations: promauto.NewCounter(prometheus.CounterOpts{
			Name: "saldo_cache_invalidations_total",
			Help: "Total number of cache invalidation calls",
		}),

		ConsistencyChecks: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "saldo_consistency_checks_total",
				Help: "Ledger consistency checks by outcome",
			},
			[]string{"outcome"},
		),

		DBConnections: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "saldo_db_connections",
			Help: "Current number of database connections",
		}),
		DBErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "saldo_db_errors_total",
				Help: "Total database errors",
			},
			[]string{"operation"},
		),
	}
}

// BalanceLookup records a balance lookup and whether the cache row was usable.
func (m *Metrics) BalanceLookup(cacheHit bool) {
	result := "miss"
	if cacheHit {
		result = "hit"
	}
	m.BalanceLookups.WithLabelValues(result).Inc()
}

// RebuildCompleted records a finished rebuild run.
func (m *Metrics) RebuildCompleted(accounts int, duration time.Duration) {
	m.RebuildRuns.Inc()
	m.RebuildAccounts.Observe(float64(accounts))
	m.RebuildDuration.Observe(duration.Seconds())
}

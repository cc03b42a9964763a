package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Ledger pipeline metrics
	SnapshotsProcessed prometheus.Counter
	SnapshotDecodeErrs prometheus.Counter
	RebuildDuration    prometheus.Histogram
	LedgerSize         prometheus.Histogram
	CacheHits          prometheus.Counter
	CacheMisses        prometheus.Counter

	// Stream metrics
	StreamConnected   prometheus.Gauge
	StreamReconnects  prometheus.Counter
	StreamEvents      prometheus.Counter
	StreamSubscribers prometheus.Gauge

	// Withdrawal metrics
	WithdrawalsCreated  prometheus.Counter
	WithdrawalsApproved prometheus.Counter
	WithdrawalsRejected prometheus.Counter
	WithdrawalAmount    prometheus.Histogram

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Database metrics
	DBQueries     *prometheus.CounterVec
	DBDuration    *prometheus.HistogramVec
	DBConnections prometheus.Gauge
	DBErrors      *prometheus.CounterVec

	// Redis metrics
	RedisOperations *prometheus.CounterVec
	RedisDuration   *prometheus.HistogramVec
	RedisErrors     *prometheus.CounterVec

	// Authentication metrics
	AuthAttempts *prometheus.CounterVec
	AuthFailures *prometheus.CounterVec

	// Rate limiting metrics
	RateLimitHits *prometheus.CounterVec

	// Audit metrics
	AuditLogsCreated *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		// Ledger pipeline metrics
		SnapshotsProcessed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "naphex_snapshots_processed_total",
			Help: "Total number of user-state snapshots processed",
		}),
		SnapshotDecodeErrs: promauto.NewCounter(prometheus.CounterOpts{
			Name: "naphex_snapshot_decode_errors_total",
			Help: "Total number of snapshots that failed to decode",
		}),
		RebuildDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "naphex_ledger_rebuild_duration_seconds",
			Help:    "Duration of full ledger rebuilds",
			Buckets: prometheus.DefBuckets,
		}),
		LedgerSize: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "naphex_ledger_size_transactions",
			Help:    "Number of transactions per rebuilt ledger",
			Buckets: []float64{1, 10, 50, 100, 500, 1000, 5000, 10000},
		}),
		CacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "naphex_ledger_cache_hits_total",
			Help: "Total number of ledger cache hits",
		}),
		CacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "naphex_ledger_cache_misses_total",
			Help: "Total number of ledger cache misses",
		}),

		// Stream metrics
		StreamConnected: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "naphex_stream_connected",
			Help: "Whether the upstream event stream is connected (1) or not (0)",
		}),
		StreamReconnects: promauto.NewCounter(prometheus.CounterOpts{
			Name: "naphex_stream_reconnects_total",
			Help: "Total number of upstream stream reconnect attempts",
		}),
		StreamEvents: promauto.NewCounter(prometheus.CounterOpts{
			Name: "naphex_stream_events_total",
			Help: "Total number of events received from the upstream stream",
		}),
		StreamSubscribers: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "naphex_stream_subscribers",
			Help: "Current number of live SSE subscribers",
		}),

		// Withdrawal metrics
		WithdrawalsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "naphex_withdrawals_created_total",
			Help: "Total number of payout requests filed",
		}),
		WithdrawalsApproved: promauto.NewCounter(prometheus.CounterOpts{
			Name: "naphex_withdrawals_approved_total",
			Help: "Total number of payout requests approved",
		}),
		WithdrawalsRejected: promauto.NewCounter(prometheus.CounterOpts{
			Name: "naphex_withdrawals_rejected_total",
			Help: "Total number of payout requests rejected",
		}),
		WithdrawalAmount: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "naphex_withdrawal_amount_tokens",
			Help:    "Requested payout amounts",
			Buckets: []float64{10, 100, 1000, 10000, 100000, 1000000},
		}),

		// API metrics
		HTTPRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "naphex_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "naphex_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		// Database metrics
		DBQueries: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "naphex_db_queries_total",
				Help: "Total database queries",
			},
			[]string{"operation", "table"},
		),
		DBDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "naphex_db_query_duration_seconds",
				Help:    "Database query duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation", "table"},
		),
		DBConnections: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "naphex_db_connections",
			Help: "Current number of database connections",
		}),
		DBErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "naphex_db_errors_total",
				Help: "Total database errors",
			},
			[]string{"operation"},
		),

		// Redis metrics
		RedisOperations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "naphex_redis_operations_total",
				Help: "Total Redis operations",
			},
			[]string{"operation"},
		),
		RedisDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "naphex_redis_duration_seconds",
				Help:    "Redis operation duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		RedisErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "naphex_redis_errors_total",
				Help: "Total Redis errors",
			},
			[]string{"operation"},
		),

		// Authentication metrics
		AuthAttempts: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "naphex_auth_attempts_total",
				Help: "Total authentication attempts",
			},
			[]string{"status"},
		),
		AuthFailures: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "naphex_auth_failures_total",
				Help: "Total authentication failures",
			},
			[]string{"reason"},
		),

		// Rate limiting metrics
		RateLimitHits: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "naphex_rate_limit_hits_total",
				Help: "Total rate limit hits",
			},
			[]string{"ip"},
		),

		// Audit metrics
		AuditLogsCreated: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "naphex_audit_logs_total",
				Help: "Total audit logs created",
			},
			[]string{"action", "status"},
		),
	}
}

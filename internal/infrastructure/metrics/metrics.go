package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Movement metrics
	MovementsPosted    *prometheus.CounterVec
	MovementsReversed  prometheus.Counter
	MovementAmount     prometheus.Histogram
	IntegratedPostings *prometheus.CounterVec

	// Account metrics
	AccountsOpened prometheus.Counter
	AccountBalance *prometheus.GaugeVec
	LowBalanceHits prometheus.Counter

	// Cash metrics
	CashRegistered *prometheus.CounterVec
	CashCancelled  prometheus.Counter

	// Loan metrics
	LoansCreated       prometheus.Counter
	LoansCancelled     prometheus.Counter
	PaymentsApplied    prometheus.Counter
	PenaltiesAccrued   prometheus.Counter
	SchedulesGenerated prometheus.Counter

	// Reconciliation metrics
	ReconciliationRuns   prometheus.Counter
	ReconciliationDrifts prometheus.Counter

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
	RedisErrors     *prometheus.CounterVec

	// Authentication metrics
	AuthAttempts *prometheus.CounterVec
	AuthFailures *prometheus.CounterVec

	// Rate limiting metrics
	RateLimitHits *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		// Movement metrics
		MovementsPosted: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cajafin_movements_posted_total",
				Help: "Total number of bank movements posted by type",
			},
			[]string{"type"},
		),
		MovementsReversed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "cajafin_movements_reversed_total",
			Help: "Total number of movements reversed",
		}),
		MovementAmount: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "cajafin_movement_amount",
			Help:    "Bank movement amounts",
			Buckets: []float64{10, 100, 1000, 10000, 100000, 1000000},
		}),
		IntegratedPostings: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cajafin_integrated_postings_total",
				Help: "Total integrated cash+bank postings by cash type",
			},
			[]string{"type"},
		),

		// Account metrics
		AccountsOpened: promauto.NewCounter(prometheus.CounterOpts{
			Name: "cajafin_accounts_opened_total",
			Help: "Total number of bank accounts opened",
		}),
		AccountBalance: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "cajafin_account_balance",
				Help: "Current account balance",
			},
			[]string{"account_id", "currency"},
		),
		LowBalanceHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "cajafin_low_balance_hits_total",
			Help: "Times a posting left an account below its alert threshold",
		}),

		// Cash metrics
		CashRegistered: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cajafin_cash_registered_total",
				Help: "Total cash movements registered by type",
			},
			[]string{"type"},
		),
		CashCancelled: promauto.NewCounter(prometheus.CounterOpts{
			Name: "cajafin_cash_cancelled_total",
			Help: "Total cash movements cancelled",
		}),

		// Loan metrics
		LoansCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "cajafin_loans_created_total",
			Help: "Total number of loans created",
		}),
		LoansCancelled: promauto.NewCounter(prometheus.CounterOpts{
			Name: "cajafin_loans_cancelled_total",
			Help: "Total number of loans cancelled",
		}),
		PaymentsApplied: promauto.NewCounter(prometheus.CounterOpts{
			Name: "cajafin_loan_payments_applied_total",
			Help: "Total loan installments applied",
		}),
		PenaltiesAccrued: promauto.NewCounter(prometheus.CounterOpts{
			Name: "cajafin_loan_penalties_accrued_total",
			Help: "Total penalty accruals on overdue installments",
		}),
		SchedulesGenerated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "cajafin_loan_schedules_generated_total",
			Help: "Total amortization schedules generated",
		}),

		// Reconciliation metrics
		ReconciliationRuns: promauto.NewCounter(prometheus.CounterOpts{
			Name: "cajafin_reconciliation_runs_total",
			Help: "Total reconciliation passes executed",
		}),
		ReconciliationDrifts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "cajafin_reconciliation_drifts_total",
			Help: "Accounts whose recorded balance diverged from the recomputed one",
		}),

		// API metrics
		HTTPRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cajafin_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cajafin_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		// Database metrics
		DBQueries: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cajafin_db_queries_total",
				Help: "Total database queries by operation",
			},
			[]string{"operation"},
		),
		DBDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cajafin_db_duration_seconds",
				Help:    "Database query duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		DBConnections: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "cajafin_db_connections",
			Help: "Current number of database connections",
		}),
		DBErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cajafin_db_errors_total",
				Help: "Total database errors by type",
			},
			[]string{"error_type"},
		),

		// Redis metrics
		RedisOperations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cajafin_redis_operations_total",
				Help: "Total Redis operations by type",
			},
			[]string{"operation"},
		),
		RedisErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cajafin_redis_errors_total",
				Help: "Total Redis errors by operation",
			},
			[]string{"operation"},
		),

		// Authentication metrics
		AuthAttempts: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cajafin_auth_attempts_total",
				Help: "Total authentication attempts",
			},
			[]string{"result"},
		),
		AuthFailures: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cajafin_auth_failures_total",
				Help: "Total authentication failures by reason",
			},
			[]string{"reason"},
		),

		// Rate limiting metrics
		RateLimitHits: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cajafin_rate_limit_hits_total",
				Help: "Total rate limit rejections by endpoint",
			},
			[]string{"endpoint"},
		),
	}
}

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Business metrics - Track BNPL activity
var (
	QuotationsGenerated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bnpl_quotations_generated_total",
		Help: "Total number of quotations generated",
	})

	ContractsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bnpl_contracts_created_total",
		Help: "Total number of contracts created",
	})

	PaymentsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bnpl_payments_processed_total",
			Help: "Total number of installment payments processed by result",
		},
		[]string{"result"}, // ledger, simulated, rejected
	)
)

// Gateway metrics - Track external ledger calls
var (
	GatewayRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bnpl_gateway_requests_total",
			Help: "Total number of ledger gateway calls by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)
)

// Performance metrics - Track request handling latency
var (
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bnpl_request_duration_seconds",
			Help:    "Time taken to handle an HTTP request",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)
)

// Outcome labels for GatewayRequests
const (
	OutcomeOK       = "ok"
	OutcomeError    = "error"
	OutcomeDegraded = "degraded"
)

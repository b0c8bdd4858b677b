// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the gateway.
type Metrics struct {
	// Dispatcher metrics
	CommandsTotal       *prometheus.CounterVec
	ProtocolErrorsTotal prometheus.Counter

	// Upstream metrics
	APIRequestDuration *prometheus.HistogramVec

	// Swap metrics
	SwapsExecutedTotal prometheus.Counter
	LedgerRecords      prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "jupiter_gateway"
	}

	return &Metrics{
		// Dispatcher metrics
		CommandsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dispatcher",
			Name:      "commands_total",
			Help:      "Total commands dispatched, by command name and outcome",
		}, []string{"command", "status"}),
		ProtocolErrorsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dispatcher",
			Name:      "protocol_errors_total",
			Help:      "Total malformed, unknown or schema-invalid requests",
		}),

		// Upstream metrics
		APIRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "jupiter",
			Name:      "api_request_duration_seconds",
			Help:      "Latency of Jupiter API calls, by endpoint",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint"}),

		// Swap metrics
		SwapsExecutedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "swaps",
			Name:      "executed_total",
			Help:      "Total swaps submitted and recorded",
		}),
		LedgerRecords: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "records",
			Help:      "Number of records in the swap ledger",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the global metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordCommand counts a dispatched command by outcome ("ok" or "error").
func RecordCommand(command, status string) {
	DefaultMetrics.CommandsTotal.WithLabelValues(command, status).Inc()
}

// RecordProtocolError counts a request rejected before any handler ran.
func RecordProtocolError() {
	DefaultMetrics.ProtocolErrorsTotal.Inc()
}

// ObserveAPIRequest records the latency of one Jupiter API call.
func ObserveAPIRequest(endpoint string, seconds float64) {
	DefaultMetrics.APIRequestDuration.WithLabelValues(endpoint).Observe(seconds)
}

// RecordSwap counts a completed swap execution.
func RecordSwap() {
	DefaultMetrics.SwapsExecutedTotal.Inc()
}

// SetLedgerSize updates the ledger size gauge.
func SetLedgerSize(n int) {
	DefaultMetrics.LedgerRecords.Set(float64(n))
}

// Package metrics provides the centralized Prometheus metrics registry for the calculator.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	AllocationsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "flat_stake",
		Name:      "allocations_total",
		Help:      "Total number of allocations that produced a result",
	})
	NoResultTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "flat_stake",
		Name:      "no_result_total",
		Help:      "Total number of allocations with nothing to show",
	})
	SessionMutationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "flat_stake",
		Name:      "session_mutations_total",
		Help:      "Total number of session state changes by operation",
	}, []string{"operation"})
	SharesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "flat_stake",
		Name:      "shares_total",
		Help:      "Total number of share texts generated",
	})
	WSMessagesThrottledTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "flat_stake",
		Name:      "ws_messages_throttled_total",
		Help:      "Total number of live session messages dropped by the rate limiter",
	})
)

// Gauge metrics
var (
	LiveSessions = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "flat_stake",
		Name:      "live_sessions",
		Help:      "Number of open live sessions",
	})
)

// Histogram metrics
var (
	AllocationDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "flat_stake",
		Name:      "allocation_duration_seconds",
		Help:      "Duration of allocation runs in seconds",
		Buckets:   []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01},
	})
	RemainderSteps = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "flat_stake",
		Name:      "remainder_steps",
		Help:      "Number of stake units handed out after the proportional pass",
		Buckets:   []float64{0, 1, 2, 4, 8, 16, 32},
	})
	OutcomesPerAllocation = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "flat_stake",
		Name:      "eligible_outcomes",
		Help:      "Number of eligible outcomes per allocation",
		Buckets:   []float64{1, 2, 3, 5, 8, 12, 18},
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		registry.MustRegister(AllocationsTotal)
		registry.MustRegister(NoResultTotal)
		registry.MustRegister(SessionMutationsTotal)
		registry.MustRegister(SharesTotal)
		registry.MustRegister(WSMessagesThrottledTotal)

		registry.MustRegister(LiveSessions)

		registry.MustRegister(AllocationDuration)
		registry.MustRegister(RemainderSteps)
		registry.MustRegister(OutcomesPerAllocation)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	return InitRegistry()
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordAllocation records a successful allocation.
func RecordAllocation(durationSeconds float64, remainderSteps, eligible int) {
	AllocationsTotal.Inc()
	AllocationDuration.Observe(durationSeconds)
	RemainderSteps.Observe(float64(remainderSteps))
	OutcomesPerAllocation.Observe(float64(eligible))
}

// RecordNoResult records an allocation with nothing to show.
func RecordNoResult() {
	NoResultTotal.Inc()
}

// RecordSessionMutation records a session state change.
func RecordSessionMutation(operation string) {
	SessionMutationsTotal.WithLabelValues(operation).Inc()
}

// RecordShare records a generated share text.
func RecordShare() {
	SharesTotal.Inc()
}

// RecordThrottledMessage records a dropped live session message.
func RecordThrottledMessage() {
	WSMessagesThrottledTotal.Inc()
}

// SessionOpened increments the live sessions gauge.
func SessionOpened() {
	LiveSessions.Inc()
}

// SessionClosed decrements the live sessions gauge.
func SessionClosed() {
	LiveSessions.Dec()
}

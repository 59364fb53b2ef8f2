package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Dispatch metrics
	ServiceCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "burrow_service_calls_total",
			Help: "Total number of service calls by operation and final status",
		},
		[]string{"op", "status"},
	)

	ServiceCallDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "burrow_service_call_duration_seconds",
			Help:    "Service call duration in seconds by operation",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"op"},
	)

	ServiceRetriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "burrow_service_retries_total",
			Help: "Total number of retried attempts by operation",
		},
		[]string{"op"},
	)

	DeferredTicketsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "burrow_deferred_tickets_total",
			Help: "Total number of deferred tickets registered",
		},
	)

	// Event bus metrics
	EventsPublishedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "burrow_events_published_total",
			Help: "Total number of events published by kind",
		},
		[]string{"kind"},
	)

	EventHandlerErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "burrow_event_handler_errors_total",
			Help: "Total number of isolated handler failures by event name",
		},
		[]string{"event"},
	)

	// Idempotency metrics
	IdempotencyHitsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "burrow_idempotency_hits_total",
			Help: "Total number of calls served from the idempotency cache",
		},
	)

	IdempotencyLockContentionTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "burrow_idempotency_lock_contention_total",
			Help: "Total number of calls refused because the key lock was held",
		},
	)

	// Module metrics
	ModulesAttached = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "burrow_modules_attached",
			Help: "Number of modules currently attached by tenant",
		},
		[]string{"tenant"},
	)

	ConfigAppliesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "burrow_config_applies_total",
			Help: "Total number of tenant config applications",
		},
	)

	// Store metrics
	SweepEvictionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "burrow_sweep_evictions_total",
			Help: "Total number of expired store entries evicted by store",
		},
		[]string{"store"},
	)
)

func init() {
	// Register all metrics
	prometheus.MustRegister(ServiceCallsTotal)
	prometheus.MustRegister(ServiceCallDuration)
	prometheus.MustRegister(ServiceRetriesTotal)
	prometheus.MustRegister(DeferredTicketsTotal)
	prometheus.MustRegister(EventsPublishedTotal)
	prometheus.MustRegister(EventHandlerErrorsTotal)
	prometheus.MustRegister(IdempotencyHitsTotal)
	prometheus.MustRegister(IdempotencyLockContentionTotal)
	prometheus.MustRegister(ModulesAttached)
	prometheus.MustRegister(ConfigAppliesTotal)
	prometheus.MustRegister(SweepEvictionsTotal)
}

// Handler returns the Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer is a helper for timing operations
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ObserveDuration records the duration to a histogram
func (t *Timer) ObserveDuration(histogram prometheus.Histogram) {
	duration := time.Since(t.start).Seconds()
	histogram.Observe(duration)
}

// ObserveDurationVec records the duration to a histogram vec with labels
func (t *Timer) ObserveDurationVec(histogram prometheus.ObserverVec, labels ...string) {
	duration := time.Since(t.start).Seconds()
	histogram.WithLabelValues(labels...).Observe(duration)
}

// Duration returns the elapsed time since timer started
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}

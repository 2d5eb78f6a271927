package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// HTTP метрики
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "http_request_duration_seconds",
			Help: "Duration of HTTP requests in seconds",
		},
		[]string{"method", "path"},
	)
	HTTPRequestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Current number of HTTP requests in flight",
		},
	)
	RateLimitedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "http_rate_limited_total",
			Help: "Requests rejected by the per-client rate limiter",
		},
	)

	// Жизненный цикл объявлений, заявок и платежей
	LifecycleTransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lifecycle_transitions_total",
			Help: "Committed state transitions",
		},
		[]string{"entity", "from", "to"},
	)
	LifecycleRejectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lifecycle_rejections_total",
			Help: "Operations rejected with a typed error",
		},
		[]string{"operation", "reason"},
	)
	OperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lifecycle_operation_duration_seconds",
			Help:    "Duration of orchestrated operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	// Платежи
	PaymentCallbacksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_callbacks_total",
			Help: "Payment gateway callbacks by outcome",
		},
		[]string{"outcome", "replayed"},
	)
	PaymentCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_callback_cache_total",
			Help: "Callback replay cache lookups",
		},
		[]string{"result"},
	)
)

var initOnce sync.Once

func InitMetrics() {
	initOnce.Do(func() {
		prometheus.MustRegister(HTTPRequestsTotal)
		prometheus.MustRegister(HTTPRequestDuration)
		prometheus.MustRegister(HTTPRequestsInFlight)
		prometheus.MustRegister(RateLimitedTotal)

		prometheus.MustRegister(LifecycleTransitionsTotal)
		prometheus.MustRegister(LifecycleRejectionsTotal)
		prometheus.MustRegister(OperationDuration)

		prometheus.MustRegister(PaymentCallbacksTotal)
		prometheus.MustRegister(PaymentCacheTotal)

		// Стандартные метрики Go
		prometheus.MustRegister(prometheus.NewGoCollector())
		prometheus.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))
	})
}

func Transition(entity, from, to string) {
	LifecycleTransitionsTotal.WithLabelValues(entity, from, to).Inc()
}

func Rejection(operation, reason string) {
	LifecycleRejectionsTotal.WithLabelValues(operation, reason).Inc()
}

package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// WorkerMetrics covers the ledger worker that consumes upload events.
type WorkerMetrics struct {
	service  string
	registry *prometheus.Registry

	appendTotal    *prometheus.CounterVec
	appendDuration *prometheus.HistogramVec
	appendInFlight prometheus.Gauge
	eventLag       prometheus.Histogram
}

func NewWorkerMetrics(service string) *WorkerMetrics {
	registry := prometheus.NewRegistry()

	appendTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "append_total",
			Help:      "Upload events written to the ledger by status.",
		},
		[]string{"service", "status"},
	)
	appendDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "append_duration_seconds",
			Help:      "Ledger append duration in seconds by status.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "status"},
	)
	appendInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace:   namespace,
			Subsystem:   "ledger",
			Name:        "append_in_flight",
			Help:        "Number of in-flight ledger appends.",
			ConstLabels: prometheus.Labels{"service": service},
		},
	)
	eventLag := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace:   namespace,
			Subsystem:   "ledger",
			Name:        "event_lag_seconds",
			Help:        "Delay between the upload outcome and the ledger append.",
			Buckets:     []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60},
			ConstLabels: prometheus.Labels{"service": service},
		},
	)

	registry.MustRegister(appendTotal, appendDuration, appendInFlight, eventLag)

	return &WorkerMetrics{
		service:        service,
		registry:       registry,
		appendTotal:    appendTotal,
		appendDuration: appendDuration,
		appendInFlight: appendInFlight,
		eventLag:       eventLag,
	}
}

func (m *WorkerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *WorkerMetrics) StartAppend() {
	m.appendInFlight.Inc()
}

func (m *WorkerMetrics) FinishAppend(duration time.Duration, err error) {
	m.appendInFlight.Dec()

	status := "success"
	if err != nil {
		status = "error"
	}
	m.appendTotal.WithLabelValues(m.service, status).Inc()
	m.appendDuration.WithLabelValues(m.service, status).Observe(duration.Seconds())
}

func (m *WorkerMetrics) ObserveEventLag(lag time.Duration) {
	if lag < 0 {
		return
	}
	m.eventLag.Observe(lag.Seconds())
}

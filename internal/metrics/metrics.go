// Package metrics exposes Prometheus collectors for the consumer daemon.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	consumerItemsTotal        *prometheus.CounterVec
	enrichmentRequestsTotal   *prometheus.CounterVec
	enrichmentDurationSeconds prometheus.Histogram
	storageWritesTotal        *prometheus.CounterVec
	brokerReconnectsTotal     prometheus.Counter
	consumerConnected         prometheus.Gauge

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		consumerItemsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "enrichd_items_total",
				Help: "Total number of queue items handled, labeled by outcome.",
			},
			[]string{"outcome"},
		)

		enrichmentRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "enrichd_enrichment_requests_total",
				Help: "Total number of detail API calls, labeled by outcome.",
			},
			[]string{"outcome"},
		)

		enrichmentDurationSeconds = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "enrichd_enrichment_duration_seconds",
				Help:    "Histogram of detail API request latencies.",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 20, 45},
			},
		)

		storageWritesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "enrichd_storage_writes_total",
				Help: "Total number of blob storage writes, labeled by status.",
			},
			[]string{"status"},
		)

		brokerReconnectsTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "enrichd_broker_reconnects_total",
				Help: "Total broker reconnect attempts after a connection failure.",
			},
		)

		consumerConnected = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "enrichd_broker_connected",
				Help: "Whether the consumer believes its broker connection is healthy.",
			},
		)
	})
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveItem records the terminal outcome of one queue item.
func ObserveItem(outcome string) {
	consumerItemsTotal.WithLabelValues(outcome).Inc()
}

// ObserveEnrichment records one detail API call and its latency.
func ObserveEnrichment(outcome string, duration time.Duration) {
	enrichmentRequestsTotal.WithLabelValues(outcome).Inc()
	enrichmentDurationSeconds.Observe(duration.Seconds())
}

// ObserveStorageWrite records a blob storage write result.
func ObserveStorageWrite(ok bool) {
	status := "ok"
	if !ok {
		status = "error"
	}
	storageWritesTotal.WithLabelValues(status).Inc()
}

// ObserveReconnect counts a broker reconnect attempt.
func ObserveReconnect() {
	brokerReconnectsTotal.Inc()
}

// SetConnected flips the broker connectivity gauge.
func SetConnected(connected bool) {
	if connected {
		consumerConnected.Set(1)
		return
	}
	consumerConnected.Set(0)
}

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/Zubair121Md/Integrated-Financial-Trading-Platform/internal/domain/models"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	connections    prometheus.Gauge
	activeFeeds    prometheus.Gauge
	fetchesTotal   *prometheus.CounterVec
	fetchLatency   *prometheus.HistogramVec
	publishesTotal *prometheus.CounterVec
	droppedTotal   *prometheus.CounterVec
	errorsTotal    *prometheus.CounterVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		connections: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "marketdata_connections",
				Help: "Number of currently attached client connections",
			},
		),
		activeFeeds: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "marketdata_active_feeds",
				Help: "Number of feeds with a live poll task",
			},
		),
		fetchesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "marketdata_fetches_total",
				Help: "Total upstream fetches by asset class and outcome",
			},
			[]string{"class", "outcome"},
		),
		fetchLatency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "marketdata_fetch_duration_seconds",
				Help:    "Upstream fetch duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"class"},
		),
		publishesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "marketdata_publishes_total",
				Help: "Total feed updates fanned out by asset class",
			},
			[]string{"class"},
		),
		droppedTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "marketdata_dropped_updates_total",
				Help: "Updates dropped for slow consumers",
			},
			[]string{"conn"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "marketdata_errors_total",
				Help: "Total errors by kind",
			},
			[]string{"kind"},
		),
	}
}

// SetConnections records the current connection count.
func (r *Recorder) SetConnections(n int) {
	r.connections.Set(float64(n))
}

// SetActiveFeeds records the current live poll-task count.
func (r *Recorder) SetActiveFeeds(n int) {
	r.activeFeeds.Set(float64(n))
}

// RecordFetch records one upstream fetch attempt.
func (r *Recorder) RecordFetch(class models.AssetClass, seconds float64, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	r.fetchesTotal.WithLabelValues(string(class), outcome).Inc()
	r.fetchLatency.WithLabelValues(string(class)).Observe(seconds)
}

// RecordPublish records one fan-out to the given subscriber count.
func (r *Recorder) RecordPublish(class models.AssetClass, subscribers int) {
	r.publishesTotal.WithLabelValues(string(class)).Add(float64(subscribers))
}

// RecordDroppedUpdate records an update dropped for backpressure.
func (r *Recorder) RecordDroppedUpdate(connID string) {
	r.droppedTotal.WithLabelValues(connID).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

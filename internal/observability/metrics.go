// Package observability holds the pipeline-level Prometheus collectors.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Provider call outcomes.
const (
	ProviderOK      = "ok"
	ProviderFailure = "error"
)

// ExtractionSucceeded labels a successful extraction in the outcome counter.
const ExtractionSucceeded = "succeeded"

var (
	providerLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "recommendation_service",
		Subsystem: "provider",
		Name:      "request_duration_seconds",
		Help:      "Latency of generateContent calls grouped by outcome.",
		Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 16, 30, 60},
	}, []string{"outcome"})

	extractionCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "recommendation_service",
		Subsystem: "extraction",
		Name:      "outcomes_total",
		Help:      "Number of provider answers extracted, grouped by outcome or failure kind.",
	}, []string{"outcome"})

	degradedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "recommendation_service",
		Subsystem: "builder",
		Name:      "degraded_recommendations_total",
		Help:      "Number of recommendations built from the fallback content.",
	})

	persistedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "recommendation_service",
		Subsystem: "persistence",
		Name:      "recommendations_persisted_total",
		Help:      "Number of recommendations written to the store.",
	})

	persistGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "recommendation_service",
		Subsystem: "persistence",
		Name:      "last_recommendation_persisted_timestamp_seconds",
		Help:      "Unix timestamp of the most recent recommendation persisted.",
	})
)

func init() {
	prometheus.MustRegister(providerLatency, extractionCounter, degradedCounter, persistedCounter, persistGauge)
}

// ObserveProviderCall records the latency of one provider call.
func ObserveProviderCall(outcome string, elapsed time.Duration) {
	providerLatency.WithLabelValues(outcome).Observe(elapsed.Seconds())
}

// RecordExtraction counts an extraction outcome; failures use their kind as the label.
func RecordExtraction(outcome string) {
	extractionCounter.WithLabelValues(outcome).Inc()
}

func RecordDegraded() {
	degradedCounter.Inc()
}

// RecordRecommendationPersisted bumps the persisted counter and the watermark gauge.
func RecordRecommendationPersisted(ts time.Time) {
	persistedCounter.Inc()
	if ts.IsZero() {
		return
	}
	persistGauge.Set(float64(ts.Unix()))
}

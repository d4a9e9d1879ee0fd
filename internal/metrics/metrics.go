// Package metrics exposes the Prometheus instruments for recommendation traffic.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RecommendationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "phonefinder_recommendations_total",
			Help: "Total number of recommendations served, by ladder strategy",
		},
		[]string{"strategy"},
	)

	RecommendDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "phonefinder_recommend_duration_seconds",
			Help:    "Duration of recommendation requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	EmptyRecommendations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "phonefinder_empty_recommendations_total",
			Help: "Recommendations where no phone satisfied the hard constraints",
		},
	)

	ExtractorFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "phonefinder_extractor_failures_total",
			Help: "Intent extractor failures, by extractor",
		},
		[]string{"extractor"},
	)

	CatalogSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "phonefinder_catalog_phones",
			Help: "Number of phones in the loaded catalog snapshot",
		},
	)
)

// RecordRecommendation records one served recommendation
func RecordRecommendation(strategy string, picks int, duration time.Duration) {
	RecommendationsTotal.WithLabelValues(strategy).Inc()
	RecommendDuration.Observe(duration.Seconds())
	if picks == 0 {
		EmptyRecommendations.Inc()
	}
}

// RecordExtractorFailure counts a failed extraction attempt
func RecordExtractorFailure(extractor string) {
	ExtractorFailures.WithLabelValues(extractor).Inc()
}

// SetCatalogSize publishes the catalog size
func SetCatalogSize(n int) {
	CatalogSize.Set(float64(n))
}

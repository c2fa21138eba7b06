package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "loss_forecast"

// Metrics holds the Prometheus counters, histograms, and gauges for the dashboard.
type Metrics struct {
	ForecastRuns     *prometheus.CounterVec // labels: outcome={success,error}
	ForecastDuration prometheus.Histogram
	CountiesScored   prometheus.Counter
	ScoringErrors    prometheus.Counter
	DatasetCounties  prometheus.Gauge
	ModelFeatures    prometheus.Gauge

	// HTTP API metrics.
	APIRequests *prometheus.CounterVec // labels: route, status

	// Forecast publishing metrics.
	PublishedRuns prometheus.Counter
	PublishErrors prometheus.Counter

	// Geocoding metrics.
	GeocodeRequests    *prometheus.CounterVec   // labels: outcome={success,error,empty}
	GeocodeCache       *prometheus.CounterVec   // labels: result={hit,miss}
	GeocodeAPIDuration prometheus.Histogram
	GeocodeEnabled     prometheus.Gauge
}

// NewMetrics creates and registers all dashboard metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(m.collectors()...)
	return m
}

// NewMetricsForTesting creates Metrics that are not registered anywhere, so
// tests can build as many as they like.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		ForecastRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "forecast_runs_total",
			Help:      "Forecast recomputations by outcome.",
		}, []string{"outcome"}),
		ForecastDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "forecast_duration_seconds",
			Help:      "Duration of a full filter, score, rank and summarize cycle.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		CountiesScored: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "counties_scored_total",
			Help:      "Total county predictions computed.",
		}),
		ScoringErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scoring_errors_total",
			Help:      "Forecasts aborted because a record lacked a model feature.",
		}),
		DatasetCounties: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dataset_counties",
			Help:      "Number of county records loaded at startup.",
		}),
		ModelFeatures: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "model_features",
			Help:      "Number of input features the loaded model expects.",
		}),
		APIRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_requests_total",
			Help:      "Dashboard API requests by route and status code.",
		}, []string{"route", "status"}),
		PublishedRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "published_runs_total",
			Help:      "Forecast runs written to Kafka.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_errors_total",
			Help:      "Forecast runs that could not be written to Kafka.",
		}),
		GeocodeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_requests_total",
			Help:      "Geocoding API requests by outcome.",
		}, []string{"outcome"}),
		GeocodeCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_cache_total",
			Help:      "Geocoding cache lookups by result.",
		}, []string{"result"}),
		GeocodeAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "geocode_api_duration_seconds",
			Help:      "Mapbox API request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		GeocodeEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "geocode_enabled",
			Help:      "1 when geocoding of top counties is enabled, 0 otherwise.",
		}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.ForecastRuns,
		m.ForecastDuration,
		m.CountiesScored,
		m.ScoringErrors,
		m.DatasetCounties,
		m.ModelFeatures,
		m.APIRequests,
		m.PublishedRuns,
		m.PublishErrors,
		m.GeocodeRequests,
		m.GeocodeCache,
		m.GeocodeAPIDuration,
		m.GeocodeEnabled,
	}
}

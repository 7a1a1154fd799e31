package recorder

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusRecorder exposes pipeline counters on its own registry.
type PrometheusRecorder struct {
	registry   *prometheus.Registry
	providers  *prometheus.CounterVec
	candidates *prometheus.CounterVec
	setSize    prometheus.Gauge
	refreshDur prometheus.Histogram
	lastRun    prometheus.Gauge
}

// NewPrometheusRecorder creates and registers all collectors.
func NewPrometheusRecorder() *PrometheusRecorder {
	r := &PrometheusRecorder{
		registry: prometheus.NewRegistry(),
		providers: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "oskoflow",
				Subsystem: "quotes",
				Name:      "provider_calls_total",
				Help:      "Quote provider calls by provider and outcome",
			},
			[]string{"provider", "outcome"},
		),
		candidates: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "oskoflow",
				Subsystem: "refresh",
				Name:      "candidates_total",
				Help:      "Refresh candidates by outcome",
			},
			[]string{"outcome"},
		),
		setSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "oskoflow",
			Subsystem: "refresh",
			Name:      "recommendations",
			Help:      "Size of the active recommendation set",
		}),
		refreshDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "oskoflow",
			Subsystem: "refresh",
			Name:      "duration_seconds",
			Help:      "Duration of a full refresh",
			Buckets:   []float64{1, 5, 10, 20, 30, 60, 120},
		}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "oskoflow",
			Subsystem: "refresh",
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last completed refresh",
		}),
	}
	r.registry.MustRegister(r.providers, r.candidates, r.setSize, r.refreshDur, r.lastRun)
	return r
}

func (r *PrometheusRecorder) RecordProvider(provider, outcome string) {
	r.providers.WithLabelValues(provider, outcome).Inc()
}

func (r *PrometheusRecorder) RecordCandidate(outcome string) {
	r.candidates.WithLabelValues(outcome).Inc()
}

func (r *PrometheusRecorder) RecordRefresh(size int, elapsed time.Duration) {
	r.setSize.Set(float64(size))
	r.refreshDur.Observe(elapsed.Seconds())
	r.lastRun.SetToCurrentTime()
}

// Handler serves the registry in the Prometheus exposition format.
func (r *PrometheusRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

func (r *PrometheusRecorder) Close() error { return nil }

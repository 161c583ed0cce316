package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/i474232898/weather-forecast/internal/weather"
)

// Recorder implements weather.Metrics using Prometheus. It registers on its
// own registry so several recorders can coexist (e.g. in tests).
type Recorder struct {
	registry   *prometheus.Registry
	cycles     *prometheus.CounterVec
	latency    *prometheus.HistogramVec
	superseded prometheus.Counter
	dailyDays  *prometheus.GaugeVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		cycles: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "weather_fetch_cycles_total",
				Help: "Total number of fetch cycles by provider and outcome",
			},
			[]string{"provider", "status"},
		),
		latency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "weather_fetch_cycle_duration_seconds",
				Help:    "Duration of fetch cycles in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"provider"},
		),
		superseded: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "weather_fetch_cycles_superseded_total",
				Help: "Fetch cycles cancelled by a newer cycle for the same location",
			},
		),
		dailyDays: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "weather_daily_summaries",
				Help: "Number of daily summaries in the last successful cycle",
			},
			[]string{"provider"},
		),
	}
}

// ObserveCycle records the outcome of one fetch cycle.
func (r *Recorder) ObserveCycle(provider string, status weather.CycleStatus, elapsed time.Duration, days int) {
	r.cycles.WithLabelValues(provider, string(status)).Inc()
	r.latency.WithLabelValues(provider).Observe(elapsed.Seconds())

	switch status {
	case weather.CycleSuperseded:
		r.superseded.Inc()
	case weather.CycleOK:
		r.dailyDays.WithLabelValues(provider).Set(float64(days))
	}
}

// Handler serves the recorder's registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

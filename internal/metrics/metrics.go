// Package metrics records per-run scraper metrics in a private Prometheus registry and
// pushes them to a Pushgateway when one is configured.
package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

const namespace = "owg_schedule"

// Recorder collects run metrics.
type Recorder struct {
	registry *prometheus.Registry

	rawRecords  prometheus.Counter
	events      prometheus.Gauge
	sightings   *prometheus.CounterVec
	appearances prometheus.Gauge
	fallbacks   *prometheus.CounterVec
	cacheChecks *prometheus.CounterVec
	duration    *prometheus.HistogramVec
}

// New creates a Recorder with its own registry.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Recorder{
		registry: reg,
		rawRecords: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "raw_records_total",
			Help:      "Raw records recovered from page markup",
		}),
		events: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "events",
			Help:      "Unique events in the last produced schedule",
		}),
		sightings: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sightings_total",
			Help:      "Athlete sightings collected, by source",
		}, []string{"source"}),
		appearances: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "athlete_appearances",
			Help:      "Accepted athlete appearances in the last feed",
		}),
		fallbacks: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fallbacks_total",
			Help:      "Runs that served the fallback schedule, by reason",
		}, []string{"reason"}),
		cacheChecks: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_checks_total",
			Help:      "Cache gate decisions",
		}, []string{"result"}),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of pipeline stages in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"stage"}),
	}
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// RecordRawRecords adds to the raw record count.
func (r *Recorder) RecordRawRecords(n int) {
	r.rawRecords.Add(float64(n))
}

// RecordEvents sets the event gauge.
func (r *Recorder) RecordEvents(n int) {
	r.events.Set(float64(n))
}

// RecordSightings adds sightings for a source.
func (r *Recorder) RecordSightings(source string, n int) {
	r.sightings.WithLabelValues(source).Add(float64(n))
}

// RecordAppearances sets the appearance gauge.
func (r *Recorder) RecordAppearances(n int) {
	r.appearances.Set(float64(n))
}

// RecordFallback counts a fallback with its reason.
func (r *Recorder) RecordFallback(reason string) {
	r.fallbacks.WithLabelValues(reason).Inc()
}

// RecordCacheCheck counts a cache decision ("fresh" or "stale").
func (r *Recorder) RecordCacheCheck(result string) {
	r.cacheChecks.WithLabelValues(result).Inc()
}

// ObserveStage records how long a stage took.
func (r *Recorder) ObserveStage(stage string, d time.Duration) {
	r.duration.WithLabelValues(stage).Observe(d.Seconds())
}

// Time returns a func that observes the elapsed time for stage when called.
func (r *Recorder) Time(stage string) func() {
	start := time.Now()
	return func() {
		r.ObserveStage(stage, time.Since(start))
	}
}

// Push sends all metrics to a Pushgateway, replacing the job's previous group.
func (r *Recorder) Push(ctx context.Context, url, job string) error {
	if err := push.New(url, job).Gatherer(r.registry).PushContext(ctx); err != nil {
		return fmt.Errorf("pushing metrics: %w", err)
	}
	return nil
}

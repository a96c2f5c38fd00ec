package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"orrery/simulator/simulation"
)

type Collector struct {
	stepDuration prometheus.Histogram
	framesTotal  prometheus.Counter
	stepErrors   prometheus.Counter
	published    *prometheus.CounterVec
	phase        *prometheus.GaugeVec
	trailSamples *prometheus.GaugeVec
	gatherer     prometheus.Gatherer
}

// NewCollector registers the simulator metrics on reg.
func NewCollector(reg *prometheus.Registry) *Collector {
	m := &Collector{
		stepDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "orrery_step_duration_seconds",
			Help:    "Time spent advancing the scene by one frame",
			Buckets: prometheus.ExponentialBuckets(1e-6, 4, 10),
		}),
		framesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "orrery_frames_total",
			Help: "Total number of rendered frames",
		}),
		stepErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "orrery_step_errors_total",
			Help: "Total number of frames that failed to advance",
		}),
		published: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "orrery_events_total",
			Help: "Frame events by outcome",
		}, []string{"outcome"}),
		phase: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "orrery_body_phase_radians",
			Help: "Current phase angle of each body",
		}, []string{"body"}),
		trailSamples: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "orrery_trail_samples",
			Help: "Samples held in each body's trail",
		}, []string{"body"}),
		gatherer: reg,
	}
	reg.MustRegister(m.stepDuration, m.framesTotal, m.stepErrors, m.published, m.phase, m.trailSamples)
	return m
}

func (m *Collector) RecordStep(d time.Duration, err error) {
	m.stepDuration.Observe(d.Seconds())
	if err != nil {
		m.stepErrors.Inc()
		return
	}
	m.framesTotal.Inc()
}

// RecordEvent counts a frame event as "sent", "dropped" or "failed".
func (m *Collector) RecordEvent(outcome string) {
	m.published.WithLabelValues(outcome).Inc()
}

func (m *Collector) Observe(snap simulation.Snapshot) {
	for _, b := range snap.Bodies {
		m.phase.WithLabelValues(b.Name).Set(b.Phase)
		m.trailSamples.WithLabelValues(b.Name).Set(float64(b.TrailLen))
	}
}

func (m *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// Package metrics exposes scheduler counters and gauges through Prometheus.
//
// A nil *Metrics is valid and records nothing, so callers never need to
// check whether metrics are enabled.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "spacetime"

// Metrics holds all Prometheus metrics of a composition
type Metrics struct {
	// Scheduler metrics
	Updates       prometheus.Counter
	Crossings     prometheus.Histogram
	TimersArmed   prometheus.Counter
	TimerDelay    prometheus.Histogram
	Seeks         prometheus.Counter
	Waiting       prometheus.Counter
	Ended         prometheus.Counter
	RateChanges   prometheus.Counter
	DurationValue prometheus.Gauge

	// Clip metrics
	Clips         prometheus.Gauge
	ActiveClips   prometheus.Gauge
	Activations   prometheus.Counter
	Deactivations prometheus.Counter
	Splices       *prometheus.CounterVec
	SourceErrors  *prometheus.CounterVec
}

// New creates the metrics and registers them with reg.
// A nil reg registers with the default registry.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		Updates: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "updates_total",
			Help:      "Total number of scheduler updates that moved the playhead",
		}),
		Crossings: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "update_crossings",
			Help:      "Clip boundaries crossed per scheduler update",
			Buckets:   []float64{0, 1, 2, 4, 8, 16, 32, 64},
		}),
		TimersArmed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "boundary_timers_total",
			Help:      "Total number of boundary timers armed",
		}),
		TimerDelay: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "boundary_timer_delay_seconds",
			Help:      "Wall-clock delay until the next boundary crossing",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10), // 1ms to ~4.4min
		}),
		Seeks: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "seeks_total",
			Help:      "Total number of seeks on the composition",
		}),
		Waiting: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "waiting_total",
			Help:      "Total number of times playback stopped to wait for clips",
		}),
		Ended: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ended_total",
			Help:      "Total number of times playback reached the end of the timeline",
		}),
		RateChanges: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_changes_total",
			Help:      "Total number of playback rate changes",
		}),
		DurationValue: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "duration_seconds",
			Help:      "Resolved duration of the composition",
		}),

		Clips: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "clips",
			Help:      "Number of clips in the composition",
		}),
		ActiveClips: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_clips",
			Help:      "Number of currently active clips",
		}),
		Activations: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "clip_activations_total",
			Help:      "Total number of clip activations",
		}),
		Deactivations: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "clip_deactivations_total",
			Help:      "Total number of clip deactivations",
		}),
		Splices: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "clip_splices_total",
				Help:      "Total number of clip splices by outcome",
			},
			[]string{"outcome"}, // removed, split, trimmed
		),
		SourceErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "source_errors_total",
				Help:      "Total number of source failures by clip type",
			},
			[]string{"type"},
		),
	}
}

// Update records a scheduler update that crossed n boundaries
func (m *Metrics) Update(n int) {
	if m == nil {
		return
	}
	m.Updates.Inc()
	m.Crossings.Observe(float64(n))
}

// TimerArmed records a boundary timer armed for d
func (m *Metrics) TimerArmed(d time.Duration) {
	if m == nil {
		return
	}
	m.TimersArmed.Inc()
	m.TimerDelay.Observe(d.Seconds())
}

// Seeked records a seek
func (m *Metrics) Seeked() {
	if m == nil {
		return
	}
	m.Seeks.Inc()
}

// Stalled records a transition into the waiting state
func (m *Metrics) Stalled() {
	if m == nil {
		return
	}
	m.Waiting.Inc()
}

// Finished records playback reaching either end of the timeline
func (m *Metrics) Finished() {
	if m == nil {
		return
	}
	m.Ended.Inc()
}

// RateChanged records a playback rate change
func (m *Metrics) RateChanged() {
	if m == nil {
		return
	}
	m.RateChanges.Inc()
}

// SetDuration records the resolved duration
func (m *Metrics) SetDuration(seconds float64) {
	if m == nil {
		return
	}
	m.DurationValue.Set(seconds)
}

// SetClips records the number of clips in the composition
func (m *Metrics) SetClips(n int) {
	if m == nil {
		return
	}
	m.Clips.Set(float64(n))
}

// Activated records a clip activation
func (m *Metrics) Activated() {
	if m == nil {
		return
	}
	m.Activations.Inc()
	m.ActiveClips.Inc()
}

// Deactivated records a clip deactivation
func (m *Metrics) Deactivated() {
	if m == nil {
		return
	}
	m.Deactivations.Inc()
	m.ActiveClips.Dec()
}

// Spliced records the outcome of a splice
func (m *Metrics) Spliced(outcome string) {
	if m == nil {
		return
	}
	m.Splices.WithLabelValues(outcome).Inc()
}

// SourceFailed records a source failure for a clip type
func (m *Metrics) SourceFailed(kind string) {
	if m == nil {
		return
	}
	if kind == "" {
		kind = "null"
	}
	m.SourceErrors.WithLabelValues(kind).Inc()
}

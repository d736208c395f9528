package metrics

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/roman-kulish/drone-signal-synth/internal/signal"
	"github.com/roman-kulish/drone-signal-synth/internal/synth"
)

const namespace = "drone_synth"

// Collector bundles the Prometheus metrics of the synthesizer. It implements
// synth.Recorder so a Generator can drive it directly.
type Collector struct {
	gatherer prometheus.Gatherer

	Runs        *prometheus.CounterVec
	Ticks       *prometheus.CounterVec
	Accepted    *prometheus.CounterVec
	Skipped     *prometheus.CounterVec
	Derived     *prometheus.CounterVec
	RunDuration *prometheus.HistogramVec

	Frames prometheus.Counter
	Paused prometheus.Gauge
}

var _ synth.Recorder = (*Collector)(nil)

// NewCollector registers the synthesizer metrics against reg, defaulting to
// the global Prometheus registry when nil.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	runs, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "runs_total",
		Help:      "Total number of completed runs, labeled by drone.",
	}, []string{"drone"}), "runs_total")
	if err != nil {
		return nil, err
	}

	ticks, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ticks_total",
		Help:      "Total number of synthesis ticks, labeled by drone.",
	}, []string{"drone"}), "ticks_total")
	if err != nil {
		return nil, err
	}

	accepted, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "samples_accepted_total",
		Help:      "Drone emissions that passed validation and the signal type filter.",
	}, []string{"drone"}), "samples_accepted_total")
	if err != nil {
		return nil, err
	}

	skipped, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "samples_skipped_total",
		Help:      "Ticks dropped by the signal type filter.",
	}, []string{"drone"}), "samples_skipped_total")
	if err != nil {
		return nil, err
	}

	derived, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "samples_derived_total",
		Help:      "Samples added by the propagation stage, labeled by drone and source.",
	}, []string{"drone", "source"}), "samples_derived_total")
	if err != nil {
		return nil, err
	}

	duration, err := register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "run_duration_seconds",
		Help:      "Wall time spent synthesizing a run.",
		Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
	}, []string{"drone"}), "run_duration_seconds")
	if err != nil {
		return nil, err
	}

	frames, err := register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "viewer_frames_total",
		Help:      "Frames rendered by the viewer.",
	}), "viewer_frames_total")
	if err != nil {
		return nil, err
	}

	paused, err := register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "viewer_paused",
		Help:      "1 while the viewer is paused.",
	}), "viewer_paused")
	if err != nil {
		return nil, err
	}

	return &Collector{
		gatherer:    gatherer,
		Runs:        runs,
		Ticks:       ticks,
		Accepted:    accepted,
		Skipped:     skipped,
		Derived:     derived,
		RunDuration: duration,
		Frames:      frames,
		Paused:      paused,
	}, nil
}

// RecordRun implements synth.Recorder
func (c *Collector) RecordRun(droneID string, stats synth.RunStats) {
	if c == nil {
		return
	}

	c.Runs.WithLabelValues(droneID).Inc()
	c.Ticks.WithLabelValues(droneID).Add(float64(stats.Ticks))
	c.Accepted.WithLabelValues(droneID).Add(float64(stats.Accepted))
	c.Skipped.WithLabelValues(droneID).Add(float64(stats.Skipped))
	c.RunDuration.WithLabelValues(droneID).Observe(stats.Elapsed.Seconds())

	for _, source := range []signal.Source{signal.SourceMultipath, signal.SourceNoise, signal.SourceJamming} {
		c.Derived.WithLabelValues(droneID, source.String()).Add(float64(stats.Derived[source]))
	}
}

// FrameRendered counts one viewer frame
func (c *Collector) FrameRendered() {
	if c == nil {
		return
	}
	c.Frames.Inc()
}

// SetPaused reflects the viewer pause state
func (c *Collector) SetPaused(paused bool) {
	if c == nil {
		return
	}
	if paused {
		c.Paused.Set(1)
	} else {
		c.Paused.Set(0)
	}
}

// Handler exposes a ready-to-use /metrics handler
func (c *Collector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// register adds collector to reg, reusing an already registered collector of
// the same type.
func register[T prometheus.Collector](reg prometheus.Registerer, collector T, name string) (T, error) {
	if err := reg.Register(collector); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
			return collector, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return collector, err
	}
	return collector, nil
}

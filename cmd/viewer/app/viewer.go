package app

import (
	"context"
	"errors"
	"image"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/roman-kulish/drone-signal-synth/internal/metrics"
	"github.com/roman-kulish/drone-signal-synth/internal/synth"
)

const (
	defaultFrameInterval = 100 * time.Millisecond
	defaultHistorySize   = 500
)

// ErrStreamEnded is returned when the sample reader runs dry without an error
var ErrStreamEnded = errors.New("sample stream ended")

// FrameSink receives every rendered frame
type FrameSink func(img image.Image) error

// runCounter is implemented by readers that restart runs, like synth.Stream
type runCounter interface {
	Runs() int
}

// WithLogger sets the logger for the viewer
func WithLogger(logger *slog.Logger) func(*Viewer) {
	return func(v *Viewer) {
		v.logger = logger
	}
}

// WithMetrics reports rendered frames and the pause state to c
func WithMetrics(c *metrics.Collector) func(*Viewer) {
	return func(v *Viewer) {
		v.metrics = c
	}
}

// WithFrameInterval sets how often a sample is pulled and a frame rendered
func WithFrameInterval(d time.Duration) func(*Viewer) {
	return func(v *Viewer) {
		v.interval = d
	}
}

// WithHistory sets how many samples are kept on screen
func WithHistory(h *History) func(*Viewer) {
	return func(v *Viewer) {
		v.history = h
	}
}

// WithRunDuration shifts the samples of every restarted run by d, so the
// time axis keeps growing across runs
func WithRunDuration(d time.Duration) func(*Viewer) {
	return func(v *Viewer) {
		v.runDuration = d.Seconds()
	}
}

// Viewer pulls one sample per frame interval from a reader and renders the
// recent history. Pausing stops pulling without terminating.
type Viewer struct {
	reader   synth.SampleReader
	renderer *FrameRenderer
	sink     FrameSink
	history  *History

	interval    time.Duration
	runDuration float64

	paused atomic.Bool
	pulled atomic.Uint64

	// owned by the Run goroutine
	rendered       bool
	renderedPaused bool

	metrics *metrics.Collector
	logger  *slog.Logger
}

// NewViewer creates a viewer rendering frames of reader's samples to sink
func NewViewer(reader synth.SampleReader, renderer *FrameRenderer, sink FrameSink, options ...func(*Viewer)) *Viewer {
	v := Viewer{
		reader:   reader,
		renderer: renderer,
		sink:     sink,
		interval: defaultFrameInterval,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, option := range options {
		option(&v)
	}

	if v.history == nil {
		v.history, _ = NewHistory(defaultHistorySize)
	}
	if v.interval <= 0 {
		v.interval = defaultFrameInterval
	}

	return &v
}

// Run renders frames until ctx is done or the reader fails. Cancellation is
// a clean exit.
func (v *Viewer) Run(ctx context.Context) error {
	ticker := time.NewTicker(v.interval)
	defer ticker.Stop()

	v.logger.Info("viewer started", slog.Duration("interval", v.interval))

	for {
		select {
		case <-ctx.Done():
			v.logger.Info("viewer stopped", slog.Uint64("samples", v.pulled.Load()))
			return nil
		case <-ticker.C:
		}

		if err := v.Step(ctx); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
				v.logger.Info("viewer stopped", slog.Uint64("samples", v.pulled.Load()))
				return nil
			}
			return err
		}
	}
}

// Step pulls one sample, unless paused, and renders a frame. While paused a
// frame is only rendered once, to show the new status.
func (v *Viewer) Step(ctx context.Context) error {
	paused := v.paused.Load()

	if !paused {
		if !v.reader.Next(ctx) {
			if err := v.reader.Error(); err != nil {
				return err
			}
			return ErrStreamEnded
		}

		s := v.reader.Current()
		s.Time += v.runOffset()

		v.history.Add(s)
		v.renderer.Observe(s)
		v.pulled.Add(1)
	} else if v.rendered && v.renderedPaused {
		return nil
	}

	return v.render(paused)
}

func (v *Viewer) render(paused bool) error {
	status := Status{
		Paused: paused,
		Clock:  time.Now(),
		Pulled: v.pulled.Load(),
	}
	if rc, ok := v.reader.(runCounter); ok {
		status.Runs = rc.Runs()
	}

	img, err := v.renderer.Render(v.history.Snapshot(), status)
	if err != nil {
		return err
	}
	if err = v.sink(img); err != nil {
		return err
	}

	v.metrics.FrameRendered()
	v.rendered, v.renderedPaused = true, paused
	return nil
}

func (v *Viewer) runOffset() float64 {
	rc, ok := v.reader.(runCounter)
	if !ok || v.runDuration <= 0 {
		return 0
	}
	return float64(max(rc.Runs()-1, 0)) * v.runDuration
}

// Pause stops pulling samples
func (v *Viewer) Pause() {
	v.setPaused(true)
}

// Resume continues pulling samples
func (v *Viewer) Resume() {
	v.setPaused(false)
}

// Toggle flips between paused and running
func (v *Viewer) Toggle() {
	for {
		old := v.paused.Load()
		if v.paused.CompareAndSwap(old, !old) {
			v.reportPaused(!old)
			return
		}
	}
}

func (v *Viewer) IsPaused() bool {
	return v.paused.Load()
}

// Pulled returns the number of samples consumed so far
func (v *Viewer) Pulled() uint64 {
	return v.pulled.Load()
}

func (v *Viewer) setPaused(paused bool) {
	if v.paused.Swap(paused) != paused {
		v.reportPaused(paused)
	}
}

func (v *Viewer) reportPaused(paused bool) {
	v.metrics.SetPaused(paused)
	if paused {
		v.logger.Info("paused")
	} else {
		v.logger.Info("resumed")
	}
}

package synth

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"math/rand/v2"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/roman-kulish/drone-signal-synth/internal/profile"
	"github.com/roman-kulish/drone-signal-synth/internal/propagation"
	"github.com/roman-kulish/drone-signal-synth/internal/signal"
)

// Recorder receives the outcome of every completed run
type Recorder interface {
	RecordRun(droneID string, stats RunStats)
}

// RunStats summarises a single run
type RunStats struct {
	Ticks    int
	Accepted int
	Skipped  int
	Derived  map[signal.Source]int
	Elapsed  time.Duration
}

// Config describes a synthesis run
type Config struct {
	DroneID     string
	Duration    time.Duration
	Rate        int                // Ticks per second; DefaultRate when zero
	SignalType  profile.SignalType // Only keep samples of this type; any when empty
	Distance    float64            // Meters
	Environment Environment

	JamProbability        *float64  // propagation.DefaultJamProbability when nil
	BackgroundFrequencies []float64 // propagation.DefaultBackgroundFrequencies when empty
}

// Ticks is the number of ticks a run is driven for
func (c *Config) Ticks() int {
	rate := c.Rate
	if rate <= 0 {
		rate = DefaultRate
	}
	return int(math.Round(c.Duration.Seconds() * float64(rate)))
}

// WithGeneratorRand sets the random source shared by the synthesizer and the
// propagation stage
func WithGeneratorRand(rng *rand.Rand) func(*Generator) {
	return func(g *Generator) {
		g.rng = rng
	}
}

// WithSeed seeds a private random source for reproducible runs
func WithSeed(seed uint64) func(*Generator) {
	return func(g *Generator) {
		g.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	}
}

// WithRecorder sets the recorder notified after each run
func WithRecorder(r Recorder) func(*Generator) {
	return func(g *Generator) {
		g.recorder = r
	}
}

// WithLogger sets the logger for the generator
func WithLogger(logger *slog.Logger) func(*Generator) {
	return func(g *Generator) {
		g.logger = logger.With(slog.String("drone", g.config.DroneID))
	}
}

// Generator drives a synthesizer for a whole run and expands the result with
// propagation effects. Runs share the generator's random source, so a
// Generator must stay on one goroutine.
type Generator struct {
	store  *profile.Store
	config Config

	rng      *rand.Rand
	recorder Recorder
	logger   *slog.Logger
}

// NewGenerator creates a generator for config using profiles from store
func NewGenerator(store *profile.Store, config Config, options ...func(*Generator)) *Generator {
	g := Generator{
		store:  store,
		config: config,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	if g.config.Rate <= 0 {
		g.config.Rate = DefaultRate
	}

	for _, option := range options {
		option(&g)
	}

	if g.rng == nil {
		g.rng = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0))
	}

	return &g
}

// Config returns the run configuration
func (g *Generator) Config() Config {
	return g.config
}

// Run synthesizes one batch of samples, validates every drone emission and
// returns the batch expanded with multipath, noise and jamming samples.
func (g *Generator) Run(ctx context.Context) ([]signal.Sample, error) {
	start := time.Now()

	p, err := g.store.Lookup(g.config.DroneID)
	if err != nil {
		return nil, err
	}

	if g.config.SignalType != "" {
		if err = signal.ValidateType(&p, g.config.SignalType); err != nil {
			return nil, err
		}
	}

	synth, err := NewSynthesizer(p, g.config.Environment, g.config.Distance,
		WithRand(g.rng),
		WithTickDuration(time.Second/time.Duration(g.config.Rate)))
	if err != nil {
		return nil, err
	}

	ticks := g.config.Ticks()
	stats := RunStats{Ticks: ticks}
	batch := make([]signal.Sample, 0, ticks)

	for tick := 0; tick < ticks; tick++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		sample, ok, err := synth.Synthesize(tick, g.config.SignalType)
		if err != nil {
			return nil, fmt.Errorf("synthesizing %s: %w", p.ID, err)
		}
		if !ok {
			stats.Skipped++
			continue
		}

		batch = append(batch, sample)
	}
	stats.Accepted = len(batch)

	effects := propagation.Effects{
		Rand:                  g.rng,
		JamProbability:        g.config.JamProbability,
		BackgroundFrequencies: g.config.BackgroundFrequencies,
	}
	expanded := effects.Apply(batch)

	stats.Derived = make(map[signal.Source]int)
	for _, s := range expanded[len(batch):] {
		stats.Derived[s.Source]++
	}
	stats.Elapsed = time.Since(start)

	if g.recorder != nil {
		g.recorder.RecordRun(p.ID, stats)
	}

	g.logger.Info("run completed",
		slog.Group("run",
			slog.String("ticks", humanize.Comma(int64(stats.Ticks))),
			slog.String("accepted", humanize.Comma(int64(stats.Accepted))),
			slog.String("skipped", humanize.Comma(int64(stats.Skipped))),
			slog.String("total", humanize.Comma(int64(len(expanded)))),
			slog.Duration("elapsed", stats.Elapsed),
		))

	return expanded, nil
}

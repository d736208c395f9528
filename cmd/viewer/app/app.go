package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/roman-kulish/drone-signal-synth/internal/metrics"
	"github.com/roman-kulish/drone-signal-synth/internal/profile"
	"github.com/roman-kulish/drone-signal-synth/internal/synth"
)

const shutdownTimeout = 5 * time.Second

// Run streams samples of the configured drone into frames until ctx is done
func Run(ctx context.Context, config *Config, logger *slog.Logger) error {
	profiles, err := loadProfiles(config.Profiles)
	if err != nil {
		return fmt.Errorf("failed to load profiles: %w", err)
	}
	drone, err := profiles.Lookup(config.Drone)
	if err != nil {
		return err
	}

	runConfig, err := config.SynthConfig(&drone)
	if err != nil {
		return fmt.Errorf("invalid run configuration: %w", err)
	}

	var collector *metrics.Collector
	if config.MetricsAddr != "" {
		if collector, err = metrics.NewCollector(prometheus.NewRegistry()); err != nil {
			return fmt.Errorf("creating metrics collector: %w", err)
		}
		stop := serveMetrics(config.MetricsAddr, collector, logger)
		defer stop()
	}

	options := []func(*synth.Generator){synth.WithLogger(logger)}
	if collector != nil {
		options = append(options, synth.WithRecorder(collector))
	}
	if config.Seed != nil {
		options = append(options, synth.WithSeed(*config.Seed))
	}
	stream := synth.NewGenerator(profiles, runConfig, options...).Stream()

	renderer, err := NewFrameRenderer(FrameConfig{
		Width:  config.Width,
		Height: config.Height,
		Theme:  config.Theme,
		Drone:  config.Drone,
		Mode:   config.Mode,
	})
	if err != nil {
		return err
	}
	defer renderer.Close()

	history, err := NewHistory(config.History)
	if err != nil {
		return err
	}

	viewer := NewViewer(stream, renderer, WriteFrame(config.FramePath),
		WithLogger(logger),
		WithMetrics(collector),
		WithHistory(history),
		WithFrameInterval(config.FrameInterval),
		WithRunDuration(config.Duration),
	)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go viewer.WatchControls(ctx, config.Input, config.Signals)

	logger.Info("rendering frames",
		slog.Group("viewer",
			slog.String("drone", config.Drone),
			slog.String("mode", config.Mode),
			slog.String("frame", config.FramePath),
			slog.Duration("interval", config.FrameInterval),
		))

	return viewer.Run(ctx)
}

func loadProfiles(path string) (*profile.Store, error) {
	if path == "" {
		return profile.Default()
	}
	return profile.LoadFile(path)
}

// serveMetrics exposes /metrics on addr and returns a func shutting it down
func serveMetrics(addr string, collector *metrics.Collector, logger *slog.Logger) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())
	server := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		logger.Info("serving metrics", slog.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error(fmt.Sprintf("metrics server: %s", err.Error()))
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = server.Shutdown(ctx)
	}
}

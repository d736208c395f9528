package app

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/roman-kulish/drone-signal-synth/internal/profile"
	"github.com/roman-kulish/drone-signal-synth/internal/render"
	"github.com/roman-kulish/drone-signal-synth/internal/signal"
	"github.com/roman-kulish/drone-signal-synth/internal/synth"
)

const (
	defaultDrone       = "Orlan-10"
	defaultDuration    = 60 * time.Second
	defaultMode        = "Telemetry"
	defaultDistance    = 1000.0
	defaultEnvironment = "urban"
	defaultFramePath   = "viewer_frame.png"
	defaultWidth       = 1500
	defaultHeight      = 1000

	modeAny = "any"
)

type Config struct {
	Drone         string
	Duration      time.Duration
	Mode          string
	Distance      float64
	Environment   string
	Profiles      string
	Seed          *uint64
	FramePath     string
	FrameInterval time.Duration
	History       int
	Theme         render.ColorTheme
	Width         int
	Height        int
	MetricsAddr   string
	LogLevel      slog.Level

	// Pause controls, set by main
	Input   io.Reader
	Signals <-chan os.Signal
}

func NewConfig() *Config {
	return &Config{
		Drone:         defaultDrone,
		Duration:      defaultDuration,
		Mode:          defaultMode,
		Distance:      defaultDistance,
		Environment:   defaultEnvironment,
		FramePath:     defaultFramePath,
		FrameInterval: defaultFrameInterval,
		History:       defaultHistorySize,
		Theme:         render.ViridisTheme,
		Width:         defaultWidth,
		Height:        defaultHeight,
	}
}

func NewConfigFromCLI() (*Config, error) {
	return NewConfigFromArgs(os.Args[1:])
}

// NewConfigFromArgs parses command line arguments, without the program name
func NewConfigFromArgs(args []string) (*Config, error) {
	c := NewConfig()
	fs := flag.NewFlagSet("viewer", flag.ContinueOnError)

	var theme, logLevel string
	var seed uint64
	fs.StringVar(&c.Drone, "drone", defaultDrone, "Drone profile to simulate")
	fs.DurationVar(&c.Duration, "duration", defaultDuration, "Duration of one run; the stream restarts runs endlessly")
	fs.StringVar(&c.Mode, "mode", defaultMode, "Signal type to show, one of the drone's signal types or any")
	fs.Float64Var(&c.Distance, "distance", defaultDistance, "Distance to the drone in meters")
	fs.StringVar(&c.Environment, "env", defaultEnvironment, "Environment. [urban, open-field, mountainous]")
	fs.StringVar(&c.Profiles, "profiles", "", "Optional YAML profiles table replacing the built-in one")
	fs.Uint64Var(&seed, "seed", 0, "Fixed seed for reproducible output")
	fs.StringVar(&c.FramePath, "frame", defaultFramePath, "Path of the PNG frame, replaced on every frame")
	fs.DurationVar(&c.FrameInterval, "interval", defaultFrameInterval, "Frame interval; one sample is pulled per frame")
	fs.IntVar(&c.History, "history", defaultHistorySize, "Number of recent samples on screen")
	fs.StringVar(&theme, "theme", string(render.ViridisTheme), "Heatmap color theme")
	fs.IntVar(&c.Width, "width", defaultWidth, "Frame width in pixels")
	fs.IntVar(&c.Height, "height", defaultHeight, "Frame height in pixels")
	fs.StringVar(&c.MetricsAddr, "metrics", "", "Serve Prometheus metrics on this address, e.g. :9090")
	fs.StringVar(&logLevel, "log-level", "info", "Log level. [debug, info, warn, error]")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "seed" {
			c.Seed = &seed
		}
	})

	var err error
	if c.Theme, err = render.ParseColorTheme(theme); err == nil {
		if err = c.LogLevel.UnmarshalText([]byte(logLevel)); err == nil {
			err = c.Validate()
		}
	}
	if err != nil {
		fs.Usage()
		return nil, err
	}
	return c, nil
}

func (c *Config) Validate() error {
	switch {
	case c.Drone == "":
		return errors.New("drone is required")
	case c.Duration <= 0:
		return fmt.Errorf("duration must be positive: %s", c.Duration)
	case c.Distance <= 0:
		return fmt.Errorf("distance must be positive: %v", c.Distance)
	case c.FramePath == "":
		return errors.New("frame path is required")
	case c.FrameInterval <= 0:
		return fmt.Errorf("frame interval must be positive: %s", c.FrameInterval)
	case c.History <= 0:
		return fmt.Errorf("history must be positive: %d", c.History)
	case c.Width < minWidth || c.Height < minHeight:
		return fmt.Errorf("frame must be at least %dx%d: %dx%d given", minWidth, minHeight, c.Width, c.Height)
	}

	if _, err := synth.ParseEnvironmentKind(c.Environment); err != nil {
		return err
	}
	return nil
}

// SignalType resolves the mode against the signal types p declares,
// ignoring case; "any" means no filter
func (c *Config) SignalType(p *profile.Profile) (profile.SignalType, error) {
	if c.Mode == "" || strings.EqualFold(c.Mode, modeAny) {
		return "", nil
	}
	for _, t := range p.SignalTypes {
		if strings.EqualFold(t.String(), c.Mode) {
			return t, nil
		}
	}
	return "", signal.ValidateType(p, profile.SignalType(c.Mode))
}

// SynthConfig converts the flags into a generator configuration for p with
// the default environment losses
func (c *Config) SynthConfig(p *profile.Profile) (synth.Config, error) {
	signalType, err := c.SignalType(p)
	if err != nil {
		return synth.Config{}, err
	}
	kind, err := synth.ParseEnvironmentKind(c.Environment)
	if err != nil {
		return synth.Config{}, err
	}

	return synth.Config{
		DroneID:     c.Drone,
		Duration:    c.Duration,
		SignalType:  signalType,
		Distance:    c.Distance,
		Environment: synth.NewEnvironment(kind, synth.DefaultLosses()),
	}, nil
}

package app

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/roman-kulish/drone-signal-synth/internal/export"
	"github.com/roman-kulish/drone-signal-synth/internal/profile"
	"github.com/roman-kulish/drone-signal-synth/internal/synth"
)

const (
	defaultDrone       = "Orlan-10"
	defaultDuration    = Duration(60 * time.Second)
	defaultDistance    = 1000.0
	defaultEnvironment = "urban"
)

// Duration is a time.Duration written as "30s", "2m" in YAML and JSON
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	duration, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("app.Duration: failed to parse: %s", err)
	}

	*d = Duration(duration)
	return nil
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return d.String(), nil
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d Duration) String() string {
	return time.Duration(d).String()
}

// Config represents the main application configuration
type Config struct {
	Settings Settings     `yaml:"settings"`
	Run      RunConfig    `yaml:"run"`
	Output   OutputConfig `yaml:"output"`
	Profiles string       `yaml:"profiles"` // Optional YAML profiles table replacing the built-in one
}

// Settings represents global application settings
type Settings struct {
	LogLevel string  `yaml:"logLevel"`
	Seed     *uint64 `yaml:"seed"` // Fixed seed for reproducible runs
}

// Level parses the configured log level; empty means info
func (s *Settings) Level() (slog.Level, error) {
	var level slog.Level
	if s.LogLevel == "" {
		return level, nil
	}
	if err := level.UnmarshalText([]byte(s.LogLevel)); err != nil {
		return level, fmt.Errorf("invalid log level %q: %w", s.LogLevel, err)
	}
	return level, nil
}

// RunConfig describes the synthesis run
type RunConfig struct {
	Drone                 string             `yaml:"drone" json:"drone"`
	Duration              Duration           `yaml:"duration" json:"duration"`
	Rate                  int                `yaml:"rate" json:"rate,omitempty"`             // Ticks per second
	SignalType            profile.SignalType `yaml:"signalType" json:"signalType,omitempty"` // One of the drone's signal types, any when empty
	Distance              float64            `yaml:"distance" json:"distance"`               // Meters
	Environment           string             `yaml:"environment" json:"environment"`
	Losses                map[string]float64 `yaml:"losses" json:"losses,omitempty"` // Attenuation per environment kind, dB
	JamProbability        *float64           `yaml:"jamProbability" json:"jamProbability,omitempty"` // Default when unset
	BackgroundFrequencies []float64          `yaml:"backgroundFrequencies" json:"backgroundFrequencies,omitempty"` // MHz
}

// OutputConfig represents sink settings
type OutputConfig struct {
	CSV           string   `yaml:"csv"`           // CSV path, <drone>_optimized_signal.csv when empty
	Columns       []string `yaml:"columns"`       // CSV columns in order, all when empty
	DataDirectory string   `yaml:"dataDirectory"` // Store the run in a sqlite database under this directory
}

// LoadConfig reads, defaults and validates a YAML configuration file
func LoadConfig(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var config Config

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err = dec.Decode(&config); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}

	config.applyDefaults()
	if err = config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.Run.Drone == "" {
		c.Run.Drone = defaultDrone
	}
	if c.Run.Duration == 0 {
		c.Run.Duration = defaultDuration
	}
	if c.Run.Distance == 0 {
		c.Run.Distance = defaultDistance
	}
	if c.Run.Environment == "" {
		c.Run.Environment = defaultEnvironment
	}
	if c.Output.CSV == "" {
		c.Output.CSV = export.DefaultFileName(c.Run.Drone)
	}
}

func (c *Config) Validate() error {
	if _, err := c.Settings.Level(); err != nil {
		return fmt.Errorf("app.Config: %w", err)
	}
	if err := c.Run.Validate(); err != nil {
		return err
	}
	if _, err := export.ParseColumns(c.Output.Columns); err != nil {
		return fmt.Errorf("app.Config: %w", err)
	}
	return nil
}

func (c *RunConfig) Validate() error {
	if c.Duration <= 0 {
		return fmt.Errorf("app.RunConfig: duration must be positive: %s", c.Duration)
	}
	if c.Rate < 0 {
		return fmt.Errorf("app.RunConfig: rate must not be negative: %d", c.Rate)
	}
	if c.Distance <= 0 {
		return fmt.Errorf("app.RunConfig: distance must be positive: %v", c.Distance)
	}
	if p := c.JamProbability; p != nil && (*p < 0 || *p > 1) {
		return fmt.Errorf("app.RunConfig: jam probability must be between 0 and 1: %0.2f given", *p)
	}

	if _, err := c.environment(); err != nil {
		return fmt.Errorf("app.RunConfig: %w", err)
	}
	return nil
}

// SynthConfig converts the run section into a generator configuration
func (c *RunConfig) SynthConfig() (synth.Config, error) {
	env, err := c.environment()
	if err != nil {
		return synth.Config{}, err
	}

	return synth.Config{
		DroneID:               c.Drone,
		Duration:              time.Duration(c.Duration),
		Rate:                  c.Rate,
		SignalType:            c.SignalType,
		Distance:              c.Distance,
		Environment:           env,
		JamProbability:        c.JamProbability,
		BackgroundFrequencies: c.BackgroundFrequencies,
	}, nil
}

// environment resolves the environment kind and merges configured losses
// over the defaults
func (c *RunConfig) environment() (synth.Environment, error) {
	kind, err := synth.ParseEnvironmentKind(c.Environment)
	if err != nil {
		return synth.Environment{}, err
	}

	losses := synth.DefaultLosses()
	for name, loss := range c.Losses {
		k, err := synth.ParseEnvironmentKind(name)
		if err != nil {
			return synth.Environment{}, fmt.Errorf("losses: %w", err)
		}
		losses[k] = loss
	}

	return synth.NewEnvironment(kind, losses), nil
}

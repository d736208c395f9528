package app

import (
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/roman-kulish/drone-signal-synth/internal/profile"
	"github.com/roman-kulish/drone-signal-synth/internal/render"
	"github.com/roman-kulish/drone-signal-synth/internal/signal"
	"github.com/roman-kulish/drone-signal-synth/internal/synth"
)

func testProfile() *profile.Profile {
	return &profile.Profile{
		ID:          "Racer-5",
		SignalTypes: []profile.SignalType{profile.SignalTelemetry, "FPV"},
	}
}

func TestConfig_SignalType(t *testing.T) {
	testCases := []struct {
		mode string
		want profile.SignalType
	}{
		{mode: "any", want: ""},
		{mode: "ANY", want: ""},
		{mode: "", want: ""},
		{mode: "Telemetry", want: profile.SignalTelemetry},
		{mode: "telemetry", want: profile.SignalTelemetry},
		{mode: "fpv", want: "FPV"},
	}

	for _, tc := range testCases {
		t.Run(tc.mode, func(t *testing.T) {
			c := Config{Mode: tc.mode}
			got, err := c.SignalType(testProfile())
			if err != nil {
				t.Fatalf("SignalType: %v", err)
			}
			if got != tc.want {
				t.Errorf("SignalType(%q) = %q; want %q", tc.mode, got, tc.want)
			}
		})
	}
}

func TestConfig_SignalTypeUnsupported(t *testing.T) {
	// a free-form mode passes flag validation and is checked against the drone
	c, err := NewConfigFromArgs([]string{"-mode", "Video"})
	if err != nil {
		t.Fatalf("NewConfigFromArgs: %v", err)
	}

	if _, err = c.SynthConfig(testProfile()); !errors.Is(err, signal.ErrUnsupportedSignalType) {
		t.Errorf("Expected ErrUnsupportedSignalType, got %v", err)
	}
}

func TestNewConfigFromArgs_Defaults(t *testing.T) {
	c, err := NewConfigFromArgs(nil)
	if err != nil {
		t.Fatalf("NewConfigFromArgs: %v", err)
	}

	if c.Drone != defaultDrone || c.Duration != defaultDuration || c.FrameInterval != defaultFrameInterval {
		t.Errorf("Unexpected defaults %+v", c)
	}
	if c.Seed != nil {
		t.Error("Expected no seed by default")
	}
	if c.LogLevel != slog.LevelInfo {
		t.Errorf("Expected info level, got %v", c.LogLevel)
	}

	rc, err := c.SynthConfig(testProfile())
	if err != nil {
		t.Fatalf("SynthConfig: %v", err)
	}
	if rc.SignalType != profile.SignalTelemetry || rc.Environment.Kind != synth.EnvironmentUrban {
		t.Errorf("Unexpected run config %+v", rc)
	}
}

func TestNewConfigFromArgs(t *testing.T) {
	c, err := NewConfigFromArgs([]string{
		"-drone", "Supercam-S350", "-duration", "2m", "-mode", "any", "-env", "field",
		"-interval", "250ms", "-history", "100", "-theme", "thermal", "-seed", "7",
		"-log-level", "debug", "-metrics", ":9090",
	})
	if err != nil {
		t.Fatalf("NewConfigFromArgs: %v", err)
	}

	if c.Drone != "Supercam-S350" || c.Duration != 2*time.Minute || c.History != 100 || c.MetricsAddr != ":9090" {
		t.Errorf("Unexpected config %+v", c)
	}
	if c.Seed == nil || *c.Seed != 7 {
		t.Error("Expected seed 7")
	}
	if c.Theme != render.ThermalTheme || c.LogLevel != slog.LevelDebug {
		t.Errorf("Unexpected theme or level: %s, %v", c.Theme, c.LogLevel)
	}

	rc, err := c.SynthConfig(testProfile())
	if err != nil {
		t.Fatalf("SynthConfig: %v", err)
	}
	if rc.SignalType != "" || rc.Environment.Kind != synth.EnvironmentOpenField {
		t.Errorf("Unexpected run config %+v", rc)
	}
}

func TestNewConfigFromArgs_Invalid(t *testing.T) {
	testCases := map[string][]string{
		"environment": {"-env", "swamp"},
		"distance":    {"-distance", "0"},
		"duration":    {"-duration", "0s"},
		"interval":    {"-interval", "0s"},
		"history":     {"-history", "0"},
		"theme":       {"-theme", "rainbow"},
		"size":        {"-width", "100"},
		"log level":   {"-log-level", "loud"},
		"frame":       {"-frame", ""},
	}

	for name, args := range testCases {
		t.Run(name, func(t *testing.T) {
			if _, err := NewConfigFromArgs(args); err == nil {
				t.Errorf("Expected an error for %v", args)
			}
		})
	}
}

package app

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/roman-kulish/drone-signal-synth/internal/export"
	"github.com/roman-kulish/drone-signal-synth/internal/profile"
	"github.com/roman-kulish/drone-signal-synth/internal/signal"
	"github.com/roman-kulish/drone-signal-synth/internal/storage"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testRunConfig(t *testing.T) *Config {
	t.Helper()

	seed := uint64(3)
	dir := t.TempDir()

	config := Config{
		Settings: Settings{Seed: &seed},
		Run: RunConfig{
			Drone:    "Orlan-10",
			Duration: Duration(2 * time.Second),
		},
		Output: OutputConfig{
			CSV:     filepath.Join(dir, "out.csv"),
			Columns: []string{"Time (s)", "Frequency", "RSSI"},
		},
	}
	config.applyDefaults()
	return &config
}

func TestRun_WritesCSV(t *testing.T) {
	config := testRunConfig(t)

	if err := Run(context.Background(), config, discardLogger()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	data, err := os.ReadFile(config.Output.CSV)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}

	// 20 emissions plus at least one reflection each
	if len(records) < 1+40 {
		t.Fatalf("Expected header and at least 40 rows, got %d records", len(records))
	}
	header := records[0]
	if len(header) != 3 || header[0] != "Time (s)" || header[1] != "Frequency" || header[2] != "RSSI" {
		t.Errorf("Unexpected header %v", header)
	}
}

func TestRun_InvalidColumnBeforeGeneration(t *testing.T) {
	config := testRunConfig(t)
	config.Output.Columns = []string{"Foo"}

	err := Run(context.Background(), config, discardLogger())
	if !errors.Is(err, export.ErrInvalidColumnSelection) {
		t.Fatalf("Expected ErrInvalidColumnSelection, got %v", err)
	}
	if _, err = os.Stat(config.Output.CSV); !os.IsNotExist(err) {
		t.Errorf("Expected no CSV output, stat returned %v", err)
	}
}

func TestRun_UnknownDrone(t *testing.T) {
	config := testRunConfig(t)
	config.Run.Drone = "Foo"

	if err := Run(context.Background(), config, discardLogger()); !errors.Is(err, profile.ErrUnknownDrone) {
		t.Fatalf("Expected ErrUnknownDrone, got %v", err)
	}
}

const fpvProfiles = `
drones:
  - id: Racer-5
    frequencyRanges:
      - { start: 5725.0, end: 5875.0 }
    signalTypes: [FPV]
    dopplerShiftRate: 10
    bandwidths: [20]
    strength: { min: -90, max: -40 }
`

func TestRun_CustomSignalType(t *testing.T) {
	config := testRunConfig(t)
	config.Profiles = filepath.Join(t.TempDir(), "profiles.yaml")
	if err := os.WriteFile(config.Profiles, []byte(fpvProfiles), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	config.Run.Drone = "Racer-5"
	config.Run.SignalType = "FPV"
	config.Output.Columns = []string{"Signal Type"}

	if err := Run(context.Background(), config, discardLogger()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	data, err := os.ReadFile(config.Output.CSV)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(records) < 2 {
		t.Fatalf("Expected rows, got %d records", len(records))
	}
	for _, record := range records[1:] {
		if record[0] != "FPV" {
			t.Fatalf("Expected only FPV rows, got %q", record[0])
		}
	}
}

func TestRun_UnsupportedSignalType(t *testing.T) {
	config := testRunConfig(t)
	config.Run.SignalType = "Audio"

	err := Run(context.Background(), config, discardLogger())
	if !errors.Is(err, signal.ErrUnsupportedSignalType) {
		t.Fatalf("Expected ErrUnsupportedSignalType, got %v", err)
	}
}

func TestRun_StoresSession(t *testing.T) {
	config := testRunConfig(t)
	config.Output.DataDirectory = t.TempDir()

	if err := Run(context.Background(), config, discardLogger()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	matches, err := filepath.Glob(filepath.Join(config.Output.DataDirectory, "synth_session_*.sqlite"))
	if err != nil || len(matches) != 1 {
		t.Fatalf("Expected one database file, got %v (%v)", matches, err)
	}

	store := storage.NewSqliteStore(matches[0])
	defer store.Close()

	sessions, err := store.Sessions(context.Background())
	if err != nil {
		t.Fatalf("Sessions: %v", err)
	}
	if len(sessions) != 1 || sessions[0].DroneID != "Orlan-10" || sessions[0].Config == nil {
		t.Fatalf("Unexpected sessions %+v", sessions)
	}

	r, err := store.ReadSamples(context.Background(), sessions[0].ID)
	if err != nil {
		t.Fatalf("ReadSamples: %v", err)
	}
	defer r.Close()

	n := 0
	for r.Next(context.Background()) {
		n++
	}
	if err = r.Error(); err != nil {
		t.Fatalf("reader: %v", err)
	}
	if n < 40 {
		t.Errorf("Expected at least 40 stored samples, got %d", n)
	}
}

func TestRun_MissingDataDirectory(t *testing.T) {
	config := testRunConfig(t)
	config.Output.DataDirectory = filepath.Join(t.TempDir(), "missing")

	if err := Run(context.Background(), config, discardLogger()); err == nil {
		t.Fatal("Expected an error for a missing storage directory")
	}
}

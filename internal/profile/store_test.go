package profile

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

func TestDefault_ContainsOrlan(t *testing.T) {
	store, err := Default()
	if err != nil {
		t.Fatalf("Failed to load default profiles: %v", err)
	}

	p, err := store.Lookup("Orlan-10")
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}

	if len(p.FrequencyRanges) != 2 {
		t.Errorf("Expected 2 frequency ranges, got %d", len(p.FrequencyRanges))
	}
	if !slices.Equal(p.Bandwidths, []float64{2.2, 7, 1, 4.5}) {
		t.Errorf("Unexpected bandwidths: %v", p.Bandwidths)
	}
	if p.Strength.Min != -100 || p.Strength.Max != -50 {
		t.Errorf("Unexpected strength envelope: %+v", p.Strength)
	}
	if p.Metadata.MotorModel != "T-Motor U8" {
		t.Errorf("Expected metadata to pass through, got %+v", p.Metadata)
	}
}

func TestLookup_UnknownDrone(t *testing.T) {
	store, err := Default()
	if err != nil {
		t.Fatalf("Failed to load default profiles: %v", err)
	}

	if _, err = store.Lookup("Foo"); !errors.Is(err, ErrUnknownDrone) {
		t.Fatalf("Expected ErrUnknownDrone, got %v", err)
	}
}

func TestLookup_ReturnsCopy(t *testing.T) {
	store, err := NewStore(Profile{
		ID:              "copy",
		FrequencyRanges: []Interval{{Start: 1, End: 2}},
		Bandwidths:      []float64{1},
		Strength:        StrengthRange{Min: -100, Max: -50},
	})
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}

	p, _ := store.Lookup("copy")
	p.Bandwidths[0] = 99
	p.FrequencyRanges[0].End = 1000

	again, _ := store.Lookup("copy")
	if again.Bandwidths[0] != 1 || again.FrequencyRanges[0].End != 2 {
		t.Errorf("Store was mutated through a looked up profile: %+v", again)
	}
}

func TestNewStore_DefaultSignalTypes(t *testing.T) {
	store, err := NewStore(Profile{
		ID:              "no-types",
		FrequencyRanges: []Interval{{Start: 1, End: 2}},
		Bandwidths:      []float64{1},
		Strength:        StrengthRange{Min: -100, Max: -50},
	})
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}

	p, _ := store.Lookup("no-types")
	if !slices.Equal(p.SignalTypes, []SignalType{SignalTelemetry, SignalVideo}) {
		t.Errorf("Expected default signal types, got %v", p.SignalTypes)
	}
}

func TestLoad_RejectsMalformedProfiles(t *testing.T) {
	testCases := []struct {
		name string
		yaml string
	}{
		{"start after end", `
drones:
  - id: bad
    frequencyRanges: [{start: 440, end: 430}]
    bandwidths: [1]
    strength: {min: -100, max: -50}
`},
		{"min above max", `
drones:
  - id: bad
    frequencyRanges: [{start: 430, end: 440}]
    bandwidths: [1]
    strength: {min: -40, max: -50}
`},
		{"empty bandwidths", `
drones:
  - id: bad
    frequencyRanges: [{start: 430, end: 440}]
    bandwidths: []
    strength: {min: -100, max: -50}
`},
		{"no frequency ranges", `
drones:
  - id: bad
    bandwidths: [1]
    strength: {min: -100, max: -50}
`},
		{"negative doppler rate", `
drones:
  - id: bad
    frequencyRanges: [{start: 430, end: 440}]
    dopplerShiftRate: -1
    bandwidths: [1]
    strength: {min: -100, max: -50}
`},
		{"duplicate id", `
drones:
  - id: dup
    frequencyRanges: [{start: 430, end: 440}]
    bandwidths: [1]
    strength: {min: -100, max: -50}
  - id: dup
    frequencyRanges: [{start: 430, end: 440}]
    bandwidths: [1]
    strength: {min: -100, max: -50}
`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tc.yaml))
			if !errors.Is(err, ErrInvalidProfile) {
				t.Errorf("Expected ErrInvalidProfile, got %v", err)
			}
		})
	}
}

func TestLoad_RejectsUnknownFields(t *testing.T) {
	_, err := Load(strings.NewReader(`
drones:
  - id: typo
    frequencyRange: [{start: 430, end: 440}]
`))
	if err == nil {
		t.Fatal("Expected error for unknown field")
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "drones.yaml")
	if err := os.WriteFile(path, defaultTable, 0o644); err != nil {
		t.Fatalf("Failed to write profiles: %v", err)
	}

	store, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	ids := store.IDs()
	if !slices.IsSorted(ids) || len(ids) != 4 {
		t.Errorf("Expected 4 sorted ids, got %v", ids)
	}
}

func TestProfile_Nearest(t *testing.T) {
	p := Profile{FrequencyRanges: []Interval{{Start: 430, End: 435}, {Start: 900, End: 910}}}

	testCases := []struct {
		in, want float64
	}{
		{432, 432},
		{429.999, 430},
		{436, 435},
		{800, 900},
		{2000, 910},
	}
	for _, tc := range testCases {
		if got := p.Nearest(tc.in); got != tc.want {
			t.Errorf("Nearest(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

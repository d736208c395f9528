package synth

import (
	"errors"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/roman-kulish/drone-signal-synth/internal/profile"
	"github.com/roman-kulish/drone-signal-synth/internal/signal"
)

func seeded(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed+1))
}

func urban() Environment {
	return NewEnvironment(EnvironmentUrban, DefaultLosses())
}

func TestSynthesize_StaysWithinEnvelope(t *testing.T) {
	store, err := profile.Default()
	if err != nil {
		t.Fatalf("Failed to load default profiles: %v", err)
	}

	kinds := []EnvironmentKind{EnvironmentUrban, EnvironmentOpenField, EnvironmentMountainous}
	distances := []float64{1, 50, 1000, 20_000}

	for _, id := range store.IDs() {
		p, err := store.Lookup(id)
		if err != nil {
			t.Fatalf("Lookup %s: %v", id, err)
		}

		for _, kind := range kinds {
			for _, distance := range distances {
				s, err := NewSynthesizer(p, NewEnvironment(kind, DefaultLosses()), distance, WithRand(seeded(42)))
				if err != nil {
					t.Fatalf("NewSynthesizer: %v", err)
				}

				for tick := 0; tick < 1000; tick++ {
					sample, ok, err := s.Synthesize(tick, "")
					if err != nil {
						t.Fatalf("%s/%s/%.0fm tick %d: %v", id, kind, distance, tick, err)
					}
					if !ok {
						t.Fatalf("%s: unexpected skip without filter", id)
					}

					if !p.InRange(sample.Frequency) {
						t.Fatalf("%s: frequency %.2f outside declared intervals", id, sample.Frequency)
					}
					if !slices.Contains(p.Bandwidths, sample.Bandwidth) {
						t.Fatalf("%s: bandwidth %.2f not declared", id, sample.Bandwidth)
					}
					if sample.Strength < p.Strength.Min || sample.Strength > p.Strength.Max {
						t.Fatalf("%s: strength %.2f outside envelope", id, sample.Strength)
					}
					floor := -100.0
					if sample.Bandwidth >= 5 {
						floor = -80.0
					}
					if sample.Strength < floor {
						t.Fatalf("%s: strength %.2f below floor %.0f", id, sample.Strength, floor)
					}
					if sample.MultipathEffect < -10 || sample.MultipathEffect > 10 || sample.Jamming < -10 || sample.Jamming > 10 {
						t.Fatalf("%s: effect scalars out of [-10, 10]: %+v", id, sample)
					}
					if sample.Source != signal.SourceEmission {
						t.Fatalf("%s: unexpected source %s", id, sample.Source)
					}
				}
			}
		}
	}
}

func TestStrength_UrbanNarrowbandScenario(t *testing.T) {
	envelope := profile.StrengthRange{Min: -100, Max: -50}

	// pathLoss = 60dB, max(-100, -110) = -100, minus 20 = -120, floored at -100
	if got := Strength(envelope, 1000, 20, 2.2); got != -100 {
		t.Errorf("Expected -100 dBm, got %v", got)
	}

	// same, but wideband floor applies
	if got := Strength(envelope, 1000, 20, 7); got != -80 {
		t.Errorf("Expected -80 dBm, got %v", got)
	}

	// close range: -50 - 20 - 5 = -75
	if got := Strength(envelope, 10, 5, 2.2); got != -75 {
		t.Errorf("Expected -75 dBm, got %v", got)
	}
}

func TestSynthesize_UrbanNarrowbandScenario(t *testing.T) {
	p := profile.Profile{
		ID:              "scenario",
		FrequencyRanges: []profile.Interval{{Start: 430.0, End: 435.0}},
		SignalTypes:     []profile.SignalType{profile.SignalTelemetry},
		Bandwidths:      []float64{2.2},
		Strength:        profile.StrengthRange{Min: -100, Max: -50},
	}
	env := NewEnvironment(EnvironmentUrban, map[EnvironmentKind]float64{EnvironmentUrban: 20})

	s, err := NewSynthesizer(p, env, 1000, WithRand(seeded(7)))
	if err != nil {
		t.Fatalf("NewSynthesizer: %v", err)
	}

	for tick := 0; tick < 100; tick++ {
		sample, ok, err := s.Synthesize(tick, "")
		if err != nil || !ok {
			t.Fatalf("tick %d: ok=%v err=%v", tick, ok, err)
		}
		if sample.Strength != -100 {
			t.Fatalf("tick %d: expected strength -100, got %v", tick, sample.Strength)
		}
		if sample.Frequency < 430 || sample.Frequency > 435 {
			t.Fatalf("tick %d: frequency %v out of range", tick, sample.Frequency)
		}
	}
}

func TestDopplerShift_RedrawsOutOfRange(t *testing.T) {
	p := profile.Profile{
		ID:               "fast",
		FrequencyRanges:  []profile.Interval{{Start: 430, End: 435}},
		SignalTypes:      []profile.SignalType{profile.SignalTelemetry},
		DopplerShiftRate: 1_000_000,
		Bandwidths:       []float64{1},
		Strength:         profile.StrengthRange{Min: -100, Max: -50},
	}

	s, err := NewSynthesizer(p, urban(), 1000, WithRand(seeded(3)))
	if err != nil {
		t.Fatalf("NewSynthesizer: %v", err)
	}

	for i := 0; i < 1000; i++ {
		if f := s.dopplerShift(432.5, 1000); f < 430 || f > 435 {
			t.Fatalf("Expected redrawn frequency within [430, 435], got %v", f)
		}
	}
}

func TestDopplerShift_ClampsWhenRedrawRoundsOutside(t *testing.T) {
	p := profile.Profile{
		ID:               "narrow",
		FrequencyRanges:  []profile.Interval{{Start: 430.003, End: 430.004}},
		SignalTypes:      []profile.SignalType{profile.SignalTelemetry},
		DopplerShiftRate: 10,
		Bandwidths:       []float64{1},
		Strength:         profile.StrengthRange{Min: -100, Max: -50},
	}

	s, err := NewSynthesizer(p, urban(), 1000, WithRand(seeded(5)))
	if err != nil {
		t.Fatalf("NewSynthesizer: %v", err)
	}

	for tick := 1; tick < 200; tick++ {
		if f := s.dopplerShift(430.0, tick); f < 430.003 || f > 430.004 {
			t.Fatalf("tick %d: expected clamped frequency, got %v", tick, f)
		}
	}
}

func TestSynthesize_SignalTypeFilterSkips(t *testing.T) {
	p := profile.Profile{
		ID:              "both",
		FrequencyRanges: []profile.Interval{{Start: 430, End: 435}},
		SignalTypes:     []profile.SignalType{profile.SignalTelemetry, profile.SignalVideo},
		Bandwidths:      []float64{1},
		Strength:        profile.StrengthRange{Min: -100, Max: -50},
	}

	s, err := NewSynthesizer(p, urban(), 1000, WithRand(seeded(11)))
	if err != nil {
		t.Fatalf("NewSynthesizer: %v", err)
	}

	var accepted, skipped int
	for tick := 0; tick < 1000; tick++ {
		sample, ok, err := s.Synthesize(tick, profile.SignalVideo)
		if err != nil {
			t.Fatalf("tick %d: %v", tick, err)
		}
		if !ok {
			skipped++
			continue
		}
		accepted++
		if sample.Type != profile.SignalVideo {
			t.Fatalf("Filter let through %s", sample.Type)
		}
	}

	if accepted == 0 || skipped == 0 {
		t.Errorf("Expected both accepted and skipped ticks, got accepted=%d skipped=%d", accepted, skipped)
	}
}

func TestSynthesize_TimestampsFollowTicks(t *testing.T) {
	store, _ := profile.Default()
	p, _ := store.Lookup("Orlan-10")

	s, err := NewSynthesizer(p, urban(), 1000, WithRand(seeded(1)))
	if err != nil {
		t.Fatalf("NewSynthesizer: %v", err)
	}

	prev := -1.0
	for tick := 0; tick < 100; tick++ {
		sample, _, err := s.Synthesize(tick, "")
		if err != nil {
			t.Fatalf("tick %d: %v", tick, err)
		}
		if sample.Time < prev {
			t.Fatalf("tick %d: time went backwards %v < %v", tick, sample.Time, prev)
		}
		prev = sample.Time
	}
	if prev != 9.9 {
		t.Errorf("Expected last timestamp 9.9s at 10 ticks/s, got %v", prev)
	}
}

func TestSynthesize_ValidationFailureIsFatal(t *testing.T) {
	// envelope minimum above the narrowband floor: the floor cannot lift the
	// strength back into range, so validation must reject the sample
	p := profile.Profile{
		ID:              "inconsistent",
		FrequencyRanges: []profile.Interval{{Start: 430, End: 435}},
		SignalTypes:     []profile.SignalType{profile.SignalTelemetry},
		Bandwidths:      []float64{1},
		Strength:        profile.StrengthRange{Min: -90, Max: -50},
	}

	s, err := NewSynthesizer(p, urban(), 1000, WithRand(seeded(1)))
	if err != nil {
		t.Fatalf("NewSynthesizer: %v", err)
	}

	_, _, err = s.Synthesize(0, "")
	if !errors.Is(err, signal.ErrStrengthOutOfRange) {
		t.Fatalf("Expected ErrStrengthOutOfRange, got %v", err)
	}
}

func TestNewSynthesizer_Errors(t *testing.T) {
	store, _ := profile.Default()
	p, _ := store.Lookup("Orlan-10")

	env := NewEnvironment(EnvironmentMountainous, map[EnvironmentKind]float64{EnvironmentUrban: 20})
	if _, err := NewSynthesizer(p, env, 1000); !errors.Is(err, ErrMissingLossFactor) {
		t.Errorf("Expected ErrMissingLossFactor, got %v", err)
	}

	for _, d := range []float64{0, -5} {
		if _, err := NewSynthesizer(p, urban(), d); !errors.Is(err, ErrInvalidDistance) {
			t.Errorf("distance %v: expected ErrInvalidDistance, got %v", d, err)
		}
	}
}

func TestParseEnvironmentKind(t *testing.T) {
	testCases := map[string]EnvironmentKind{
		"urban":       EnvironmentUrban,
		"city":        EnvironmentUrban,
		"Open-Field":  EnvironmentOpenField,
		"open_field":  EnvironmentOpenField,
		"mountains":   EnvironmentMountainous,
		"mountainous": EnvironmentMountainous,
	}
	for in, want := range testCases {
		got, err := ParseEnvironmentKind(in)
		if err != nil || got != want {
			t.Errorf("ParseEnvironmentKind(%q) = %q, %v; want %q", in, got, err, want)
		}
	}

	if _, err := ParseEnvironmentKind("ocean"); !errors.Is(err, ErrUnknownEnvironment) {
		t.Errorf("Expected ErrUnknownEnvironment, got %v", err)
	}
}

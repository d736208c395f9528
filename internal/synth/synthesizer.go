package synth

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/roman-kulish/drone-signal-synth/internal/profile"
	"github.com/roman-kulish/drone-signal-synth/internal/signal"
)

const (
	// DefaultRate is the number of ticks per simulated second
	DefaultRate = 10

	narrowbandFloor = -100.0 // dBm
	widebandFloor   = -80.0  // dBm
	effectSpan      = 10.0
)

// ErrInvalidDistance is returned for a non-positive receiver distance
var ErrInvalidDistance = errors.New("invalid distance")

// WithRand sets the random source the synthesizer draws from
func WithRand(rng *rand.Rand) func(*Synthesizer) {
	return func(s *Synthesizer) {
		s.rng = rng
	}
}

// WithTickDuration sets the simulated time between two ticks
func WithTickDuration(d time.Duration) func(*Synthesizer) {
	return func(s *Synthesizer) {
		s.tickDuration = d.Seconds()
	}
}

// Synthesizer draws one drone sample per tick from a profile. It is not
// safe for concurrent use: every call advances the shared random source.
type Synthesizer struct {
	profile  profile.Profile
	env      Environment
	distance float64
	loss     float64

	rng          *rand.Rand
	tickDuration float64 // seconds
}

// NewSynthesizer binds a profile, environment and distance in meters
func NewSynthesizer(p profile.Profile, env Environment, distance float64, options ...func(*Synthesizer)) (*Synthesizer, error) {
	if distance <= 0 || math.IsNaN(distance) || math.IsInf(distance, 0) {
		return nil, fmt.Errorf("%w: %v meters, must be positive", ErrInvalidDistance, distance)
	}

	loss, err := env.Loss()
	if err != nil {
		return nil, err
	}

	s := Synthesizer{
		profile:      p,
		env:          env,
		distance:     distance,
		loss:         loss,
		tickDuration: 1.0 / DefaultRate,
	}

	for _, option := range options {
		option(&s)
	}

	if s.rng == nil {
		s.rng = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0))
	}

	return &s, nil
}

// Profile returns the profile the synthesizer draws from
func (s *Synthesizer) Profile() *profile.Profile {
	return &s.profile
}

// Synthesize produces the sample for the given tick. It returns false when
// desired is set and the drawn signal type differs; the tick is then spent
// without a sample. A validation failure is returned as an error.
func (s *Synthesizer) Synthesize(tick int, desired profile.SignalType) (signal.Sample, bool, error) {
	base := s.frequency()
	shifted := s.dopplerShift(base, tick)
	bandwidth := s.profile.Bandwidths[s.rng.IntN(len(s.profile.Bandwidths))]
	strength := Strength(s.profile.Strength, s.distance, s.loss, bandwidth)
	signalType := s.profile.SignalTypes[s.rng.IntN(len(s.profile.SignalTypes))]

	if desired != "" && signalType != desired {
		return signal.Sample{}, false, nil
	}

	sample := signal.Sample{
		Time:         round2(float64(tick) * s.tickDuration),
		Frequency:    shifted,
		Bandwidth:    bandwidth,
		Strength:     strength,
		Type:         signalType,
		DopplerShift: shifted - base,
		Source:       signal.SourceEmission,
	}

	if err := signal.Validate(&s.profile, &sample); err != nil {
		return signal.Sample{}, false, fmt.Errorf("tick %d: %w", tick, err)
	}

	sample.MultipathEffect = uniform(s.rng, -effectSpan, effectSpan)
	sample.Jamming = uniform(s.rng, -effectSpan, effectSpan)

	return sample, true, nil
}

// frequency draws a frequency uniformly from a uniformly chosen interval
func (s *Synthesizer) frequency() float64 {
	r := s.profile.FrequencyRanges[s.rng.IntN(len(s.profile.FrequencyRanges))]
	return round2(uniform(s.rng, r.Start, r.End))
}

// dopplerShift moves base by a random rate scaled by the elapsed ticks. An
// out of range result is replaced by one fresh draw; if rounding still leaves
// that draw outside, it is clamped to the nearest interval boundary.
func (s *Synthesizer) dopplerShift(base float64, tick int) float64 {
	rate := s.profile.DopplerShiftRate
	shifted := round2(base + uniform(s.rng, -rate, rate)*float64(tick))

	if s.profile.InRange(shifted) {
		return shifted
	}

	shifted = s.frequency()
	if !s.profile.InRange(shifted) {
		shifted = s.profile.Nearest(shifted)
	}
	return shifted
}

// Strength computes the received strength in dBm for a drone at distance
// meters: free-space style path loss bounded by the envelope minimum, minus
// the environment loss, raised to the floor of the channel width.
func Strength(envelope profile.StrengthRange, distance, loss, bandwidth float64) float64 {
	pathLoss := 20 * math.Log10(distance)
	strength := max(envelope.Min, envelope.Max-pathLoss)
	strength -= loss

	if bandwidth >= signal.WidebandThreshold {
		return max(strength, widebandFloor)
	}
	return max(strength, narrowbandFloor)
}

func uniform(rng *rand.Rand, a, b float64) float64 {
	return a + rng.Float64()*(b-a)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

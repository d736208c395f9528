package propagation

import (
	"math"
	"math/rand/v2"
	"slices"

	"github.com/roman-kulish/drone-signal-synth/internal/signal"
)

const (
	DefaultJamProbability   = 0.1
	DefaultNoiseProbability = 0.2

	minReflections   = 1
	maxReflections   = 5
	minDelay         = 0.001 // seconds
	maxDelay         = 0.01  // seconds
	frequencyJitter  = 0.2   // MHz
	rayleighScale    = 0.5
	fadingDepth      = -20.0 // dB per unit of Rayleigh magnitude
	noiseStrengthMin = -110.0
	noiseStrengthMax = -90.0
	jamStrengthMin   = -50.0
	jamStrengthMax   = -30.0
)

// DefaultBackgroundFrequencies are the ISM/Wi-Fi carriers used for noise, MHz
var DefaultBackgroundFrequencies = []float64{2400, 5200, 5800}

// Effects adds multipath reflections, background noise and jamming to a
// batch of drone emissions. Unset fields fall back to the package defaults;
// an explicit zero probability disables that effect.
type Effects struct {
	Rand                  *rand.Rand
	JamProbability        *float64
	NoiseProbability      *float64
	BackgroundFrequencies []float64
}

// Apply returns a new batch holding the input samples unchanged and in
// order, followed by the samples derived from each of them: its multipath
// reflections, then an optional noise sample, then an optional jam sample.
// The input slice is not modified.
func (e *Effects) Apply(batch []signal.Sample) []signal.Sample {
	rng := e.Rand
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	jamProbability := DefaultJamProbability
	if e.JamProbability != nil {
		jamProbability = *e.JamProbability
	}
	noiseProbability := DefaultNoiseProbability
	if e.NoiseProbability != nil {
		noiseProbability = *e.NoiseProbability
	}
	background := e.BackgroundFrequencies
	if len(background) == 0 {
		background = DefaultBackgroundFrequencies
	}

	out := slices.Clone(batch)
	for _, s := range batch {
		reflections := minReflections + rng.IntN(maxReflections-minReflections+1)
		for range reflections {
			out = append(out, multipath(rng, s))
		}

		if rng.Float64() < noiseProbability {
			noise := s
			noise.Frequency = background[rng.IntN(len(background))]
			noise.Strength = uniform(rng, noiseStrengthMin, noiseStrengthMax)
			noise.Source = signal.SourceNoise
			out = append(out, noise)
		}

		if rng.Float64() < jamProbability {
			jam := s
			jam.Strength = uniform(rng, jamStrengthMin, jamStrengthMax)
			jam.Source = signal.SourceJamming
			out = append(out, jam)
		}
	}

	return out
}

// multipath derives one delayed, detuned and faded reflection of s
func multipath(rng *rand.Rand, s signal.Sample) signal.Sample {
	r := s
	r.Time = s.Time + uniform(rng, minDelay, maxDelay)
	r.Frequency = s.Frequency + uniform(rng, -frequencyJitter, frequencyJitter)

	attenuation := Rayleigh(rng, rayleighScale) * fadingDepth
	phase := uniform(rng, 0, 2*math.Pi)
	r.Strength = s.Strength + attenuation*math.Cos(phase)
	r.Source = signal.SourceMultipath

	return r
}

// Rayleigh draws a Rayleigh distributed magnitude with the given scale by
// inverting its CDF.
func Rayleigh(rng *rand.Rand, scale float64) float64 {
	return scale * math.Sqrt(-2*math.Log(1-rng.Float64()))
}

func uniform(rng *rand.Rand, a, b float64) float64 {
	return a + rng.Float64()*(b-a)
}

package app

import (
	"math"

	"github.com/roman-kulish/drone-signal-synth/internal/render"
	"github.com/roman-kulish/drone-signal-synth/internal/signal"
)

type point struct {
	time, frequency, strength float64
}

// SpectrumData collects the samples of a session and tracks their extent
type SpectrumData struct {
	Time      render.Range
	Frequency render.Range
	Histogram *render.PowerHistogram

	points []point
}

func NewSpectrumData() *SpectrumData {
	return &SpectrumData{
		Time:      render.Range{Min: math.Inf(1), Max: math.Inf(-1)},
		Frequency: render.Range{Min: math.Inf(1), Max: math.Inf(-1)},
		Histogram: render.NewPowerHistogram(),
	}
}

// Update adds a sample
func (s *SpectrumData) Update(sample signal.Sample) {
	s.points = append(s.points, point{
		time:      sample.Time,
		frequency: sample.Frequency,
		strength:  sample.Strength,
	})

	s.Time.Min = min(s.Time.Min, sample.Time)
	s.Time.Max = max(s.Time.Max, sample.Time)
	s.Frequency.Min = min(s.Frequency.Min, sample.Frequency)
	s.Frequency.Max = max(s.Frequency.Max, sample.Frequency)
	s.Histogram.Update(sample.Strength)
}

// Count returns the number of samples collected
func (s *SpectrumData) Count() int {
	return len(s.points)
}

// Grid bins the samples into timeBins × frequencyBins cells holding the mean
// strength
func (s *SpectrumData) Grid(timeBins, frequencyBins int) *render.Grid {
	g := render.NewGrid(timeBins, frequencyBins, s.Time, s.Frequency)
	for _, p := range s.points {
		g.Add(p.time, p.frequency, p.strength)
	}
	return g
}

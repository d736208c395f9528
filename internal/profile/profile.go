package profile

import (
	"errors"
	"fmt"
	"math"
	"slices"
)

const (
	SignalTelemetry SignalType = "Telemetry"
	SignalVideo     SignalType = "Video"
)

// ErrInvalidProfile is returned when a profile definition breaks one of the
// envelope invariants.
var ErrInvalidProfile = errors.New("invalid drone profile")

// defaultSignalTypes are assumed for profiles that do not declare any
var defaultSignalTypes = []SignalType{SignalTelemetry, SignalVideo}

// SignalType is the kind of emission carried by a drone radio link
type SignalType string

func (t SignalType) String() string {
	return string(t)
}

// Interval is a closed frequency range in MHz
type Interval struct {
	Start float64 `yaml:"start" json:"start"`
	End   float64 `yaml:"end" json:"end"`
}

// Contains reports whether f lies within [Start, End]
func (i Interval) Contains(f float64) bool {
	return i.Start <= f && f <= i.End
}

// StrengthRange is the received strength envelope in dBm
type StrengthRange struct {
	Min float64 `yaml:"min" json:"min"`
	Max float64 `yaml:"max" json:"max"`
}

// Contains reports whether s lies within [Min, Max]
func (r StrengthRange) Contains(s float64) bool {
	return r.Min <= s && s <= r.Max
}

// Dimensions of the airframe in meters
type Dimensions struct {
	Length float64 `yaml:"length" json:"length"`
	Width  float64 `yaml:"width" json:"width"`
	Height float64 `yaml:"height" json:"height"`
}

// TemperatureRange in degrees Celsius
type TemperatureRange struct {
	Min float64 `yaml:"min" json:"min"`
	Max float64 `yaml:"max" json:"max"`
}

// Metadata holds the physical description of the drone. Nothing in the
// synthesis path reads it; it is carried along for reporting.
type Metadata struct {
	MotorModel           string           `yaml:"motorModel,omitempty" json:"motorModel,omitempty"`
	MaxFlightTime        float64          `yaml:"maxFlightTime,omitempty" json:"maxFlightTime,omitempty"` // hours
	MaxSpeed             float64          `yaml:"maxSpeed,omitempty" json:"maxSpeed,omitempty"`           // km/h
	AltitudeLimit        float64          `yaml:"altitudeLimit,omitempty" json:"altitudeLimit,omitempty"` // meters
	Weight               float64          `yaml:"weight,omitempty" json:"weight,omitempty"`               // kg
	Dimensions           Dimensions       `yaml:"dimensions,omitempty" json:"dimensions,omitempty"`
	Battery              string           `yaml:"battery,omitempty" json:"battery,omitempty"`
	OperatingTemperature TemperatureRange `yaml:"operatingTemperature,omitempty" json:"operatingTemperature,omitempty"`
	AdditionalFeatures   []string         `yaml:"additionalFeatures,omitempty" json:"additionalFeatures,omitempty"`
}

// Profile is the RF envelope of a drone model
type Profile struct {
	ID                 string        `yaml:"id" json:"id"`
	FrequencyRanges    []Interval    `yaml:"frequencyRanges" json:"frequencyRanges"`
	SignalTypes        []SignalType  `yaml:"signalTypes" json:"signalTypes"`
	DopplerShiftRate   float64       `yaml:"dopplerShiftRate" json:"dopplerShiftRate"`     // MHz/s
	FrequencyShiftStep float64       `yaml:"frequencyShiftStep" json:"frequencyShiftStep"` // MHz, informational
	Bandwidths         []float64     `yaml:"bandwidths" json:"bandwidths"`                 // MHz
	Strength           StrengthRange `yaml:"strength" json:"strength"`
	Metadata           Metadata      `yaml:"metadata" json:"metadata"`
}

// Validate checks the profile invariants. It is called by the loader; a
// profile that passes is never re-checked by the synthesis path.
func (p *Profile) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidProfile)
	}
	if len(p.FrequencyRanges) == 0 {
		return fmt.Errorf("%w: %s: at least one frequency range is required", ErrInvalidProfile, p.ID)
	}
	for i, r := range p.FrequencyRanges {
		if math.IsNaN(r.Start) || math.IsNaN(r.End) || math.IsInf(r.Start, 0) || math.IsInf(r.End, 0) {
			return fmt.Errorf("%w: %s: frequency range %d is not finite", ErrInvalidProfile, p.ID, i)
		}
		if r.Start > r.End {
			return fmt.Errorf("%w: %s: frequency range %d start %.2f MHz is greater than end %.2f MHz",
				ErrInvalidProfile, p.ID, i, r.Start, r.End)
		}
	}
	if len(p.Bandwidths) == 0 {
		return fmt.Errorf("%w: %s: at least one bandwidth is required", ErrInvalidProfile, p.ID)
	}
	for _, bw := range p.Bandwidths {
		if bw <= 0 {
			return fmt.Errorf("%w: %s: bandwidth must be positive: %.2f MHz given", ErrInvalidProfile, p.ID, bw)
		}
	}
	if p.Strength.Min > p.Strength.Max {
		return fmt.Errorf("%w: %s: strength min %.2f dBm is greater than max %.2f dBm",
			ErrInvalidProfile, p.ID, p.Strength.Min, p.Strength.Max)
	}
	if p.DopplerShiftRate < 0 {
		return fmt.Errorf("%w: %s: doppler shift rate must not be negative: %.2f given", ErrInvalidProfile, p.ID, p.DopplerShiftRate)
	}
	for _, t := range p.SignalTypes {
		if t == "" {
			return fmt.Errorf("%w: %s: empty signal type", ErrInvalidProfile, p.ID)
		}
	}
	return nil
}

// InRange reports whether f falls within at least one declared interval
func (p *Profile) InRange(f float64) bool {
	for _, r := range p.FrequencyRanges {
		if r.Contains(f) {
			return true
		}
	}
	return false
}

// Nearest returns f clamped to the closest declared interval boundary, or f
// itself when it is already in range.
func (p *Profile) Nearest(f float64) float64 {
	best, bestDist := f, math.Inf(1)
	for _, r := range p.FrequencyRanges {
		c := min(max(f, r.Start), r.End)
		if d := math.Abs(c - f); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}

// SupportsBandwidth reports exact membership of bw in the declared set
func (p *Profile) SupportsBandwidth(bw float64) bool {
	return slices.Contains(p.Bandwidths, bw)
}

// SupportsSignalType reports whether the drone emits signals of type t
func (p *Profile) SupportsSignalType(t SignalType) bool {
	return slices.Contains(p.SignalTypes, t)
}

func (p Profile) clone() Profile {
	p.FrequencyRanges = slices.Clone(p.FrequencyRanges)
	p.SignalTypes = slices.Clone(p.SignalTypes)
	p.Bandwidths = slices.Clone(p.Bandwidths)
	p.Metadata.AdditionalFeatures = slices.Clone(p.Metadata.AdditionalFeatures)
	return p
}

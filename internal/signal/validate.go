package signal

import (
	"errors"
	"fmt"

	"github.com/roman-kulish/drone-signal-synth/internal/profile"
)

const (
	// WidebandThreshold separates narrow from wide channels, MHz
	WidebandThreshold = 5.0

	// WidebandMinStrength is the weakest strength a wide channel may report, dBm
	WidebandMinStrength = -80.0

	// MaxRealisticStrength caps any drone emission regardless of the profile, dBm
	MaxRealisticStrength = -30.0
)

var (
	ErrFrequencyOutOfRange          = errors.New("frequency out of range")
	ErrStrengthOutOfRange           = errors.New("strength out of range")
	ErrInvalidBandwidth             = errors.New("invalid bandwidth")
	ErrInconsistentWidebandStrength = errors.New("wideband strength too low")
	ErrUnrealisticStrength          = errors.New("unrealistic strength")
	ErrUnsupportedSignalType        = errors.New("unsupported signal type")
)

// Validate checks a synthesized sample against the drone envelope and the
// cross-field rules. The first failing check is returned.
func Validate(p *profile.Profile, s *Sample) error {
	if !p.InRange(s.Frequency) {
		return fmt.Errorf("%w: %.2f MHz for %s", ErrFrequencyOutOfRange, s.Frequency, p.ID)
	}
	if !p.Strength.Contains(s.Strength) {
		return fmt.Errorf("%w: %.2f dBm for %s, expected [%.2f, %.2f]",
			ErrStrengthOutOfRange, s.Strength, p.ID, p.Strength.Min, p.Strength.Max)
	}
	if !p.SupportsBandwidth(s.Bandwidth) {
		return fmt.Errorf("%w: %.2f MHz for %s", ErrInvalidBandwidth, s.Bandwidth, p.ID)
	}
	if s.Bandwidth > WidebandThreshold && s.Strength < WidebandMinStrength {
		return fmt.Errorf("%w: %.2f MHz channel at %.2f dBm", ErrInconsistentWidebandStrength, s.Bandwidth, s.Strength)
	}
	if s.Strength > MaxRealisticStrength {
		return fmt.Errorf("%w: %.2f dBm", ErrUnrealisticStrength, s.Strength)
	}
	return ValidateType(p, s.Type)
}

// ValidateType checks that the drone emits signals of type t
func ValidateType(p *profile.Profile, t profile.SignalType) error {
	if !p.SupportsSignalType(t) {
		return fmt.Errorf("%w: %s for %s, supported: %v", ErrUnsupportedSignalType, t, p.ID, p.SignalTypes)
	}
	return nil
}

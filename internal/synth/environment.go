package synth

import (
	"errors"
	"fmt"
	"maps"
	"strings"
)

const (
	EnvironmentUrban       EnvironmentKind = "urban"
	EnvironmentOpenField   EnvironmentKind = "open-field"
	EnvironmentMountainous EnvironmentKind = "mountainous"
)

var (
	// ErrMissingLossFactor is returned when the environment has no loss for its own kind
	ErrMissingLossFactor = errors.New("missing loss factor")

	// ErrUnknownEnvironment is returned when parsing an unrecognised environment kind
	ErrUnknownEnvironment = errors.New("unknown environment")
)

// environmentKinds maps accepted spellings, including the legacy ones, to kinds
var environmentKinds = map[string]EnvironmentKind{
	"urban":       EnvironmentUrban,
	"city":        EnvironmentUrban,
	"open-field":  EnvironmentOpenField,
	"open_field":  EnvironmentOpenField,
	"field":       EnvironmentOpenField,
	"mountainous": EnvironmentMountainous,
	"mountains":   EnvironmentMountainous,
}

// EnvironmentKind is the terrain a run is simulated in
type EnvironmentKind string

func (k EnvironmentKind) String() string {
	return string(k)
}

// ParseEnvironmentKind resolves a kind from its name or a legacy alias
func ParseEnvironmentKind(s string) (EnvironmentKind, error) {
	k, ok := environmentKinds[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownEnvironment, s)
	}
	return k, nil
}

// DefaultLosses returns the stock attenuation per environment kind, dB
func DefaultLosses() map[EnvironmentKind]float64 {
	return map[EnvironmentKind]float64{
		EnvironmentUrban:       20,
		EnvironmentOpenField:   5,
		EnvironmentMountainous: 30,
	}
}

// Environment is the propagation context of a run
type Environment struct {
	Kind   EnvironmentKind
	Losses map[EnvironmentKind]float64
}

// NewEnvironment builds an environment with a private copy of losses
func NewEnvironment(kind EnvironmentKind, losses map[EnvironmentKind]float64) Environment {
	return Environment{Kind: kind, Losses: maps.Clone(losses)}
}

// Loss returns the attenuation for the environment's own kind
func (e Environment) Loss() (float64, error) {
	loss, ok := e.Losses[e.Kind]
	if !ok {
		return 0, fmt.Errorf("%w: no loss for %q environment", ErrMissingLossFactor, e.Kind)
	}
	return loss, nil
}

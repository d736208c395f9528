package signal

import "github.com/roman-kulish/drone-signal-synth/internal/profile"

const (
	SourceEmission  Source = "emission"  // Sample synthesized from the drone profile
	SourceMultipath Source = "multipath" // Reflected copy of an emission
	SourceNoise     Source = "noise"     // Background noise, unrelated to the drone
	SourceJamming   Source = "jamming"   // Jamming event
)

var validSources = map[Source]struct{}{
	SourceEmission:  {},
	SourceMultipath: {},
	SourceNoise:     {},
	SourceJamming:   {},
}

// Source tells drone emissions apart from derived interference
type Source string

func (s Source) String() string {
	return string(s)
}

// Valid reports whether s is one of the known sources
func (s Source) Valid() bool {
	_, ok := validSources[s]
	return ok
}

// Sample is a single synthesized observation
type Sample struct {
	Time            float64            `json:"time"`            // Offset from the start of the run in seconds
	Frequency       float64            `json:"frequency"`       // MHz
	Bandwidth       float64            `json:"bandwidth"`       // MHz
	Strength        float64            `json:"strength"`        // RSSI in dBm
	Type            profile.SignalType `json:"type"`            // Telemetry, Video, ...
	DopplerShift    float64            `json:"dopplerShift"`    // Shifted minus base frequency, MHz
	MultipathEffect float64            `json:"multipathEffect"` // Free-form indicator for consumers
	Jamming         float64            `json:"jamming"`         // Free-form indicator for consumers
	Source          Source             `json:"source"`
}

package export

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/roman-kulish/drone-signal-synth/internal/signal"
)

const (
	ColumnTime            Column = "Time (s)"
	ColumnFrequency       Column = "Frequency"
	ColumnBandwidth       Column = "Bandwidth (MHz)"
	ColumnRSSI            Column = "RSSI"
	ColumnSignalType      Column = "Signal Type"
	ColumnDopplerShift    Column = "Doppler Shift"
	ColumnMultipathEffect Column = "Multipath Effect"
	ColumnJamming         Column = "Jamming"
)

// ErrInvalidColumnSelection is returned when a selection names a column
// outside the CSV column set
var ErrInvalidColumnSelection = errors.New("invalid column selection")

// AllColumns is the full CSV column set in its default order
var AllColumns = []Column{
	ColumnTime,
	ColumnFrequency,
	ColumnBandwidth,
	ColumnRSSI,
	ColumnSignalType,
	ColumnDopplerShift,
	ColumnMultipathEffect,
	ColumnJamming,
}

var columnValues = map[Column]func(*signal.Sample) string{
	ColumnTime:            func(s *signal.Sample) string { return formatFloat(s.Time) },
	ColumnFrequency:       func(s *signal.Sample) string { return formatFloat(s.Frequency) },
	ColumnBandwidth:       func(s *signal.Sample) string { return formatFloat(s.Bandwidth) },
	ColumnRSSI:            func(s *signal.Sample) string { return formatFloat(s.Strength) },
	ColumnSignalType:      func(s *signal.Sample) string { return s.Type.String() },
	ColumnDopplerShift:    func(s *signal.Sample) string { return formatFloat(s.DopplerShift) },
	ColumnMultipathEffect: func(s *signal.Sample) string { return formatFloat(s.MultipathEffect) },
	ColumnJamming:         func(s *signal.Sample) string { return formatFloat(s.Jamming) },
}

// Column is a CSV column header
type Column string

func (c Column) String() string {
	return string(c)
}

// Valid reports whether c belongs to the CSV column set
func (c Column) Valid() bool {
	_, ok := columnValues[c]
	return ok
}

// ParseColumns turns header names into a column selection, keeping the
// caller's order. An empty selection means all columns.
func ParseColumns(names []string) ([]Column, error) {
	if len(names) == 0 {
		return append([]Column(nil), AllColumns...), nil
	}

	columns := make([]Column, 0, len(names))
	for _, name := range names {
		c := Column(name)
		if !c.Valid() {
			return nil, fmt.Errorf("%w: unknown column %q", ErrInvalidColumnSelection, name)
		}
		columns = append(columns, c)
	}

	return columns, nil
}

// DefaultFileName is the CSV file name used when none is configured
func DefaultFileName(droneID string) string {
	return droneID + "_optimized_signal.csv"
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

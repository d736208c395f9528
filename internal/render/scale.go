package render

import (
	"fmt"
	"math"

	"github.com/dustin/go-humanize"
)

// NiceStep picks a 1-2-5 step so that span is split into roughly
// pixels/pixelsPerLabel labels
func NiceStep(span float64, pixels, pixelsPerLabel int) float64 {
	if span <= 0 || pixels <= 0 || pixelsPerLabel <= 0 {
		return 1
	}

	labels := max(1, float64(pixels)/float64(pixelsPerLabel))
	rough := span / labels

	magnitude := math.Pow(10, math.Floor(math.Log10(rough)))
	for _, m := range []float64{1, 2, 5, 10} {
		if step := m * magnitude; step >= rough {
			return step
		}
	}
	return 10 * magnitude
}

// Ticks returns the multiples of step within [lo, hi]
func Ticks(lo, hi, step float64) []float64 {
	if step <= 0 || hi < lo {
		return nil
	}

	var ticks []float64
	for v := math.Ceil(lo/step) * step; v <= hi+step*1e-9; v += step {
		ticks = append(ticks, v)
	}
	return ticks
}

// FormatMHz renders a frequency given in MHz with an SI prefix
func FormatMHz(mhz float64) string {
	v, prefix := humanize.ComputeSI(mhz * 1e6)
	return fmt.Sprintf("%s %sHz", humanize.FtoaWithDigits(v, 2), prefix)
}

// FormatSeconds renders a run offset in seconds
func FormatSeconds(s float64) string {
	return humanize.FtoaWithDigits(s, 2) + "s"
}

// FormatDBm renders a strength in dBm
func FormatDBm(v float64) string {
	return fmt.Sprintf("%.0f dBm", v)
}

package render

import (
	"fmt"
	"image/color"
	"math"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// ColorTheme is a predefined color scheme for power visualization
type ColorTheme string

const (
	EnhancedTheme  ColorTheme = "enhanced"  // Black to blue to cyan to yellow to red
	ClassicTheme   ColorTheme = "classic"   // Blue to red transition
	GrayscaleTheme ColorTheme = "grayscale" // Black to white transition
	JungleTheme    ColorTheme = "jungle"    // Dark green to yellow transition
	ThermalTheme   ColorTheme = "thermal"   // Black to red to yellow to white
	MarineTheme    ColorTheme = "marine"    // Deep blue to cyan to white
	ViridisTheme   ColorTheme = "viridis"   // Perceptually uniform purple to yellow

	DefaultColorMapSize = 256
)

var validColorThemes = map[ColorTheme]struct{}{
	EnhancedTheme:  {},
	ClassicTheme:   {},
	GrayscaleTheme: {},
	JungleTheme:    {},
	ThermalTheme:   {},
	MarineTheme:    {},
	ViridisTheme:   {},
}

// NoDataColor fills cells without readings
var NoDataColor color.Color = color.Black

// viridisStops are sampled from the matplotlib viridis map
var viridisStops = []colorful.Color{
	colorful.MustParseHex("#440154"),
	colorful.MustParseHex("#3b528b"),
	colorful.MustParseHex("#21918c"),
	colorful.MustParseHex("#5ec962"),
	colorful.MustParseHex("#fde725"),
}

func (t ColorTheme) String() string {
	return string(t)
}

// ParseColorTheme resolves a theme name; empty means EnhancedTheme
func ParseColorTheme(s string) (ColorTheme, error) {
	if s == "" {
		return EnhancedTheme, nil
	}
	t := ColorTheme(strings.ToLower(s))
	if _, ok := validColorThemes[t]; !ok {
		return "", fmt.Errorf("invalid color theme: %s", s)
	}
	return t, nil
}

// ColorMapper maps power values to colors through a pre-computed table
type ColorMapper struct {
	colorMap      []color.Color
	theme         func(float64) colorful.Color
	size          int
	powerPerIndex float64
	bounds        PowerBounds
}

// NewColorMapper creates a color mapper with DefaultColorMapSize colors
func NewColorMapper(theme ColorTheme, bounds PowerBounds) *ColorMapper {
	cm := &ColorMapper{
		colorMap: make([]color.Color, DefaultColorMapSize),
		theme:    colorTheme(theme),
		size:     DefaultColorMapSize,
	}
	for i := range cm.size {
		cm.colorMap[i] = cm.theme(float64(i) / float64(cm.size-1)).Clamped()
	}
	cm.UpdateBounds(bounds)
	return cm
}

// UpdateBounds changes the power range the table spans
func (cm *ColorMapper) UpdateBounds(bounds PowerBounds) {
	cm.bounds = bounds
	cm.powerPerIndex = (bounds.Max - bounds.Min) / float64(cm.size-1)
}

// Bounds returns the power range the table spans
func (cm *ColorMapper) Bounds() PowerBounds {
	return cm.bounds
}

// Color returns the color for power, clamped to the bounds
func (cm *ColorMapper) Color(power float64) color.Color {
	if math.IsNaN(power) || cm.powerPerIndex <= 0 {
		return cm.colorMap[0]
	}

	index := int((power - cm.bounds.Min) / cm.powerPerIndex)
	switch {
	case index < 0:
		return cm.colorMap[0]
	case index >= cm.size:
		return cm.colorMap[cm.size-1]
	}
	return cm.colorMap[index]
}

// Normalized returns the color for a value already scaled to [0, 1]
func (cm *ColorMapper) Normalized(v float64) color.Color {
	index := int(math.Round(v * float64(cm.size-1)))
	return cm.colorMap[max(0, min(cm.size-1, index))]
}

func colorTheme(theme ColorTheme) func(float64) colorful.Color {
	switch theme {
	case ClassicTheme:
		return func(power float64) colorful.Color {
			return colorful.Hsv(240-(power*240), 0.9+(power*0.1), math.Pow(power, 0.7))
		}

	case GrayscaleTheme:
		return func(power float64) colorful.Color {
			v := math.Pow(power, 0.7)
			return colorful.Color{R: v, G: v, B: v}
		}

	case JungleTheme:
		return func(power float64) colorful.Color {
			return colorful.Hsv(120-(power*60), 1.0, 0.3+(math.Pow(power, 0.6)*0.7))
		}

	case ThermalTheme:
		return func(power float64) colorful.Color {
			switch {
			case power < 0.33:
				return colorful.Color{R: power * 3}
			case power < 0.66:
				return colorful.Color{R: 1, G: (power - 0.33) * 3}
			}
			return colorful.Color{R: 1, G: 1, B: (power - 0.66) * 3}
		}

	case MarineTheme:
		return func(power float64) colorful.Color {
			return colorful.Hsv(240-(power*60), 1.0-(power*0.8), 0.3+(math.Pow(power, 0.6)*0.7))
		}

	case ViridisTheme:
		return func(power float64) colorful.Color {
			pos := power * float64(len(viridisStops)-1)
			i := min(int(pos), len(viridisStops)-2)
			return viridisStops[i].BlendLab(viridisStops[i+1], pos-float64(i))
		}

	default:
		return func(power float64) colorful.Color {
			power = max(0, min(1, power))
			enhanced := math.Pow(power, 0.7)

			switch {
			case power < 0.25:
				return colorful.Hsv(240, 1.0, enhanced*4)
			case power < 0.5:
				return colorful.Hsv(240-((power-0.25)*240), 1.0, enhanced*1.5)
			case power < 0.75:
				p := (power - 0.5) * 4
				return colorful.Hsv(180-(p*120), 1.0, math.Min(1.0, enhanced*1.5))
			default:
				p := (power - 0.75) * 4
				return colorful.Hsv(60-(p*60), 1.0, 1.0)
			}
		}
	}
}

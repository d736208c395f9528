package app

import (
	"errors"
	"fmt"
	"image"
	"image/draw"

	"github.com/dustin/go-humanize"

	"github.com/roman-kulish/drone-signal-synth/internal/render"
)

// RenderConfig holds the configuration of the heatmap image
type RenderConfig struct {
	Width, Height           int
	TimeBins, FrequencyBins int
	ColorTheme              render.ColorTheme
	MinPower, MaxPower      *float64 // Manual power bounds, override the histogram
	NoAnnotations           bool
	Title                   string
}

var errNoData = errors.New("no samples to render")

// Render draws the spectrum as a time × frequency heatmap of mean strength
func Render(spec *SpectrumData, config RenderConfig) (*image.RGBA, error) {
	if spec.Count() == 0 {
		return nil, errNoData
	}

	img := image.NewRGBA(image.Rect(0, 0, config.Width, config.Height))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	bounds := spec.Histogram.PercentileBounds()
	if config.MinPower != nil {
		bounds.Min = *config.MinPower
	}
	if config.MaxPower != nil {
		bounds.Max = *config.MaxPower
	}
	cm := render.NewColorMapper(config.ColorTheme, bounds)

	grid := spec.Grid(config.TimeBins, config.FrequencyBins)
	panel := render.NewPanel(img, img.Bounds(), config.Title, grid.X, grid.Y)
	if config.NoAnnotations {
		panel.Area = img.Bounds()
		grid.Draw(panel, cm)
		return img, nil
	}

	ann, err := render.NewAnnotator(render.DefaultFontSize)
	if err != nil {
		return nil, fmt.Errorf("creating annotator: %w", err)
	}
	defer ann.Close()
	ann.SetTarget(img)

	grid.Draw(panel, cm)
	if err = panel.Axes(ann, "Time (s)", "Frequency", render.FormatSeconds, render.FormatMHz); err != nil {
		return nil, fmt.Errorf("drawing annotations: %w", err)
	}

	info := fmt.Sprintf("%s samples; power %s .. %s",
		humanize.Comma(int64(spec.Count())), render.FormatDBm(bounds.Min), render.FormatDBm(bounds.Max))
	if err = ann.DrawRight(info, panel.Area.Max.X, config.Height-ann.Height()/2-2); err != nil {
		return nil, fmt.Errorf("drawing info bar: %w", err)
	}

	return img, nil
}

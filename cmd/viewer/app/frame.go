package app

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/roman-kulish/drone-signal-synth/internal/render"
	"github.com/roman-kulish/drone-signal-synth/internal/signal"
)

const (
	headerHeight = 50
	minWidth     = 640
	minHeight    = 300

	heatmapCols = 60
	heatmapRows = 40

	pauseHint = "Press p or SPACE then Enter, or send SIGUSR1, to pause/resume"
)

var (
	lineColor = color.RGBA{R: 0x1f, G: 0x3f, B: 0xd0, A: 0xff}
	hintColor = color.Gray{Y: 0x80}
)

// Status is the live state shown in the frame title
type Status struct {
	Paused bool
	Clock  time.Time
	Pulled uint64
	Runs   int
}

// FrameConfig describes the frame image
type FrameConfig struct {
	Width, Height int
	Theme         render.ColorTheme // Heatmap colors
	Drone         string
	Mode          string
}

// FrameRenderer draws the recent history as four panels: a scatter plot, a
// line plot, a heatmap of strength and a waterfall
type FrameRenderer struct {
	config    FrameConfig
	annotator *render.Annotator
	bounds    *render.SmoothBounds
	heat      *render.ColorMapper
	scatter   *render.ColorMapper
}

func NewFrameRenderer(config FrameConfig) (*FrameRenderer, error) {
	if config.Width < minWidth || config.Height < minHeight {
		return nil, fmt.Errorf("frame must be at least %dx%d: %dx%d given", minWidth, minHeight, config.Width, config.Height)
	}

	ann, err := render.NewAnnotator(render.DefaultFontSize)
	if err != nil {
		return nil, fmt.Errorf("creating annotator: %w", err)
	}

	bounds := render.NewSmoothBounds(0.3)
	return &FrameRenderer{
		config:    config,
		annotator: ann,
		bounds:    bounds,
		heat:      render.NewColorMapper(config.Theme, bounds.Current()),
		scatter:   render.NewColorMapper(render.ViridisTheme, render.DefaultPowerBounds()),
	}, nil
}

func (r *FrameRenderer) Close() error {
	return r.annotator.Close()
}

// Observe feeds a newly pulled sample into the heatmap power bounds
func (r *FrameRenderer) Observe(s signal.Sample) {
	r.bounds.Update(s.Strength)
}

// Render draws samples, oldest first, with status in the title
func (r *FrameRenderer) Render(samples []signal.Sample, status Status) (*image.RGBA, error) {
	img := image.NewRGBA(image.Rect(0, 0, r.config.Width, r.config.Height))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)
	r.annotator.SetTarget(img)

	if err := r.header(status); err != nil {
		return nil, fmt.Errorf("drawing header: %w", err)
	}

	t, f := extent(samples)
	midX := r.config.Width / 2
	midY := headerHeight + (r.config.Height-headerHeight)/2

	panels := []struct {
		title string
		area  image.Rectangle
		draw  func(*render.Panel)
	}{
		{
			title: "Scatter Plot of Signal Data",
			area:  image.Rect(0, headerHeight, midX, midY),
			draw:  func(p *render.Panel) { r.drawScatter(p, samples, f) },
		},
		{
			title: "Line Plot of Signal Data",
			area:  image.Rect(midX, headerHeight, r.config.Width, midY),
			draw:  func(p *render.Panel) { drawLine(p, samples) },
		},
		{
			title: "Signal Data as Heatmap",
			area:  image.Rect(0, midY, midX, r.config.Height),
			draw:  func(p *render.Panel) { r.drawHeatmap(p, samples) },
		},
		{
			title: "Waterfall",
			area:  image.Rect(midX, midY, r.config.Width, r.config.Height),
			draw:  func(p *render.Panel) { drawWaterfall(p, samples) },
		},
	}

	r.annotator.SetColor(color.Black)
	for _, pn := range panels {
		p := render.NewPanel(img, pn.area, pn.title, t, f)
		if err := p.Axes(r.annotator, "Time (s)", "Frequency", render.FormatSeconds, render.FormatMHz); err != nil {
			return nil, fmt.Errorf("drawing %s: %w", pn.title, err)
		}
		pn.draw(p)
	}

	return img, nil
}

func (r *FrameRenderer) header(status Status) error {
	state := "Running"
	if status.Paused {
		state = "Paused"
	}

	title := fmt.Sprintf("Drone Signal Analysis - %s - %s - %s - %s",
		r.config.Drone, r.config.Mode, status.Clock.Format(time.TimeOnly), state)
	r.annotator.SetColor(color.Black)
	if err := r.annotator.DrawCentered(title, r.config.Width/2, 16); err != nil {
		return err
	}

	counts := fmt.Sprintf("%s samples, run %d", humanize.Comma(int64(status.Pulled)), status.Runs)
	if err := r.annotator.DrawRight(counts, r.config.Width-16, 38); err != nil {
		return err
	}

	r.annotator.SetColor(hintColor)
	return r.annotator.Draw(pauseHint, 16, 42)
}

// drawScatter colors points by frequency
func (r *FrameRenderer) drawScatter(p *render.Panel, samples []signal.Sample, f render.Range) {
	f = f.Padded()
	for _, s := range samples {
		p.Dot(s.Time, s.Frequency, 1, r.scatter.Normalized((s.Frequency-f.Min)/f.Span()))
	}
}

func drawLine(p *render.Panel, samples []signal.Sample) {
	for i := 1; i < len(samples); i++ {
		a, b := samples[i-1], samples[i]
		p.Line(a.Time, a.Frequency, b.Time, b.Frequency, lineColor)
	}
}

// drawHeatmap shows the mean strength per time × frequency cell
func (r *FrameRenderer) drawHeatmap(p *render.Panel, samples []signal.Sample) {
	if len(samples) == 0 {
		return
	}

	r.heat.UpdateBounds(r.bounds.Current())
	g := render.NewGrid(min(heatmapCols, p.Area.Dx()), min(heatmapRows, p.Area.Dy()), p.X, p.Y)
	for _, s := range samples {
		g.Add(s.Time, s.Frequency, s.Strength)
	}
	g.Draw(p, r.heat)
}

func drawWaterfall(p *render.Panel, samples []signal.Sample) {
	for _, s := range samples {
		p.VLine(s.Time, p.Y.Min, s.Frequency, lineColor)
	}
}

// extent returns the time and frequency ranges of samples
func extent(samples []signal.Sample) (t, f render.Range) {
	if len(samples) == 0 {
		return render.Range{Min: 0, Max: 1}, render.Range{Min: 0, Max: 1}
	}

	t = render.Range{Min: math.Inf(1), Max: math.Inf(-1)}
	f = t
	for _, s := range samples {
		t.Min, t.Max = min(t.Min, s.Time), max(t.Max, s.Time)
		f.Min, f.Max = min(f.Min, s.Frequency), max(f.Max, s.Frequency)
	}
	return t, f
}

// WriteFrame returns a sink that replaces the PNG at path with every frame.
// The file is written next to path and renamed, so readers never see a
// partial image.
func WriteFrame(path string) FrameSink {
	return func(img image.Image) (err error) {
		tmp, err := os.CreateTemp(filepath.Dir(path), ".frame-*.png")
		if err != nil {
			return fmt.Errorf("creating frame: %w", err)
		}
		defer func() {
			if err != nil {
				_ = os.Remove(tmp.Name())
			}
		}()

		if err = png.Encode(tmp, img); err != nil {
			_ = tmp.Close()
			return fmt.Errorf("encoding frame: %w", err)
		}
		if err = tmp.Close(); err != nil {
			return fmt.Errorf("closing frame: %w", err)
		}
		return os.Rename(tmp.Name(), path)
	}
}

package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"sync"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
)

const (
	dpi             = 72.0
	DefaultFontSize = 12.0
)

var parsedFont = sync.OnceValues(func() (*truetype.Font, error) {
	return freetype.ParseFont(gomono.TTF)
})

// Annotator draws text labels onto an image
type Annotator struct {
	context  *freetype.Context
	fontFace font.Face
	size     float64
}

// NewAnnotator creates an annotator drawing with the monospaced Go font at
// size points
func NewAnnotator(size float64) (*Annotator, error) {
	f, err := parsedFont()
	if err != nil {
		return nil, fmt.Errorf("parsing font: %w", err)
	}
	if size <= 0 {
		size = DefaultFontSize
	}

	ctx := freetype.NewContext()
	ctx.SetDPI(dpi)
	ctx.SetFont(f)
	ctx.SetFontSize(size)
	ctx.SetHinting(font.HintingNone)
	ctx.SetSrc(image.Black)

	return &Annotator{
		context: ctx,
		size:    size,
		fontFace: truetype.NewFace(f, &truetype.Options{
			Size:    size,
			DPI:     dpi,
			Hinting: font.HintingNone,
		}),
	}, nil
}

func (a *Annotator) Close() error {
	if a.fontFace != nil {
		return a.fontFace.Close()
	}
	return nil
}

// SetTarget directs subsequent drawing to img
func (a *Annotator) SetTarget(img draw.Image) {
	a.context.SetClip(img.Bounds())
	a.context.SetDst(img)
}

// SetColor sets the text color
func (a *Annotator) SetColor(c color.Color) {
	a.context.SetSrc(image.NewUniform(c))
}

// Width returns the rendered width of s in pixels
func (a *Annotator) Width(s string) int {
	return font.MeasureString(a.fontFace, s).Round()
}

// Height returns the line height in pixels
func (a *Annotator) Height() int {
	metrics := a.fontFace.Metrics()
	return (metrics.Ascent + metrics.Descent).Round()
}

// Draw writes s with its baseline starting at (x, y)
func (a *Annotator) Draw(s string, x, y int) error {
	if _, err := a.context.DrawString(s, freetype.Pt(x, y)); err != nil {
		return fmt.Errorf("drawing %q: %w", s, err)
	}
	return nil
}

// DrawCentered writes s horizontally centered on x, vertically centered on y
func (a *Annotator) DrawCentered(s string, x, y int) error {
	descent := a.fontFace.Metrics().Descent.Round()
	return a.Draw(s, x-a.Width(s)/2, y+a.Height()/2-descent)
}

// DrawRight writes s so that it ends at x, vertically centered on y
func (a *Annotator) DrawRight(s string, x, y int) error {
	descent := a.fontFace.Metrics().Descent.Round()
	return a.Draw(s, x-a.Width(s), y+a.Height()/2-descent)
}

package render

import (
	"image"
	"image/color"
	"image/draw"
	"math"
)

const (
	tickMarkLength = 4
	pixelsPerLabel = 80
)

var (
	AxisColor = color.Gray{Y: 0x40}
	GridColor = color.Gray{Y: 0xe0}
)

// Range is a closed interval of data values mapped onto one panel axis
type Range struct {
	Min, Max float64
}

// Span returns Max - Min
func (r Range) Span() float64 {
	return r.Max - r.Min
}

// Padded widens a degenerate range so it can be mapped onto pixels
func (r Range) Padded() Range {
	if r.Span() > 0 {
		return r
	}
	pad := math.Max(math.Abs(r.Min)*0.01, 0.5)
	return Range{Min: r.Min - pad, Max: r.Max + pad}
}

// Panel is a plotting area inside an image, with data ranges for both axes
type Panel struct {
	Img   draw.Image
	Area  image.Rectangle // Plot area, excluding axis labels
	X, Y  Range
	Title string
}

// NewPanel lays out a panel inside outer, leaving room for the title and
// axis labels
func NewPanel(img draw.Image, outer image.Rectangle, title string, x, y Range) *Panel {
	area := image.Rect(outer.Min.X+90, outer.Min.Y+40, outer.Max.X-16, outer.Max.Y-40)
	return &Panel{
		Img:   img,
		Area:  area,
		X:     x.Padded(),
		Y:     y.Padded(),
		Title: title,
	}
}

// Point maps data coordinates to image pixels. The Y axis grows upwards.
func (p *Panel) Point(x, y float64) image.Point {
	fx := (x - p.X.Min) / p.X.Span()
	fy := (y - p.Y.Min) / p.Y.Span()

	return image.Point{
		X: p.Area.Min.X + int(math.Round(fx*float64(p.Area.Dx()-1))),
		Y: p.Area.Max.Y - 1 - int(math.Round(fy*float64(p.Area.Dy()-1))),
	}
}

// Contains reports whether the data point falls inside the axis ranges
func (p *Panel) Contains(x, y float64) bool {
	return x >= p.X.Min && x <= p.X.Max && y >= p.Y.Min && y <= p.Y.Max
}

// Dot draws a square marker of radius r centered on the data point
func (p *Panel) Dot(x, y float64, r int, c color.Color) {
	if !p.Contains(x, y) {
		return
	}
	pt := p.Point(x, y)
	rect := image.Rect(pt.X-r, pt.Y-r, pt.X+r+1, pt.Y+r+1).Intersect(p.Area)
	draw.Draw(p.Img, rect, image.NewUniform(c), image.Point{}, draw.Src)
}

// Line draws a straight line between two data points
func (p *Panel) Line(x0, y0, x1, y1 float64, c color.Color) {
	a, b := p.Point(x0, y0), p.Point(x1, y1)
	p.pixelLine(a, b, c)
}

// VLine draws a vertical line at x from y0 to y1, clipped to the panel
func (p *Panel) VLine(x, y0, y1 float64, c color.Color) {
	if x < p.X.Min || x > p.X.Max {
		return
	}
	y0 = max(p.Y.Min, min(p.Y.Max, y0))
	y1 = max(p.Y.Min, min(p.Y.Max, y1))
	p.Line(x, y0, x, y1, c)
}

// Cell fills the rectangle spanning the two data corners
func (p *Panel) Cell(x0, y0, x1, y1 float64, c color.Color) {
	a, b := p.Point(x0, y0), p.Point(x1, y1)
	rect := image.Rect(a.X, b.Y, b.X+1, a.Y+1).Canon().Intersect(p.Area)
	draw.Draw(p.Img, rect, image.NewUniform(c), image.Point{}, draw.Src)
}

// pixelLine is Bresenham's line, clipped to the panel area
func (p *Panel) pixelLine(a, b image.Point, c color.Color) {
	dx := abs(b.X - a.X)
	dy := -abs(b.Y - a.Y)
	sx, sy := 1, 1
	if a.X > b.X {
		sx = -1
	}
	if a.Y > b.Y {
		sy = -1
	}

	e := dx + dy
	for {
		if a.In(p.Area) {
			p.Img.Set(a.X, a.Y, c)
		}
		if a == b {
			return
		}
		if e2 := 2 * e; e2 >= dy {
			e += dy
			a.X += sx
		}
		if e2 := 2 * e; e2 <= dx {
			e += dx
			a.Y += sy
		}
	}
}

// Axes draws the frame, grid lines, tick labels, axis titles and the panel
// title
func (p *Panel) Axes(a *Annotator, xLabel, yLabel string, xFormat, yFormat func(float64) string) error {
	xStep := NiceStep(p.X.Span(), p.Area.Dx(), pixelsPerLabel*2)
	for _, v := range Ticks(p.X.Min, p.X.Max, xStep) {
		pt := p.Point(v, p.Y.Min)
		for y := p.Area.Min.Y; y < p.Area.Max.Y; y++ {
			p.Img.Set(pt.X, y, GridColor)
		}
		for y := p.Area.Max.Y; y < p.Area.Max.Y+tickMarkLength; y++ {
			p.Img.Set(pt.X, y, AxisColor)
		}
		if err := a.DrawCentered(xFormat(v), pt.X, p.Area.Max.Y+tickMarkLength+a.Height()/2+2); err != nil {
			return err
		}
	}

	yStep := NiceStep(p.Y.Span(), p.Area.Dy(), pixelsPerLabel)
	for _, v := range Ticks(p.Y.Min, p.Y.Max, yStep) {
		pt := p.Point(p.X.Min, v)
		for x := p.Area.Min.X; x < p.Area.Max.X; x++ {
			p.Img.Set(x, pt.Y, GridColor)
		}
		for x := p.Area.Min.X - tickMarkLength; x < p.Area.Min.X; x++ {
			p.Img.Set(x, pt.Y, AxisColor)
		}
		if err := a.DrawRight(yFormat(v), p.Area.Min.X-tickMarkLength-2, pt.Y); err != nil {
			return err
		}
	}

	p.frame()

	if err := a.DrawCentered(xLabel, (p.Area.Min.X+p.Area.Max.X)/2, p.Area.Max.Y+tickMarkLength+a.Height()*3/2+4); err != nil {
		return err
	}
	if err := a.Draw(yLabel, p.Area.Min.X, p.Area.Min.Y-4); err != nil {
		return err
	}
	return a.DrawCentered(p.Title, (p.Area.Min.X+p.Area.Max.X)/2, p.Area.Min.Y-a.Height()-6)
}

func (p *Panel) frame() {
	r := p.Area
	for x := r.Min.X - 1; x <= r.Max.X; x++ {
		p.Img.Set(x, r.Min.Y-1, AxisColor)
		p.Img.Set(x, r.Max.Y, AxisColor)
	}
	for y := r.Min.Y - 1; y <= r.Max.Y; y++ {
		p.Img.Set(r.Min.X-1, y, AxisColor)
		p.Img.Set(r.Max.X, y, AxisColor)
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

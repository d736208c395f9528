package render

import "math"

// Grid accumulates values into Cols × Rows cells over X and Y ranges and
// keeps the mean of each cell
type Grid struct {
	Cols, Rows int
	X, Y       Range

	sums   []float64
	counts []int
}

// NewGrid creates an empty grid. Values outside the ranges are dropped.
func NewGrid(cols, rows int, x, y Range) *Grid {
	cols, rows = max(1, cols), max(1, rows)
	return &Grid{
		Cols:   cols,
		Rows:   rows,
		X:      x.Padded(),
		Y:      y.Padded(),
		sums:   make([]float64, cols*rows),
		counts: make([]int, cols*rows),
	}
}

// Add accumulates v into the cell containing (x, y) and reports whether the
// point was inside the grid
func (g *Grid) Add(x, y, v float64) bool {
	col, ok := bin(x, g.X, g.Cols)
	if !ok {
		return false
	}
	row, ok := bin(y, g.Y, g.Rows)
	if !ok {
		return false
	}

	i := row*g.Cols + col
	g.sums[i] += v
	g.counts[i]++
	return true
}

// Mean returns the mean of cell (col, row) and whether it holds any value
func (g *Grid) Mean(col, row int) (float64, bool) {
	i := row*g.Cols + col
	if g.counts[i] == 0 {
		return 0, false
	}
	return g.sums[i] / float64(g.counts[i]), true
}

// CellRange returns the data extent of cell (col, row)
func (g *Grid) CellRange(col, row int) (x, y Range) {
	w := g.X.Span() / float64(g.Cols)
	h := g.Y.Span() / float64(g.Rows)
	x = Range{Min: g.X.Min + float64(col)*w, Max: g.X.Min + float64(col+1)*w}
	y = Range{Min: g.Y.Min + float64(row)*h, Max: g.Y.Min + float64(row+1)*h}
	return x, y
}

// Draw paints every cell onto the panel, empty cells with NoDataColor
func (g *Grid) Draw(p *Panel, cm *ColorMapper) {
	for row := range g.Rows {
		for col := range g.Cols {
			x, y := g.CellRange(col, row)
			if v, ok := g.Mean(col, row); ok {
				p.Cell(x.Min, y.Min, x.Max, y.Max, cm.Color(v))
			} else {
				p.Cell(x.Min, y.Min, x.Max, y.Max, NoDataColor)
			}
		}
	}
}

func bin(v float64, r Range, n int) (int, bool) {
	if math.IsNaN(v) || v < r.Min || v > r.Max {
		return 0, false
	}
	i := int((v - r.Min) / r.Span() * float64(n))
	return min(i, n-1), true
}

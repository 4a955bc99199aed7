package elevation

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/roman-kulish/flythrough/internal/crs"
	"github.com/roman-kulish/flythrough/internal/geom"
)

// Interpolation selects how Grid turns cell values into a point height.
type Interpolation int

const (
	// Nearest returns the value of the cell containing the point.
	Nearest Interpolation = iota
	// Bilinear blends the four cell centres around the point.
	Bilinear
)

func (i Interpolation) String() string {
	switch i {
	case Bilinear:
		return "bilinear"
	default:
		return "nearest"
	}
}

func (i *Interpolation) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "", "nearest":
		*i = Nearest
	case "bilinear":
		*i = Bilinear
	default:
		return fmt.Errorf("unknown interpolation %q", text)
	}
	return nil
}

// Grid is a north-up raster held in memory.
//
// OriginX and OriginY are the lower-left corner of the lower-left cell.
// Values are stored row-major with row 0 being the northernmost row, which is
// the order DEM files are written in.
type Grid struct {
	CRS      crs.CRS
	OriginX  float64
	OriginY  float64
	CellSize float64
	Cols     int
	Rows     int

	NoData    float64
	HasNoData bool

	Values        []float64
	Interpolation Interpolation
}

// Stats summarises the valid cells of a grid.
type Stats struct {
	Min, Max float64
	Valid    int
}

// Validate checks that the grid dimensions and data agree.
func (g *Grid) Validate() error {
	switch {
	case g.Cols <= 0 || g.Rows <= 0:
		return fmt.Errorf("invalid grid size %dx%d", g.Cols, g.Rows)
	case !(g.CellSize > 0):
		return fmt.Errorf("invalid cell size %f", g.CellSize)
	case len(g.Values) != g.Cols*g.Rows:
		return fmt.Errorf("grid has %d values, expected %d", len(g.Values), g.Cols*g.Rows)
	}
	return nil
}

// Extent returns the lower-left and upper-right corners of the grid.
func (g *Grid) Extent() (lo, hi geom.Point) {
	lo = geom.Point{X: g.OriginX, Y: g.OriginY}
	hi = geom.Point{
		X: g.OriginX + float64(g.Cols)*g.CellSize,
		Y: g.OriginY + float64(g.Rows)*g.CellSize,
	}
	return lo, hi
}

// Contains reports whether p, in the grid's own CRS, lies on the grid.
func (g *Grid) Contains(p geom.Point) bool {
	lo, hi := g.Extent()
	return p.X >= lo.X && p.X <= hi.X && p.Y >= lo.Y && p.Y <= hi.Y
}

// Value returns the cell at (col, row) and whether it holds data.
func (g *Grid) Value(col, row int) (float64, bool) {
	if col < 0 || col >= g.Cols || row < 0 || row >= g.Rows {
		return 0, false
	}
	v := g.Values[row*g.Cols+col]
	if g.isNoData(v) {
		return 0, false
	}
	return v, true
}

func (g *Grid) isNoData(v float64) bool {
	return math.IsNaN(v) || (g.HasNoData && v == g.NoData)
}

// cell returns the column and row holding p. Points on the upper or right
// edge belong to the last column or row.
func (g *Grid) cell(p geom.Point) (col, row int) {
	col = int(math.Floor((p.X - g.OriginX) / g.CellSize))
	fromBottom := int(math.Floor((p.Y - g.OriginY) / g.CellSize))

	col = min(col, g.Cols-1)
	fromBottom = min(fromBottom, g.Rows-1)

	return col, g.Rows - 1 - fromBottom
}

// At returns the height at p, given in the grid's own CRS.
func (g *Grid) At(p geom.Point) (float64, bool) {
	if !g.Contains(p) {
		return 0, false
	}

	if g.Interpolation == Bilinear {
		if z, ok := g.bilinear(p); ok {
			return z, true
		}
	}

	return g.Value(g.cell(p))
}

// bilinear blends the four surrounding cell centres. It gives up, leaving the
// caller to fall back to the nearest cell, near the border and next to
// no-data cells.
func (g *Grid) bilinear(p geom.Point) (float64, bool) {
	fx := (p.X-g.OriginX)/g.CellSize - 0.5
	fy := (p.Y-g.OriginY)/g.CellSize - 0.5

	c0, r0 := int(math.Floor(fx)), int(math.Floor(fy))
	if c0 < 0 || r0 < 0 || c0+1 >= g.Cols || r0+1 >= g.Rows {
		return 0, false
	}
	tx, ty := fx-float64(c0), fy-float64(r0)

	// r0 counts from the bottom; storage rows count from the top.
	top := g.Rows - 1
	v00, ok00 := g.Value(c0, top-r0)
	v10, ok10 := g.Value(c0+1, top-r0)
	v01, ok01 := g.Value(c0, top-r0-1)
	v11, ok11 := g.Value(c0+1, top-r0-1)
	if !ok00 || !ok10 || !ok01 || !ok11 {
		return 0, false
	}

	bottom := geom.Lerp(v00, v10, tx)
	upper := geom.Lerp(v01, v11, tx)
	return geom.Lerp(bottom, upper, ty), true
}

// ElevationAt implements Source. Points in another CRS are converted to the
// grid's CRS first; an empty c means the grid's own CRS.
func (g *Grid) ElevationAt(_ context.Context, p geom.Point, c crs.CRS) (float64, error) {
	if c != "" && c != g.CRS {
		t, err := crs.NewTransform(c, g.CRS)
		if err != nil {
			return 0, fmt.Errorf("%w: %w", ErrNotAvailable, err)
		}
		if p, err = t.Apply(p); err != nil {
			return 0, fmt.Errorf("%w: %w", ErrNotAvailable, err)
		}
	}

	z, ok := g.At(p)
	if !ok {
		return 0, ErrNotAvailable
	}
	return z, nil
}

// Stats scans all cells. Min and Max are zero when no cell holds data.
func (g *Grid) Stats() Stats {
	s := Stats{Min: math.Inf(1), Max: math.Inf(-1)}
	for _, v := range g.Values {
		if g.isNoData(v) {
			continue
		}
		s.Valid++
		s.Min = math.Min(s.Min, v)
		s.Max = math.Max(s.Max, v)
	}
	if s.Valid == 0 {
		s.Min, s.Max = 0, 0
	}
	return s
}

package app

import (
	"context"
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/roman-kulish/flythrough/internal/crs"
	"github.com/roman-kulish/flythrough/internal/elevation"
	"github.com/roman-kulish/flythrough/internal/geom"
)

const (
	// minExtent is the smallest side of the mapped area in metres.
	minExtent = 100.0

	// maxAspect limits how elongated the map may get.
	maxAspect = 3.0
)

// Raster is the terrain sampled at the pixel centres of the map. Row 0 is
// the northernmost row. Pixels without data hold NaN.
type Raster struct {
	Width, Height int
	Lo, Hi        geom.Point
	PixelSize     float64
	Values        []float64
}

// planExtent returns the area around path to draw, padded by margin times
// the longer side.
func planExtent(path geom.Path, margin float64) (lo, hi geom.Point) {
	lo, hi = path.Bounds()

	w, h := hi.X-lo.X, hi.Y-lo.Y
	pad := margin * math.Max(w, h)
	w, h = w+2*pad, h+2*pad

	w = math.Max(w, math.Max(minExtent, h/maxAspect))
	h = math.Max(h, math.Max(minExtent, w/maxAspect))

	center := geom.Point{X: (lo.X + hi.X) / 2, Y: (lo.Y + hi.Y) / 2}
	half := geom.Point{X: w / 2, Y: h / 2}
	return r2.Sub(center, half), r2.Add(center, half)
}

// SampleRaster queries src once per pixel of a width pixels wide map of the
// extent lo, hi given in c.
func SampleRaster(ctx context.Context, src elevation.Source, c crs.CRS, lo, hi geom.Point, width int) (*Raster, error) {
	if width <= 0 {
		return nil, fmt.Errorf("invalid raster width %d", width)
	}
	if !(hi.X > lo.X) || !(hi.Y > lo.Y) {
		return nil, errors.New("empty raster extent")
	}

	ps := (hi.X - lo.X) / float64(width)
	height := max(int(math.Ceil((hi.Y-lo.Y)/ps)), 1)

	r := &Raster{
		Width:     width,
		Height:    height,
		Lo:        lo,
		Hi:        geom.Point{X: hi.X, Y: lo.Y + float64(height)*ps},
		PixelSize: ps,
		Values:    make([]float64, width*height),
	}

	for row := 0; row < height; row++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		y := r.Hi.Y - (float64(row)+0.5)*ps
		for col := 0; col < width; col++ {
			x := lo.X + (float64(col)+0.5)*ps

			z, ok := elevation.Sample(ctx, src, geom.Point{X: x, Y: y}, c)
			if !ok {
				z = math.NaN()
			}
			r.Values[row*width+col] = z
		}
	}

	return r, nil
}

// At returns the elevation of a pixel, nil when it has no data or lies
// outside the raster.
func (r *Raster) At(col, row int) *float64 {
	if col < 0 || row < 0 || col >= r.Width || row >= r.Height {
		return nil
	}
	z := r.Values[row*r.Width+col]
	if math.IsNaN(z) {
		return nil
	}
	return &z
}

// ToPixel converts a world point to fractional pixel coordinates.
func (r *Raster) ToPixel(p geom.Point) (x, y float64) {
	return (p.X - r.Lo.X) / r.PixelSize, (r.Hi.Y - p.Y) / r.PixelSize
}

// Histogram collects the elevations of all pixels with data.
func (r *Raster) Histogram() *ElevationHistogram {
	h := NewElevationHistogram()
	for i := range r.Values {
		h.Update(&r.Values[i])
	}
	return h
}

const (
	sunAzimuth  = 315.0
	sunAltitude = 45.0
)

// Shade returns the hillshade of a pixel in [0, 1] lit from the north west.
// Missing neighbours are replaced by the pixel itself; pixels without data
// are lit as flat ground.
func (r *Raster) Shade(col, row int, zFactor float64) float64 {
	zenith := geom.Radians(90 - sunAltitude)
	flat := math.Cos(zenith)

	center := r.At(col, row)
	if center == nil {
		return flat
	}

	at := func(c, rw int) float64 {
		if z := r.At(c, rw); z != nil {
			return *z
		}
		return *center
	}

	dzdx := (at(col+1, row) - at(col-1, row)) / (2 * r.PixelSize) * zFactor
	dzdy := (at(col, row-1) - at(col, row+1)) / (2 * r.PixelSize) * zFactor

	slope := math.Atan(math.Hypot(dzdx, dzdy))
	if slope == 0 {
		return flat
	}

	// Downslope direction as a compass bearing.
	aspect := math.Atan2(-dzdx, -dzdy)
	azimuth := geom.Radians(sunAzimuth)

	shade := math.Cos(zenith)*math.Cos(slope) + math.Sin(zenith)*math.Sin(slope)*math.Cos(azimuth-aspect)
	return geom.Clamp(shade, 0, 1)
}
